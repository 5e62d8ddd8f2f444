package model

import "time"

// ClaimedVault — архивная запись о vault, который получатель уже забрал.
// Аккаунт на леджере после claim закрывается, поэтому история хранится здесь.
type ClaimedVault struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	VaultAddress string `gorm:"uniqueIndex;not null"`
	ClaimedBy    string `gorm:"not null;index"` // base58 получателя
	Name         string
	ClaimedAt    time.Time `gorm:"autoCreateTime"`
}

package model

import "time"

// VaultStreak — персистентный счётчик последовательных чек-инов vault.
// Ключ — адрес vault; запись создаётся первым чек-ином и живёт, пока
// владелец её явно не сбросит. Инварианты: LongestStreak >= StreakCount,
// StreakCount >= 1 после первого чек-ина.
type VaultStreak struct {
	VaultAddress  string    `gorm:"primaryKey"`
	StreakCount   int64     `gorm:"not null;default:0"`
	LongestStreak int64     `gorm:"not null;default:0"`
	LastPingAt    time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

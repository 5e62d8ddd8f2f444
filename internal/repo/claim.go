package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"KipVault/internal/model"
)

// ClaimRepository — архив забранных vault'ов.
type ClaimRepository interface {
	// CreateIfAbsent записывает факт claim. Повторный claim того же vault —
	// no-op, created=false.
	CreateIfAbsent(ctx context.Context, vaultAddress, claimedBy, name string) (created bool, err error)

	// ListByClaimer возвращает историю получателя, свежие первыми.
	ListByClaimer(ctx context.Context, claimedBy string) ([]model.ClaimedVault, error)
}

type claimRepo struct {
	db *gorm.DB
}

// NewClaimRepository создаёт реализацию репозитория для ClaimedVault.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepo{db: db}
}

func (r *claimRepo) CreateIfAbsent(ctx context.Context, vaultAddress, claimedBy, name string) (bool, error) {
	c := &model.ClaimedVault{
		ID:           uuid.NewString(),
		VaultAddress: vaultAddress,
		ClaimedBy:    claimedBy,
		Name:         name,
	}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vault_address"}},
		DoNothing: true,
	}).Create(c)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *claimRepo) ListByClaimer(ctx context.Context, claimedBy string) ([]model.ClaimedVault, error) {
	var res []model.ClaimedVault
	err := r.db.WithContext(ctx).
		Where("claimed_by = ?", claimedBy).
		Order("claimed_at DESC").
		Find(&res).Error
	return res, err
}

package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"KipVault/internal/model"
)

// ErrConflict — конкурентное обновление той же записи: кто-то успел записать
// между нашим чтением и записью. Ошибка retryable, обновление не теряется молча.
var ErrConflict = errors.New("repo: concurrent streak update")

// StreakRepository — контракт доступа к счётчикам чек-инов.
type StreakRepository interface {
	// Get возвращает запись или nil, если для vault ещё ничего не записано.
	Get(ctx context.Context, vaultAddress string) (*model.VaultStreak, error)

	// CreateIfAbsent вставляет первую запись. created=false, если запись
	// уже существует (нас опередили) — вызывающий перечитывает и повторяет.
	CreateIfAbsent(ctx context.Context, s *model.VaultStreak) (created bool, err error)

	// UpdateGuarded — compare-and-swap: запись обновляется только если
	// last_ping_at не изменился с момента чтения. Иначе ErrConflict.
	UpdateGuarded(ctx context.Context, s *model.VaultStreak, prevLastPing time.Time) error

	// Clear удаляет запись vault (явный сброс владельцем).
	Clear(ctx context.Context, vaultAddress string) error
}

type streakRepo struct {
	db *gorm.DB
}

// NewStreakRepository создаёт реализацию репозитория на gorm.
func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepo{db: db}
}

func (r *streakRepo) Get(ctx context.Context, vaultAddress string) (*model.VaultStreak, error) {
	var s model.VaultStreak
	err := r.db.WithContext(ctx).First(&s, "vault_address = ?", vaultAddress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *streakRepo) CreateIfAbsent(ctx context.Context, s *model.VaultStreak) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vault_address"}},
		DoNothing: true,
	}).Create(s)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *streakRepo) UpdateGuarded(ctx context.Context, s *model.VaultStreak, prevLastPing time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&model.VaultStreak{}).
		Where("vault_address = ? AND last_ping_at = ?", s.VaultAddress, prevLastPing).
		Updates(map[string]any{
			"streak_count":   s.StreakCount,
			"longest_streak": s.LongestStreak,
			"last_ping_at":   s.LastPingAt,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *streakRepo) Clear(ctx context.Context, vaultAddress string) error {
	return r.db.WithContext(ctx).Delete(&model.VaultStreak{}, "vault_address = ?", vaultAddress).Error
}

package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"KipVault/internal/model"
	"KipVault/internal/repo"
)

// maxCheckInGap — максимальный разрыв между чек-инами, сохраняющий серию.
const maxCheckInGap = 48 * time.Hour

// StreakService ведёт счётчики последовательных чек-инов.
// Правило: разрыв ≤ 48 часов продолжает серию, больший — сбрасывает на 1.
// Каждый вызов RecordCheckIn — реальное событие чек-ина и инкрементирует
// серию, сколько бы их ни было за день: наблюдаемое поведение, дневного
// капа нет намеренно.
type StreakService struct {
	repo   repo.StreakRepository
	logger *zap.SugaredLogger
	now    func() time.Time // подменяется в тестах
}

// NewStreakService создаёт сервис серий чек-инов.
func NewStreakService(r repo.StreakRepository, logger *zap.SugaredLogger) *StreakService {
	return &StreakService{repo: r, logger: logger, now: time.Now}
}

// RecordCheckIn фиксирует чек-ин vault и возвращает обновлённую запись.
// Гонка двух одновременных чек-инов разрешается через CAS репозитория:
// проигравший перечитывает состояние и повторяет один раз, вторая
// подряд гонка отдаётся наверх как retryable repo.ErrConflict.
func (s *StreakService) RecordCheckIn(ctx context.Context, vaultAddress string) (*model.VaultStreak, error) {
	now := s.now().UTC()

	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.repo.Get(ctx, vaultAddress)
		if err != nil {
			return nil, err
		}

		if existing == nil {
			rec := &model.VaultStreak{
				VaultAddress:  vaultAddress,
				StreakCount:   1,
				LongestStreak: 1,
				LastPingAt:    now,
			}
			created, err := s.repo.CreateIfAbsent(ctx, rec)
			if err != nil {
				return nil, err
			}
			if created {
				return rec, nil
			}
			// нас опередили первой вставкой — перечитываем и идём по ветке update
			continue
		}

		newCount := int64(1)
		if now.Sub(existing.LastPingAt) <= maxCheckInGap {
			newCount = existing.StreakCount + 1
		}
		longest := existing.LongestStreak
		if newCount > longest {
			longest = newCount
		}

		rec := &model.VaultStreak{
			VaultAddress:  vaultAddress,
			StreakCount:   newCount,
			LongestStreak: longest,
			LastPingAt:    now,
		}
		err = s.repo.UpdateGuarded(ctx, rec, existing.LastPingAt)
		if errors.Is(err, repo.ErrConflict) {
			s.logger.Infow("streak update conflict, retrying", "vault", vaultAddress, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, repo.ErrConflict
}

// GetStreak возвращает текущую серию. Для неизвестного vault — нули, не ошибка.
func (s *StreakService) GetStreak(ctx context.Context, vaultAddress string) (*model.VaultStreak, error) {
	rec, err := s.repo.Get(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &model.VaultStreak{VaultAddress: vaultAddress}, nil
	}
	return rec, nil
}

// Clear сбрасывает серию vault по явному действию владельца.
func (s *StreakService) Clear(ctx context.Context, vaultAddress string) error {
	return s.repo.Clear(ctx, vaultAddress)
}

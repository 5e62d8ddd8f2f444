package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"KipVault/internal/ledger"
	"KipVault/internal/model"
	"KipVault/internal/vault"
)

// ErrVaultReleased — чек-ин по released vault невозможен: окно уже закрыто,
// содержимое принадлежит получателю.
var ErrVaultReleased = errors.New("service: vault already released")

// VaultStatus — авторитетное состояние жизненного цикла vault на момент now.
type VaultStatus struct {
	Address        string
	Owner          string
	Recipient      string
	Name           string
	ContentCID     string
	IsReleased     bool
	IsExpired      bool
	TimeRemaining  uint64
	HealthPercent  float64
	Health         vault.Health
	LastCheckIn    uint64
	TimeInterval   uint64
	NextCheckInDue time.Time
	Bounty         uint64
	LockedAmount   uint64
}

// VaultService — оркестратор жизненного цикла: декодирование аккаунта,
// расчёт liveness и проведение аутентифицированных чек-инов.
// Сама запись last_check_in в аккаунт — дело on-chain программы;
// здесь фиксируется только серия.
type VaultService struct {
	fetcher ledger.AccountFetcher
	streaks *StreakService
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewVaultService создаёт оркестратор поверх источника аккаунтов и сервиса серий.
func NewVaultService(f ledger.AccountFetcher, streaks *StreakService, logger *zap.SugaredLogger) *VaultService {
	return &VaultService{fetcher: f, streaks: streaks, logger: logger, now: time.Now}
}

// Status читает аккаунт с леджера и возвращает его текущее состояние.
// Классификация считается по состоянию на момент чтения — до применения
// любых чек-инов, никогда вперемешку с ними.
func (s *VaultService) Status(ctx context.Context, address string) (*VaultStatus, error) {
	data, err := s.fetch(ctx, address)
	if err != nil {
		return nil, err
	}
	return s.statusOf(address, data), nil
}

func (s *VaultService) statusOf(address string, d *vault.Data) *VaultStatus {
	now := uint64(s.now().Unix())
	health := vault.HealthPercent(d.LastCheckIn, d.TimeInterval, now)
	return &VaultStatus{
		Address:        address,
		Owner:          d.Owner.Base58(),
		Recipient:      d.Recipient.Base58(),
		Name:           d.Name,
		ContentCID:     d.ContentCID,
		IsReleased:     d.IsReleased,
		IsExpired:      vault.IsExpired(d.LastCheckIn, d.TimeInterval, now),
		TimeRemaining:  vault.TimeRemaining(d.LastCheckIn, d.TimeInterval, now),
		HealthPercent:  health,
		Health:         vault.Classify(health, d.IsReleased),
		LastCheckIn:    d.LastCheckIn,
		TimeInterval:   d.TimeInterval,
		NextCheckInDue: vault.NextCheckInDue(d.LastCheckIn, d.TimeInterval),
		Bounty:         d.Bounty,
		LockedAmount:   d.LockedAmount,
	}
}

// CheckIn проводит аутентифицированный чек-ин (владелец напрямую или
// проверенный magic-токен — аутентификация на совести вызывающего).
// Возвращает обновлённую серию. Сигналом «сдвинуть last_check_in»
// занимается внешний вызов on-chain ping.
func (s *VaultService) CheckIn(ctx context.Context, address string) (*model.VaultStreak, error) {
	data, err := s.fetch(ctx, address)
	if err != nil {
		return nil, err
	}
	if data.IsReleased {
		return nil, ErrVaultReleased
	}

	rec, err := s.streaks.RecordCheckIn(ctx, address)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("check-in recorded", "vault", address, "streak", rec.StreakCount)
	return rec, nil
}

func (s *VaultService) fetch(ctx context.Context, address string) (*vault.Data, error) {
	if _, err := vault.ParsePublicKey(address); err != nil {
		return nil, fmt.Errorf("invalid vault address: %w", err)
	}
	raw, err := s.fetcher.FetchAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	return vault.Decode(raw)
}

// ContentURL валидирует content-locator аккаунта как CID и строит URL
// к шлюзу content-addressed хранилища для claim-потока.
func ContentURL(gateway, contentCID string) (string, error) {
	c, err := cid.Decode(contentCID)
	if err != nil {
		return "", fmt.Errorf("invalid content cid: %w", err)
	}
	return fmt.Sprintf("%s/ipfs/%s", gateway, c.String()), nil
}

package handlers_test

import (
	"context"
	"encoding/binary"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"KipVault/internal/config"
	"KipVault/internal/handlers"
	"KipVault/internal/ledger"
	"KipVault/internal/magiclink"
	"KipVault/internal/model"
	"KipVault/internal/repo"
	"KipVault/internal/service"
	"KipVault/internal/vault"
)

// Local light mocks
type hMockStreakRepo struct{ mock.Mock }

func (m *hMockStreakRepo) Get(ctx context.Context, vaultAddress string) (*model.VaultStreak, error) {
	args := m.Called(ctx, vaultAddress)
	if v, ok := args.Get(0).(*model.VaultStreak); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockStreakRepo) CreateIfAbsent(ctx context.Context, s *model.VaultStreak) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}
func (m *hMockStreakRepo) UpdateGuarded(ctx context.Context, s *model.VaultStreak, prevLastPing time.Time) error {
	return m.Called(ctx, s, prevLastPing).Error(0)
}
func (m *hMockStreakRepo) Clear(ctx context.Context, vaultAddress string) error {
	return m.Called(ctx, vaultAddress).Error(0)
}

var _ repo.StreakRepository = (*hMockStreakRepo)(nil)

type hMockClaimRepo struct{ mock.Mock }

func (m *hMockClaimRepo) CreateIfAbsent(ctx context.Context, vaultAddress, claimedBy, name string) (bool, error) {
	args := m.Called(ctx, vaultAddress, claimedBy, name)
	return args.Bool(0), args.Error(1)
}
func (m *hMockClaimRepo) ListByClaimer(ctx context.Context, claimedBy string) ([]model.ClaimedVault, error) {
	args := m.Called(ctx, claimedBy)
	if v, ok := args.Get(0).([]model.ClaimedVault); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ClaimRepository = (*hMockClaimRepo)(nil)

// hFakeFetcher отдаёт подготовленные байты аккаунтов без сети.
type hFakeFetcher struct{ data map[string][]byte }

func (f *hFakeFetcher) FetchAccount(_ context.Context, address string) ([]byte, error) {
	if b, ok := f.data[address]; ok {
		return b, nil
	}
	return nil, ledger.ErrAccountNotFound
}

// testVaultAddress — валидный base58-адрес для тестов.
func testVaultAddress() string {
	var pk vault.PublicKey
	pk[0] = 9
	return pk.Base58()
}

// liveAccountBytes — минимальный аккаунт с активным окном.
func liveAccountBytes(released bool) []byte {
	b := make([]byte, 8)
	var owner, recipient vault.PublicKey
	owner[0], recipient[0] = 1, 2
	b = append(b, owner[:]...)
	b = append(b, recipient[:]...)
	for _, s := range []string{"cid", "key"} {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(s)))
		b = append(b, s...)
	}
	b = binary.LittleEndian.AppendUint64(b, 86400)
	b = binary.LittleEndian.AppendUint64(b, uint64(time.Now().Unix()))
	rel := byte(0)
	if released {
		rel = 1
	}
	b = append(b, rel)
	b = binary.LittleEndian.AppendUint64(b, 1)
	b = append(b, 255, 0)
	b = binary.LittleEndian.AppendUint64(b, 0)
	return b
}

const testSecret = "test-secret"

// --- Helpers ---
func newTestRouter(t *testing.T, sr repo.StreakRepository, cr repo.ClaimRepository, fetcher ledger.AccountFetcher) http.Handler {
	return newTestRouterWithPayload(t, sr, cr, fetcher, nil)
}

func newTestRouterWithPayload(t *testing.T, sr repo.StreakRepository, cr repo.ClaimRepository, fetcher ledger.AccountFetcher, ps repo.PayloadStore) http.Handler {
	t.Helper()
	cfg := &config.Config{AuthSecret: testSecret, ServerURL: "http://localhost:8081"}
	logger := zap.NewNop().Sugar()

	issuer, err := magiclink.NewIssuer(cfg.AuthSecret)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}

	streakSvc := service.NewStreakService(sr, logger)
	vaultSvc := service.NewVaultService(fetcher, streakSvc, logger)

	h := handlers.NewHandler(vaultSvc, streakSvc, cr, ps, issuer, logger, cfg)
	return h.Router
}

package handlers

import (
	"KipVault/internal/config"
	"KipVault/internal/magiclink"
	"KipVault/internal/middleware"
	"KipVault/internal/repo"
	"KipVault/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	vaultService *service.VaultService,
	streakService *service.StreakService,
	claimRepo repo.ClaimRepository,
	payloadStore repo.PayloadStore,
	issuer *magiclink.Issuer,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)

	// Handlers
	streakHandler := NewStreakHandler(streakService, logger, config)
	vaultHandler := NewVaultHandler(vaultService, streakService, claimRepo, issuer, logger, config)

	// Streak routes
	r.Get("/api/vault/streak", streakHandler.GetStreak)
	r.Post("/api/vault/streak", streakHandler.RecordCheckIn)
	r.Delete("/api/vault/streak", streakHandler.ClearStreak)

	// Vault lifecycle routes
	r.Get("/api/vault/status", vaultHandler.Status)
	r.Get("/api/magic-ping", vaultHandler.MagicPing)
	r.Post("/api/vault/magic-link", vaultHandler.IssueMagicLink)

	// Claim history routes
	r.Post("/api/vault/claimed", vaultHandler.RecordClaim)
	r.Get("/api/vault/claimed", vaultHandler.ListClaimed)

	// Off-chain payload routes; без настроенного хранилища не регистрируются
	if payloadStore != nil {
		payloadHandler := NewPayloadHandler(payloadStore, logger)
		r.Post("/api/vault/payload/{cid}", payloadHandler.Upload)
		r.Get("/api/vault/payload/{cid}", payloadHandler.Fetch)
	}

	return &Handler{Router: r}
}

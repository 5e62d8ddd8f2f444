package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"KipVault/internal/config"
	"KipVault/internal/handlers"
	"KipVault/internal/ledger"
	"KipVault/internal/magiclink"
	"KipVault/internal/middleware"
	"KipVault/internal/repo"
	"KipVault/internal/service"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	// в production секрет подписи обязателен, дефолт недопустим
	if cfg.Production() && (cfg.AuthSecret == "" || cfg.AuthSecret == config.DevAuthSecret) {
		sugar.Fatalw("AUTH_SECRET must be set in production")
	}

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	issuer, err := magiclink.NewIssuer(cfg.AuthSecret)
	if err != nil {
		sugar.Fatalw("failed to create magic link issuer", "error", err)
	}

	streakRepo := repo.NewStreakRepository(gormDB)
	claimRepo := repo.NewClaimRepository(gormDB)
	fetcher := ledger.NewRPCClient(cfg.RPCEndpoint)

	// payload-хранилище опционально: без MINIO_ENDPOINT его маршруты не поднимаются
	var payloadStore repo.PayloadStore
	if cfg.MinioEndpoint != "" {
		payloadStore, err = repo.NewMinioPayloadStore(context.Background(),
			cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			sugar.Fatalw("failed to connect payload store", "error", err)
		}
	}

	streakService := service.NewStreakService(streakRepo, sugar)
	vaultService := service.NewVaultService(fetcher, streakService, sugar)

	h := handlers.NewHandler(vaultService, streakService, claimRepo, payloadStore, issuer, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"RPCEndpoint", cfg.RPCEndpoint,
		"ContentGateway", cfg.ContentGateway,
		"Environment", cfg.Environment,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}

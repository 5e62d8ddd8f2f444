package config

import (
	"flag"
	"regexp"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DevAuthSecret — заведомо несекретный дефолт для локальной разработки.
// В production он никогда не подставляется: отсутствие AUTH_SECRET там —
// фатальная ошибка старта, см. cmd/server.
const DevAuthSecret = "dev-secret-DO-NOT-USE-IN-PRODUCTION"

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"` // подпись magic-ссылок
	Environment string `env:"APP_ENV"`     // "production" включает строгие проверки

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Ledger / content storage
	RPCEndpoint    string `env:"RPC_ENDPOINT"`
	ContentGateway string `env:"CONTENT_GATEWAY"`

	// Off-chain payload store (MinIO/S3)
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"`

	// Client-side settings
	ServerURL     string `env:"-"`
	WalletKeyFile string `env:"WALLET_KEY_FILE"` // путь к seed-файлу ed25519 для claim
	Version       bool   `env:"-"`               // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи magic-ссылок")
	flag.StringVar(&cfg.Environment, "env", cfg.Environment, "окружение: production или dev")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the KipVault server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	flag.StringVar(&cfg.RPCEndpoint, "rpc", cfg.RPCEndpoint, "JSON-RPC endpoint леджера")
	flag.StringVar(&cfg.ContentGateway, "gateway", cfg.ContentGateway, "шлюз content-addressed хранилища")
	// Client flags
	flag.StringVar(&cfg.WalletKeyFile, "wallet-key", cfg.WalletKeyFile, "путь к файлу ключа кошелька (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	// Defaults. Секрет подписи дефолтится только вне production.
	if cfg.AuthSecret == "" && !cfg.Production() {
		cfg.AuthSecret = DevAuthSecret
	}
	if cfg.RPCEndpoint == "" {
		cfg.RPCEndpoint = "https://api.devnet.solana.com"
	}
	if cfg.ContentGateway == "" {
		cfg.ContentGateway = "https://gateway.pinata.cloud"
	}
	if cfg.MinioBucket == "" {
		cfg.MinioBucket = "kipvault-payloads"
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	return cfg
}

// Production сообщает, работаем ли мы в боевом окружении.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

package config

import (
	"flag"
	"os"
	"sync"
)

const (
	defaultServerAddress    = ":8080"
	defaultDatabaseDSN      = ""
	defaultStockServiceAddr = ":8282"
	defaultWebhookSecret    = ""
	defaultLogLevel         = "debug"
)

type Config struct {
	ServerAddr       string
	DatabaseDSN      string
	StockServiceAddr string
	WebhookSecret    string
	AuthTokenKey     string
	LogLevel         string
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "market server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "market database DSN")
		flag.StringVar(&cfg.StockServiceAddr, "s", defaultStockServiceAddr, "stock service address")
		flag.StringVar(&cfg.WebhookSecret, "w", defaultWebhookSecret, "payment gateway webhook secret")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if stockAddrEnv := os.Getenv("STOCK_SERVICE_ADDRESS"); stockAddrEnv != "" {
			cfg.StockServiceAddr = stockAddrEnv
		}
		if webhookSecretEnv := os.Getenv("WEBHOOK_SECRET"); webhookSecretEnv != "" {
			cfg.WebhookSecret = webhookSecretEnv
		}
		if tokenKeyEnv := os.Getenv("AUTH_TOKEN_KEY"); tokenKeyEnv != "" {
			cfg.AuthTokenKey = tokenKeyEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}

		singleton = &cfg
	})

	return singleton, nil
}

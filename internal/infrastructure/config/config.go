package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Ledger LedgerConfig
	Upload UploadConfig
	Mint   MintConfig
}

type AuthConfig struct {
	AccessSecret  string        `env:"JWT_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET, default=refresh-secret"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL,   default=1h"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL,  default=168h"`
	AdminUsername string        `env:"ADMIN_USERNAME"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=property_registry"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type LedgerConfig struct {
	RPCURL          string        `env:"LEDGER_RPC_URL,          default=http://127.0.0.1:8545/"`
	ChainID         int64         `env:"LEDGER_CHAIN_ID,         default=1337"`
	ContractAddress string        `env:"LEDGER_CONTRACT_ADDRESS, default=0x5FbDB2315678afecb367f032d93F642f64180aa3"`
	GasLimit        uint64        `env:"LEDGER_GAS_LIMIT,        default=500000"`
	ConfirmTimeout  time.Duration `env:"LEDGER_CONFIRM_TIMEOUT,  default=90s"`
	SignerKey       string        `env:"ADMIN_PRIVATE_KEY"`
}

type UploadConfig struct {
	Dir string `env:"UPLOAD_DIR, default=uploads"`
}

type MintConfig struct {
	Workers           int           `env:"MINT_WORKERS,            default=4"`
	GuardTTL          time.Duration `env:"MINT_GUARD_TTL,          default=10m"`
	ReconcileInterval time.Duration `env:"MINT_RECONCILE_INTERVAL, default=5m"`
	ReconcileMinAge   time.Duration `env:"MINT_RECONCILE_MIN_AGE,  default=10m"`
}

// Production reports whether the process runs in production mode; it gates
// the Secure cookie flag and error detail in responses.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

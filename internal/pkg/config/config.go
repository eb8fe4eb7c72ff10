package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	Storage  string `env:"STORAGE,   default=mongo"`

	HTTP  HTTPConfig
	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Audit AuditConfig
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `env:"READ_TIMEOUT,     default=15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,    default=30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	Issuer     string        `env:"JWT_ISSUER,  default=catalog-gateway"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=catalog_gateway"`
}

type RedisConfig struct {
	Addr        string        `env:"REDIS_ADDR,         default=localhost:6379"`
	DB          int           `env:"REDIS_DB,           default=0"`
	IdentityTTL time.Duration `env:"IDENTITY_CACHE_TTL, default=30s"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsDevelopment reports whether the service runs with developer defaults
// (pretty logs, in-memory demo data).
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects configurations the gateway cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL))
	}
	if c.Storage != StorageMongo && c.Storage != StorageMemory {
		errs = append(errs, fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMongo, StorageMemory, c.Storage))
	}
	return errors.Join(errs...)
}

// Load reads an optional .env file, then the process environment. It panics
// when the result is invalid.
func Load() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg, err := load(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

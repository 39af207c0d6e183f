package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	BackendFile  = "file"
	BackendMongo = "mongo"
	BackendRedis = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"        validate:"required"`
	Env      string `env:"ENV,       default=development" validate:"oneof=development production test"`
	LogLevel string `env:"LOG_LEVEL, default=info"        validate:"oneof=trace debug info warn warning error"`

	Storage StorageConfig
	Session SessionConfig
	CSRF    CSRFConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type StorageConfig struct {
	DataDir         string `env:"DATA_DIR,         default=./data" validate:"required"`
	UsersBackend    string `env:"USERS_BACKEND,    default=file"   validate:"oneof=file mongo"`
	SessionsBackend string `env:"SESSIONS_BACKEND, default=file"   validate:"oneof=file mongo redis"`
	SeedUsers       bool   `env:"SEED_USERS,       default=true"`
	BcryptCost      int    `env:"BCRYPT_COST,      default=10"     validate:"min=4,max=31"`
}

type SessionConfig struct {
	CookieName    string        `env:"SESSION_COOKIE,         default=sessionId" validate:"required"`
	TTL           time.Duration `env:"SESSION_TTL,            default=12h"       validate:"min=0"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=5m"        validate:"min=0"`
	SecureCookie  bool          `env:"SECURE_COOKIE,          default=true"`
}

type CSRFConfig struct {
	MaxPerUser int  `env:"CSRF_MAX_PER_USER, default=5" validate:"min=0"`
	SingleUse  bool `env:"CSRF_SINGLE_USE,   default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ledger_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// UsesMongo reports whether any repository is backed by MongoDB.
func (c *Config) UsesMongo() bool {
	return c.Storage.UsersBackend == BackendMongo || c.Storage.SessionsBackend == BackendMongo
}

// UsesRedis reports whether sessions are stored in Redis.
func (c *Config) UsesRedis() bool {
	return c.Storage.SessionsBackend == BackendRedis
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

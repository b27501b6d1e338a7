package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// CredentialsFile optionally replaces the built-in users.
	CredentialsFile string `env:"CREDENTIALS_FILE"`

	JWT     JWTConfig
	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
}

type JWTConfig struct {
	Key      string `env:"JWT_KEY, required"`
	Issuer   string `env:"JWT_ISSUER,   default=adverts-api"`
	Audience string `env:"JWT_AUDIENCE, default=adverts-clients"`
}

type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER, default=postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH,    default=adverts.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=adverts"`
}

// RedisConfig enables Idempotency-Key handling when Addr is set.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	DB             int           `env:"REDIS_DB,        default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// KafkaConfig enables advert change events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC, default=advert_events"`
}

// IsDevelopment reports whether development-only routes are exposed.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}

	switch cfg.Storage.Driver {
	case DriverPostgres:
		if cfg.Storage.DatabaseURL == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	case DriverSQLite, DriverMongo:
	default:
		return nil, fmt.Errorf("config: unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return &cfg, nil
}

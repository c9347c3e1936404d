package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/trickreich/SuluSyliusProducerPlugin/pkg/config"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/database"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/kafka"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/middleware"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/tracing"
)

// ServiceName identifies the producer in logs, metrics and traces.
const ServiceName = "sylius-producer"

// Config holds all configuration for the producer.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"SERVICE_VERSION" envDefault:"0.1.0"`

	// HTTP server
	HTTPPort            int           `env:"PRODUCER_HTTP_PORT" envDefault:"8080"`
	HTTPShutdownTimeout time.Duration `env:"PRODUCER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// PostgreSQL (Sylius catalogue)
	PostgresHost  string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort  int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser  string `env:"POSTGRES_USER" envDefault:"sylius"`
	PostgresPass  string `env:"POSTGRES_PASSWORD" envDefault:"sylius"`
	PostgresDB    string `env:"POSTGRES_DB" envDefault:"sylius"`
	PostgresSSL   string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Database pool
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`

	// Kafka
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"sylius-producer"`
	ConsumerEnabled    bool     `env:"KAFKA_CONSUMER_ENABLED" envDefault:"true"`
	ConsumerMaxRetries int      `env:"KAFKA_CONSUMER_MAX_RETRIES" envDefault:"3"`

	// Redis (event de-duplication); empty host falls back to memory
	RedisHost      string        `env:"REDIS_HOST"`
	RedisPort      int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELInsecure   bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Synchronization
	SyncBatchSize int `env:"SYNC_BATCH_SIZE" envDefault:"100"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from the environment. Options are forwarded to
// pkg/config, which lets tests supply a fixed environment.
func Load(opts ...pkgconfig.Option) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load producer config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the producer cannot start with.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("invalid Postgres port: %d", c.PostgresPort)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.RedisHost != "" && (c.RedisPort < 1 || c.RedisPort > 65535) {
		return fmt.Errorf("invalid Redis port: %d", c.RedisPort)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.SyncBatchSize < 1 || c.SyncBatchSize > 1000 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be between 1 and 1000, got %d", c.SyncBatchSize)
	}
	return nil
}

// Postgres returns the connection settings for database.NewPostgresPool.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
	}
}

// Redis returns the Redis settings. Enabled() is false when REDIS_HOST is
// unset.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Tracing returns the OpenTelemetry exporter settings.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		Insecure:       c.OTELInsecure,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}

// Consumer returns the change-event consumer settings for topics.
func (c *Config) Consumer(topics []string) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers:    c.KafkaBrokers,
		GroupID:    c.KafkaConsumerGroup,
		Topics:     topics,
		MaxRetries: c.ConsumerMaxRetries,
	}
}

// CORS returns the CORS settings of the admin API.
func (c *Config) CORS() middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = c.CORSAllowedOrigins
	return cors
}

// SlowQueryThreshold is LOG_SLOW_QUERY_MS as a duration.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}

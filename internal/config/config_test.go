package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/trickreich/SuluSyliusProducerPlugin/pkg/config"
)

func load(t *testing.T, vars map[string]string) (*Config, error) {
	t.Helper()
	return Load(pkgconfig.WithEnvironment(vars))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "sylius-producer", cfg.KafkaConsumerGroup)
	assert.Equal(t, 100, cfg.SyncBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThreshold())
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.Redis().Enabled())
	assert.True(t, cfg.RunMigrations)
}

func TestLoad_FromEnvironment(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"PRODUCER_HTTP_PORT":   "9000",
		"KAFKA_BROKERS":        "kafka-1:9092,kafka-2:9092",
		"REDIS_HOST":           "redis",
		"REDIS_DB":             "2",
		"OTEL_ENABLED":         "true",
		"OTEL_SAMPLE_RATE":     "0.25",
		"SYNC_BATCH_SIZE":      "250",
		"DB_MAX_CONN_LIFETIME": "10m",
		"PPROF_ALLOWED_CIDRS":  "127.0.0.1/32",
	})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"127.0.0.1/32"}, cfg.PprofAllowedCIDRs)
	assert.Equal(t, 250, cfg.SyncBatchSize)

	redis := cfg.Redis()
	assert.True(t, redis.Enabled())
	assert.Equal(t, "redis:6379", redis.Addr())
	assert.Equal(t, 2, redis.DB)

	tc := cfg.Tracing()
	assert.True(t, tc.Enabled)
	assert.Equal(t, ServiceName, tc.ServiceName)
	assert.InDelta(t, 0.25, tc.SampleRate, 1e-9)

	assert.Equal(t, 10*time.Minute, cfg.Postgres().MaxConnLifetime)
}

func TestLoad_ParseError(t *testing.T) {
	_, err := load(t, map[string]string{"PRODUCER_HTTP_PORT": "eighty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load producer config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{"port zero", map[string]string{"PRODUCER_HTTP_PORT": "0"}, "invalid HTTP port"},
		{"port too high", map[string]string{"PRODUCER_HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"postgres port", map[string]string{"POSTGRES_PORT": "0"}, "invalid Postgres port"},
		{"pool bounds", map[string]string{"DB_MIN_CONNS": "20", "DB_MAX_CONNS": "5"}, "exceeds DB_MAX_CONNS"},
		{"redis port", map[string]string{"REDIS_HOST": "redis", "REDIS_PORT": "0"}, "invalid Redis port"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "1.5"}, "OTEL_SAMPLE_RATE"},
		{"batch size zero", map[string]string{"SYNC_BATCH_SIZE": "0"}, "SYNC_BATCH_SIZE"},
		{"batch size too big", map[string]string{"SYNC_BATCH_SIZE": "5000"}, "SYNC_BATCH_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Required(t *testing.T) {
	base, err := load(t, map[string]string{})
	require.NoError(t, err)

	noHost := *base
	noHost.PostgresHost = ""
	assert.ErrorContains(t, noHost.Validate(), "POSTGRES_HOST is required")

	noUser := *base
	noUser.PostgresUser = ""
	assert.ErrorContains(t, noUser.Validate(), "POSTGRES_USER is required")

	noBrokers := *base
	noBrokers.KafkaBrokers = nil
	assert.ErrorContains(t, noBrokers.Validate(), "KAFKA_BROKERS is required")
}

func TestConsumerAndCORS(t *testing.T) {
	cfg, err := load(t, map[string]string{"CORS_ALLOWED_ORIGINS": "https://admin.example.com"})
	require.NoError(t, err)

	cc := cfg.Consumer([]string{"ecommerce.product.created"})
	assert.Equal(t, "sylius-producer", cc.GroupID)
	assert.Equal(t, 3, cc.MaxRetries)
	assert.Equal(t, []string{"ecommerce.product.created"}, cc.Topics)

	assert.Equal(t, []string{"https://admin.example.com"}, cfg.CORS().AllowedOrigins)
}

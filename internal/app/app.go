package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/config"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/event"
	handler "github.com/trickreich/SuluSyliusProducerPlugin/internal/handler/http"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/repository/postgres"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/serializer"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/service"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/database"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/health"
	pkgkafka "github.com/trickreich/SuluSyliusProducerPlugin/pkg/kafka"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/tracing"
)

// idempotencyKeyPrefix namespaces processed event ids in Redis.
const idempotencyKeyPrefix = "sylius-producer:event"

// App wires together all dependencies and runs the producer.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPoolWithLogger(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, postgres.Migrations(), logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
	}

	if threshold := cfg.SlowQueryThreshold(); threshold > 0 {
		database.SetSlowQueryLogging(threshold, logger)
	}

	// Processed event ids live in Redis when configured so that every
	// replica shares them.
	store, redisClient, err := newIdempotencyStore(ctx, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	// Initialize Kafka producer with connection validation and retry.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	if err := pingKafkaWithRetry(ctx, producer, logger); err != nil {
		logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	repo := postgres.NewProductRepository(pool)
	mapper := serializer.NewProductSerializer(serializer.NewJSONVariantSerializer())
	eventProducer := event.NewProducer(producer, logger)
	syncService := service.NewSyncService(repo, mapper, eventProducer, logger,
		service.WithDefaultBatchSize(cfg.SyncBatchSize),
	)

	// Upstream catalogue changes trigger synchronizations.
	var (
		consumer *pkgkafka.Consumer
		dlq      *pkgkafka.DLQProducer
	)
	if cfg.ConsumerEnabled {
		dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		eventConsumer := event.NewConsumer(syncService, logger)
		consumer = pkgkafka.NewConsumer(
			cfg.Consumer(event.ConsumedTopics),
			eventConsumer.Handler(store),
			logger,
			pkgkafka.WithDeadLetter(dlq),
		)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// HTTP router.
	router := handler.NewRouter(syncService, healthHandler, logger, handler.RouterConfig{
		Service:    config.ServiceName,
		CORS:       cfg.CORS(),
		PprofCIDRs: cfg.PprofAllowedCIDRs,
	})

	// No WriteTimeout: a full synchronization answers only once it is done.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		dlq:            dlq,
		consumer:       consumer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the change-event consumer, then blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Start Kafka consumer.
	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("product change consumer: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka consumer and dead-letter producer
// 4. Kafka producer
// 5. Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests.
	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.HTTPShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close the consumer before its dead-letter producer.
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("kafka dlq producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 5. Close Redis and PostgreSQL.
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// newIdempotencyStore returns a Redis backed store when Redis is configured
// and an in-process one otherwise. The client is nil in the latter case.
func newIdempotencyStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pkgkafka.IdempotencyStore, *redis.Client, error) {
	redisCfg := cfg.Redis()
	if !redisCfg.Enabled() {
		logger.Info("redis not configured, using in-memory idempotency store")
		return pkgkafka.NewMemoryIdempotencyStore(cfg.IdempotencyTTL), nil, nil
	}

	client, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))
	return pkgkafka.NewRedisIdempotencyStore(client, idempotencyKeyPrefix, cfg.IdempotencyTTL), client, nil
}

// kafkaPinger is satisfied by *pkgkafka.Producer.
type kafkaPinger interface {
	Ping(ctx context.Context) error
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s/4s with ±25% jitter).
func pingKafkaWithRetry(ctx context.Context, producer kafkaPinger, logger *slog.Logger) error {
	const attempts = 3

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = producer.Ping(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		base := time.Duration(1<<uint(attempt)) * retryUnit
		jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
		wait := base + jitter
		logger.Warn("kafka producer ping failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", attempts),
			slog.Duration("backoff", wait),
			slog.String("error", lastErr.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("kafka producer ping failed after %d attempts: %w", attempts, lastErr)
}

// retryUnit is the first backoff step of pingKafkaWithRetry.
var retryUnit = time.Second

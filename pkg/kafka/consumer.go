package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	MinBytes int
	MaxBytes int

	// MaxRetries is how often the handler runs before a message is treated
	// as poison. Defaults to 3.
	MaxRetries int
	// RetryBackoff is multiplied by the attempt number between retries.
	// Defaults to 100ms.
	RetryBackoff time.Duration
}

func (c ConsumerConfig) withDefaults() ConsumerConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	return c
}

// ConsumerOption customises a Consumer.
type ConsumerOption func(*Consumer)

// WithDeadLetter forwards poison and undecodable messages to pub before they
// are committed.
func WithDeadLetter(pub DeadLetterPublisher) ConsumerOption {
	return func(c *Consumer) { c.dlq = pub }
}

// Consumer reads events for a consumer group, retries failing handlers with
// linear backoff and commits every message it is done with, successful or not.
type Consumer struct {
	reader    MessageReader
	cfg       ConsumerConfig
	handler   Handler
	dlq       DeadLetterPublisher
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewConsumer creates a consumer subscribed to cfg.Topics.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
	})
	return NewConsumerWithReader(r, cfg, handler, logger, opts...)
}

// NewConsumerWithReader creates a consumer on top of an existing reader.
func NewConsumerWithReader(r MessageReader, cfg ConsumerConfig, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		reader:  r,
		cfg:     cfg.withDefaults(),
		handler: handler,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start consumes until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started",
		slog.Any("topics", c.cfg.Topics),
		slog.String("group", c.cfg.GroupID),
	)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("group", c.cfg.GroupID))
				return c.Close()
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	group := c.cfg.GroupID
	ConsumerMessagesReceived.WithLabelValues(msg.Topic, group).Inc()

	ctx = ExtractTraceContext(ctx, msg)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "kafka.consume "+msg.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.String("messaging.consumer.group.name", group),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to unmarshal event",
			slog.String("topic", msg.Topic),
			slog.String("error", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "undecodable message")
		c.giveUp(ctx, msg, err)
		return
	}

	start := time.Now()
	lastErr := c.handleWithRetry(ctx, msg, event)
	ConsumerProcessingDuration.WithLabelValues(msg.Topic, group).Observe(time.Since(start).Seconds())

	if ctx.Err() != nil {
		// Left uncommitted so the group redelivers it after a restart.
		return
	}

	if lastErr != nil {
		c.logger.ErrorContext(ctx, "handler failed after all retries, skipping poison message",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Int("retries", c.cfg.MaxRetries),
			slog.String("error", lastErr.Error()),
		)
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, "handler failed")
		c.giveUp(ctx, msg, lastErr)
		return
	}

	ConsumerMessagesProcessed.WithLabelValues(msg.Topic, group).Inc()
	c.commit(ctx, msg)
}

func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message, event *Event) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			return nil
		}
		c.logger.WarnContext(ctx, "handler failed, will retry",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("topic", msg.Topic),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", c.cfg.MaxRetries),
			slog.String("error", lastErr.Error()),
		)
		if attempt == c.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.cfg.RetryBackoff):
		}
	}
	return lastErr
}

func (c *Consumer) giveUp(ctx context.Context, msg kafka.Message, cause error) {
	ConsumerMessagesFailed.WithLabelValues(msg.Topic, c.cfg.GroupID).Inc()
	if c.dlq != nil {
		if err := c.dlq.Publish(ctx, msg, cause, c.cfg.GroupID); err == nil {
			ConsumerDLQPublished.WithLabelValues(msg.Topic, c.cfg.GroupID).Inc()
		}
	}
	c.commit(ctx, msg)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.ErrorContext(ctx, "failed to commit message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
	}
}

// Close closes the reader. It is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

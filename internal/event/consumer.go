package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/trickreich/SuluSyliusProducerPlugin/pkg/errors"
	pkgkafka "github.com/trickreich/SuluSyliusProducerPlugin/pkg/kafka"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/logger"
)

// Catalogue change events the consumer reacts to.
const (
	TopicProductCreated = "ecommerce.product.created"
	TopicProductUpdated = "ecommerce.product.updated"
	TopicProductDeleted = "ecommerce.product.deleted"
)

// ConsumerGroup is the Kafka consumer group of the producer.
const ConsumerGroup = "sylius-producer"

// ConsumedTopics lists the topics the consumer subscribes to.
var ConsumedTopics = []string{TopicProductCreated, TopicProductUpdated, TopicProductDeleted}

// ProductChangedData is the payload of every catalogue change event.
type ProductChangedData struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// Synchronizer is the part of the sync service driven by change events.
type Synchronizer interface {
	SynchronizeProduct(ctx context.Context, code string) error
	SynchronizeProductByID(ctx context.Context, id int64) error
	RemoveProduct(ctx context.Context, code string) error
}

// Consumer turns catalogue change events into synchronize and remove
// messages.
type Consumer struct {
	sync   Synchronizer
	logger *slog.Logger
}

// NewConsumer creates a Consumer.
func NewConsumer(sync Synchronizer, logger *slog.Logger) *Consumer {
	return &Consumer{
		sync:   sync,
		logger: logger,
	}
}

// Handler wraps Handle so that redelivered events already recorded in store
// are skipped.
func (c *Consumer) Handler(store pkgkafka.IdempotencyStore) pkgkafka.Handler {
	return pkgkafka.IdempotentHandler(store, c.Handle, c.logger)
}

// Handle processes one change event. Unknown event types are ignored, and so
// are products that vanished before they could be synchronized.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	if event.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, event.CorrelationID)
	}

	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return c.handleChanged(ctx, event)
	case TopicProductDeleted:
		return c.handleDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleChanged(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductChangedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	var err error
	switch {
	case data.Code != "":
		ctx = logger.WithProductCode(ctx, data.Code)
		err = c.sync.SynchronizeProduct(ctx, data.Code)
	case data.ID > 0:
		err = c.sync.SynchronizeProductByID(ctx, data.ID)
	default:
		return fmt.Errorf("%w: %s carries neither code nor id", pkgkafka.ErrInvalidEvent, event.EventType)
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		c.logger.WarnContext(ctx, "changed product no longer exists, skipping",
			slog.String("event_id", event.EventID),
			slog.String("product_code", data.Code),
			slog.Int64("product_id", data.ID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("synchronize product from %s: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "synchronized product from change event",
		slog.String("event_type", event.EventType),
		slog.String("product_code", data.Code),
		slog.Int64("product_id", data.ID),
	)
	return nil
}

func (c *Consumer) handleDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductChangedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}
	if data.Code == "" {
		return fmt.Errorf("%w: %s carries no code", pkgkafka.ErrInvalidEvent, event.EventType)
	}

	ctx = logger.WithProductCode(ctx, data.Code)
	if err := c.sync.RemoveProduct(ctx, data.Code); err != nil {
		return fmt.Errorf("remove product from %s: %w", event.EventType, err)
	}

	c.logger.InfoContext(ctx, "removed product from delete event",
		slog.String("product_code", data.Code),
	)
	return nil
}

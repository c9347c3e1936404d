package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/serializer"
	pkgkafka "github.com/trickreich/SuluSyliusProducerPlugin/pkg/kafka"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/logger"
)

// Topics the producer publishes on. The event type equals the topic.
const (
	TopicProductSynchronize = "sulu.sylius.product.synchronize"
	TopicProductRemove      = "sulu.sylius.product.remove"
)

// AggregateTypeProduct is the aggregate type of every published event.
const AggregateTypeProduct = "product"

// SourceProducer identifies events originating from this service.
const SourceProducer = "sylius-producer"

// SynchronizeData is the payload of a synchronize message.
type SynchronizeData struct {
	Code    string                     `json:"code"`
	Payload *serializer.ProductPayload `json:"payload"`
}

// RemoveData is the payload of a remove message.
type RemoveData struct {
	Code string `json:"code"`
}

// Publisher is the part of pkg/kafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes product messages for the content-management side.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a Producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// Synchronize publishes the mapped record of a product.
func (p *Producer) Synchronize(ctx context.Context, payload *serializer.ProductPayload) error {
	if payload == nil {
		return fmt.Errorf("synchronize: nil payload")
	}
	data := SynchronizeData{Code: payload.Code, Payload: payload}
	return p.publish(ctx, TopicProductSynchronize, payload.Code, data)
}

// Remove publishes the removal of the product with the given code.
func (p *Producer) Remove(ctx context.Context, code string) error {
	return p.publish(ctx, TopicProductRemove, code, RemoveData{Code: code})
}

func (p *Producer) publish(ctx context.Context, topic, code string, data any) error {
	event, err := pkgkafka.NewEvent(topic, code, AggregateTypeProduct, SourceProducer, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published product event",
		slog.String("event_type", topic),
		slog.String("event_id", event.EventID),
		slog.String("product_code", code),
	)
	return nil
}

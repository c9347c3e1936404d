package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const testTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestKafkaHeaderCarrier_GetSet(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("v1")}}
	carrier := NewKafkaHeaderCarrier(&headers)

	assert.Equal(t, "v1", carrier.Get("existing"))
	assert.Empty(t, carrier.Get("missing"))

	carrier.Set("new-key", "new-value")
	carrier.Set("existing", "updated")

	assert.Equal(t, "new-value", carrier.Get("new-key"))
	assert.Equal(t, "updated", carrier.Get("existing"))
	assert.Len(t, headers, 2, "Set replaces instead of duplicating")
}

func TestKafkaHeaderCarrier_Keys(t *testing.T) {
	headers := []kafka.Header{{Key: "a"}, {Key: "b"}, {Key: "c"}}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, NewKafkaHeaderCarrier(&headers).Keys())

	var empty []kafka.Header
	assert.Empty(t, NewKafkaHeaderCarrier(&empty).Keys())
}

func TestTraceContext_RoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	in := &KafkaHeaderCarrier{headers: &[]kafka.Header{}}
	in.Set("traceparent", testTraceparent)
	remote := otel.GetTextMapPropagator().Extract(context.Background(), in)
	require.True(t, trace.SpanContextFromContext(remote).IsValid())

	var msg kafka.Message
	InjectTraceContext(remote, &msg)
	assert.Equal(t, testTraceparent, NewKafkaHeaderCarrier(&msg.Headers).Get("traceparent"))

	extracted := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), msg))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", extracted.TraceID().String())
	assert.True(t, extracted.IsRemote())
}

func TestExtractTraceContext_DoesNotMutateMessage(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	msg := kafka.Message{Headers: []kafka.Header{{Key: "event_type", Value: []byte("t")}}}
	_ = ExtractTraceContext(context.Background(), msg)
	assert.Len(t, msg.Headers, 1)
}

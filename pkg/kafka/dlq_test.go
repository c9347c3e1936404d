package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDLQTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"ecommerce.product.updated", "sylius.dlq.ecommerce.product.updated"},
		{"ecommerce.product.deleted", "sylius.dlq.ecommerce.product.deleted"},
		{"orders", "sylius.dlq.orders"},
		{"", "sylius.dlq."},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, DLQTopic(tt.topic))
		})
	}
}

func TestDLQProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	d := NewDLQProducerWithWriter(w, discardLogger())

	original := kafka.Message{
		Topic:     "ecommerce.product.updated",
		Partition: 2,
		Offset:    1337,
		Key:       []byte("MUG-01"),
		Value:     []byte(`{"event_type":"product.updated"}`),
		Headers:   []kafka.Header{{Key: "correlation_id", Value: []byte("corr-9")}},
	}

	require.NoError(t, d.Publish(context.Background(), original, errors.New("repository timeout"), "sylius-producer"))

	msgs := w.written()
	require.Len(t, msgs, 1)
	got := msgs[0]
	assert.Equal(t, "sylius.dlq.ecommerce.product.updated", got.Topic)
	assert.Equal(t, original.Key, got.Key)
	assert.Equal(t, original.Value, got.Value)
	assert.Equal(t, "corr-9", headerValue(got.Headers, "correlation_id"))
	assert.Equal(t, "ecommerce.product.updated", headerValue(got.Headers, HeaderDLQOriginalTopic))
	assert.Equal(t, "2", headerValue(got.Headers, HeaderDLQOriginalPartition))
	assert.Equal(t, "1337", headerValue(got.Headers, HeaderDLQOriginalOffset))
	assert.Equal(t, "sylius-producer", headerValue(got.Headers, HeaderDLQConsumerGroup))
	assert.Equal(t, "repository timeout", headerValue(got.Headers, HeaderDLQError))
}

func TestDLQProducer_Publish_NilCause(t *testing.T) {
	w := &fakeWriter{}
	d := NewDLQProducerWithWriter(w, discardLogger())

	require.NoError(t, d.Publish(context.Background(), kafka.Message{Topic: "t"}, nil, "g"))

	msgs := w.written()
	require.Len(t, msgs, 1)
	assert.Empty(t, headerValue(msgs[0].Headers, HeaderDLQError))
}

func TestDLQProducer_Publish_WriteError(t *testing.T) {
	boom := errors.New("no leader")
	d := NewDLQProducerWithWriter(&fakeWriter{err: boom}, discardLogger())

	err := d.Publish(context.Background(), kafka.Message{Topic: "t"}, nil, "g")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sylius.dlq.t")
}

func TestDLQProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewDLQProducerWithWriter(w, discardLogger()).Close())
	assert.True(t, w.closed)
}

package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestTraceQuery_Span(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "GetProductByCode", "SELECT id FROM sylius_product WHERE code = $1")
	end(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.GetProductByCode", spans[0].Name)

	attrs := make(map[string]string)
	for _, a := range spans[0].Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	assert.Equal(t, "postgresql", attrs["db.system"])
	assert.Equal(t, "GetProductByCode", attrs["db.operation"])
	assert.Equal(t, "SELECT id FROM sylius_product WHERE code = $1", attrs["db.statement"])
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestTraceQuery_ErrorMarksSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "ListProductCodes", "SELECT code FROM sylius_product")
	end(errors.New("relation does not exist"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "relation does not exist", spans[0].Status.Description)
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestTraceQuery_ObservesDuration(t *testing.T) {
	before := testutil.CollectAndCount(QueryDuration)

	_, end := TraceQuery(context.Background(), "ObserveDurationOp", "SELECT 1")
	end(nil)
	_, end = TraceQuery(context.Background(), "ObserveDurationOp", "SELECT 1")
	end(errors.New("boom"))

	assert.Equal(t, before+2, testutil.CollectAndCount(QueryDuration))
}

func TestTraceQuery_SlowQueryLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	SetSlowQueryLogging(time.Nanosecond, logger)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "SlowOp", "SELECT pg_sleep(1)")
	time.Sleep(time.Millisecond)
	end(errors.New("canceled"))

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, `"operation":"SlowOp"`)
	assert.Contains(t, out, `"error":"canceled"`)
}

func TestTraceQuery_SlowQueryLoggingDisabled(t *testing.T) {
	var buf bytes.Buffer
	SetSlowQueryLogging(0, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "FastOp", "SELECT 1")
	end(nil)

	assert.Empty(t, buf.String())
}

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	UseTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() {
		_, _ = Init(context.Background(), Config{})
	})
	return rec
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "centromed", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.False(t, IsEnabled())

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))
}

func TestShardSpansNestUnderFanOut(t *testing.T) {
	rec := recordSpans(t)

	ctx, parent := StartFanOut(context.Background(), "pacientes", 3)
	_, child := StartShardQuery(ctx, "guayaquil")
	child.End()
	parent.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "shard.query", spans[0].Name())
	assert.Equal(t, "fanout.pacientes", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Contains(t, spans[0].Attributes(), attribute.String(AttrShard, "guayaquil"))
	assert.Contains(t, spans[1].Attributes(), attribute.Int(AttrShardCount, 3))
}

func TestRecordError(t *testing.T) {
	rec := recordSpans(t)

	ctx, span := StartMutation(context.Background(), "consultas", "update", "cuenca")
	RecordError(ctx, nil)
	RecordError(ctx, errors.New("connection reset"))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "connection reset", spans[0].Status().Description)
}

func TestTraceIDsWhenRecording(t *testing.T) {
	recordSpans(t)

	ctx, span := StartSpan(context.Background(), "x")
	defer span.End()
	assert.Len(t, TraceID(ctx), 32)
	assert.Len(t, SpanID(ctx), 16)
	assert.True(t, IsEnabled())
}

func TestParseProfileType(t *testing.T) {
	_, err := parseProfileType("cpu")
	assert.NoError(t, err)
	_, err = parseProfileType("heap")
	assert.Error(t, err)
	assert.True(t, ValidProfileType("goroutines"))
}

func TestInitProfilingDisabled(t *testing.T) {
	stop, err := InitProfiling(ProfilingConfig{})
	require.NoError(t, err)
	assert.NoError(t, stop())
}

package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"wiki-quiz/internal/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.OtelConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), "quiz.fetch")
	EndSpan(span, errors.New("boom"))

	_, ok := StartSpan(context.Background(), "quiz.generate")
	EndSpan(ok, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "quiz.fetch", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1)
	assert.Empty(t, spans[1].Events())
}

func TestObserveStage(t *testing.T) {
	before := testutil.CollectAndCount(StageDuration)
	ObserveStage("test_stage_unique", time.Now(), nil)
	ObserveStage("test_stage_unique", time.Now(), errors.New("x"))
	assert.Equal(t, before+2, testutil.CollectAndCount(StageDuration))
}

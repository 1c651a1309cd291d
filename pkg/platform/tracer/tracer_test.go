package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOTelTracerRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := NewOTel(WithOTelTracer(provider.Tracer("test")))

	_, span := tr.Start(context.Background(), "registration.submit", String("tier", "sampad"), Int("fields", 4))
	span.SetAttributes(Bool("duplicate", false))
	span.End(errors.New("boom"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "registration.submit", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Attributes(), 3)
}

func TestNoopTracerKeepsContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), struct{}{}, "v")
	got, span := NewNoop().Start(ctx, "noop")
	span.End(nil)
	assert.Equal(t, ctx, got)
}

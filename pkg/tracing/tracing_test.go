package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracerWithoutEndpoint(t *testing.T) {
	ctx := context.Background()
	tp, tracer, err := InitTracer(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, tracer)
	defer func() { _ = tp.Shutdown(ctx) }()

	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := tracer.Start(ctx, "startup-check")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitTracerWithEndpoint(t *testing.T) {
	ctx := context.Background()
	tp, tracer, err := InitTracer(ctx, "localhost:4317")
	require.NoError(t, err)
	require.NotNil(t, tracer)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

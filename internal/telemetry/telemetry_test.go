package telemetry

import (
	"context"
	"ctchen222/tictactoe-solo/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitOtel_WithoutCollector(t *testing.T) {
	ctx := context.Background()
	shutdown, err := InitOtel(ctx, config.Telemetry{ServiceName: "tic-tac-toe-test"})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "span")
	assert.True(t, span.SpanContext().IsValid(), "SDK tracer provider is installed")
	span.End()

	counter, err := otel.Meter("test").Int64Counter("test.counter")
	require.NoError(t, err)
	counter.Add(ctx, 1)

	assert.NoError(t, shutdown(ctx))
}

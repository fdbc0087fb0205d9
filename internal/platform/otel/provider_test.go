package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soapcore/internal/config"
)

func TestSetupNoopWhenDisabled(t *testing.T) {
	for name, cfg := range map[string]config.TelemetryConfig{
		"disabled":    {Enabled: false, Endpoint: "http://localhost:4318"},
		"no endpoint": {Enabled: true},
	} {
		t.Run(name, func(t *testing.T) {
			tracer, shutdown, err := Setup(context.Background(), cfg)
			require.NoError(t, err)
			require.NotNil(t, tracer)
			_, span := tracer.Start(context.Background(), "probe")
			assert.False(t, span.SpanContext().IsValid())
			span.End()
			assert.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestSetupCreatesProvider(t *testing.T) {
	// Non-routable address: nothing is exported, shutdown still returns.
	tracer, shutdown, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled:     true,
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "soapcore-test",
	})
	require.NoError(t, err)
	_, span := tracer.Start(context.Background(), "probe")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

package resourcepool

import (
	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cohmetrix/resource-pool/types"
)

// Option configures a Pool during creation.
type Option func(*config)

// config holds internal configuration for pool creation.
type config struct {
	logger  *zap.Logger
	metrics types.Metrics
	tracer  trace.Tracer
	clock   clockz.Clock
}

// WithLogger sets the logger. Default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetrics sets the metrics sink. Default is types.NoopMetrics.
func WithMetrics(m types.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for hook spans.
// Default is the global OpenTelemetry tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		c.tracer = t
	}
}

// WithClock sets the clock used to time hooks.
// Default is clockz.RealClock; use clockz.NewFakeClock() in tests.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

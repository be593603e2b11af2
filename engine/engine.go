package engine

import (
	"context"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cohmetrix/resource-pool/logger"
	"github.com/cohmetrix/resource-pool/types"
)

// TracerName is the instrumentation scope used when no tracer is injected.
const TracerName = "github.com/cohmetrix/resource-pool"

/*
Engine is the "brain" behind a cache miss.
It is responsible for HOW a hook runs, NOT where the result is stored.

It decides:
- How a hook invocation is traced
- How long it took (measured on an injectable clock)
- What gets logged
- Which metrics are recorded

It does NOT:
- Store data
- Handle locking
- Decide eviction order
*/
type Engine struct {

	// Metrics receives hit/miss/eviction/duration events. Never nil.
	Metrics types.Metrics

	// Logger is never nil; a no-op logger is used when none is configured.
	Logger *zap.Logger

	// Tracer opens one span per hook invocation.
	Tracer trace.Tracer

	// Clock measures hook wall time. Tests inject a fake clock.
	Clock clockz.Clock
}

/*
New creates an Engine. Every nil argument is replaced by a do-nothing default,
so the rest of the code never checks for nil.
*/
func New(metrics types.Metrics, logger *zap.Logger, tracer trace.Tracer, clock clockz.Clock) *Engine {
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	if clock == nil {
		clock = clockz.RealClock
	}

	return &Engine{
		Metrics: metrics,
		Logger:  logger,
		Tracer:  tracer,
		Clock:   clock,
	}
}

// OnHit is called every time a get is answered from a tier.
func (e *Engine) OnHit(k types.Key) {
	e.Metrics.Hit(k.Name)
}

// OnEvict is called for every entry the bounded tier drops.
func (e *Engine) OnEvict(k types.Key) {
	e.Metrics.Eviction(k.Name)
	logger.ForResource(e.Logger, k.Name).Debug("evicted resource", zap.Int("args", k.Arity()))
}

/*
Invoke runs a hook for a missed key.

The hook's error is returned exactly as the hook produced it: callers
compare it with errors.Is against their own sentinels.
*/
func (e *Engine) Invoke(ctx context.Context, k types.Key, hook types.Hook) (any, error) {
	e.Metrics.Miss(k.Name)

	ctx, span := e.Tracer.Start(ctx, "resourcepool.compute",
		trace.WithAttributes(
			attribute.String("resource.name", k.Name),
			attribute.Int("resource.args", k.Arity()),
		),
	)
	defer span.End()

	start := e.Clock.Now()
	value, err := hook(ctx, k.Args()...)
	elapsed := e.Clock.Now().Sub(start)

	e.Metrics.HookDone(k.Name, elapsed, err)
	log := logger.ForResource(e.Logger, k.Name)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("resource hook failed",
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("calculated resource",
		zap.Int("args", k.Arity()),
		zap.Duration("elapsed", elapsed),
	)
	return value, nil
}

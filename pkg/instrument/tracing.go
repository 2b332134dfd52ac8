package instrument

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "uielement"

// TracingConfig configures the OpenTelemetry reporter.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "uielement").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// MinDuration drops computed and effect spans shorter than this.
	// Flush spans are always recorded.
	MinDuration time.Duration

	// Context is the parent of every span (default: context.Background()).
	Context context.Context
}

// TracingOption configures the OpenTelemetry reporter.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(tracer trace.Tracer) TracingOption {
	return func(c *TracingConfig) {
		c.Tracer = tracer
	}
}

// WithMinDuration drops spans for evaluations faster than d.
func WithMinDuration(d time.Duration) TracingOption {
	return func(c *TracingConfig) {
		c.MinDuration = d
	}
}

// WithParentContext sets the context spans are started from.
func WithParentContext(ctx context.Context) TracingOption {
	return func(c *TracingConfig) {
		c.Context = ctx
	}
}

// Tracing records graph activity as spans. Spans are created after the fact
// with the observed start and end timestamps.
//
// The tracer uses the global OpenTelemetry tracer provider unless WithTracer
// is given. Configure it in main() before installing the reporter:
//
//	otel.SetTracerProvider(tp)
//	reactive.SetObserver(instrument.NewTracing())
type Tracing struct {
	tracer trace.Tracer
	min    time.Duration
	ctx    context.Context
}

// NewTracing creates a tracing reporter.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{tracer: config.Tracer, min: config.MinDuration, ctx: config.Context}
}

func (t *Tracing) record(name string, start time.Time, d time.Duration, err error, attrs ...attribute.KeyValue) {
	_, span := t.tracer.Start(t.ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(start),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(start.Add(d)))
}

// ComputedEvaluated implements reactive.Observer.
func (t *Tracing) ComputedEvaluated(id uint64, start time.Time, d time.Duration, err error) {
	if d < t.min {
		return
	}
	t.record("uielement.computed", start, d, err, attribute.Int64("uielement.node_id", int64(id)))
}

// EffectRan implements reactive.Observer.
func (t *Tracing) EffectRan(id uint64, start time.Time, d time.Duration, err error) {
	if d < t.min {
		return
	}
	t.record("uielement.effect", start, d, err, attribute.Int64("uielement.node_id", int64(id)))
}

// FlushCompleted implements reactive.Observer.
func (t *Tracing) FlushCompleted(runs int, start time.Time, d time.Duration) {
	t.record("uielement.flush", start, d, nil, attribute.Int("uielement.effect_runs", runs))
}

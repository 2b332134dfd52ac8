package instrument

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordedSpan struct {
	noop.Span

	name   string
	start  time.Time
	end    time.Time
	attrs  []attribute.KeyValue
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) End(opts ...trace.SpanEndOption) {
	s.ended = true
	cfg := trace.NewSpanEndConfig(opts...)
	s.end = cfg.Timestamp()
}

func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) {
	s.status = code
}

type stubTracer struct {
	noop.Tracer
	spans []*recordedSpan
}

func (t *stubTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, start: cfg.Timestamp(), attrs: cfg.Attributes()}
	t.spans = append(t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

func TestTracingRecordsSpans(t *testing.T) {
	tracer := &stubTracer{}
	tr := NewTracing(WithTracer(tracer))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.ComputedEvaluated(7, start, time.Millisecond, nil)
	tr.EffectRan(8, start, 2*time.Millisecond, errors.New("boom"))
	tr.FlushCompleted(3, start, 5*time.Millisecond)

	if len(tracer.spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(tracer.spans))
	}

	computed := tracer.spans[0]
	if computed.name != "uielement.computed" || !computed.ended {
		t.Errorf("unexpected computed span %q ended=%v", computed.name, computed.ended)
	}
	if !computed.start.Equal(start) || !computed.end.Equal(start.Add(time.Millisecond)) {
		t.Errorf("expected observed timestamps, got %v..%v", computed.start, computed.end)
	}
	if computed.status != codes.Ok {
		t.Errorf("expected Ok status, got %v", computed.status)
	}
	if len(computed.attrs) != 1 || computed.attrs[0].Value.AsInt64() != 7 {
		t.Errorf("expected node id attribute, got %v", computed.attrs)
	}

	effect := tracer.spans[1]
	if effect.status != codes.Error || len(effect.errs) != 1 {
		t.Errorf("expected error span, got status=%v errs=%v", effect.status, effect.errs)
	}

	flush := tracer.spans[2]
	if flush.name != "uielement.flush" || flush.attrs[0].Value.AsInt64() != 3 {
		t.Errorf("unexpected flush span %q %v", flush.name, flush.attrs)
	}
}

func TestTracingMinDuration(t *testing.T) {
	tracer := &stubTracer{}
	tr := NewTracing(WithTracer(tracer), WithMinDuration(time.Millisecond))

	now := time.Now()
	tr.ComputedEvaluated(1, now, time.Microsecond, nil)
	tr.EffectRan(2, now, time.Microsecond, nil)
	tr.FlushCompleted(1, now, time.Microsecond)

	if len(tracer.spans) != 1 || tracer.spans[0].name != "uielement.flush" {
		t.Errorf("expected only the flush span, got %d spans", len(tracer.spans))
	}
}

type countingObserver struct{ computed, effects, flushes int }

func (c *countingObserver) ComputedEvaluated(uint64, time.Time, time.Duration, error) { c.computed++ }
func (c *countingObserver) EffectRan(uint64, time.Time, time.Duration, error)         { c.effects++ }
func (c *countingObserver) FlushCompleted(int, time.Time, time.Duration)              { c.flushes++ }

func TestFanout(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	obs := Fanout(a, nil, b)

	now := time.Now()
	obs.ComputedEvaluated(1, now, 0, nil)
	obs.EffectRan(1, now, 0, nil)
	obs.FlushCompleted(1, now, 0)

	for _, c := range []*countingObserver{a, b} {
		if c.computed != 1 || c.effects != 1 || c.flushes != 1 {
			t.Errorf("expected one call of each, got %+v", *c)
		}
	}
}

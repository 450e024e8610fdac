package tracing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/impulse/pkg/impulse"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return sr, tp
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func quietRuntime(opts ...impulse.RuntimeOption) *impulse.Runtime {
	base := []impulse.RuntimeOption{impulse.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	return impulse.NewRuntime(append(base, opts...)...)
}

func TestBatchSpan(t *testing.T) {
	sr, tp := newRecorder()
	rt := quietRuntime()
	tr := New(rt, WithTracerProvider(tp), WithTracerName("test"))

	x := impulse.Of(0, impulse.InRuntime(rt))
	y := impulse.Of(0, impulse.InRuntime(rt))
	stop := impulse.Subscribe(func(s impulse.Scope) {
		_ = x.Get(s) + y.Get(s)
	}, impulse.InRuntime(rt))
	defer stop()

	var inner trace.SpanContext
	stats := tr.Batch(context.Background(), "pair", func(ctx context.Context) {
		inner = trace.SpanContextFromContext(ctx)
		x.Set(1)
		y.Set(2)
	})

	if stats.Writes != 2 || stats.Emitters != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "impulse.batch pair" {
		t.Errorf("span name = %q", span.Name())
	}
	if span.SpanContext().SpanID() != inner.SpanID() {
		t.Error("fn should receive the span context")
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", span.Status().Code)
	}
	if span.InstrumentationScope().Name != "test" {
		t.Errorf("tracer name = %q", span.InstrumentationScope().Name)
	}

	a := attrs(span)
	if a["impulse.batch.name"].AsString() != "pair" {
		t.Errorf("batch name attribute = %v", a["impulse.batch.name"])
	}
	if a["impulse.writes"].AsInt64() != 2 || a["impulse.emitters"].AsInt64() != 1 || a["impulse.listeners"].AsInt64() != 1 {
		t.Errorf("unexpected stats attributes: %v", span.Attributes())
	}
	if a["impulse.nested"].AsBool() {
		t.Error("outermost batch marked nested")
	}
}

func TestNestedBatchSpans(t *testing.T) {
	sr, tp := newRecorder()
	rt := quietRuntime()
	tr := New(rt, WithTracerProvider(tp))
	x := impulse.Of(0, impulse.InRuntime(rt))

	tr.Batch(context.Background(), "outer", func(ctx context.Context) {
		tr.Batch(ctx, "inner", func(context.Context) {
			x.Set(1)
		})
	})

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	inner, outer := spans[0], spans[1]
	if inner.Parent().SpanID() != outer.SpanContext().SpanID() {
		t.Error("inner span should be a child of the outer span")
	}
	if !attrs(inner)["impulse.nested"].AsBool() {
		t.Error("inner batch should be marked nested")
	}
	if attrs(outer)["impulse.writes"].AsInt64() != 1 {
		t.Errorf("outer span should carry the flush stats, got %v", outer.Attributes())
	}
}

func TestBatchSpanRecordsViolationPanic(t *testing.T) {
	if !impulse.GuardsEnabled {
		t.Skip("guards compiled out")
	}
	sr, tp := newRecorder()
	rt := quietRuntime(impulse.WithGuardMode(impulse.GuardPanic))
	tr := New(rt, WithTracerProvider(tp))
	x := impulse.Of(0, impulse.InRuntime(rt))

	func() {
		defer func() {
			if _, ok := recover().(*impulse.Violation); !ok {
				t.Error("expected the violation to propagate")
			}
		}()
		tr.Batch(context.Background(), "bad", func(context.Context) {
			impulse.Watch(func(s impulse.Scope) int {
				x.Set(1)
				return x.Get(s)
			}, nil, impulse.InRuntime(rt))
		})
	}()

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", span.Status().Code)
	}
	if attrs(span)["impulse.violation.code"].AsString() != "E103" {
		t.Errorf("missing violation code: %v", span.Attributes())
	}
	if len(span.Events()) == 0 || span.Events()[0].Name != "exception" {
		t.Error("expected the error to be recorded as an exception event")
	}
	if rt.InTransaction() {
		t.Error("transaction left open")
	}
}

func TestBatchSpanWrapsPlainPanic(t *testing.T) {
	sr, tp := newRecorder()
	tr := New(quietRuntime(), WithTracerProvider(tp))

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("expected original panic value, got %v", r)
			}
		}()
		tr.Batch(context.Background(), "boom", func(context.Context) {
			panic("boom")
		})
	}()

	span := sr.Ended()[0]
	if span.Status().Description != "panic: boom" {
		t.Errorf("status description = %q", span.Status().Description)
	}
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "impulse-test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown returned %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	tr := New(nil)
	if tr.rt != impulse.Default() {
		t.Error("nil runtime should select the default runtime")
	}
}

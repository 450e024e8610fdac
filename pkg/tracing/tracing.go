// Package tracing wraps impulse batches in OpenTelemetry spans.
//
// Example:
//
//	tr := tracing.New(rt, tracing.WithTracerName("checkout"))
//	stats := tr.Batch(ctx, "apply-discount", func(ctx context.Context) {
//	    price.Set(90)
//	    discount.Set(10)
//	})
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/impulse/pkg/impulse"
)

// Default tracer name for impulse batches.
const defaultTracerName = "github.com/vango-dev/impulse"

// Config configures the batch tracer.
type Config struct {
	// TracerName is the name of the tracer.
	TracerName string

	// Provider is the tracer provider. Default: the global provider.
	Provider trace.TracerProvider
}

// Option configures the batch tracer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = tp
	}
}

// Tracer runs named batches of one runtime inside spans.
type Tracer struct {
	rt     *impulse.Runtime
	tracer trace.Tracer
}

// New creates a Tracer for rt. A nil rt selects impulse.Default().
func New(rt *impulse.Runtime, opts ...Option) *Tracer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	if rt == nil {
		rt = impulse.Default()
	}
	return &Tracer{
		rt:     rt,
		tracer: config.Provider.Tracer(config.TracerName),
	}
}

// Batch runs fn as a named batch inside a span and returns the flush stats.
// The span carries the stats as attributes. A batch nested in an open
// transaction gets a span too, marked impulse.nested.
//
// When fn panics the span records the panic, is marked as failed and the
// panic is re-raised.
func (t *Tracer) Batch(ctx context.Context, name string, fn func(ctx context.Context)) (stats impulse.FlushStats) {
	ctx, span := t.tracer.Start(ctx, "impulse.batch "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("impulse.batch.name", name)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}
			if v, ok := r.(*impulse.Violation); ok {
				span.SetAttributes(attribute.String("impulse.violation.code", v.Code()))
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			panic(r)
		}
	}()

	stats = t.rt.BatchReport(name, func() {
		fn(ctx)
	})

	span.SetAttributes(
		attribute.Int("impulse.writes", stats.Writes),
		attribute.Int("impulse.emitters", stats.Emitters),
		attribute.Int("impulse.listeners", stats.Listeners),
		attribute.Bool("impulse.nested", stats.Nested),
		attribute.Int64("impulse.duration_us", stats.Duration.Microseconds()),
	)
	span.SetStatus(codes.Ok, "")
	return stats
}

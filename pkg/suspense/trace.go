package suspense

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for renders.
const defaultTracerName = "github.com/vango-dev/suspense"

func (r *Renderer) tracer() trace.Tracer {
	if r.cfg.Tracer != nil {
		return r.cfg.Tracer
	}
	return otel.Tracer(defaultTracerName)
}

// startSpan opens the span covering one render call.
func (r *Renderer) startSpan(ctx context.Context, id, mode string) (context.Context, trace.Span) {
	return r.tracer().Start(ctx, "suspense.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("suspense.mode", mode),
			attribute.Bool("suspense.fallback_fast", r.cfg.FallbackFast),
			attribute.String("render.id", id),
		),
	)
}

// endSpan records the outcome of a render on span and ends it.
func endSpan(span trace.Span, s renderStats, err error) {
	span.SetAttributes(
		attribute.Int("suspense.cycles", s.cycles),
		attribute.Int("suspense.deferred", s.deferred),
		attribute.Int("suspense.aborted", s.aborted),
		attribute.Int("suspense.fallbacks", s.fallbacks),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

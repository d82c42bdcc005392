package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/spool/job"
)

// tracerName is the instrumentation scope name for spool tracing.
const tracerName = "github.com/xraph/spool"

// Tracing returns middleware that wraps job execution in an OpenTelemetry span.
// If no TracerProvider is configured globally, the default noop tracer is used
// and this middleware becomes a pass-through with zero overhead.
//
// Span attributes include: spool.job.id and spool.job.name.
// On error, the span status is set to codes.Error with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) (any, error) {
		ctx, span := tracer.Start(ctx, "spool.job.execute",
			trace.WithAttributes(
				attribute.String("spool.job.id", j.ID.String()),
				attribute.String("spool.job.name", j.Name),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		val, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return val, err
	}
}

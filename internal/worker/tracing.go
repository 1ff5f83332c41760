package worker

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/socialchef/yak/internal/telemetry"
)

// StartJob opens a span named "job:<type>" carrying the job id and extra attributes.
// The caller ends it with EndJob.
func StartJob(ctx context.Context, jobType, jobID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := telemetry.Tracer("worker")

	ctx, span := tracer.Start(ctx, "job:"+jobType, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String("job.id", jobID),
		attribute.String("job.type", jobType),
	)
	span.SetAttributes(attrs...)
	return ctx, span
}

// EndJob records the job status on span and ends it.
func EndJob(span trace.Span, status JobStatus, err error) {
	span.SetAttributes(attribute.String("job.status", string(status)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"retaileda/internal/infrastructure"
)

const (
	TracerName = "retaileda.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for analysis runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer from the run's telemetry. A nil
// telemetry yields a tracer that records nothing.
func NewOperationTracer(telemetry *infrastructure.Telemetry) *OperationTracer {
	if telemetry == nil || telemetry.Tracer == nil {
		return &OperationTracer{tracer: tracenoop.NewTracerProvider().Tracer(TracerName)}
	}
	return &OperationTracer{
		tracer:  telemetry.Tracer,
		metrics: telemetry.Metrics,
	}
}

// TraceOperationExecution creates a span for the entire run
func (ot *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, stepCount int) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.Int("operation.steps", stepCount),
		),
	)
}

// TraceStageExecution creates a span for one step
func (ot *OperationTracer) TraceStageExecution(ctx context.Context, operationID string, step Step) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordStageCompletion ends a step span and records its metrics
func (ot *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, operationID, stepID string, duration time.Duration, err error) {
	infrastructure.RecordStepMetrics(ctx, ot.metrics, operationID, stepID, duration, err)
	if err != nil {
		infrastructure.RecordError(ctx, err,
			trace.WithAttributes(attribute.String("error.type", string(GetErrorType(err)))))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	span.End()
}

// RecordOperationCompletion ends the run span
func (ot *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, status OperationStatusValue, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		if step := FailedStep(err); step != "" {
			span.SetAttributes(attribute.String("operation.failed_step", step))
		}
		infrastructure.RecordError(ctx, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

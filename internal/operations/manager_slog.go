package operations

import (
	"context"
	"log/slog"
	"time"

	"retaileda/internal/infrastructure"
)

// logOperationStart logs the start of a run
func (m *Manager) logOperationStart(ctx context.Context, operationID string, steps []Step) {
	ids := make([]string, len(steps))
	for i, step := range steps {
		ids[i] = step.ID()
	}
	logger := m.logger
	if spanTrace := infrastructure.TraceIDFromContext(ctx); spanTrace != "" {
		logger = logger.With(slog.String("otel_trace_id", spanTrace))
	}
	logger.InfoContext(ctx, "Operation started",
		slog.String("operation_id", operationID),
		slog.Any("steps", ids))
}

// logOperationComplete logs the end of a run
func (m *Manager) logOperationComplete(ctx context.Context, operationID string, duration time.Duration, status OperationStatusValue) {
	m.logger.InfoContext(ctx, "Operation finished",
		slog.String("operation_id", operationID),
		slog.String("status", string(status)),
		slog.Duration("duration", duration))
}

// logOperationError logs a failure that ends the run
func (m *Manager) logOperationError(ctx context.Context, operationID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	m.logger.ErrorContext(ctx, "Operation failed",
		slog.String("operation_id", operationID),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", errorMsg))
}

func (m *Manager) logStageStart(ctx context.Context, operationID string, step Step, index, total int) {
	m.logger.InfoContext(ctx, "Step started",
		slog.String("operation_id", operationID),
		slog.String("step", step.ID()),
		slog.String("name", step.Name()),
		slog.Int("step_number", index+1),
		slog.Int("total_steps", total))
}

func (m *Manager) logStageComplete(ctx context.Context, operationID, stepID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "Step completed",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.Duration("duration", duration))
}

func (m *Manager) logStageError(ctx context.Context, operationID, stepID string, err error) {
	infrastructure.WithError(m.logger, err).ErrorContext(ctx, "Step failed",
		slog.String("operation_id", operationID),
		slog.String("step", stepID))
}

func (m *Manager) logStageSkipped(ctx context.Context, operationID, stepID, reason string) {
	m.logger.WarnContext(ctx, "Step skipped",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("reason", reason))
}

package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"retaileda/internal/infrastructure"
)

// Manager runs the registered steps of an analysis in dependency order.
// Steps run one at a time and the first failure ends the run; the
// remaining steps are marked skipped.
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager with dependency injection
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(logger, "operations"),
	}
}

// Execute runs every registered step. An empty id is replaced by the trace
// id already on ctx, or by a random one. The returned state is never nil, and on failure it records which
// step failed.
func (m *Manager) Execute(ctx context.Context, id string) (*OperationState, error) {
	if id == "" {
		ctx = infrastructure.EnsureTraceID(ctx)
		id = infrastructure.GetTraceID(ctx)
	} else {
		ctx = infrastructure.WithTraceID(ctx, id)
	}
	state := NewOperationState(id)

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		m.logOperationError(ctx, id, err)
		state.Fail(err)
		return state, err
	}
	if len(steps) == 0 {
		err := NewFatalError("no steps registered", nil)
		state.Fail(err)
		return state, err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, id, len(steps))
	m.logOperationStart(ctx, id, steps)
	state.Start()

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	if err != nil {
		m.logOperationError(ctx, id, err)
	}
	m.logOperationComplete(ctx, id, state.Duration(), state.Response().Status)
	m.tracer.RecordOperationCompletion(ctx, span, state.Response().Status, state.Duration(), err)
	return state, err
}

// executeSequential runs steps in order and stops at the first failure
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			opErr := NewCancellationError(step.ID(), err)
			m.skipRemaining(ctx, state, steps[i:], "operation cancelled")
			return opErr
		}

		m.logStageStart(ctx, state.ID, step, i, len(steps))
		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(ctx, state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage validates and runs one step under its timeout
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	stepState.Start()

	stepCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step)

	fail := func(err error) error {
		stepState.Fail(err)
		m.logStageError(stepCtx, state.ID, step.ID(), err)
		m.tracer.RecordStageCompletion(stepCtx, span, state.ID, step.ID(), stepState.Duration(), err)
		return err
	}

	if err := step.Validate(state); err != nil {
		return fail(NewValidationError(step.ID(), err))
	}

	timeout := m.config.GetStageTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(stepCtx, timeout)
	defer cancel()

	if err := step.Execute(stepCtx, state); err != nil {
		var opErr *OperationError
		switch {
		case errors.As(err, &opErr):
			if opErr.Step == "" {
				opErr.Step = step.ID()
			}
		case ctx.Err() != nil:
			err = NewCancellationError(step.ID(), err)
		case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
			err = NewTimeoutError(step.ID(), timeout.String(), err)
		default:
			err = NewExecutionError(step.ID(), err)
		}
		return fail(err)
	}

	stepState.Complete()
	infrastructure.SetSpanAttributes(stepCtx, stepState.Metadata)
	m.logStageComplete(stepCtx, state.ID, step.ID(), stepState.Duration())
	m.tracer.RecordStageCompletion(stepCtx, span, state.ID, step.ID(), stepState.Duration(), nil)
	return nil
}

func (m *Manager) skipRemaining(ctx context.Context, state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if stepState := state.GetStage(step.ID()); stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(reason)
			m.logStageSkipped(ctx, state.ID, step.ID(), reason)
		}
	}
}

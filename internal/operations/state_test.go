package operations_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaileda/internal/operations"
)

func TestStepStateLifecycle(t *testing.T) {
	s := operations.NewStepState("load", operations.StepNameLoad)
	assert.Equal(t, operations.StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, operations.StepStatusActive, s.GetStatus())
	require.NotNil(t, s.StartTime)

	s.SetMetadata(operations.MetadataKeyRows, 42)
	s.Complete()
	assert.Equal(t, operations.StepStatusCompleted, s.GetStatus())
	assert.Equal(t, 42, s.Metadata[operations.MetadataKeyRows])
	assert.GreaterOrEqual(t, s.Duration(), time.Duration(0))

	failed := operations.NewStepState("report", operations.StepNameReport)
	failed.Start()
	failed.Fail(errors.New("boom"))
	assert.Equal(t, operations.StepStatusFailed, failed.GetStatus())
	assert.EqualError(t, failed.Error, "boom")

	skipped := operations.NewStepState("derive", operations.StepNameDerive)
	skipped.Skip("step clean failed")
	assert.Equal(t, operations.StepStatusSkipped, skipped.GetStatus())
	assert.Equal(t, "step clean failed", skipped.Message)
}

func TestOperationStateSteps(t *testing.T) {
	state := operations.NewOperationState("run-1")
	assert.Equal(t, operations.OperationStatusPending, state.Status)

	for _, id := range []string{"load", "clean", "derive"} {
		state.SetStage(id, operations.NewStepState(id, id))
	}
	state.SetStage("clean", operations.NewStepState("clean", "replaced"))

	ordered := state.OrderedSteps()
	require.Len(t, ordered, 3)
	assert.Equal(t, "load", ordered[0].ID)
	assert.Equal(t, "replaced", ordered[1].Name)
	assert.Nil(t, state.GetStage("report"))

	assert.False(t, state.IsComplete())
	for _, s := range ordered {
		s.Start()
		s.Complete()
	}
	assert.True(t, state.IsComplete())

	state.GetStage("derive").Fail(errors.New("boom"))
	assert.Equal(t, operations.StepStatusFailed, state.GetStage("derive").GetStatus())
	assert.True(t, state.IsComplete(), "failed steps are finished")
}

func TestOperationStateTransitions(t *testing.T) {
	tests := []struct {
		name   string
		finish func(*operations.OperationState)
		status operations.OperationStatusValue
		errMsg string
	}{
		{"complete", (*operations.OperationState).Complete, operations.OperationStatusCompleted, ""},
		{"fail", func(s *operations.OperationState) { s.Fail(errors.New("load failed")) }, operations.OperationStatusFailed, "load failed"},
		{"cancel", func(s *operations.OperationState) { s.Cancel(errors.New("interrupted")) }, operations.OperationStatusCancelled, "interrupted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := operations.NewOperationState("run")
			state.Start()
			assert.Equal(t, operations.OperationStatusRunning, state.Status)

			tt.finish(state)
			resp := state.Response()
			assert.Equal(t, "run", resp.ID)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.errMsg, resp.Error)
			require.NotNil(t, state.EndTime)
			assert.Equal(t, state.EndTime.Sub(state.StartTime), state.Duration())
		})
	}
}

func TestConfigStageTimeouts(t *testing.T) {
	cfg := operations.NewConfig()
	assert.Equal(t, operations.DefaultLoadTimeout, cfg.GetStageTimeout(operations.StepIDLoad))
	assert.Equal(t, operations.DefaultReportTimeout, cfg.GetStageTimeout(operations.StepIDReport))
	assert.Equal(t, operations.DefaultStageTimeout, cfg.GetStageTimeout(operations.StepIDClean))

	cfg.SetStageTimeout(operations.StepIDClean, time.Second)
	assert.Equal(t, time.Second, cfg.GetStageTimeout(operations.StepIDClean))

	cfg.SetStageTimeout(operations.StepIDClean, 0)
	assert.Equal(t, operations.DefaultStageTimeout, cfg.GetStageTimeout(operations.StepIDClean))

	var empty operations.Config
	empty.SetStageTimeout("x", time.Minute)
	assert.Equal(t, time.Minute, empty.GetStageTimeout("x"))
}

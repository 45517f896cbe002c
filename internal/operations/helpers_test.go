package operations_test

import (
	"context"
	"sync/atomic"

	"retaileda/internal/operations"
)

// fakeStep is a configurable Step for manager and registry tests
type fakeStep struct {
	operations.BaseStage
	execute  func(ctx context.Context, state *operations.OperationState) error
	validate func(state *operations.OperationState) error
	calls    atomic.Int32
}

func newFakeStep(id string, deps ...string) *fakeStep {
	return &fakeStep{BaseStage: operations.NewBaseStage(id, "Step "+id, deps)}
}

func (f *fakeStep) failing(err error) *fakeStep {
	f.execute = func(context.Context, *operations.OperationState) error { return err }
	return f
}

func (f *fakeStep) Validate(state *operations.OperationState) error {
	if f.validate != nil {
		return f.validate(state)
	}
	return nil
}

func (f *fakeStep) Execute(ctx context.Context, state *operations.OperationState) error {
	f.calls.Add(1)
	if f.execute != nil {
		return f.execute(ctx, state)
	}
	return nil
}

func stepIDs(steps []operations.Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	return ids
}

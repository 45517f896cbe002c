package operations_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "retaileda/internal/errors"
	"retaileda/internal/operations"
)

func TestOperationErrorMessage(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  *operations.OperationError
		want string
		typ  operations.ErrorType
	}{
		{"execution", operations.NewExecutionError("report", cause), "[execution] report: step execution failed: disk full", operations.ErrorTypeExecution},
		{"validation", operations.NewValidationError("clean", cause), "[validation] clean: step prerequisites not met: disk full", operations.ErrorTypeValidation},
		{"timeout", operations.NewTimeoutError("load", "15m0s", nil), "[timeout] load: step exceeded timeout of 15m0s", operations.ErrorTypeTimeout},
		{"fatal without step", operations.NewFatalError("no steps registered", nil), "[fatal] no steps registered", operations.ErrorTypeFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, tt.typ, operations.GetErrorType(tt.err))
		})
	}
}

func TestOperationErrorUnwrap(t *testing.T) {
	loadErr := apperrors.NewLoadError("cannot open input file", nil)
	err := fmt.Errorf("run: %w", operations.NewExecutionError("load", loadErr))

	assert.ErrorIs(t, err, apperrors.ErrLoad)
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))
	assert.Equal(t, "load", operations.FailedStep(err))
}

func TestGetErrorTypePlainErrors(t *testing.T) {
	assert.Equal(t, operations.ErrorType(""), operations.GetErrorType(nil))
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(errors.New("boom")))
	assert.Empty(t, operations.FailedStep(errors.New("boom")))

	var nilErr *operations.OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestDependencyErrorContext(t *testing.T) {
	err := operations.NewDependencyError("clean", "load", "depends on unregistered step load")
	assert.Equal(t, "load", err.Context["depends_on"])
}

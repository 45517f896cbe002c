package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaileda/internal/operations"
)

func TestRegistryRegister(t *testing.T) {
	registry := operations.NewRegistry()

	require.NoError(t, registry.Register(newFakeStep("a")))
	require.NoError(t, registry.Register(newFakeStep("b", "a")))

	assert.Equal(t, 2, registry.Count())
	assert.True(t, registry.Has("a"))
	assert.False(t, registry.Has("c"))
	assert.Equal(t, []string{"a", "b"}, registry.ListIDs())

	step, err := registry.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "Step b", step.Name())
}

func TestRegistryRegisterErrors(t *testing.T) {
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(newFakeStep("a")))

	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(newFakeStep("")))
	assert.Error(t, registry.Register(newFakeStep("a")))

	_, err := registry.Get("missing")
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeNotFound, operations.GetErrorType(err))
}

func TestRegistryDependencyOrder(t *testing.T) {
	tests := []struct {
		name  string
		steps []*fakeStep
		want  []string
	}{
		{
			name:  "linear chain registered in order",
			steps: []*fakeStep{newFakeStep("load"), newFakeStep("clean", "load"), newFakeStep("derive", "clean")},
			want:  []string{"load", "clean", "derive"},
		},
		{
			name:  "chain registered backwards",
			steps: []*fakeStep{newFakeStep("derive", "clean"), newFakeStep("clean", "load"), newFakeStep("load")},
			want:  []string{"load", "clean", "derive"},
		},
		{
			name:  "independent steps keep registration order",
			steps: []*fakeStep{newFakeStep("c"), newFakeStep("a"), newFakeStep("b")},
			want:  []string{"c", "a", "b"},
		},
		{
			name:  "diamond",
			steps: []*fakeStep{newFakeStep("d", "b", "c"), newFakeStep("c", "a"), newFakeStep("b", "a"), newFakeStep("a")},
			want:  []string{"a", "c", "b", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := operations.NewRegistry()
			for _, s := range tt.steps {
				require.NoError(t, registry.Register(s))
			}
			ordered, err := registry.GetDependencyOrder()
			require.NoError(t, err)
			assert.Equal(t, tt.want, stepIDs(ordered))
		})
	}
}

func TestRegistryDependencyErrors(t *testing.T) {
	t.Run("unregistered dependency", func(t *testing.T) {
		registry := operations.NewRegistry()
		require.NoError(t, registry.Register(newFakeStep("clean", "load")))

		err := registry.ValidateDependencies()
		require.Error(t, err)
		assert.Equal(t, operations.ErrorTypeDependency, operations.GetErrorType(err))
		assert.Equal(t, "clean", operations.FailedStep(err))
	})

	t.Run("cycle", func(t *testing.T) {
		registry := operations.NewRegistry()
		require.NoError(t, registry.Register(newFakeStep("a", "b")))
		require.NoError(t, registry.Register(newFakeStep("b", "a")))

		_, err := registry.GetDependencyOrder()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cycle")
	})
}

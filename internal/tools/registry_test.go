package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avion/internal/agent/ports"
	"avion/internal/config"
	"avion/internal/tools/builtin"
)

type stubTool struct{ name string }

func (s *stubTool) Execute(context.Context, ports.ToolCall) (*ports.ToolResult, error) {
	return &ports.ToolResult{Content: "ok"}, nil
}
func (s *stubTool) Definition() ports.ToolDefinition { return ports.ToolDefinition{Name: s.name} }
func (s *stubTool) Metadata() ports.ToolMetadata     { return ports.ToolMetadata{Name: s.name} }

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{
		builtin.WeightEstimatorName,
		builtin.AerodynamicCalculatorName,
		builtin.PowerCalculatorName,
		builtin.CostEstimatorName,
		builtin.FeasibilityCheckerName,
	} {
		tool, err := r.Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, tool.Definition().Name)
	}
	assert.Len(t, r.List(), 5)
}

func TestRegistryRegisterAndUnregister(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&stubTool{name: "battery_sizer"}))
	_, err := r.Get("battery_sizer")
	require.NoError(t, err)

	assert.Error(t, r.Register(&stubTool{name: builtin.WeightEstimatorName}),
		"builtin names are reserved")

	require.NoError(t, r.Unregister("battery_sizer"))
	_, err = r.Get("battery_sizer")
	assert.Error(t, err)

	assert.Error(t, r.Unregister(builtin.WeightEstimatorName),
		"builtins cannot be removed")
}

func TestDefinitionsFor(t *testing.T) {
	r := NewRegistry()

	names := func(defs []ports.ToolDefinition) []string {
		out := make([]string, len(defs))
		for i, d := range defs {
			out[i] = d.Name
		}
		return out
	}

	assert.Equal(t, []string{builtin.FeasibilityCheckerName},
		names(r.DefinitionsFor(config.RoleMissionPlanner)))
	assert.Equal(t, []string{builtin.AerodynamicCalculatorName, builtin.WeightEstimatorName},
		names(r.DefinitionsFor(config.RoleAerodynamics)))
	assert.Equal(t, []string{builtin.PowerCalculatorName, builtin.WeightEstimatorName},
		names(r.DefinitionsFor(config.RolePropulsion)))
	assert.Equal(t, []string{builtin.WeightEstimatorName, builtin.FeasibilityCheckerName},
		names(r.DefinitionsFor(config.RoleStructures)))
	assert.Equal(t, []string{builtin.CostEstimatorName, builtin.FeasibilityCheckerName},
		names(r.DefinitionsFor(config.RoleManufacturing)))

	assert.Empty(t, r.DefinitionsFor(config.RoleCoordinator))
}

func TestAllowedFor(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.AllowedFor(config.RoleAerodynamics, builtin.WeightEstimatorName))
	assert.False(t, r.AllowedFor(config.RoleAerodynamics, builtin.CostEstimatorName))
	assert.False(t, r.AllowedFor(config.RoleCoordinator, builtin.FeasibilityCheckerName))
}

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avion/internal/state"
)

func TestParseStructuredOutputPlainJSON(t *testing.T) {
	var plan state.MissionPlan
	err := ParseStructuredOutput(`{"mtow": 1200, "range_km": 800}`, &plan)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, plan.MTOW)
	assert.Equal(t, 800.0, plan.RangeKM)
}

func TestParseStructuredOutputCodeFence(t *testing.T) {
	content := "Here is the design:\n```json\n{\"wing_area_m2\": 14.5, \"airfoil_type\": \"NACA 2412\"}\n```\nDone."

	var design state.AeroDesign
	err := ParseStructuredOutput(content, &design)
	require.NoError(t, err)
	assert.Equal(t, 14.5, design.WingAreaM2)
	assert.Equal(t, "NACA 2412", design.AirfoilType)
}

func TestParseStructuredOutputEmbeddedInProse(t *testing.T) {
	content := `After running the calculators I settled on {"engine_power_kw": 45.2, "engine_type": "electric"} as the propulsion baseline.`

	var design state.PropulsionDesign
	err := ParseStructuredOutput(content, &design)
	require.NoError(t, err)
	assert.Equal(t, 45.2, design.EnginePowerKW)
	assert.Equal(t, "electric", design.EngineType)
}

func TestParseStructuredOutputRepairsBrokenJSON(t *testing.T) {
	// Trailing comma and single quotes, a common free-model failure mode.
	content := `{'safety_factor': 1.5, 'fuselage_material': 'carbon_fiber',}`

	var design state.StructureDesign
	err := ParseStructuredOutput(content, &design)
	require.NoError(t, err)
	assert.Equal(t, 1.5, design.SafetyFactor)
	assert.Equal(t, "carbon_fiber", design.FuselageMaterial)
}

func TestParseStructuredOutputTruncatedJSON(t *testing.T) {
	content := `{"project_complete": false, "agent_tasks": [{"agent_name": "mission_planner", "task_description": "Define the mission"`

	var decision state.CoordinatorDecision
	err := ParseStructuredOutput(content, &decision)
	require.NoError(t, err)
	require.Len(t, decision.AgentTasks, 1)
	assert.Equal(t, "mission_planner", decision.AgentTasks[0].AgentName)
}

func TestParseStructuredOutputNoJSON(t *testing.T) {
	var plan state.MissionPlan
	err := ParseStructuredOutput("I could not produce a design this round.", &plan)
	assert.Error(t, err)
}

package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := MustNewMetrics()

	m.ObserveLLMRequest("aerodynamics", "ok")
	m.ObserveLLMRequest("aerodynamics", "ok")
	m.ObserveLLMRequest("propulsion", "error")
	m.ObserveTokens("aerodynamics", 120, 40)
	m.ObserveToolExecution("weight_estimator", "ok")
	m.ObserveIteration()
	m.ObserveIteration()
	m.ObserveRoleUpdate("structures")
	m.ObserveStageDuration("structures", 1.5)

	snapshot, err := m.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, 2.0, snapshot["avion_llm_requests_total{role=aerodynamics,status=ok}"])
	assert.Equal(t, 1.0, snapshot["avion_llm_requests_total{role=propulsion,status=error}"])
	assert.Equal(t, 120.0, snapshot["avion_llm_tokens_total{direction=prompt,role=aerodynamics}"])
	assert.Equal(t, 40.0, snapshot["avion_llm_tokens_total{direction=completion,role=aerodynamics}"])
	assert.Equal(t, 1.0, snapshot["avion_tools_executions_total{status=ok,tool=weight_estimator}"])
	assert.Equal(t, 2.0, snapshot["avion_workflow_iterations_total"])
	assert.Equal(t, 1.0, snapshot["avion_workflow_role_updates_total{role=structures}"])
	assert.Equal(t, 1.0, snapshot["avion_workflow_stage_duration_seconds{role=structures}_count"])
	assert.InDelta(t, 1.5, snapshot["avion_workflow_stage_duration_seconds{role=structures}_sum"], 1e-9)
}

func TestMetricsIsolatedRegistries(t *testing.T) {
	a := MustNewMetrics()
	b := MustNewMetrics()

	a.ObserveIteration()

	snapshotB, err := b.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, snapshotB["avion_workflow_iterations_total"])
}

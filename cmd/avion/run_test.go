package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avion/internal/config"
)

// isolate runs the test from an empty directory with a scrubbed
// environment so a developer's avion.yaml, ~/.avion.yaml, or AVION_*
// variables never leak in.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		config.CredentialEnvVar,
		"AVION_MODEL",
		"AVION_BASE_URL",
		"AVION_MAX_ITERATIONS",
		"AVION_STABILITY_THRESHOLD",
		"AVION_VERBOSE",
		"AVION_MOCK",
	} {
		t.Setenv(key, "")
	}
}

func executeCommand(t *testing.T, args ...string) string {
	t.Helper()
	isolate(t)
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))
	return buf.String()
}

func TestRunCommandMockEndToEnd(t *testing.T) {
	out := executeCommand(t, "run", "--mock",
		"--max-iterations", "8", "--stability-threshold", "1",
		"-r", "Design a compact survey drone")

	assert.Contains(t, out, "FINAL UAV DESIGN")
	assert.Contains(t, out, "Mission:")
	assert.Contains(t, out, "Manufacturing:")
	assert.Contains(t, out, "ITERATION SUMMARY")
	assert.Contains(t, out, "Agents Completed: 5/5")
	assert.Contains(t, out, "Complete")
}

func TestRunCommandRejectsExplicitZeroIterations(t *testing.T) {
	isolate(t)
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"run", "--mock", "--max-iterations", "0",
		"-r", "Design a compact survey drone"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be >= 1")
}

func TestRoutingCommand(t *testing.T) {
	out := executeCommand(t, "routing", "--mock")

	assert.Contains(t, out, "mission_planner -> mission_planner, aerodynamics, propulsion, structures")
	assert.Contains(t, out, "manufacturing -> structures, manufacturing")
	assert.Contains(t, out, "cost_estimator")
}

func TestConfigCommand(t *testing.T) {
	out := executeCommand(t, "config", "--mock", "--model", "test-model", "--max-iterations", "7")

	assert.Contains(t, out, "test-model")
	assert.Contains(t, out, "max_iterations:      7")
}

func TestVersionCommand(t *testing.T) {
	out := executeCommand(t, "version")
	assert.Contains(t, out, "avion")
}

package workflow

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avion/internal/agent/ports"
	"avion/internal/config"
	"avion/internal/llm"
	"avion/internal/observability"
	"avion/internal/prompts"
	"avion/internal/state"
	"avion/internal/tools"
)

func intPtr(n int) *int { return &n }

func testConfig(t *testing.T, overrides config.Overrides) *config.Config {
	t.Helper()
	overrides.MockClient = true
	cfg, err := config.Load(
		config.WithEnv(func(string) (string, bool) { return "", false }),
		config.WithFileReader(func(string) ([]byte, error) { return nil, os.ErrNotExist }),
		config.WithHomeDir(func() (string, error) { return "", os.ErrNotExist }),
		config.WithOverrides(overrides),
	)
	require.NoError(t, err)
	return cfg
}

func newEngine(t *testing.T, cfg *config.Config, client ports.LLMClient, opts ...Option) *Engine {
	t.Helper()
	loader, err := prompts.NewLoader()
	require.NoError(t, err)
	return NewEngine(cfg, client, tools.NewRegistry(), loader, observability.MustNewMetrics(), opts...)
}

const initialTasksJSON = `{"project_complete": false, "completion_reason": "starting",
	"agent_tasks": [
		{"agent_name": "mission_planner", "task_description": "Define the mission profile"},
		{"agent_name": "aerodynamics", "task_description": "Size the wing"},
		{"agent_name": "propulsion", "task_description": "Select the powertrain"},
		{"agent_name": "structures", "task_description": "Design the airframe"},
		{"agent_name": "manufacturing", "task_description": "Estimate cost and feasibility"}
	]}`

// engineerOutputJSON carries the fields of every role's output type; each
// decoder picks up only its own. Identical outputs every round let the system
// reach stability quickly.
const engineerOutputJSON = `{"mtow": 150, "range_km": 300, "payload_kg": 20,
	"wing_area_m2": 12, "aspect_ratio": 8, "airfoil_type": "NACA 4412",
	"engine_power_kw": 25, "engine_type": "electric",
	"fuselage_length_m": 2.4, "safety_factor": 1.5,
	"total_cost_usd": 42000, "feasibility_score": 0.8}`

// scriptRun answers coordinator calls in order and every engineer call with
// the same output. Engineer requests are recognized by their shape: the tool
// round carries tool definitions, the structured round carries the
// conversation so far; coordinator requests are always a bare two-message
// JSON exchange.
func scriptRun(client *llm.MockClient, coordinatorReplies []string) {
	var mu sync.Mutex
	coordinatorCalls := 0
	client.SetFallback(func(req ports.CompletionRequest) (*ports.CompletionResponse, error) {
		if len(req.Tools) > 0 {
			return &ports.CompletionResponse{Content: "Analysis complete."}, nil
		}
		if len(req.Messages) == 2 {
			mu.Lock()
			reply := coordinatorReplies[len(coordinatorReplies)-1]
			if coordinatorCalls < len(coordinatorReplies) {
				reply = coordinatorReplies[coordinatorCalls]
			}
			coordinatorCalls++
			mu.Unlock()
			return &ports.CompletionResponse{Content: reply}, nil
		}
		return &ports.CompletionResponse{Content: engineerOutputJSON}, nil
	})
}

func TestEngineRunsToCompletion(t *testing.T) {
	cfg := testConfig(t, config.Overrides{MaxIterations: intPtr(10), StabilityThreshold: intPtr(1)})
	client := llm.NewMockClient(cfg.Model())
	scriptRun(client, []string{
		initialTasksJSON,
		`{"project_complete": true, "completion_reason": "All designs converged."}`,
	})

	var iterations []int
	engine := newEngine(t, cfg, client, WithProgress(func(iteration int, _ *state.DesignState) {
		iterations = append(iterations, iteration)
	}))

	result, err := engine.Run(context.Background(), "Design a small survey drone")
	require.NoError(t, err)

	assert.True(t, result.Complete)
	assert.Equal(t, "All designs converged.", result.Reason)
	assert.Greater(t, result.Iterations, 0)
	assert.NotEmpty(t, iterations)

	// Every stage eventually produced a design.
	for _, role := range cfg.EngineeringRoles() {
		out, ok := result.Outputs[role]
		require.True(t, ok, "missing output for %s", role)
		assert.NotNil(t, out)
	}
	plan, ok := result.Outputs[config.RoleMissionPlanner].(*state.MissionPlan)
	require.True(t, ok)
	assert.Equal(t, 150.0, plan.MTOW)
}

func TestEngineStopsAtMaxIterations(t *testing.T) {
	cfg := testConfig(t, config.Overrides{MaxIterations: intPtr(3), StabilityThreshold: intPtr(2)})
	client := llm.NewMockClient(cfg.Model())
	scriptRun(client, []string{
		initialTasksJSON,
		// Any later evaluation keeps the project open, so the iteration
		// budget has to end the run.
		`{"project_complete": false, "completion_reason": "Keep refining."}`,
	})

	engine := newEngine(t, cfg, client)
	result, err := engine.Run(context.Background(), "Design a small survey drone")
	require.NoError(t, err)

	assert.False(t, result.Complete)
	assert.Equal(t, 3, result.Iterations)
	assert.Contains(t, result.Reason, "maximum iterations")
}

func TestEngineRejectsEmptyRequirements(t *testing.T) {
	cfg := testConfig(t, config.Overrides{})
	engine := newEngine(t, cfg, llm.NewMockClient(cfg.Model()))

	_, err := engine.Run(context.Background(), "")
	assert.Error(t, err)
}

func TestEngineHonorsCancellation(t *testing.T) {
	cfg := testConfig(t, config.Overrides{MaxIterations: intPtr(10), StabilityThreshold: intPtr(3)})
	client := llm.NewMockClient(cfg.Model())
	scriptRun(client, []string{initialTasksJSON})

	ctx, cancel := context.WithCancel(context.Background())
	engine := newEngine(t, cfg, client, WithProgress(func(iteration int, _ *state.DesignState) {
		if iteration >= 1 {
			cancel()
		}
	}))

	_, err := engine.Run(ctx, "Design a small survey drone")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

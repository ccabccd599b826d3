package llm

import (
	"sync"
	"time"

	"avion/internal/agent/ports"
	"avion/internal/config"
	avionerrors "avion/internal/errors"
)

// mockTasksJSON assigns a canned task to every engineering role.
const mockTasksJSON = `{"project_complete": false, "completion_reason": "starting",
 "agent_tasks": [
  {"agent_name": "mission_planner", "task_description": "Define the mission profile"},
  {"agent_name": "aerodynamics", "task_description": "Size the wing"},
  {"agent_name": "propulsion", "task_description": "Select the powertrain"},
  {"agent_name": "structures", "task_description": "Design the airframe"},
  {"agent_name": "manufacturing", "task_description": "Estimate cost and feasibility"}
 ]}`

const mockCompleteJSON = `{"project_complete": true, "completion_reason": "Mock run: all designs converged."}`

// mockDesignJSON carries the fields of every role's output type; each decoder
// keeps only its own.
const mockDesignJSON = `{"mtow": 18.5, "range_km": 55, "payload_kg": 2, "endurance_hours": 1.6, "altitude_m": 1500,
 "wing_area_m2": 1.2, "aspect_ratio": 9, "airfoil_type": "NACA 4412", "lift_to_drag_ratio": 16, "stall_speed_ms": 11,
 "engine_power_kw": 1.8, "thrust_n": 65, "engine_type": "electric", "fuel_consumption_rate": 0, "engine_weight_kg": 1.1,
 "fuselage_length_m": 1.4, "wing_spar_material": "carbon_fiber", "fuselage_material": "carbon_fiber", "safety_factor": 1.5, "structural_weight_kg": 6.2,
 "total_cost_usd": 21500, "production_time_hours": 240, "material_cost_usd": 9400, "labor_cost_usd": 12100, "feasibility_score": 0.8}`

// NewFromConfig builds the production client chain for cfg: the HTTP client
// wrapped with retry, wrapped with the response cache. With the mock flag set
// it returns a scripted mock that plays a plausible short design run, useful
// for wiring checks without a credential.
func NewFromConfig(cfg *config.Config) (ports.LLMClient, error) {
	if cfg.MockClient() {
		mock := NewMockClient(cfg.Model())
		mock.SetFallback(dryRunResponder())
		return mock, nil
	}

	base, err := NewOpenAIClient(cfg.Model(), Config{
		APIKey:     cfg.APIKey(),
		BaseURL:    cfg.BaseURL(),
		Timeout:    cfg.TimeoutSeconds(),
		MaxRetries: cfg.MaxRetries(),
	})
	if err != nil {
		return nil, err
	}

	retryConfig := avionerrors.DefaultRetryConfig()
	if cfg.MaxRetries() > 0 {
		retryConfig.MaxAttempts = cfg.MaxRetries()
	}

	client := NewRetryClient(base, retryConfig)
	client = NewCacheClient(client, cfg.CacheSize(), time.Duration(cfg.CacheTTLSeconds())*time.Second)
	return client, nil
}

// dryRunResponder answers requests by shape: tool rounds get a short note,
// coordinator exchanges get initial tasks once and a completion afterwards,
// and everything else gets the canned design. Requests with tool definitions
// belong to an engineer's tool round; a bare two-message JSON exchange is the
// coordinator.
func dryRunResponder() MockResponder {
	var mu sync.Mutex
	coordinatorCalls := 0
	return func(req ports.CompletionRequest) (*ports.CompletionResponse, error) {
		switch {
		case len(req.Tools) > 0:
			return &ports.CompletionResponse{Content: "Mock analysis complete.", StopReason: "stop"}, nil
		case req.JSONResponse && len(req.Messages) == 2:
			mu.Lock()
			defer mu.Unlock()
			coordinatorCalls++
			if coordinatorCalls == 1 {
				return &ports.CompletionResponse{Content: mockTasksJSON, StopReason: "stop"}, nil
			}
			return &ports.CompletionResponse{Content: mockCompleteJSON, StopReason: "stop"}, nil
		default:
			return &ports.CompletionResponse{Content: mockDesignJSON, StopReason: "stop"}, nil
		}
	}
}

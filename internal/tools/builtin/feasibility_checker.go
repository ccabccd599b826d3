package builtin

import (
	"context"

	"avion/internal/agent/ports"
)

const FeasibilityCheckerName = "feasibility_checker"

// Feasibility scoring: start from a baseline, subtract penalties for designs
// outside the practical envelope.
const (
	baselineFeasibility = 0.8
	weightLimitKG       = 1000.0
	weightPenalty       = 0.2
	costLimitUSD        = 100000.0
	costPenalty         = 0.3
)

type feasibilityChecker struct{}

func NewFeasibilityChecker() ports.ToolExecutor {
	return &feasibilityChecker{}
}

func (t *feasibilityChecker) Execute(_ context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	specs, _ := call.Arguments["specifications"].(map[string]any)
	if specs == nil {
		// Accept flat arguments when the model skips the wrapper object.
		specs = call.Arguments
	}

	score := baselineFeasibility
	var issues []string

	if weight, err := floatArg(specs, "weight"); err == nil && weight > weightLimitKG {
		score -= weightPenalty
		issues = append(issues, "Weight too high")
	}
	if cost, err := floatArg(specs, "cost"); err == nil && cost > costLimitUSD {
		score -= costPenalty
		issues = append(issues, "Cost too high")
	}
	if score < 0 {
		score = 0
	}

	result := map[string]any{
		"feasibility_score": score,
		"issues":            issues,
		"recommendations":   []string{"Optimize weight", "Reduce cost"},
	}
	return &ports.ToolResult{
		CallID:   call.ID,
		Content:  marshalContent(result),
		Metadata: map[string]any{"feasibility_score": score},
	}, nil
}

func (t *feasibilityChecker) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        FeasibilityCheckerName,
		Description: "Score design feasibility (0-1) against weight and cost limits",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"specifications": {Type: "object", Description: "Design specification values, e.g. weight (kg) and cost (USD)"},
			},
			Required: []string{"specifications"},
		},
	}
}

func (t *feasibilityChecker) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name: FeasibilityCheckerName, Version: "1.0.0", Category: "engineering",
	}
}

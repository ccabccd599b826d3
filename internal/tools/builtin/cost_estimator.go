package builtin

import (
	"context"
	"fmt"
	"strings"

	"avion/internal/agent/ports"
)

const CostEstimatorName = "cost_estimator"

// materialCostPerKG in USD for the supported airframe materials.
var materialCostPerKG = map[string]float64{
	"aluminum":     5.0,
	"carbon_fiber": 50.0,
	"steel":        2.0,
	"plastic":      3.0,
}

const defaultCostPerKG = 10.0

type costEstimator struct{}

func NewCostEstimator() ports.ToolExecutor {
	return &costEstimator{}
}

func (t *costEstimator) Execute(_ context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	weight, err := floatArg(call.Arguments, "weight")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	material, err := stringArg(call.Arguments, "material")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	complexity, err := floatArg(call.Arguments, "complexity")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}

	baseCost, ok := materialCostPerKG[strings.ToLower(material)]
	if !ok {
		baseCost = defaultCostPerKG
	}
	cost := weight * baseCost * complexity

	return &ports.ToolResult{
		CallID:   call.ID,
		Content:  fmt.Sprintf("%g", cost),
		Metadata: map[string]any{"cost_usd": cost, "cost_per_kg": baseCost},
	}, nil
}

func (t *costEstimator) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        CostEstimatorName,
		Description: "Estimate manufacturing cost in USD from weight, material and complexity factor",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"weight":     {Type: "number", Description: "Component weight in kg"},
				"material":   {Type: "string", Description: "Airframe material", Enum: []any{"aluminum", "carbon_fiber", "steel", "plastic"}},
				"complexity": {Type: "number", Description: "Manufacturing complexity multiplier"},
			},
			Required: []string{"weight", "material", "complexity"},
		},
	}
}

func (t *costEstimator) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name: CostEstimatorName, Version: "1.0.0", Category: "engineering",
	}
}

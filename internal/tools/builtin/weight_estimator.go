// Package builtin implements the engineering calculators the design roles
// call during their reasoning loops.
package builtin

import (
	"context"
	"fmt"
	"strings"

	"avion/internal/agent/ports"
)

const WeightEstimatorName = "weight_estimator"

// materialDensity in g/cm3 for the supported airframe materials.
var materialDensity = map[string]float64{
	"aluminum":     2.7,
	"carbon_fiber": 1.6,
	"steel":        7.8,
	"plastic":      1.2,
}

const defaultDensity = 2.0

type weightEstimator struct{}

func NewWeightEstimator() ports.ToolExecutor {
	return &weightEstimator{}
}

func (t *weightEstimator) Execute(_ context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	length, err := floatArg(call.Arguments, "length")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	width, err := floatArg(call.Arguments, "width")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	material, err := stringArg(call.Arguments, "material")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}

	density, ok := materialDensity[strings.ToLower(material)]
	if !ok {
		density = defaultDensity
	}
	weight := length * width * 0.1 * density

	return &ports.ToolResult{
		CallID:  call.ID,
		Content: fmt.Sprintf("%g", weight),
		Metadata: map[string]any{
			"weight_kg": weight,
			"density":   density,
		},
	}, nil
}

func (t *weightEstimator) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        WeightEstimatorName,
		Description: "Estimate component weight in kg from dimensions and material",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"length":   {Type: "number", Description: "Length in meters"},
				"width":    {Type: "number", Description: "Width in meters"},
				"material": {Type: "string", Description: "Airframe material", Enum: []any{"aluminum", "carbon_fiber", "steel", "plastic"}},
			},
			Required: []string{"length", "width", "material"},
		},
	}
}

func (t *weightEstimator) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name: WeightEstimatorName, Version: "1.0.0", Category: "engineering",
	}
}

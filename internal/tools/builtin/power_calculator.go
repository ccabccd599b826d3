package builtin

import (
	"context"
	"fmt"

	"avion/internal/agent/ports"
)

const PowerCalculatorName = "power_requirement_calculator"

const gravity = 9.81

type powerCalculator struct{}

func NewPowerCalculator() ports.ToolExecutor {
	return &powerCalculator{}
}

func (t *powerCalculator) Execute(_ context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	weight, err := floatArg(call.Arguments, "weight")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	velocity, err := floatArg(call.Arguments, "velocity")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}

	powerKW := weight * gravity * velocity / 1000

	return &ports.ToolResult{
		CallID:   call.ID,
		Content:  fmt.Sprintf("%g", powerKW),
		Metadata: map[string]any{"power_kw": powerKW},
	}, nil
}

func (t *powerCalculator) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        PowerCalculatorName,
		Description: "Calculate required propulsion power in kW for a weight and cruise speed",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"weight":   {Type: "number", Description: "Aircraft weight in kg"},
				"velocity": {Type: "number", Description: "Cruise speed in m/s"},
			},
			Required: []string{"weight", "velocity"},
		},
	}
}

func (t *powerCalculator) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name: PowerCalculatorName, Version: "1.0.0", Category: "engineering",
	}
}

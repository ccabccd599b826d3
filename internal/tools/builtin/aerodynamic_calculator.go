package builtin

import (
	"context"

	"avion/internal/agent/ports"
)

const AerodynamicCalculatorName = "aerodynamic_calculator"

// Fixed coefficients for the preliminary-design lift and drag model.
const (
	liftCoefficient = 1.2
	dragCoefficient = 0.05
	airDensity      = 1.225 // kg/m3 at sea level
)

type aerodynamicCalculator struct{}

func NewAerodynamicCalculator() ports.ToolExecutor {
	return &aerodynamicCalculator{}
}

func (t *aerodynamicCalculator) Execute(_ context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	wingArea, err := floatArg(call.Arguments, "wing_area")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}
	velocity, err := floatArg(call.Arguments, "velocity")
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}, nil
	}

	dynamicPressure := 0.5 * airDensity * velocity * velocity * wingArea
	lift := dynamicPressure * liftCoefficient
	drag := dynamicPressure * dragCoefficient
	liftToDrag := 0.0
	if drag > 0 {
		liftToDrag = lift / drag
	}

	result := map[string]float64{
		"lift_n":       lift,
		"drag_n":       drag,
		"lift_to_drag": liftToDrag,
	}
	return &ports.ToolResult{
		CallID:   call.ID,
		Content:  marshalContent(result),
		Metadata: map[string]any{"lift_n": lift, "drag_n": drag, "lift_to_drag": liftToDrag},
	}, nil
}

func (t *aerodynamicCalculator) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        AerodynamicCalculatorName,
		Description: "Calculate lift, drag and lift-to-drag ratio for a wing at a given speed",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"wing_area": {Type: "number", Description: "Wing area in square meters"},
				"velocity":  {Type: "number", Description: "Airspeed in m/s"},
			},
			Required: []string{"wing_area", "velocity"},
		},
	}
}

func (t *aerodynamicCalculator) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name: AerodynamicCalculatorName, Version: "1.0.0", Category: "engineering",
	}
}

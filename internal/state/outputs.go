package state

import (
	"encoding/json"
	"reflect"

	"avion/internal/config"
)

// AgentMessage is a directed message produced as part of a role's structured
// output. Delivery is subject to the sender's communication permissions.
type AgentMessage struct {
	ToAgent string `json:"to_agent"`
	Content string `json:"content"`
}

// RoleOutput is implemented by every structured engineering output.
type RoleOutput interface {
	// OutputMessages returns the messages the role wants delivered.
	OutputMessages() []AgentMessage

	// OutputIteration returns the iteration this output was produced in.
	OutputIteration() int

	// SetIteration stamps the iteration after parsing.
	SetIteration(iteration int)
}

// MissionPlan is the mission planner's structured output.
type MissionPlan struct {
	MTOW           float64        `json:"mtow"`
	RangeKM        float64        `json:"range_km"`
	PayloadKG      float64        `json:"payload_kg"`
	EnduranceHours float64        `json:"endurance_hours"`
	AltitudeM      float64        `json:"altitude_m"`
	Messages       []AgentMessage `json:"messages"`
	Iteration      int            `json:"iteration"`
}

// AeroDesign is the aerodynamics engineer's structured output.
type AeroDesign struct {
	WingAreaM2      float64        `json:"wing_area_m2"`
	AspectRatio     float64        `json:"aspect_ratio"`
	AirfoilType     string         `json:"airfoil_type"`
	LiftToDragRatio float64        `json:"lift_to_drag_ratio"`
	StallSpeedMS    float64        `json:"stall_speed_ms"`
	Messages        []AgentMessage `json:"messages"`
	Iteration       int            `json:"iteration"`
}

// PropulsionDesign is the propulsion engineer's structured output.
type PropulsionDesign struct {
	EnginePowerKW       float64        `json:"engine_power_kw"`
	ThrustN             float64        `json:"thrust_n"`
	EngineType          string         `json:"engine_type"`
	FuelConsumptionRate float64        `json:"fuel_consumption_rate"`
	EngineWeightKG      float64        `json:"engine_weight_kg"`
	Messages            []AgentMessage `json:"messages"`
	Iteration           int            `json:"iteration"`
}

// StructureDesign is the structures engineer's structured output.
type StructureDesign struct {
	FuselageLengthM    float64        `json:"fuselage_length_m"`
	WingSparMaterial   string         `json:"wing_spar_material"`
	FuselageMaterial   string         `json:"fuselage_material"`
	SafetyFactor       float64        `json:"safety_factor"`
	StructuralWeightKG float64        `json:"structural_weight_kg"`
	Messages           []AgentMessage `json:"messages"`
	Iteration          int            `json:"iteration"`
}

// ManufacturingPlan is the manufacturing and cost engineer's structured output.
type ManufacturingPlan struct {
	TotalCostUSD        float64        `json:"total_cost_usd"`
	ProductionTimeHours float64        `json:"production_time_hours"`
	MaterialCostUSD     float64        `json:"material_cost_usd"`
	LaborCostUSD        float64        `json:"labor_cost_usd"`
	FeasibilityScore    float64        `json:"feasibility_score"`
	Messages            []AgentMessage `json:"messages"`
	Iteration           int            `json:"iteration"`
}

// AgentTask is a coordinator-assigned task for one role.
type AgentTask struct {
	AgentName       string `json:"agent_name"`
	TaskDescription string `json:"task_description"`
}

// CoordinatorDecision is the coordinator's structured output.
type CoordinatorDecision struct {
	ProjectComplete  bool           `json:"project_complete"`
	CompletionReason string         `json:"completion_reason"`
	AgentTasks       []AgentTask    `json:"agent_tasks"`
	Messages         []AgentMessage `json:"messages"`
	Iteration        int            `json:"iteration"`
}

func (o *MissionPlan) OutputMessages() []AgentMessage       { return o.Messages }
func (o *MissionPlan) OutputIteration() int                 { return o.Iteration }
func (o *MissionPlan) SetIteration(iteration int)           { o.Iteration = iteration }
func (o *AeroDesign) OutputMessages() []AgentMessage        { return o.Messages }
func (o *AeroDesign) OutputIteration() int                  { return o.Iteration }
func (o *AeroDesign) SetIteration(iteration int)            { o.Iteration = iteration }
func (o *PropulsionDesign) OutputMessages() []AgentMessage  { return o.Messages }
func (o *PropulsionDesign) OutputIteration() int            { return o.Iteration }
func (o *PropulsionDesign) SetIteration(iteration int)      { o.Iteration = iteration }
func (o *StructureDesign) OutputMessages() []AgentMessage   { return o.Messages }
func (o *StructureDesign) OutputIteration() int             { return o.Iteration }
func (o *StructureDesign) SetIteration(iteration int)       { o.Iteration = iteration }
func (o *ManufacturingPlan) OutputMessages() []AgentMessage { return o.Messages }
func (o *ManufacturingPlan) OutputIteration() int           { return o.Iteration }
func (o *ManufacturingPlan) SetIteration(iteration int)     { o.Iteration = iteration }

// NewOutputFor returns an empty output value of the right concrete type for a
// role, for decoding structured LLM responses into.
func NewOutputFor(role config.Role) (RoleOutput, bool) {
	switch role {
	case config.RoleMissionPlanner:
		return &MissionPlan{}, true
	case config.RoleAerodynamics:
		return &AeroDesign{}, true
	case config.RolePropulsion:
		return &PropulsionDesign{}, true
	case config.RoleStructures:
		return &StructureDesign{}, true
	case config.RoleManufacturing:
		return &ManufacturingPlan{}, true
	}
	return nil, false
}

// CoreEquals compares two outputs on their engineering fields, ignoring the
// iteration stamp and outgoing messages. A role that re-emits the same values
// has maintained, not updated, its design.
func CoreEquals(a, b RoleOutput) bool {
	return reflect.DeepEqual(coreFields(a), coreFields(b))
}

func coreFields(o RoleOutput) map[string]any {
	raw, err := json.Marshal(o)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	delete(fields, "iteration")
	delete(fields, "messages")
	return fields
}

package prompts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"avion/internal/config"
	tokenutil "avion/internal/shared/token"
	"avion/internal/state"
)

// Token budget for the variable context sections of an agent prompt. Fixed
// instructions are not counted; peer outputs, mailboxes and history are
// bounded so a long run cannot grow past the model's context window.
const contextTokenBudget = 6000

// Coordinator template names.
const (
	TemplateCoordinatorInitial    = "coordinator_initial"
	TemplateCoordinatorEvaluation = "coordinator_evaluation"
)

// RoleSystemPrompt builds the full system prompt for an engineering role:
// the shared team context with the concrete communication rules, the role's
// own template, and the working instructions.
func (l *Loader) RoleSystemPrompt(cfg *config.Config, role config.Role, toolNames []string, iteration int) (string, error) {
	context, err := l.Render("system_context", map[string]string{
		"CommunicationRules": communicationRules(cfg),
	})
	if err != nil {
		return "", err
	}
	rolePrompt, err := l.Render(string(role), map[string]string{
		"MessagingTargets": messagingTargets(cfg, role),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString(rolePrompt)
	fmt.Fprintf(&b, "\n\nCURRENT ITERATION: %d\n", iteration)
	fmt.Fprintf(&b, "AVAILABLE TOOLS: %s\n\n", strings.Join(toolNames, ", "))
	b.WriteString(`INSTRUCTIONS:
1. Analyze the current task and available information
2. Use tools if needed to perform calculations or analysis
3. Consider messages from other agents and dependency data
4. Decide whether to update parameters or maintain current values
5. Send messages to other agents ONLY if you have important information to share
6. Provide final structured output with your engineering decisions

Remember: Your decisions affect other agents. Be precise and consider system-wide impacts.`)
	return b.String(), nil
}

// AgentContext carries everything a role sees in one iteration.
type AgentContext struct {
	Task         string
	Dependencies map[string]state.RoleOutput
	Received     []state.StoredMessage
	History      string
	Previous     state.RoleOutput
	PeerOutputs  map[config.Role]state.RoleOutput
}

// AgentContextMessage renders the user message for a role's completion call.
func AgentContextMessage(ctx AgentContext) string {
	sections := []string{
		"CURRENT TASK: " + ctx.Task,
	}

	if len(ctx.Dependencies) > 0 {
		sections = append(sections, "DEPENDENCY DATA:\n"+outputsJSON(ctx.Dependencies))
	}
	if len(ctx.Received) > 0 {
		var b strings.Builder
		b.WriteString("MESSAGES RECEIVED (previous iteration):\n")
		for _, msg := range ctx.Received {
			fmt.Fprintf(&b, "- from %s: %s\n", msg.FromAgent, msg.Content)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}
	if ctx.Previous != nil {
		sections = append(sections, "YOUR PREVIOUS OUTPUT:\n"+outputJSON(ctx.Previous))
	}
	if len(ctx.PeerOutputs) > 0 {
		peers := make(map[string]state.RoleOutput, len(ctx.PeerOutputs))
		for role, out := range ctx.PeerOutputs {
			peers[string(role)] = out
		}
		sections = append(sections, "TEAM OUTPUTS (latest):\n"+outputsJSON(peers))
	}
	if ctx.History != "" {
		sections = append(sections, "YOUR COMMUNICATION HISTORY:\n"+ctx.History)
	}

	bounded := tokenutil.BoundSections(sections, contextTokenBudget)
	bounded = append(bounded, `WORK REQUIREMENTS:
- Use tools if calculations are needed
- Consider all available information
- Make engineering decisions based on requirements and constraints
- Communicate important findings to relevant team members
- Provide final structured output as a single JSON object`)

	return strings.Join(bounded, "\n\n")
}

// StructuredOutputInstruction renders the JSON shape reminder appended when
// asking for the final structured response.
func StructuredOutputInstruction(example any) string {
	schema, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return "Respond with a single JSON object matching your output schema."
	}
	return fmt.Sprintf(
		"Respond ONLY with a single JSON object with exactly these fields:\n%s", schema)
}

// CoordinatorInitialMessage renders the iteration-0 task assignment request.
func CoordinatorInitialMessage(requirements string) string {
	return fmt.Sprintf(`User Requirements: %s

Create specific tasks for each agent using EXACTLY these names:
- mission_planner: Define mission parameters and MTOW
- aerodynamics: Design wing and aerodynamic system
- propulsion: Design propulsion system
- structures: Design structural components
- manufacturing: Analyze manufacturability and costs

This is iteration 0 - initial task assignment. Make each task specific and actionable.`,
		requirements)
}

// CoordinatorEvaluationMessage renders the completion-evaluation request.
func CoordinatorEvaluationMessage(requirements string, iteration int, stable bool, latest map[config.Role]state.RoleOutput) string {
	outputs := make(map[string]state.RoleOutput, len(latest))
	for role, out := range latest {
		outputs[string(role)] = out
	}
	return fmt.Sprintf(`User Requirements: %s
Current Iteration: %d
System Stable: %t

Latest Agent Outputs:
%s

Evaluate if the project is complete or if specific agents need to continue work.
If continuing, provide specific tasks and/or messages to relevant agents.
Use EXACTLY these agent names: mission_planner, aerodynamics, propulsion, structures, manufacturing`,
		requirements, iteration, stable,
		tokenutil.TruncateToTokens(outputsJSON(outputs), contextTokenBudget))
}

// MessageHistory renders a role's sent and received messages per iteration.
func MessageHistory(s *state.DesignState, role config.Role, upTo int) string {
	var b strings.Builder
	for iteration := 0; iteration < upTo; iteration++ {
		received := s.MessagesFor(role, iteration)
		sent := s.SentBy(role, iteration)
		if len(received) == 0 && len(sent) == 0 {
			continue
		}
		fmt.Fprintf(&b, "iteration %d:\n", iteration)
		for _, msg := range received {
			fmt.Fprintf(&b, "  received from %s: %s\n", msg.FromAgent, msg.Content)
		}
		for _, msg := range sent {
			fmt.Fprintf(&b, "  sent to %s: %s\n", msg.ToAgent, msg.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// messagingAdvice holds the role-pair coordination hints shown under
// MESSAGING STRATEGY. Only pairs the routing table permits are ever rendered.
var messagingAdvice = map[config.Role]map[config.Role]string{
	config.RoleMissionPlanner: {
		config.RoleAerodynamics: "Share mission profile details, performance requirements, any weight constraints",
		config.RolePropulsion:   "Communicate power/endurance needs, operational environment constraints",
		config.RoleStructures:   "Provide load factors, safety requirements, operational stresses expected",
	},
	config.RoleAerodynamics: {
		config.RolePropulsion: "Share drag estimates, discuss power-speed relationships, coordinate efficiency targets",
		config.RoleStructures: "Communicate wing loads, structural requirements, material preferences",
	},
	config.RolePropulsion: {
		config.RoleStructures: "Report engine weight and mounting loads, flag vibration constraints",
	},
	config.RoleStructures: {
		config.RoleAerodynamics:  "Coordinate on wing shape constraints, discuss structural integration",
		config.RolePropulsion:    "Coordinate engine mounting, discuss structural weight allowances",
		config.RoleManufacturing: "Share material selections, discuss manufacturing feasibility and cost implications",
	},
	config.RoleManufacturing: {
		config.RoleStructures: "Provide cost feedback on materials and design complexity, suggest manufacturing-friendly alternatives",
	},
}

// messagingTargets renders a role's permitted recipients from the routing
// table, one bullet per target, so the prompt can never name a recipient the
// runtime would refuse to deliver to.
func messagingTargets(cfg *config.Config, role config.Role) string {
	var b strings.Builder
	for _, to := range cfg.Stages() {
		if !cfg.CanMessage(role, to) {
			continue
		}
		advice, ok := messagingAdvice[role][to]
		if !ok {
			advice = "Coordinate when your results affect their design"
		}
		fmt.Fprintf(&b, "- %s: %s\n", to, advice)
	}
	return strings.TrimRight(b.String(), "\n")
}

func communicationRules(cfg *config.Config) string {
	var b strings.Builder
	for _, from := range cfg.Stages() {
		var targets []string
		for _, to := range cfg.Stages() {
			if cfg.CanMessage(from, to) {
				targets = append(targets, string(to))
			}
		}
		fmt.Fprintf(&b, "- %s -> %s\n", from, strings.Join(targets, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func outputsJSON(outputs map[string]state.RoleOutput) string {
	keys := make([]string, 0, len(outputs))
	for key := range outputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ordered := make(map[string]json.RawMessage, len(outputs))
	for _, key := range keys {
		raw, err := json.Marshal(outputs[key])
		if err != nil {
			continue
		}
		ordered[key] = raw
	}
	data, err := json.MarshalIndent(ordered, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", outputs)
	}
	return string(data)
}

func outputJSON(output state.RoleOutput) string {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", output)
	}
	return string(data)
}

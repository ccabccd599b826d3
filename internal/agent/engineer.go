package agent

import (
	"context"
	"fmt"
	"time"

	"avion/internal/agent/ports"
	"avion/internal/config"
	"avion/internal/logging"
	"avion/internal/observability"
	"avion/internal/prompts"
	"avion/internal/state"
	"avion/internal/tools"
)

// Engineer runs one engineering role. A single Engineer is reused across
// iterations; all mutable run state lives in the DesignState.
type Engineer struct {
	spec     RoleSpec
	cfg      *config.Config
	llm      ports.LLMClient
	registry *tools.Registry
	loader   *prompts.Loader
	logger   logging.Logger
	metrics  *observability.Metrics
}

// NewEngineer builds the agent for one role spec.
func NewEngineer(spec RoleSpec, cfg *config.Config, llm ports.LLMClient, registry *tools.Registry, loader *prompts.Loader, metrics *observability.Metrics) *Engineer {
	return &Engineer{
		spec:     spec,
		cfg:      cfg,
		llm:      llm,
		registry: registry,
		loader:   loader,
		logger:   logging.NewComponentLogger("agent-" + string(spec.Role)),
		metrics:  metrics,
	}
}

// Role returns the engineering role this agent plays.
func (e *Engineer) Role() config.Role {
	return e.spec.Role
}

// Process runs one iteration for this role: resolve the task, check
// dependencies, reason with tools, and record the structured output. A role
// without a task or with unmet dependencies skips the iteration silently;
// that is the normal cadence early in a run.
func (e *Engineer) Process(ctx context.Context, st *state.DesignState) error {
	role := e.spec.Role
	iteration := st.CurrentIteration()

	task, ok := st.TaskFor(role)
	if !ok {
		e.logger.Debug("no task for iteration %d, skipping", iteration)
		return nil
	}
	for _, dep := range e.spec.DependsOn {
		if st.OutputCount(dep) == 0 {
			e.logger.Debug("dependency %s not ready in iteration %d, skipping", dep, iteration)
			return nil
		}
	}
	if st.HasOutput(role, iteration) {
		return nil
	}

	start := time.Now()
	output, err := e.runCompletion(ctx, st, task, iteration)
	e.metrics.ObserveStageDuration(string(role), time.Since(start).Seconds())
	if err != nil {
		e.metrics.ObserveLLMRequest(string(role), "error")
		return fmt.Errorf("%s iteration %d: %w", role, iteration, err)
	}

	if st.RecordOutput(role, iteration, output) {
		e.metrics.ObserveRoleUpdate(string(role))
		e.logger.Info("iteration %d: design updated", iteration)
	} else {
		e.logger.Info("iteration %d: design maintained", iteration)
	}

	e.sendMessages(st, output.OutputMessages(), iteration)
	return nil
}

func (e *Engineer) runCompletion(ctx context.Context, st *state.DesignState, task string, iteration int) (state.RoleOutput, error) {
	role := e.spec.Role
	definitions := e.registry.DefinitionsFor(role)
	toolNames := make([]string, len(definitions))
	for i, def := range definitions {
		toolNames[i] = def.Name
	}

	system, err := e.loader.RoleSystemPrompt(e.cfg, role, toolNames, iteration)
	if err != nil {
		return nil, err
	}

	messages := []ports.Message{
		ports.SystemMessage(system),
		ports.UserMessage(prompts.AgentContextMessage(e.buildContext(st, task, iteration))),
	}

	messages, err = e.toolLoop(ctx, messages, definitions)
	if err != nil {
		return nil, err
	}

	return e.finalOutput(ctx, messages)
}

func (e *Engineer) buildContext(st *state.DesignState, task string, iteration int) prompts.AgentContext {
	role := e.spec.Role

	deps := make(map[string]state.RoleOutput, len(e.spec.DependsOn))
	for _, dep := range e.spec.DependsOn {
		if out, ok := st.LatestOutput(dep); ok {
			deps[DependencyLabel(dep)] = out
		}
	}

	peers := make(map[config.Role]state.RoleOutput)
	for _, other := range e.cfg.Stages() {
		if !e.cfg.CanMessage(role, other) {
			continue
		}
		if out, ok := st.LatestOutput(other); ok {
			peers[other] = out
		}
	}

	var received []state.StoredMessage
	if iteration > 0 {
		received = st.MessagesFor(role, iteration-1)
	}

	var previous state.RoleOutput
	if out, ok := st.LatestOutput(role); ok {
		previous = out
	}

	return prompts.AgentContext{
		Task:         task,
		Dependencies: deps,
		Received:     received,
		History:      prompts.MessageHistory(st, role, iteration),
		Previous:     previous,
		PeerOutputs:  peers,
	}
}

// toolLoop lets the model call its calculators, feeding results back until it
// stops asking or the loop limit is hit.
func (e *Engineer) toolLoop(ctx context.Context, messages []ports.Message, definitions []ports.ToolDefinition) ([]ports.Message, error) {
	role := string(e.spec.Role)

	for loop := 0; loop < e.cfg.ToolLoopLimit(); loop++ {
		resp, err := e.llm.Complete(ctx, ports.CompletionRequest{
			Messages:    messages,
			Tools:       definitions,
			Temperature: e.cfg.Temperature(),
			TopP:        e.cfg.TopP(),
			MaxTokens:   e.cfg.MaxTokens(),
		})
		if err != nil {
			return nil, err
		}
		e.metrics.ObserveLLMRequest(role, "ok")
		e.metrics.ObserveTokens(role, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

		if len(resp.ToolCalls) == 0 {
			if resp.Content != "" {
				messages = append(messages, ports.AssistantMessage(resp.Content))
			}
			return messages, nil
		}

		messages = append(messages, ports.Message{
			Role:      ports.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			messages = append(messages, ports.ToolMessage(call.ID, call.Name, e.executeTool(ctx, call)))
		}
	}

	e.logger.Warn("tool loop limit (%d) reached, forcing final output", e.cfg.ToolLoopLimit())
	return messages, nil
}

func (e *Engineer) executeTool(ctx context.Context, call ports.ToolCall) string {
	if !e.registry.AllowedFor(e.spec.Role, call.Name) {
		e.metrics.ObserveToolExecution(call.Name, "denied")
		e.logger.Warn("tool %s is not available to this role", call.Name)
		return fmt.Sprintf("error: tool %s is not available to you", call.Name)
	}
	tool, err := e.registry.Get(call.Name)
	if err != nil {
		e.metrics.ObserveToolExecution(call.Name, "error")
		return fmt.Sprintf("error: %v", err)
	}

	result, err := tool.Execute(ctx, call)
	if err != nil {
		e.metrics.ObserveToolExecution(call.Name, "error")
		return fmt.Sprintf("error: %v", err)
	}
	if result.Error != nil {
		e.metrics.ObserveToolExecution(call.Name, "error")
		return fmt.Sprintf("error: %v", result.Error)
	}
	e.metrics.ObserveToolExecution(call.Name, "ok")
	e.logger.Debug("tool %s -> %s", call.Name, result.Content)
	return result.Content
}

// finalOutput asks for the structured response and decodes it into the
// role's output type.
func (e *Engineer) finalOutput(ctx context.Context, messages []ports.Message) (state.RoleOutput, error) {
	output, ok := state.NewOutputFor(e.spec.Role)
	if !ok {
		return nil, fmt.Errorf("no output type for role %s", e.spec.Role)
	}

	messages = append(messages, ports.UserMessage(prompts.StructuredOutputInstruction(output)))

	resp, err := e.llm.Complete(ctx, ports.CompletionRequest{
		Messages:     messages,
		Temperature:  e.cfg.Temperature(),
		TopP:         e.cfg.TopP(),
		MaxTokens:    e.cfg.MaxTokens(),
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}
	role := string(e.spec.Role)
	e.metrics.ObserveLLMRequest(role, "ok")
	e.metrics.ObserveTokens(role, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if err := ParseStructuredOutput(resp.Content, output); err != nil {
		return nil, err
	}
	return output, nil
}

func (e *Engineer) sendMessages(st *state.DesignState, msgs []state.AgentMessage, iteration int) {
	role := e.spec.Role
	for _, msg := range msgs {
		to := config.Role(msg.ToAgent)
		if !e.cfg.CanMessage(role, to) {
			e.logger.Warn("cannot send message to %q, dropping", msg.ToAgent)
			continue
		}
		if !st.Deliver(role, to, msg.Content, iteration) {
			e.logger.Warn("no mailbox for %q, dropping", msg.ToAgent)
		}
	}
}

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
)

// Coordinator dispatches tasks on the first iteration and decides whether a
// run continues. Between the first iteration and convergence it does not call
// the model at all: an unstable system always continues, and only a stable
// one is worth an evaluation.
type Coordinator struct {
	cfg     *config.Config
	llm     ports.LLMClient
	loader  *prompts.Loader
	logger  logging.Logger
	metrics *observability.Metrics
}

// NewCoordinator builds the coordinator agent.
func NewCoordinator(cfg *config.Config, llm ports.LLMClient, loader *prompts.Loader, metrics *observability.Metrics) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		llm:     llm,
		loader:  loader,
		logger:  logging.NewComponentLogger("coordinator"),
		metrics: metrics,
	}
}

// Process records a coordinator decision for the current iteration and
// returns whether the run should continue. When it continues, the iteration
// counter has already been advanced.
func (c *Coordinator) Process(ctx context.Context, st *state.DesignState) (bool, error) {
	iteration := st.CurrentIteration()
	start := time.Now()

	var decision *state.CoordinatorDecision
	var err error
	switch {
	case iteration == 0:
		decision, err = c.initialTasks(ctx, st)
	case !st.Stable(c.cfg.StabilityThreshold()):
		decision = &state.CoordinatorDecision{
			ProjectComplete: false,
			CompletionReason: fmt.Sprintf(
				"System not stable - agents still updating. Continuing to iteration %d.", iteration+1),
		}
		c.logger.Info("iteration %d: system not stable, continuing", iteration)
	default:
		decision, err = c.evaluate(ctx, st, iteration)
	}
	c.metrics.ObserveStageDuration(string(config.RoleCoordinator), time.Since(start).Seconds())
	if err != nil {
		c.metrics.ObserveLLMRequest(string(config.RoleCoordinator), "error")
		return false, fmt.Errorf("coordinator iteration %d: %w", iteration, err)
	}

	st.RecordCoordinator(iteration, decision)
	c.deliver(st, decision.Messages, iteration)

	if decision.ProjectComplete {
		c.logger.Info("iteration %d: project complete: %s", iteration, decision.CompletionReason)
		return false, nil
	}
	st.AdvanceIteration()
	return true, nil
}

// initialTasks asks the model to break the requirements into one task per
// engineering role.
func (c *Coordinator) initialTasks(ctx context.Context, st *state.DesignState) (*state.CoordinatorDecision, error) {
	system, err := c.loader.Render(prompts.TemplateCoordinatorInitial, nil)
	if err != nil {
		return nil, err
	}

	decision, err := c.complete(ctx, system, prompts.CoordinatorInitialMessage(st.Requirements()))
	if err != nil {
		return nil, err
	}
	if len(decision.AgentTasks) == 0 {
		c.logger.Warn("model returned no initial tasks")
	}
	decision.ProjectComplete = false
	return decision, nil
}

// evaluate asks the model whether a stable design is finished. Choosing to
// continue counts as a coordinator update, so the system has to settle again
// before the next evaluation.
func (c *Coordinator) evaluate(ctx context.Context, st *state.DesignState, iteration int) (*state.CoordinatorDecision, error) {
	system, err := c.loader.Render(prompts.TemplateCoordinatorEvaluation, nil)
	if err != nil {
		return nil, err
	}

	user := prompts.CoordinatorEvaluationMessage(st.Requirements(), iteration, true, st.LatestOutputs())
	decision, err := c.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	if !decision.ProjectComplete {
		st.MarkUpdated(config.RoleCoordinator, iteration)
		c.logger.Info("iteration %d: evaluation requested more work", iteration)
	}
	return decision, nil
}

func (c *Coordinator) complete(ctx context.Context, system, user string) (*state.CoordinatorDecision, error) {
	resp, err := c.llm.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.Message{
			ports.SystemMessage(system),
			ports.UserMessage(user),
		},
		Temperature:  c.cfg.Temperature(),
		TopP:         c.cfg.TopP(),
		MaxTokens:    c.cfg.MaxTokens(),
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveLLMRequest(string(config.RoleCoordinator), "ok")
	c.metrics.ObserveTokens(string(config.RoleCoordinator), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	var decision state.CoordinatorDecision
	if err := ParseStructuredOutput(resp.Content, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

// deliver routes coordinator messages straight to mailboxes. The coordinator
// may address any agent, so only an unknown recipient is dropped.
func (c *Coordinator) deliver(st *state.DesignState, msgs []state.AgentMessage, iteration int) {
	for _, msg := range msgs {
		if !st.Deliver(config.RoleCoordinator, config.Role(msg.ToAgent), msg.Content, iteration) {
			c.logger.Warn("no mailbox for %q, dropping message", msg.ToAgent)
		}
	}
}

// Package workflow drives the iterative design loop: the coordinator decides,
// the engineering agents work concurrently, and the loop repeats until the
// coordinator declares the project complete or the iteration budget runs out.
package workflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"avion/internal/agent"
	"avion/internal/agent/ports"
	"avion/internal/config"
	"avion/internal/logging"
	"avion/internal/observability"
	"avion/internal/prompts"
	"avion/internal/state"
	"avion/internal/tools"
)

// Engine owns the agents for one configuration and runs design projects
// against them. Engines are reusable; each Run gets fresh state.
type Engine struct {
	cfg         *config.Config
	coordinator *agent.Coordinator
	engineers   []*agent.Engineer
	logger      logging.Logger
	metrics     *observability.Metrics
	progress    ProgressFunc
}

// ProgressFunc is called after every completed iteration.
type ProgressFunc func(iteration int, st *state.DesignState)

// Option customizes an Engine.
type Option func(*Engine)

// WithProgress registers a per-iteration callback, used by the CLI to render
// live progress.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// NewEngine wires the coordinator and one engineer per role spec.
func NewEngine(cfg *config.Config, client ports.LLMClient, registry *tools.Registry, loader *prompts.Loader, metrics *observability.Metrics, opts ...Option) *Engine {
	specs := agent.RoleSpecs()
	engineers := make([]*agent.Engineer, 0, len(specs))
	for _, spec := range specs {
		engineers = append(engineers, agent.NewEngineer(spec, cfg, client, registry, loader, metrics))
	}

	e := &Engine{
		cfg:         cfg,
		coordinator: agent.NewCoordinator(cfg, client, loader, metrics),
		engineers:   engineers,
		logger:      logging.NewComponentLogger("workflow"),
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one design run.
type Result struct {
	Requirements string
	Iterations   int
	Complete     bool
	Reason       string
	Outputs      map[config.Role]state.RoleOutput
	State        *state.DesignState
}

// Run executes the design loop for the given requirements. The coordinator
// leads each iteration; engineers then work their stages in parallel. A
// single failing engineer does not end the run, it just leaves its design
// unchanged for that iteration.
func (e *Engine) Run(ctx context.Context, requirements string) (*Result, error) {
	if requirements == "" {
		return nil, fmt.Errorf("requirements must not be empty")
	}

	st := state.NewDesignState(requirements, e.cfg.EngineeringRoles())
	e.logger.Info("starting design run, max %d iterations", e.cfg.MaxIterations())

	reason := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		iteration := st.CurrentIteration()
		cont, err := e.coordinator.Process(ctx, st)
		if err != nil {
			return nil, err
		}
		e.metrics.ObserveIteration()
		if e.progress != nil {
			e.progress(iteration, st)
		}
		if !cont {
			break
		}
		if st.CurrentIteration() >= e.cfg.MaxIterations() {
			reason = fmt.Sprintf("maximum iterations (%d) reached", e.cfg.MaxIterations())
			e.logger.Warn("%s, stopping", reason)
			break
		}

		if err := e.runEngineers(ctx, st); err != nil {
			return nil, err
		}
	}

	if st.Complete() {
		if decision, ok := st.LatestCoordinator(); ok {
			reason = decision.CompletionReason
		}
	}

	result := &Result{
		Requirements: requirements,
		Iterations:   st.CurrentIteration(),
		Complete:     st.Complete(),
		Reason:       reason,
		Outputs:      st.LatestOutputs(),
		State:        st,
	}
	e.logger.Info("design run finished after %d iterations (complete=%v)", result.Iterations, result.Complete)
	return result, nil
}

func (e *Engine) runEngineers(ctx context.Context, st *state.DesignState) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, engineer := range e.engineers {
		g.Go(func() error {
			if err := engineer.Process(gctx, st); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.logger.Error("%s: %v", engineer.Role(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Package runtime contains the stage orchestrator: the state machine
// that executes a configured pipeline against one execution state.
package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/internal/validator"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
	"github.com/aretw0/flume/pkg/registry"
)

// DefaultTopK is the number of knowledge base candidates requested
// when none is configured.
const DefaultTopK = 3

// escalationThreshold is the evaluator score below which the
// escalation branch of a non-deterministic stage runs.
const escalationThreshold = 90

// Engine executes a pipeline. One Engine may serve many runs, but each
// run owns its execution state exclusively; the registry and connector
// are shared read-only.
type Engine struct {
	pipeline   *domain.Pipeline
	registry   *registry.Registry
	connector  ports.KnowledgeConnector
	conditions map[string]ConditionFunc
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	topK       int
}

// EngineOption configures the engine at construction time.
type EngineOption func(*Engine)

// WithConnector injects the knowledge connector used by the reserved
// knowledge base abilities.
func WithConnector(c ports.KnowledgeConnector) EngineOption {
	return func(e *Engine) {
		e.connector = c
	}
}

// WithLogger sets the structured logging sink. The engine never logs
// through a global.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithTopK sets how many candidates the knowledge base search requests.
func WithTopK(k int) EngineOption {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithCondition registers an additional named condition predicate.
func WithCondition(name string, fn ConditionFunc) EngineOption {
	return func(e *Engine) {
		e.conditions[name] = fn
	}
}

// NewEngine creates an engine for a loaded pipeline and a built
// registry. Both are treated as immutable from here on.
func NewEngine(pipeline *domain.Pipeline, reg *registry.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		pipeline:   pipeline,
		registry:   reg,
		conditions: builtinConditions(),
		logger:     logging.NewNop(),
		topK:       DefaultTopK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run validates the payload and executes every configured stage
// against a fresh execution state, which it returns. The only fatal
// path is input validation; every later failure degrades to an error
// marker inside the state and the run keeps moving.
func (e *Engine) Run(ctx context.Context, payload map[string]any) (domain.State, error) {
	validated, err := validator.Validate(payload)
	if err != nil {
		e.logger.Error("input validation failed", "error", err)
		return nil, err
	}

	state := domain.NewState().Apply(validated)
	e.appendEvent(state, domain.EventRunStarted, map[string]any{
		"ticket_id":     state.GetString("ticket_id"),
		"customer_name": state.GetString("customer_name"),
	})

	for _, stage := range e.pipeline.Stages {
		e.runStage(ctx, stage, state)
	}

	e.appendEvent(state, domain.EventRunCompleted, map[string]any{
		"field_count": len(state),
		"degraded":    state.HasErrorMarkers(),
	})
	if e.hooks.OnRunCompleted != nil {
		e.hooks.OnRunCompleted(ctx, state)
	}
	return state, nil
}

func (e *Engine) runStage(ctx context.Context, stage domain.Stage, state domain.State) {
	e.appendEvent(state, domain.EventStageStart, map[string]any{
		"stage": stage.Name,
		"mode":  string(stage.Mode),
	})
	if e.hooks.OnStageStart != nil {
		e.hooks.OnStageStart(ctx, &domain.StageEvent{Stage: stage.Name, Mode: stage.Mode})
	}

	skipped := false
	switch stage.Mode {
	case domain.ModeDeterministic:
		for _, spec := range stage.Abilities {
			e.executeAbility(ctx, stage.Name, spec, state)
		}

	case domain.ModeConditional:
		if e.evalCondition(stage.Condition, state) {
			for _, spec := range stage.Abilities {
				e.executeAbility(ctx, stage.Name, spec, state)
			}
		} else {
			skipped = true
			e.logger.Info("skipping conditional stage", "stage", stage.Name, "condition", stage.Condition)
			e.appendEvent(state, domain.EventStageSkipped, map[string]any{
				"stage":     stage.Name,
				"condition": stage.Condition,
			})
		}

	case domain.ModeNonDeterministic:
		e.runScoreDriven(ctx, stage, state)
	}

	e.appendEvent(state, domain.EventStageEnd, map[string]any{"stage": stage.Name})
	if e.hooks.OnStageEnd != nil {
		e.hooks.OnStageEnd(ctx, &domain.StageEvent{Stage: stage.Name, Mode: stage.Mode, Skipped: skipped})
	}
}

// runScoreDriven implements the fixed four-step protocol of a
// non-deterministic stage: evaluate once, read the score, escalate
// below the threshold, always record. Specs without a recognized role
// never run.
func (e *Engine) runScoreDriven(ctx context.Context, stage domain.Stage, state domain.State) {
	for _, spec := range stage.Abilities {
		if spec.Role == domain.RoleEvaluator {
			e.executeAbility(ctx, stage.Name, spec, state)
			break
		}
	}

	score, _ := state.GetInt(domain.KeySolutionScore)

	if score < escalationThreshold {
		for _, spec := range stage.Abilities {
			if spec.Role == domain.RoleEscalation {
				e.executeAbility(ctx, stage.Name, spec, state)
			}
		}
	}

	for _, spec := range stage.Abilities {
		if spec.Role == domain.RoleRecord {
			e.executeAbility(ctx, stage.Name, spec, state)
		}
	}
}

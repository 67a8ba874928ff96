package flume

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/flume/internal/abilities"
	"github.com/aretw0/flume/internal/config"
	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/internal/runtime"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
	"github.com/aretw0/flume/pkg/registry"
)

// Version is the library version reported by the CLI and the MCP server.
const Version = "0.1.0"

// Engine is the high-level entry point for the Flume library. It wraps
// the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	pipeline    *domain.Pipeline
	registry    *registry.Registry
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	runtimeOpts []runtime.EngineOption
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithConnector injects the knowledge connector behind the reserved
// knowledge base abilities.
func WithConnector(c ports.KnowledgeConnector) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithConnector(c))
	}
}

// WithRegistry replaces the default ability registry. Use it to run a
// pipeline against custom abilities.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithPipeline injects an already loaded pipeline, bypassing the
// config file. configPath can be empty when this option is provided.
func WithPipeline(p *domain.Pipeline) Option {
	return func(e *Engine) {
		e.pipeline = p
	}
}

// WithTopK sets how many knowledge base candidates a search requests.
func WithTopK(k int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithTopK(k))
	}
}

// WithCondition registers an additional named condition predicate for
// conditional stages.
func WithCondition(name string, fn runtime.ConditionFunc) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithCondition(name, fn))
	}
}

// New initializes a Flume Engine from the pipeline config at
// configPath. If WithPipeline is provided, configPath can be empty and
// no file is read.
func New(configPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.pipeline == nil {
		if configPath == "" {
			return nil, fmt.Errorf("configPath is required when no pipeline is provided")
		}
		pipeline, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load pipeline config: %w", err)
		}
		eng.pipeline = pipeline
		eng.Name = filepath.Base(configPath)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("pipeline", eng.Name)
	}

	if eng.registry == nil {
		reg := registry.New()
		abilities.NewSet(abilities.WithLogger(eng.logger)).Register(reg)
		eng.registry = reg
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(eng.pipeline, eng.registry, runtimeOpts...)

	return eng, nil
}

// Run validates the payload and executes the pipeline, returning the
// final execution state. Validation failure is the only fatal error;
// ability failures degrade into error markers inside the state.
func (e *Engine) Run(ctx context.Context, payload map[string]any) (domain.State, error) {
	return e.runtime.Run(ctx, payload)
}

// Pipeline returns the loaded pipeline definition for introspection.
func (e *Engine) Pipeline() *domain.Pipeline {
	return e.pipeline
}

// Package registry binds (namespace, name) pairs to ability
// implementations. A registry is built once during setup and treated
// as immutable afterwards, so it can be shared read-only across
// concurrently executing engine instances.
package registry

import (
	"context"
	"sync"

	"github.com/aretw0/flume/pkg/domain"
)

// AbilityFunc is the uniform contract every registered unit
// implements: read the current state, return a partial update (any
// mapping is merged into the state; anything else is stored under a
// synthesized key). Abilities must not rely on ambient context beyond
// what was injected at construction time.
type AbilityFunc func(ctx context.Context, state domain.State) (any, error)

// Registry manages the available abilities across the two independent
// namespaces. The same name may map to different implementations under
// each namespace.
type Registry struct {
	mu        sync.RWMutex
	abilities map[domain.Namespace]map[string]AbilityFunc
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		abilities: make(map[domain.Namespace]map[string]AbilityFunc),
	}
}

// Register adds an ability under a namespace. If the (namespace, name)
// pair already exists, it is overwritten. Register is intended for the
// setup phase only; after the first run starts, the registry must not
// change.
func (r *Registry) Register(ns domain.Namespace, name string, fn AbilityFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.abilities[ns] == nil {
		r.abilities[ns] = make(map[string]AbilityFunc)
	}
	r.abilities[ns][name] = fn
}

// Resolve looks up an ability by namespace and name. Returns
// *domain.UnimplementedAbilityError if absent.
func (r *Registry) Resolve(ns domain.Namespace, name string) (AbilityFunc, error) {
	r.mu.RLock()
	fn, ok := r.abilities[ns][name]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.UnimplementedAbilityError{Namespace: ns, Name: name}
	}
	return fn, nil
}

// Names returns the ability names registered under a namespace.
// Intended for introspection (validate command, MCP resources).
func (r *Registry) Names(ns domain.Namespace) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.abilities[ns]))
	for name := range r.abilities[ns] {
		names = append(names, name)
	}
	return names
}

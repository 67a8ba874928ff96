package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/flume/pkg/domain"
)

// summaryCap bounds the number of key/value pairs carried in an
// ability_end event. Full output lives only in the state.
const summaryCap = 5

// Reserved ability names that bypass the registry and go straight to
// the knowledge connector.
func isKnowledgeSearch(name string) bool {
	return name == "knowledge_base_search" || name == "faq_query"
}

// executeAbility resolves and invokes one ability spec, merges its
// output into the state and records any failure as a state-embedded
// marker. It never aborts the run.
func (e *Engine) executeAbility(ctx context.Context, stageName string, spec domain.AbilitySpec, state domain.State) {
	e.appendEvent(state, domain.EventAbilityStart, map[string]any{
		"stage":     stageName,
		"ability":   spec.Name,
		"namespace": string(spec.Namespace),
	})
	if e.hooks.OnAbilityStart != nil {
		e.hooks.OnAbilityStart(ctx, &domain.AbilityEvent{
			Stage: stageName, Ability: spec.Name, Namespace: spec.Namespace,
		})
	}

	result, err := e.invoke(ctx, stageName, spec, state)
	if err != nil {
		e.recordFailure(state, stageName, spec.Name, err)
	} else if update, ok := result.(map[string]any); ok {
		state.Apply(update)
	} else {
		if result == nil {
			result = "done"
		}
		state[fmt.Sprintf("%s_%s", stageName, spec.Name)] = result
	}

	summary := summarize(result)
	e.appendEvent(state, domain.EventAbilityEnd, map[string]any{
		"stage":   stageName,
		"ability": spec.Name,
		"summary": summary,
		"error":   err != nil,
	})
	if e.hooks.OnAbilityEnd != nil {
		e.hooks.OnAbilityEnd(ctx, &domain.AbilityEvent{
			Stage: stageName, Ability: spec.Name, Namespace: spec.Namespace,
			Summary: summary, IsError: err != nil,
		})
	}
}

func (e *Engine) invoke(ctx context.Context, stageName string, spec domain.AbilitySpec, state domain.State) (any, error) {
	if isKnowledgeSearch(spec.Name) {
		return e.searchKnowledgeBase(ctx, state)
	}

	fn, err := e.registry.Resolve(spec.Namespace, spec.Name)
	if err != nil {
		e.logger.Warn("unresolved ability", "stage", stageName, "ability", spec.Name, "namespace", spec.Namespace)
		return nil, err
	}

	result, err := fn(ctx, state)
	if err != nil {
		var connErr *domain.ConnectorError
		if errors.As(err, &connErr) {
			return nil, err
		}
		return nil, &domain.AbilityExecutionError{Stage: stageName, Ability: spec.Name, Err: err}
	}
	return result, nil
}

// searchKnowledgeBase services the reserved knowledge base abilities:
// query the connector, store ranked results, derive the fixed-constant
// confidence and the top answer. A connector failure surfaces as
// *domain.ConnectorError and is recorded distinctly from an empty
// result set.
func (e *Engine) searchKnowledgeBase(ctx context.Context, state domain.State) (any, error) {
	query := state.GetString(domain.KeyQuery)
	if query == "" {
		e.logger.Warn("knowledge base search with empty query")
		return map[string]any{
			domain.KeyKBResults:    []domain.Answer{},
			domain.KeyKBConfidence: 0.0,
			domain.KeyKBAnswer:     domain.NoAnswerSentinel,
		}, nil
	}

	if e.connector == nil {
		return nil, &domain.ConnectorError{Query: query, Err: errors.New("no knowledge connector configured")}
	}

	results, err := e.connector.Search(ctx, query, e.topK)
	if err != nil {
		return nil, &domain.ConnectorError{Query: query, Err: err}
	}

	update := map[string]any{
		domain.KeyKBResults:    results,
		domain.KeyKBConfidence: 0.0,
		domain.KeyKBAnswer:     domain.NoAnswerSentinel,
	}
	if len(results) > 0 {
		update[domain.KeyKBConfidence] = 0.85
		update[domain.KeyKBAnswer] = results[0].Answer
	}
	return update, nil
}

// recordFailure embeds an error marker for this stage+ability slot
// into the state. The marker kind distinguishes an unresolved name, a
// failing ability and a failing connector.
func (e *Engine) recordFailure(state domain.State, stageName, abilityName string, err error) {
	kind := "execution_error"
	var unimpl *domain.UnimplementedAbilityError
	var connErr *domain.ConnectorError
	switch {
	case errors.As(err, &unimpl):
		kind = "unimplemented_ability"
	case errors.As(err, &connErr):
		kind = "connector_error"
	}

	e.logger.Error("ability failed", "stage", stageName, "ability", abilityName, "kind", kind, "error", err)

	state.Apply(map[string]any{
		domain.KeyErrors: map[string]any{
			stageName: map[string]any{
				abilityName: map[string]any{
					"kind":    kind,
					"message": err.Error(),
				},
			},
		},
	})
}

// summarize caps an ability result for event payloads: the first
// summaryCap pairs in key order, with non-primitive values replaced by
// their type name.
func summarize(result any) map[string]any {
	m, ok := result.(map[string]any)
	if !ok {
		if result == nil {
			return nil
		}
		return map[string]any{"result": stringifyIfComplex(result)}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > summaryCap {
		keys = keys[:summaryCap]
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = stringifyIfComplex(m[k])
	}
	return out
}

func stringifyIfComplex(v any) any {
	switch v.(type) {
	case string, bool, int, int64, float64, nil:
		return v
	default:
		return fmt.Sprintf("%T", v)
	}
}

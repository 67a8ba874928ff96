package runtime

import "github.com/aretw0/flume/pkg/domain"

// ConditionFunc is a boolean predicate over the current state,
// resolved by name when a conditional stage is reached.
type ConditionFunc func(state domain.State) bool

// builtinConditions returns the predicates every engine knows about.
func builtinConditions() map[string]ConditionFunc {
	return map[string]ConditionFunc{
		// missing_entities holds when nothing has been extracted yet.
		"missing_entities": func(state domain.State) bool {
			return len(state.GetMap(domain.KeyEntities)) == 0
		},
		// low_confidence holds when the solution score is below 80.
		// An unset score counts as confident (100), matching the
		// behavior before any evaluator has run.
		"low_confidence": func(state domain.State) bool {
			score, ok := state.GetInt(domain.KeySolutionScore)
			if !ok {
				score = 100
			}
			return score < 80
		},
	}
}

// evalCondition resolves a condition name and evaluates it. An
// unrecognized name is non-fatal and evaluates to false, so the stage
// is skipped rather than the run aborted.
func (e *Engine) evalCondition(name string, state domain.State) bool {
	fn, ok := e.conditions[name]
	if !ok {
		e.logger.Warn("unknown condition, skipping stage", "condition", name)
		return false
	}
	return fn(state)
}

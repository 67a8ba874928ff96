package runtime

import (
	"testing"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/registry"
	"github.com/stretchr/testify/assert"
)

func TestConditions_MissingEntities(t *testing.T) {
	eng := NewEngine(&domain.Pipeline{}, registry.New())

	state := domain.NewState()
	assert.True(t, eng.evalCondition("missing_entities", state))

	state.Apply(map[string]any{domain.KeyEntities: map[string]any{"order_id": "123"}})
	assert.False(t, eng.evalCondition("missing_entities", state))
}

func TestConditions_LowConfidence(t *testing.T) {
	eng := NewEngine(&domain.Pipeline{}, registry.New())

	state := domain.NewState()
	assert.False(t, eng.evalCondition("low_confidence", state), "unset score counts as confident")

	state.Apply(map[string]any{domain.KeySolutionScore: 79})
	assert.True(t, eng.evalCondition("low_confidence", state))

	state.Apply(map[string]any{domain.KeySolutionScore: 80})
	assert.False(t, eng.evalCondition("low_confidence", state))
}

func TestConditions_UnknownIsFalse(t *testing.T) {
	eng := NewEngine(&domain.Pipeline{}, registry.New())
	assert.False(t, eng.evalCondition("not_a_condition", domain.NewState()))
}

func TestConditions_CustomRegistration(t *testing.T) {
	eng := NewEngine(&domain.Pipeline{}, registry.New(),
		WithCondition("always", func(state domain.State) bool { return true }))
	assert.True(t, eng.evalCondition("always", domain.NewState()))
}

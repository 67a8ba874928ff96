package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_MappingUnion(t *testing.T) {
	old := map[string]any{
		"entities": map[string]any{"order_id": "123", "intent": "refund_request"},
		"priority": "High",
	}
	update := map[string]any{
		"entities": map[string]any{"order_id": "456", "issue": "delivery_delay"},
	}

	out := Merge(old, update)

	ents, ok := out["entities"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "456", ents["order_id"], "new keys win on conflict")
	assert.Equal(t, "refund_request", ents["intent"], "existing keys survive")
	assert.Equal(t, "delivery_delay", ents["issue"])
	assert.Equal(t, "High", out["priority"])
}

func TestMerge_NonMappingOverwrites(t *testing.T) {
	old := map[string]any{"kb_results": []any{"a", "b"}, "score": 10}
	update := map[string]any{"kb_results": []any{"c"}, "score": map[string]any{"v": 1}}

	out := Merge(old, update)

	assert.Equal(t, []any{"c"}, out["kb_results"], "sequences are last-write-wins")
	assert.Equal(t, map[string]any{"v": 1}, out["score"], "type change is last-write-wins")
}

func TestMerge_RecursesNestedMappings(t *testing.T) {
	old := map[string]any{
		"meta": map[string]any{
			"sla": map[string]any{"policy": "Standard-48h", "hours": 48},
		},
	}
	update := map[string]any{
		"meta": map[string]any{
			"sla": map[string]any{"hours": 24},
		},
	}

	out := Merge(old, update)

	sla := out["meta"].(map[string]any)["sla"].(map[string]any)
	assert.Equal(t, "Standard-48h", sla["policy"])
	assert.Equal(t, 24, sla["hours"])
}

func TestMerge_EmptyUpdateIsIdentity(t *testing.T) {
	old := map[string]any{"a": 1, "b": map[string]any{"c": 2}}

	out := Merge(old, map[string]any{})

	assert.Equal(t, old, out)
}

func TestMerge_CommutesForDisjointKeys(t *testing.T) {
	base := map[string]any{"seed": true}
	a := map[string]any{"x": 1}
	b := map[string]any{"y": map[string]any{"z": 2}}

	ab := Merge(Merge(base, a), b)
	ba := Merge(Merge(base, b), a)

	assert.Equal(t, ab, ba)
}

func TestMerge_IsPure(t *testing.T) {
	old := map[string]any{"entities": map[string]any{"order_id": "123"}}
	update := map[string]any{"entities": map[string]any{"intent": "refund_request"}}

	_ = Merge(old, update)

	assert.Equal(t, map[string]any{"order_id": "123"}, old["entities"], "old must not be mutated")
	assert.Equal(t, map[string]any{"intent": "refund_request"}, update["entities"], "update must not be mutated")
}

func TestStateApply_FollowsMergeRule(t *testing.T) {
	s := NewState()
	s.Apply(map[string]any{"entities": map[string]any{"order_id": "123"}})
	s.Apply(map[string]any{"entities": map[string]any{"intent": "refund_request"}})

	ents := s.GetMap(KeyEntities)
	assert.Equal(t, "123", ents["order_id"])
	assert.Equal(t, "refund_request", ents["intent"])
}

package flume_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flume"
	"github.com/aretw0/flume/internal/connector"
	"github.com/aretw0/flume/pkg/domain"
)

const testConfig = `
stages:
  - name: INTAKE
    mode: deterministic
    abilities:
      - name: accept_payload
        namespace: common
      - name: parse_request_text
        namespace: common
      - name: normalize_fields
        namespace: common
  - name: RETRIEVE
    mode: deterministic
    abilities:
      - name: knowledge_base_search
        namespace: common
      - name: store_data
        namespace: atlas
  - name: CLARIFY
    mode: conditional
    condition: missing_entities
    abilities:
      - name: clarify_question
        namespace: atlas
  - name: DECIDE
    mode: non-deterministic
    abilities:
      - name: solution_evaluation
        namespace: common
        role: evaluator
      - name: escalation_decision
        namespace: atlas
        role: escalation
      - name: update_payload
        namespace: common
        role: record
  - name: CREATE
    mode: deterministic
    abilities:
      - name: response_generation
        namespace: common
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func corpus() *connector.Memory {
	return connector.NewMemory([]connector.Entry{
		{ID: "faq-1", Question: "Where is my order, it has not arrived", Answer: "Your order ships within 48 hours."},
		{ID: "faq-2", Question: "How do I request a refund", Answer: "Refunds are handled on the refunds page."},
	})
}

func TestEngine_EndToEnd(t *testing.T) {
	eng, err := flume.New(writeConfig(t), flume.WithConnector(corpus()))
	require.NoError(t, err)

	state, err := eng.Run(context.Background(), map[string]any{
		"customer_name": "Alice",
		"email":         "ALICE@X.com",
		"query":         "My order #123 has not arrived",
		"priority":      "high",
		"ticket_id":     "",
	})
	require.NoError(t, err)

	// Normalization ran.
	assert.Equal(t, "alice@x.com", state.GetString("email"))
	assert.Equal(t, "High", state.GetString("priority"))

	// The knowledge base produced an answer.
	answers, ok := state.Get(domain.KeyKBResults).([]domain.Answer)
	require.True(t, ok)
	require.NotEmpty(t, answers)
	assert.Equal(t, "faq-1", answers[0].ID)
	assert.NotEqual(t, domain.NoAnswerSentinel, state.GetString(domain.KeyKBAnswer))

	// A response was generated and the run left a full event trail.
	assert.NotEmpty(t, state.GetString(domain.KeyResponse))
	events := state.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventRunStarted, events[0].Type)
	assert.Equal(t, domain.EventRunCompleted, events[len(events)-1].Type)
	assert.False(t, state.HasErrorMarkers())
}

// Three knowledge base hits put the evaluator exactly at the
// resolution threshold; the decision abilities must still leave a
// status behind on that side of the branch.
func TestEngine_ShippedConfigResolvesAtScoreBoundary(t *testing.T) {
	conn := connector.NewMemory([]connector.Entry{
		{ID: "faq-1", Question: "Where is my order", Answer: "Check the tracking link in your confirmation email."},
		{ID: "faq-2", Question: "Order has not arrived yet", Answer: "Orders ship within 48 hours."},
		{ID: "faq-3", Question: "My order arrived damaged", Answer: "Submit a replacement request with a photo."},
	})

	eng, err := flume.New("config/stages.yaml", flume.WithConnector(conn))
	require.NoError(t, err)

	state, err := eng.Run(context.Background(), map[string]any{
		"customer_name": "Alice",
		"email":         "alice@x.com",
		"query":         "My order has not arrived",
		"priority":      "",
		"ticket_id":     "",
	})
	require.NoError(t, err)

	score, ok := state.GetInt(domain.KeySolutionScore)
	require.True(t, ok)
	require.Equal(t, 90, score, "three hits score exactly at the threshold")

	require.NotEmpty(t, state.GetString(domain.KeyTicketStatus))
	assert.Equal(t, domain.TicketStatusResolved, state.GetString(domain.KeyTicketStatus))
	assert.Equal(t, true, state.Get("ticket_closed"))
	assert.Equal(t, "TKT-0001", state.GetString("ticket_id"))
	assert.NotEmpty(t, state.GetString(domain.KeyResponse))
	assert.False(t, state.HasErrorMarkers())
}

func TestEngine_EscalatesWithoutKnowledgeBase(t *testing.T) {
	eng, err := flume.New(writeConfig(t))
	require.NoError(t, err)

	state, err := eng.Run(context.Background(), map[string]any{
		"customer_name": "Bob",
		"email":         "bob@x.com",
		"query":         "Something entirely unrelated",
		"priority":      "",
		"ticket_id":     "",
	})
	require.NoError(t, err)

	// No connector is wired, so the search records a marker and the
	// evaluator scores the run below the resolution threshold.
	assert.True(t, state.HasErrorMarkers())
	assert.Equal(t, domain.TicketStatusNeedsEscalation, state.GetString(domain.KeyTicketStatus))
}

func TestEngine_ValidationIsFatal(t *testing.T) {
	eng, err := flume.New(writeConfig(t))
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), map[string]any{
		"customer_name": "Alice",
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestEngine_WithPipelineSkipsConfigFile(t *testing.T) {
	pipeline := &domain.Pipeline{Stages: []domain.Stage{
		{
			Name: "INTAKE",
			Mode: domain.ModeDeterministic,
			Abilities: []domain.AbilitySpec{
				{Name: "accept_payload", Namespace: domain.NamespaceCommon},
			},
		},
	}}

	eng, err := flume.New("", flume.WithPipeline(pipeline))
	require.NoError(t, err)
	assert.Equal(t, pipeline, eng.Pipeline())

	state, err := eng.Run(context.Background(), map[string]any{
		"customer_name": "Alice",
		"email":         "alice@x.com",
		"query":         "hi",
		"priority":      "",
		"ticket_id":     "",
	})
	require.NoError(t, err)
	assert.False(t, state.HasErrorMarkers())
}

func TestEngine_RequiresConfigOrPipeline(t *testing.T) {
	_, err := flume.New("")
	assert.Error(t, err)
}

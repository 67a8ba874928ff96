package abilities

import (
	"testing"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEntities(t *testing.T) {
	s := NewSet()

	t.Run("recognized markers", func(t *testing.T) {
		state := domain.NewState().Apply(map[string]any{
			"raw_query": "I want a refund, my invoice order is late",
		})
		apply(t, s.extractEntities, state)

		ents := state.GetMap(domain.KeyEntities)
		assert.Equal(t, "refund_request", ents["intent"])
		assert.Equal(t, "delivery_delay", ents["issue"])
		assert.Equal(t, "invoice_service", ents["product"])
		assert.Equal(t, 0.9, state.Get("confidence"))
	})

	t.Run("nothing recognized", func(t *testing.T) {
		state := domain.NewState().Apply(map[string]any{"raw_query": "hello there"})
		apply(t, s.extractEntities, state)

		assert.Empty(t, state.GetMap(domain.KeyEntities))
		assert.Equal(t, 0.5, state.Get("confidence"))
	})

	t.Run("falls back to query field", func(t *testing.T) {
		state := domain.NewState().Apply(map[string]any{"query": "package is late"})
		apply(t, s.extractEntities, state)

		assert.Equal(t, "delivery_delay", state.GetMap(domain.KeyEntities)["issue"])
	})
}

func TestEnrichRecords_CountsHistory(t *testing.T) {
	s := NewSet(WithClock(fixedClock()))
	state := domain.NewState()

	apply(t, s.enrichRecords, state)
	apply(t, s.enrichRecords, state)

	meta := state.GetMap(domain.KeyMeta)
	assert.Equal(t, "Standard-48h", meta["sla_policy"])
	assert.Equal(t, 2, meta["historical_tickets"])
	assert.Equal(t, "2025-06-01T12:00:00Z", meta["received_utc"])
}

func TestClarifyQuestion(t *testing.T) {
	s := NewSet()

	t.Run("missing fields", func(t *testing.T) {
		state := domain.NewState()
		apply(t, s.clarifyQuestion, state)
		assert.Equal(t, "Please share missing details: order_id, intent.", state.GetString("clarifying_question"))
	})

	t.Run("nothing missing", func(t *testing.T) {
		state := domain.NewState().Apply(map[string]any{
			domain.KeyEntities: map[string]any{"order_id": "123", "intent": "refund_request"},
		})
		apply(t, s.clarifyQuestion, state)
		assert.Empty(t, state.GetString("clarifying_question"))
	})
}

func TestStoreAnswer_FoldsIDIntoEntities(t *testing.T) {
	s := NewSet()
	state := domain.NewState().Apply(map[string]any{"clarification_answer": "Order id is #12345"})

	apply(t, s.storeAnswer, state)

	assert.Equal(t, "12345", state.GetMap(domain.KeyEntities)["order_id"])
	answers, ok := state.Get("answers").([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"Order id is #12345"}, answers)
}

func TestExtractAnswer_KeepsExisting(t *testing.T) {
	s := NewSet()
	state := domain.NewState().Apply(map[string]any{"clarification_answer": "already here"})

	apply(t, s.extractAnswer, state)

	assert.Equal(t, "already here", state.GetString("clarification_answer"))
}

func TestStoreData(t *testing.T) {
	s := NewSet()
	state := domain.NewState().Apply(map[string]any{
		domain.KeyKBResults: []domain.Answer{
			{Answer: "first answer", Score: 0.9},
			{Answer: "second answer", Score: 0.4},
		},
	})

	apply(t, s.storeData, state)

	hits, _ := state.GetInt("kb_hits")
	assert.Equal(t, 2, hits)
	assert.Equal(t, "first answer", state.GetString("kb_top_answer"))
}

func TestEscalationDecision(t *testing.T) {
	s := NewSet()

	t.Run("below threshold", func(t *testing.T) {
		state := domain.NewState().Apply(map[string]any{domain.KeySolutionScore: 80})
		apply(t, s.escalationDecision, state)
		assert.Equal(t, "human_agent", state.GetString("escalate_to"))
		assert.Equal(t, domain.TicketStatusNeedsEscalation, state.GetString(domain.KeyTicketStatus))
	})

	t.Run("at threshold", func(t *testing.T) {
		state := domain.NewState().Apply(map[string]any{domain.KeySolutionScore: 90})
		apply(t, s.escalationDecision, state)
		assert.Empty(t, state.GetString("escalate_to"))
		assert.Equal(t, domain.TicketStatusResolved, state.GetString(domain.KeyTicketStatus))
	})
}

func TestUpdateTicket_DefaultsID(t *testing.T) {
	s := NewSet(WithClock(fixedClock()))

	state := domain.NewState().Apply(map[string]any{"ticket_id": ""})
	apply(t, s.updateTicket, state)
	assert.Equal(t, "TKT-0001", state.GetString("ticket_id"))

	state = domain.NewState().Apply(map[string]any{"ticket_id": "TKT-5678"})
	apply(t, s.updateTicket, state)
	assert.Equal(t, "TKT-5678", state.GetString("ticket_id"))
	assert.Equal(t, "2025-06-01T12:00:00Z", state.GetMap(domain.KeyMeta)["last_update_utc"])
}

func TestUpdateTicket_DefaultsStatusToPending(t *testing.T) {
	s := NewSet()

	state := domain.NewState()
	apply(t, s.updateTicket, state)
	assert.Equal(t, domain.TicketStatusPending, state.GetString(domain.KeyTicketStatus))

	state = domain.NewState().Apply(map[string]any{domain.KeyTicketStatus: domain.TicketStatusResolved})
	apply(t, s.updateTicket, state)
	assert.Equal(t, domain.TicketStatusResolved, state.GetString(domain.KeyTicketStatus), "a decided status is never overwritten")
}

func TestCloseTicket(t *testing.T) {
	s := NewSet()

	state := domain.NewState().Apply(map[string]any{domain.KeyTicketStatus: domain.TicketStatusResolved})
	apply(t, s.closeTicket, state)
	assert.Equal(t, true, state.Get("ticket_closed"))

	state = domain.NewState().Apply(map[string]any{domain.KeyTicketStatus: domain.TicketStatusNeedsEscalation})
	apply(t, s.closeTicket, state)
	assert.Nil(t, state.Get("ticket_closed"))
}

func TestTriggerNotifications(t *testing.T) {
	s := NewSet()
	state := domain.NewState()

	apply(t, s.triggerNotifications, state)

	assert.Equal(t, true, state.Get("notified"))
}

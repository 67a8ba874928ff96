package abilities

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/flume/pkg/domain"
)

var numericIDPattern = regexp.MustCompile(`#?\d+`)

// extractEntities identifies product, issue and intent. A pragmatic
// keyword heuristic stands in for the external enrichment system so
// the pipeline is functional out of the box.
func (s *Set) extractEntities(ctx context.Context, state domain.State) (any, error) {
	text := state.GetString("raw_query")
	if text == "" {
		text = state.GetString(domain.KeyQuery)
	}
	text = strings.ToLower(text)

	ents := map[string]any{}
	if strings.Contains(text, "refund") {
		ents["intent"] = "refund_request"
	}
	for _, marker := range []string{"delay", "late", "haven't arrived", "hasn’t arrived"} {
		if strings.Contains(text, marker) {
			ents["issue"] = "delivery_delay"
			break
		}
	}
	if strings.Contains(text, "invoice") {
		ents["product"] = "invoice_service"
	}

	confidence := 0.5
	if len(ents) > 0 {
		confidence = 0.9
	}

	update := map[string]any{"confidence": confidence}
	if len(ents) > 0 {
		update[domain.KeyEntities] = ents
	}
	return update, nil
}

// enrichRecords simulates pulling SLA policy and historical data from
// an external record system.
func (s *Set) enrichRecords(ctx context.Context, state domain.State) (any, error) {
	historical := 0
	if meta := state.GetMap(domain.KeyMeta); meta != nil {
		switch n := meta["historical_tickets"].(type) {
		case int:
			historical = n
		case float64:
			historical = int(n)
		}
	}

	return map[string]any{
		domain.KeyMeta: map[string]any{
			"sla_policy":         "Standard-48h",
			"historical_tickets": historical + 1,
			"received_utc":       s.timestamp(),
		},
	}, nil
}

// clarifyQuestion asks for missing critical fields through the human
// or CRM channel.
func (s *Set) clarifyQuestion(ctx context.Context, state domain.State) (any, error) {
	ents := state.GetMap(domain.KeyEntities)

	var missing []string
	if _, ok := ents["order_id"]; !ok {
		missing = append(missing, "order_id")
	}
	if _, ok := ents["intent"]; !ok {
		missing = append(missing, "intent")
	}

	if len(missing) == 0 {
		return map[string]any{}, nil
	}
	return map[string]any{
		"clarifying_question": fmt.Sprintf("Please share missing details: %s.", strings.Join(missing, ", ")),
	}, nil
}

// extractAnswer captures a concise answer from the user channel. A
// stub response keeps deterministic demo runs working when no real
// channel is attached.
func (s *Set) extractAnswer(ctx context.Context, state domain.State) (any, error) {
	if _, ok := state["clarification_answer"]; ok {
		return map[string]any{}, nil
	}
	return map[string]any{"clarification_answer": "Order id is #12345"}, nil
}

// storeAnswer folds the clarification answer back into the entities.
func (s *Set) storeAnswer(ctx context.Context, state domain.State) (any, error) {
	ans := state.GetString("clarification_answer")

	update := map[string]any{}
	if m := numericIDPattern.FindString(ans); m != "" {
		update[domain.KeyEntities] = map[string]any{"order_id": strings.TrimPrefix(m, "#")}
	}

	answers, _ := state.Get("answers").([]any)
	update["answers"] = append(answers, ans)
	return update, nil
}

// storeData attaches derived knowledge base fields for later scoring.
func (s *Set) storeData(ctx context.Context, state domain.State) (any, error) {
	hits := answerCount(state.Get(domain.KeyKBResults))
	if hits == 0 {
		return map[string]any{}, nil
	}

	update := map[string]any{"kb_hits": hits}
	if answers, ok := state.Get(domain.KeyKBResults).([]domain.Answer); ok {
		update["kb_top_answer"] = answers[0].Answer
	}
	return update, nil
}

// escalationDecision assigns the ticket to a human when the solution
// score is below the resolution threshold.
func (s *Set) escalationDecision(ctx context.Context, state domain.State) (any, error) {
	score, _ := state.GetInt(domain.KeySolutionScore)

	if score < 90 {
		return map[string]any{
			"escalate_to":          "human_agent",
			domain.KeyTicketStatus: domain.TicketStatusNeedsEscalation,
		}, nil
	}
	return map[string]any{domain.KeyTicketStatus: domain.TicketStatusResolved}, nil
}

// updateTicket simulates the CRM status update. It also backstops the
// run contract: every finished run must carry a ticket id and a status,
// so both get defaults here when nothing upstream decided them.
func (s *Set) updateTicket(ctx context.Context, state domain.State) (any, error) {
	update := map[string]any{
		domain.KeyMeta: map[string]any{"last_update_utc": s.timestamp()},
	}
	if state.GetString("ticket_id") == "" {
		update["ticket_id"] = "TKT-0001"
	}
	if state.GetString(domain.KeyTicketStatus) == "" {
		update[domain.KeyTicketStatus] = domain.TicketStatusPending
	}
	return update, nil
}

// closeTicket closes the ticket when it resolved.
func (s *Set) closeTicket(ctx context.Context, state domain.State) (any, error) {
	if state.GetString(domain.KeyTicketStatus) != domain.TicketStatusResolved {
		return map[string]any{}, nil
	}
	return map[string]any{"ticket_closed": true}, nil
}

// executeAPICalls triggers downstream side effects (shipments,
// refunds). Mocked: it records the action instead of performing it.
func (s *Set) executeAPICalls(ctx context.Context, state domain.State) (any, error) {
	actions, _ := state.Get("actions").([]any)
	return map[string]any{
		"actions": append(actions, map[string]any{"type": "noop", "ts": s.timestamp()}),
	}, nil
}

// triggerNotifications notifies the customer through the outbox (mock).
func (s *Set) triggerNotifications(ctx context.Context, state domain.State) (any, error) {
	s.logger.Info("notify customer",
		"ticket_id", state.GetString("ticket_id"),
		"status", state.GetString(domain.KeyTicketStatus),
		"email", state.GetString("email"),
	)
	return map[string]any{"notified": true}, nil
}

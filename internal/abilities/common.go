package abilities

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/flume/pkg/domain"
)

var orderIDPattern = regexp.MustCompile(`#\d+`)

// acceptPayload ensures the required request fields exist so later
// stages never hit a missing key. Idempotent.
func (s *Set) acceptPayload(ctx context.Context, state domain.State) (any, error) {
	update := map[string]any{}
	for _, field := range []string{"customer_name", "email", "query", "priority", "ticket_id"} {
		if _, ok := state[field]; !ok {
			update[field] = ""
		}
	}
	return update, nil
}

// parseRequestText converts the unstructured query into a simple
// structure, extracting obvious patterns deterministically.
func (s *Set) parseRequestText(ctx context.Context, state domain.State) (any, error) {
	text := state.GetString(domain.KeyQuery)

	update := map[string]any{
		"raw_query":           text,
		"parsed_query_tokens": strings.Fields(text),
	}
	if m := orderIDPattern.FindString(text); m != "" {
		update[domain.KeyEntities] = map[string]any{"order_id": m}
	}
	return update, nil
}

// normalizeFields standardizes fields: emails lowercased, priority
// title-cased into the known set, order id stripped of its '#'.
func (s *Set) normalizeFields(ctx context.Context, state domain.State) (any, error) {
	email := strings.TrimSpace(state.GetString("email"))

	priority := strings.TrimSpace(state.GetString("priority"))
	if priority == "" {
		priority = "Normal"
	}
	priority = strings.ToLower(priority)
	priority = strings.ToUpper(priority[:1]) + priority[1:]
	switch priority {
	case "Low", "Normal", "High", "Urgent":
	default:
		priority = "Normal"
	}

	update := map[string]any{
		"email":    strings.ToLower(email),
		"priority": priority,
	}

	ents := state.GetMap(domain.KeyEntities)
	if oid, ok := ents["order_id"].(string); ok && strings.HasPrefix(oid, "#") {
		update[domain.KeyEntities] = map[string]any{"order_id": oid[1:]}
	}
	return update, nil
}

// addFlagsCalculations computes SLA risk and priority flags.
func (s *Set) addFlagsCalculations(ctx context.Context, state domain.State) (any, error) {
	priority := state.GetString("priority")
	ents := state.GetMap(domain.KeyEntities)

	return map[string]any{
		domain.KeyFlags: map[string]any{
			"is_high_priority": priority == "High" || priority == "Urgent",
			"sla_risk":         ents["issue"] == "delivery_delay",
		},
	}, nil
}

// solutionEvaluation scores the candidate solution 0-100. Simple
// linear heuristic: more knowledge base hits raise the score, capped
// at four hits.
func (s *Set) solutionEvaluation(ctx context.Context, state domain.State) (any, error) {
	hits, ok := state.GetInt("kb_hits")
	if !ok {
		hits = answerCount(state.Get(domain.KeyKBResults))
	}

	if hits > 4 {
		hits = 4
	}
	score := 60 + 10*hits

	decision := "consider_escalation"
	if score >= 90 {
		decision = "resolve"
	}
	return map[string]any{
		domain.KeySolutionScore: score,
		"decision":              decision,
	}, nil
}

// responseGeneration drafts the customer reply: the knowledge base
// answer when the ticket resolved, otherwise a handoff message.
func (s *Set) responseGeneration(ctx context.Context, state domain.State) (any, error) {
	status := state.GetString(domain.KeyTicketStatus)
	topAnswer := state.GetString("kb_top_answer")

	var msg string
	switch {
	case status == domain.TicketStatusResolved && topAnswer != "":
		msg = topAnswer
	case answerCount(state.Get(domain.KeyKBResults)) > 0:
		if answers, ok := state.Get(domain.KeyKBResults).([]domain.Answer); ok && answers[0].Answer != "" {
			msg = answers[0].Answer
		} else {
			msg = "We found a solution for your request."
		}
	default:
		msg = "Thanks for the details. Your query has been assigned to a support specialist."
	}
	return map[string]any{domain.KeyResponse: msg}, nil
}

// updatePayload records the decision outcome in a stable structure.
func (s *Set) updatePayload(ctx context.Context, state domain.State) (any, error) {
	score, _ := state.GetInt(domain.KeySolutionScore)

	entry := map[string]any{
		"score":         score,
		"decision":      state.GetString("decision"),
		"ticket_status": state.GetString(domain.KeyTicketStatus),
		"ts":            s.timestamp(),
	}

	log, _ := state.Get("decision_log").([]any)
	return map[string]any{"decision_log": append(log, entry)}, nil
}

// outputPayload assembles the structured summary of the run under a
// single key, leaving the working fields untouched.
func (s *Set) outputPayload(ctx context.Context, state domain.State) (any, error) {
	hits, _ := state.GetInt("kb_hits")
	score, _ := state.GetInt(domain.KeySolutionScore)
	notified, _ := state.Get("notified").(bool)

	return map[string]any{
		"final_payload": map[string]any{
			"ticket_id":      state.GetString("ticket_id"),
			"customer_name":  state.GetString("customer_name"),
			"status":         state.GetString(domain.KeyTicketStatus),
			"escalate_to":    state.GetString("escalate_to"),
			"confidence":     state.Get(domain.KeyKBConfidence),
			"solution_score": score,
			"entities":       state.GetMap(domain.KeyEntities),
			"flags":          state.GetMap(domain.KeyFlags),
			"response":       state.GetString(domain.KeyResponse),
			"kb_hits":        hits,
			"notified":       notified,
		},
	}, nil
}

func answerCount(v any) int {
	switch answers := v.(type) {
	case []domain.Answer:
		return len(answers)
	case []any:
		return len(answers)
	}
	return 0
}

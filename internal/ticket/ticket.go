// Package ticket derives and persists the business record produced by
// a run. Persistence lives outside the engine: only the HTTP layer and
// the CLI touch these stores.
package ticket

import (
	"time"

	"github.com/aretw0/flume/pkg/domain"
)

// ResolvedScoreThreshold is the minimum similarity of the best
// knowledge base candidate for a ticket to count as resolved. Below
// it the ticket stays pending.
const ResolvedScoreThreshold = 0.25

// FromState derives a ticket from a finished run. A run with zero
// knowledge base results is never marked resolved.
func FromState(state domain.State, ticketID string, now time.Time) *domain.Ticket {
	answers, _ := state.Get(domain.KeyKBResults).([]domain.Answer)

	response := state.GetString(domain.KeyResponse)
	if response == "" {
		response = state.GetString(domain.KeyKBAnswer)
	}
	if response == "" {
		response = domain.NoAnswerSentinel
	}

	status := domain.TicketStatusPending
	if len(answers) > 0 && answers[0].Score >= ResolvedScoreThreshold {
		status = domain.TicketStatusResolved
	}
	if state.GetString(domain.KeyTicketStatus) == domain.TicketStatusNeedsEscalation {
		status = domain.TicketStatusNeedsEscalation
	}

	alternatives := make([]domain.Alternative, 0, len(answers))
	for _, a := range answers {
		alternatives = append(alternatives, domain.Alternative{Answer: a.Answer, Score: a.Score})
	}

	return &domain.Ticket{
		TicketID:     ticketID,
		CustomerName: state.GetString("customer_name"),
		Email:        state.GetString("email"),
		Query:        state.GetString(domain.KeyQuery),
		Response:     response,
		Alternatives: alternatives,
		Status:       status,
		Timestamp:    now.UTC(),
	}
}

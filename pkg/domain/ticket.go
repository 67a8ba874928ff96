package domain

import "time"

// Ticket statuses produced by a run. A run that found no confident
// answer stays pending; it is never marked resolved.
const (
	TicketStatusResolved        = "resolved"
	TicketStatusPending         = "pending"
	TicketStatusNeedsEscalation = "needs_escalation"
)

// Answer is one ranked knowledge base candidate. Score is a
// higher-is-better similarity in [0, 1]; results are ordered best
// match first by the connector.
type Answer struct {
	ID       string         `json:"id"`
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Alternative is a secondary answer candidate attached to a ticket.
type Alternative struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// Ticket is the derived business record the HTTP layer persists after
// a run. The engine itself never stores tickets.
type Ticket struct {
	TicketID     string        `json:"ticket_id"`
	CustomerName string        `json:"customer_name"`
	Email        string        `json:"email"`
	Query        string        `json:"query"`
	Response     string        `json:"response"`
	Alternatives []Alternative `json:"alternatives"`
	Status       string        `json:"status"`
	Timestamp    time.Time     `json:"timestamp"`
}

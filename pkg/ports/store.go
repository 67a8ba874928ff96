package ports

import (
	"context"

	"github.com/aretw0/flume/pkg/domain"
)

// TicketStore persists the business records derived from runs. The
// engine never touches it; only the HTTP layer and the CLI do.
type TicketStore interface {
	// Save persists a ticket, overwriting any ticket with the same ID.
	Save(ctx context.Context, ticket *domain.Ticket) error

	// Get loads a ticket by ID. Returns domain.ErrTicketNotFound if absent.
	Get(ctx context.Context, ticketID string) (*domain.Ticket, error)

	// List returns all stored tickets in insertion order.
	List(ctx context.Context) ([]domain.Ticket, error)

	// NextID allocates the next sequential ticket identifier (TKT-001,
	// TKT-002, ...).
	NextID(ctx context.Context) (string, error)
}

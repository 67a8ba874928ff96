// Package portstest holds reusable conformance suites for the driven
// ports. It is imported by adapter tests only, so testing helpers stay
// out of the production import graph.
package portstest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
)

// RunTicketStoreContract runs a suite of tests to verify that a
// TicketStore implementation adheres to the interface contract. Call
// it with a fresh, empty store.
func RunTicketStoreContract(t *testing.T, store ports.TicketStore) {
	ctx := context.Background()

	t.Run("NextID is sequential", func(t *testing.T) {
		id1, err := store.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "TKT-001", id1)

		require.NoError(t, store.Save(ctx, &domain.Ticket{TicketID: id1, Status: domain.TicketStatusPending}))

		id2, err := store.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "TKT-002", id2)
	})

	t.Run("Save and Get", func(t *testing.T) {
		ticket := &domain.Ticket{
			TicketID:     "TKT-042",
			CustomerName: "Alice",
			Email:        "alice@x.com",
			Query:        "My order #123 hasn't arrived",
			Response:     "It ships tomorrow.",
			Status:       domain.TicketStatusResolved,
			Alternatives: []domain.Alternative{{Answer: "It ships tomorrow.", Score: 0.91}},
			Timestamp:    time.Now().UTC().Truncate(time.Second),
		}

		require.NoError(t, store.Save(ctx, ticket))

		loaded, err := store.Get(ctx, "TKT-042")
		require.NoError(t, err)
		assert.Equal(t, ticket.CustomerName, loaded.CustomerName)
		assert.Equal(t, ticket.Status, loaded.Status)
		assert.Len(t, loaded.Alternatives, 1)
	})

	t.Run("Get non-existent", func(t *testing.T) {
		_, err := store.Get(ctx, "TKT-999")
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	})

	t.Run("List preserves insertion order", func(t *testing.T) {
		tickets, err := store.List(ctx)
		require.NoError(t, err)

		var ids []string
		for _, tk := range tickets {
			ids = append(ids, tk.TicketID)
		}
		assert.Contains(t, ids, "TKT-001")
		assert.Contains(t, ids, "TKT-042")
		// TKT-001 was saved before TKT-042.
		assert.Less(t, index(ids, "TKT-001"), index(ids, "TKT-042"))
	})
}

func index(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

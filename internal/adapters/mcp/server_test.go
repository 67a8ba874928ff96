package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flume/internal/connector"
	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/internal/ticket"
	"github.com/aretw0/flume/pkg/domain"
)

type fakeRunner struct {
	state       domain.State
	lastPayload map[string]any
}

func (f *fakeRunner) Run(_ context.Context, payload map[string]any) (domain.State, error) {
	f.lastPayload = payload
	return f.state, nil
}

func newTestServer(t *testing.T, runner Runner) *Server {
	t.Helper()
	conn := connector.NewMemory([]connector.Entry{
		{ID: "faq-1", Question: "Where is my order?", Answer: "Check the tracking link."},
		{ID: "faq-2", Question: "How do I request a refund?", Answer: "Use the refunds page."},
	})
	store := ticket.NewFileStore(filepath.Join(t.TempDir(), "tickets.json"))
	return NewServer(runner, conn, store, logging.NewNop(), "test")
}

func TestResolveTicket(t *testing.T) {
	runner := &fakeRunner{state: domain.State{
		"customer_name":    "Alice",
		"email":            "alice@x.com",
		domain.KeyQuery:    "Where is my order?",
		domain.KeyResponse: "Check the tracking link.",
		domain.KeyKBResults: []domain.Answer{
			{ID: "faq-1", Answer: "Check the tracking link.", Score: 0.8},
		},
	}}
	srv := newTestServer(t, runner)

	tk, err := srv.handleResolveTicket(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"customer_name": "Alice",
		"email":         "alice@x.com",
		"query":         "Where is my order?",
	})
	require.NoError(t, err)

	assert.Equal(t, "TKT-001", tk.TicketID)
	assert.Equal(t, domain.TicketStatusResolved, tk.Status)
	assert.Equal(t, "", runner.lastPayload["ticket_id"])

	saved, err := srv.store.Get(context.Background(), "TKT-001")
	require.NoError(t, err)
	assert.Equal(t, "Alice", saved.CustomerName)
}

func TestFAQSearch(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{state: domain.State{}})

	resp, err := srv.handleFAQSearch(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"query": "refund request",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "faq-2", resp.Results[0].ID)
}

func TestFAQSearch_NoMatchIsEmptyNotNil(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{state: domain.State{}})

	resp, err := srv.handleFAQSearch(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"query": "zzzzzz",
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

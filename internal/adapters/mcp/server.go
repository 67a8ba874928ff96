// Package mcp exposes the pipeline as an MCP server so agent hosts can
// resolve tickets and search the knowledge base as tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/flume/internal/ticket"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
)

// Runner runs the pipeline for one request payload.
type Runner interface {
	Run(ctx context.Context, payload map[string]any) (domain.State, error)
}

// SearchResponse is the structured output of the faq_search tool.
type SearchResponse struct {
	Results []domain.Answer `json:"results" jsonschema_description:"Ranked knowledge base candidates, best match first"`
}

// Server wraps the pipeline and exposes it as an MCP Server.
type Server struct {
	runner    Runner
	connector ports.KnowledgeConnector
	store     ports.TicketStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over the given runner, connector and
// ticket store.
func NewServer(runner Runner, connector ports.KnowledgeConnector, store ports.TicketStore, logger *slog.Logger, version string) *Server {
	s := &Server{
		runner:    runner,
		connector: connector,
		store:     store,
		logger:    logger,
		mcpServer: server.NewMCPServer("flume-mcp", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	resolveTool := mcp.NewTool("resolve_ticket",
		mcp.WithDescription("Run the support pipeline on a customer query and persist the resulting ticket."),
		mcp.WithString("customer_name", mcp.Required(), mcp.Description("Customer display name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Customer email address")),
		mcp.WithString("query", mcp.Required(), mcp.Description("The customer's question or complaint")),
		mcp.WithString("priority", mcp.Description("Optional priority hint (low, normal, high, urgent)")),
		mcp.WithOutputSchema[domain.Ticket](),
	)
	s.mcpServer.AddTool(resolveTool, mcp.NewStructuredToolHandler(s.handleResolveTicket))

	searchTool := mcp.NewTool("faq_search",
		mcp.WithDescription("Search the FAQ knowledge base and return ranked candidates."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text search query")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of results (default 3)")),
		mcp.WithOutputSchema[SearchResponse](),
	)
	s.mcpServer.AddTool(searchTool, mcp.NewStructuredToolHandler(s.handleFAQSearch))
}

func (s *Server) handleResolveTicket(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Ticket, error) {
	name, _ := args["customer_name"].(string)
	email, _ := args["email"].(string)
	query, _ := args["query"].(string)
	priority, _ := args["priority"].(string)

	payload := map[string]any{
		"customer_name": name,
		"email":         email,
		"query":         query,
		"priority":      priority,
		"ticket_id":     "",
	}

	state, err := s.runner.Run(ctx, payload)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("pipeline run failed: %w", err)
	}

	id, err := s.store.NextID(ctx)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("ticket id allocation failed: %w", err)
	}

	tk := ticket.FromState(state, id, time.Now())
	if err := s.store.Save(ctx, tk); err != nil {
		return domain.Ticket{}, fmt.Errorf("ticket save failed: %w", err)
	}

	s.logger.Info("ticket created via mcp", "ticket_id", tk.TicketID, "status", tk.Status)
	return *tk, nil
}

func (s *Server) handleFAQSearch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SearchResponse, error) {
	query, _ := args["query"].(string)
	topK := 3
	if raw, ok := args["top_k"].(float64); ok && raw > 0 {
		topK = int(raw)
	}

	results, err := s.connector.Search(ctx, query, topK)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search failed: %w", err)
	}
	if results == nil {
		results = []domain.Answer{}
	}
	return SearchResponse{Results: results}, nil
}

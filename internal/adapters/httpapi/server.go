// Package httpapi exposes the pipeline over HTTP. POST /chat runs the
// pipeline and persists the derived ticket; the tickets endpoints read
// back what previous runs produced.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/flume/internal/ticket"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
)

// Runner runs the pipeline for one request payload.
type Runner interface {
	Run(ctx context.Context, payload map[string]any) (domain.State, error)
}

// Server wires the pipeline runner to the ticket store.
type Server struct {
	runner Runner
	store  ports.TicketStore
	logger *slog.Logger
	now    func() time.Time
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Query        string `json:"query"`
	Priority     string `json:"priority,omitempty"`
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// NewHandler builds the HTTP handler for the given runner and store.
func NewHandler(runner Runner, store ports.TicketStore, logger *slog.Logger) http.Handler {
	server := &Server{
		runner: runner,
		store:  store,
		logger: logger,
		now:    time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/chat", server.handleChat)
	r.Get("/tickets", server.handleListTickets)
	r.Get("/tickets/{id}", server.handleGetTicket)
	r.Get("/healthz", server.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	payload := map[string]any{
		"customer_name": req.CustomerName,
		"email":         req.Email,
		"query":         req.Query,
		"priority":      req.Priority,
		"ticket_id":     "",
	}

	state, err := s.runner.Run(r.Context(), payload)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			writeError(w, http.StatusBadRequest, "invalid payload", fields)
			return
		}
		s.logger.Error("pipeline run failed", "err", err)
		writeError(w, http.StatusInternalServerError, "pipeline run failed", nil)
		return
	}

	id, err := s.store.NextID(r.Context())
	if err != nil {
		s.logger.Error("ticket id allocation failed", "err", err)
		writeError(w, http.StatusInternalServerError, "ticket store unavailable", nil)
		return
	}

	tk := ticket.FromState(state, id, s.now())
	if err := s.store.Save(r.Context(), tk); err != nil {
		s.logger.Error("ticket save failed", "err", err, "ticket_id", id)
		writeError(w, http.StatusInternalServerError, "ticket store unavailable", nil)
		return
	}

	s.logger.Info("ticket created", "ticket_id", tk.TicketID, "status", tk.Status)
	writeJSON(w, http.StatusOK, tk)
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("ticket list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "ticket store unavailable", nil)
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tk, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			writeError(w, http.StatusNotFound, "ticket not found", nil)
			return
		}
		s.logger.Error("ticket get failed", "err", err, "ticket_id", id)
		writeError(w, http.StatusInternalServerError, "ticket store unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, tk)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, fields []string) {
	writeJSON(w, status, errorResponse{Error: msg, Fields: fields})
}

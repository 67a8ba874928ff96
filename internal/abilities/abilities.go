// Package abilities implements the built-in customer support abilities
// and registers them under the common and atlas namespaces. Abilities
// are plain functions over the execution state: they read current
// fields and return a partial update for the engine to merge. They
// hold no ambient state beyond what is injected at construction.
package abilities

import (
	"log/slog"
	"time"

	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/registry"
)

// Set bundles the injected dependencies the built-in abilities use.
type Set struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Set.
type Option func(*Set)

// WithLogger sets the logging sink for abilities that log.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Set) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Set) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSet creates the built-in ability set.
func NewSet(opts ...Option) *Set {
	s := &Set{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register binds every built-in ability to its namespace, mirroring
// the split between in-process logic (common) and simulated external
// systems (atlas).
func (s *Set) Register(r *registry.Registry) {
	common := map[string]registry.AbilityFunc{
		"accept_payload":         s.acceptPayload,
		"parse_request_text":     s.parseRequestText,
		"normalize_fields":       s.normalizeFields,
		"add_flags_calculations": s.addFlagsCalculations,
		"solution_evaluation":    s.solutionEvaluation,
		"response_generation":    s.responseGeneration,
		"update_payload":         s.updatePayload,
		"output_payload":         s.outputPayload,
		// alias kept for configurations using the older name
		"generate_customer_response": s.responseGeneration,
	}
	atlas := map[string]registry.AbilityFunc{
		"extract_entities":      s.extractEntities,
		"enrich_records":        s.enrichRecords,
		"clarify_question":      s.clarifyQuestion,
		"extract_answer":        s.extractAnswer,
		"store_answer":          s.storeAnswer,
		"store_data":            s.storeData,
		"escalation_decision":   s.escalationDecision,
		"update_ticket":         s.updateTicket,
		"close_ticket":          s.closeTicket,
		"execute_api_calls":     s.executeAPICalls,
		"trigger_notifications": s.triggerNotifications,
	}

	for name, fn := range common {
		r.Register(domain.NamespaceCommon, name, fn)
	}
	for name, fn := range atlas {
		r.Register(domain.NamespaceAtlas, name, fn)
	}
}

func (s *Set) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

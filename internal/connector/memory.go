package connector

import (
	"context"

	"github.com/aretw0/flume/pkg/domain"
)

// Memory is an in-process knowledge connector over a fixed corpus.
// The corpus is immutable after construction, so Search is safe under
// concurrent access without locking.
type Memory struct {
	entries []Entry
}

// NewMemory creates a connector over the given corpus.
func NewMemory(entries []Entry) *Memory {
	return &Memory{entries: entries}
}

// Search implements ports.KnowledgeConnector.
func (m *Memory) Search(ctx context.Context, query string, topK int) ([]domain.Answer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rank(m.entries, query, topK), nil
}

package ports

import (
	"context"

	"github.com/aretw0/flume/pkg/domain"
)

// KnowledgeConnector is the external ranked-answer search used by the
// reserved knowledge base abilities. Results come back best match
// first; domain.Answer.Score is a higher-is-better similarity in
// [0, 1].
//
// The connector is built once and shared read-only across concurrent
// engine instances; implementations must be safe under concurrent
// calls to Search.
type KnowledgeConnector interface {
	Search(ctx context.Context, query string, topK int) ([]domain.Answer, error)
}

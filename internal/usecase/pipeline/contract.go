package pipeline

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

// Optimizer rewrites a user query into a search term.
type Optimizer interface {
	Optimize(ctx context.Context, userQuery, priorCategory string) (string, error)
	IsAvailable(ctx context.Context) bool
}

// Retriever finds documents for a search term.
type Retriever interface {
	Retrieve(ctx context.Context, query, categoryFilter string) ([]product.RetrievedDocument, error)
	IndexStats(ctx context.Context) retriever.Stats
	IsAvailable(ctx context.Context) bool
}

// Generator writes the recommendation for retrieved documents.
type Generator interface {
	Generate(ctx context.Context, docs []product.RetrievedDocument, originalQuery string) (string, error)
	IsAvailable(ctx context.Context) bool
}

// ContextStore remembers the category of each session between turns.
type ContextStore interface {
	Set(sessionID, category, query string)
	Get(sessionID string) (string, bool)
	ExtractCategoryFromResults(docs []product.RetrievedDocument) (string, bool)
	InferCategoryFromQuery(query string) (string, bool)
	ActiveSessionCount() int
}

package retriever

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/db"
	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
)

// Embedder turns the optimized query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index is the vector index holding the catalog.
type Index interface {
	SearchKNN(ctx context.Context, vector []float32, category string, topK int) ([]product.RetrievedDocument, error)
	Info(ctx context.Context) (*db.IndexInfo, error)
	Ping(ctx context.Context) error
}

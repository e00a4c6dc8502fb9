package indexer

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
)

// BatchEmbedder vectorizes product texts.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// ProductWriter stores products and maintains their index.
type ProductWriter interface {
	EnsureIndex(ctx context.Context, recreate bool) (bool, error)
	Upsert(ctx context.Context, products []product.Product, vectors [][]float32) error
}

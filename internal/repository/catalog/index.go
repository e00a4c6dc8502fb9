package catalog

import (
	"github.com/kailas-cloud/catalograg/internal/db"
	domcat "github.com/kailas-cloud/catalograg/internal/domain/catalog"
)

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex describes the product index: category and brand TAGs,
// price NUMERIC, cosine HNSW vector.
func buildIndex(layout domcat.Layout, vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(layout.IndexName()).
		Prefix(layout.ProductPrefix()).
		Tag(domcat.FieldCategory, true).
		Tag(domcat.FieldBrand, false).
		Numeric(domcat.FieldPrice).
		VectorHNSW(domcat.FieldVector, vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}

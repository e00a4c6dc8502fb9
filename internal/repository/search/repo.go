package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/catalograg/internal/db"
	domcat "github.com/kailas-cloud/catalograg/internal/domain/catalog"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalograg/internal/domain/search/filter"
	"github.com/kailas-cloud/catalograg/internal/domain/search/score"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Ping(ctx context.Context) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
}

// Repo implements usecase/retriever.Index over the product FT index.
type Repo struct {
	store  store
	layout domcat.Layout
}

// New creates a search repository.
func New(s store, layout domcat.Layout) *Repo {
	return &Repo{store: s, layout: layout}
}

// SearchKNN returns up to topK products nearest to vector, most similar first.
// A non-empty category restricts the search to that category before ranking.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, category string, topK int,
) ([]product.RetrievedDocument, error) {
	q := &db.KNNQuery{
		IndexName:    r.layout.IndexName(),
		VectorField:  domcat.FieldVector,
		Filters:      filter.Category(category),
		Vector:       vector,
		K:            topK,
		ReturnFields: domcat.PayloadFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", q.IndexName, err)
	}

	return r.parseKNNResults(sr), nil
}

// Info reports the index document count and indexing state.
func (r *Repo) Info(ctx context.Context) (*db.IndexInfo, error) {
	info, err := r.store.IndexInfo(ctx, r.layout.IndexName())
	if err != nil {
		return nil, fmt.Errorf("index info %s: %w", r.layout.IndexName(), err)
	}
	return info, nil
}

// Ping checks that the index backend answers.
func (r *Repo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// parseKNNResults converts db.SearchResult into retrieved documents, preserving order.
func (r *Repo) parseKNNResults(sr *db.SearchResult) []product.RetrievedDocument {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	docs := make([]product.RetrievedDocument, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := entry.Fields[domcat.FieldID]
		if id == "" {
			id = r.layout.ProductID(entry.Key)
		}
		docs = append(docs, product.RetrievedDocument{
			ID:      id,
			Product: parseProduct(id, entry.Fields),
			Score:   score.Clamp(entry.Score),
		})
	}
	return docs
}

// parseProduct reads payload fields leniently: malformed price or specs are dropped.
func parseProduct(id string, m map[string]string) product.Product {
	p := product.Product{
		ID:          id,
		Name:        m[domcat.FieldName],
		Brand:       m[domcat.FieldBrand],
		Category:    m[domcat.FieldCategory],
		Description: m[domcat.FieldDescription],
	}
	if price, err := strconv.ParseInt(m[domcat.FieldPrice], 10, 64); err == nil {
		p.Price = price
	}
	if specs := m[domcat.FieldSpecs]; specs != "" {
		var parsed map[string]string
		if err := json.Unmarshal([]byte(specs), &parsed); err == nil {
			p.Specs = parsed
		}
	}
	return p
}

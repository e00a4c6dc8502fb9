package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/catalograg/internal/db"
	"github.com/kailas-cloud/catalograg/internal/domain"
	domcat "github.com/kailas-cloud/catalograg/internal/domain/catalog"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
)

// ErrProductNotFound is returned by Get for an unknown id.
var ErrProductNotFound = errors.New("product not found")

// store is the consumer interface for catalog writes (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo stores catalog products as hashes covered by one FT index.
type Repo struct {
	store     store
	layout    domcat.Layout
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a catalog repository.
func New(s store, layout domcat.Layout, vectorDim int) *Repo {
	return &Repo{store: s, layout: layout, vectorDim: vectorDim, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndex creates the product index if it does not exist.
// recreate drops the existing index together with its documents first.
// Reports whether a new index was created.
func (r *Repo) EnsureIndex(ctx context.Context, recreate bool) (bool, error) {
	name := r.layout.IndexName()

	if recreate {
		if err := r.store.DropIndex(ctx, name, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return false, fmt.Errorf("drop index %s: %w", name, err)
		}
	} else {
		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return false, fmt.Errorf("check index %s: %w", name, err)
		}
		if exists {
			return false, nil
		}
	}

	def, err := buildIndex(r.layout, r.vectorDim, r.hnsw)
	if err != nil {
		return false, fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", name, err)
	}
	return true, nil
}

// Upsert writes products with their embeddings in one pipelined round-trip.
// vectors[i] belongs to products[i].
func (r *Repo) Upsert(ctx context.Context, products []product.Product, vectors [][]float32) error {
	if len(products) != len(vectors) {
		return fmt.Errorf("upsert: %d products but %d vectors", len(products), len(vectors))
	}
	if len(products) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(products))
	for i := range products {
		if len(vectors[i]) != r.vectorDim {
			return fmt.Errorf("product %s: %w: got %d, want %d",
				products[i].ID, domain.ErrVectorDimMismatch, len(vectors[i]), r.vectorDim)
		}
		fields, err := buildHashFields(&products[i], vectors[i])
		if err != nil {
			return err
		}
		items[i] = db.HashSetItem{Key: r.layout.ProductKey(products[i].ID), Fields: fields}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset %d products: %w", len(items), err)
	}
	return nil
}

// Get reads one product by id.
func (r *Repo) Get(ctx context.Context, id string) (product.Product, error) {
	m, err := r.store.HGetAll(ctx, r.layout.ProductKey(id))
	if err != nil {
		return product.Product{}, fmt.Errorf("hgetall product %s: %w", id, err)
	}
	if len(m) == 0 {
		return product.Product{}, ErrProductNotFound
	}
	return parseHashFields(id, m)
}

// Delete removes one product; an unknown id returns ErrProductNotFound.
func (r *Repo) Delete(ctx context.Context, id string) error {
	err := r.store.Del(ctx, r.layout.ProductKey(id))
	if errors.Is(err, db.ErrKeyNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("del product %s: %w", id, err)
	}
	return nil
}

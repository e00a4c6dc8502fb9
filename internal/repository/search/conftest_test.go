package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/catalograg/internal/db"
	domcat "github.com/kailas-cloud/catalograg/internal/domain/catalog"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	pingFn      func(ctx context.Context) error
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	indexInfoFn func(ctx context.Context, name string) (*db.IndexInfo, error)
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	if m.indexInfoFn != nil {
		return m.indexInfoFn(ctx, name)
	}
	return &db.IndexInfo{Name: name}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, domcat.NewLayout(""))
	return repo, ms
}

func testVector() []float32 {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}

package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/catalograg/internal/db"
)

// --- SearchKNN ---

func TestSearchKNN_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "catalog:idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		if q.K != 5 {
			t.Errorf("unexpected K: %d", q.K)
		}
		if !q.Filters.IsEmpty() {
			t.Errorf("expected no filter, got %v", q.Filters.Must())
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:   "catalog:product:cpu-1",
					Score: 0.877,
					Fields: map[string]string{
						"id":       "cpu-1",
						"name":     "AMD Ryzen 5 7600",
						"brand":    "AMD",
						"category": "processors",
						"price":    "1899000",
						"specs":    `{"cores":"6"}`,
					},
				},
				{
					Key:   "catalog:product:cpu-2",
					Score: 0.544,
					Fields: map[string]string{
						"name":     "Intel Core i5-13400F",
						"category": "processors",
						"price":    "not-a-number",
					},
				},
			},
		}, nil
	}

	docs, err := repo.SearchKNN(ctx, testVector(), "", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].ID != "cpu-1" || docs[0].Product.Price != 1899000 || docs[0].Product.Specs["cores"] != "6" {
		t.Errorf("unexpected first doc: %+v", docs[0])
	}
	if docs[0].Score.Value() != 0.877 {
		t.Errorf("expected score 0.877, got %f", docs[0].Score.Value())
	}
	// id falls back to the key suffix; bad price is dropped
	if docs[1].ID != "cpu-2" || docs[1].Product.Price != 0 {
		t.Errorf("unexpected second doc: %+v", docs[1])
	}
}

func TestSearchKNN_WithCategory(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		must := q.Filters.Must()
		if len(must) != 1 || must[0].Field() != "category" || must[0].Value() != "processors" {
			t.Errorf("unexpected filter: %v", must)
		}
		return &db.SearchResult{}, nil
	}

	docs, err := repo.SearchKNN(context.Background(), testVector(), "processors", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs != nil {
		t.Errorf("expected nil docs, got %v", docs)
	}
}

func TestSearchKNN_Error(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("connection refused")
	}

	if _, err := repo.SearchKNN(context.Background(), testVector(), "", 5); err == nil {
		t.Fatal("expected error")
	}
}

// --- Info / Ping ---

func TestInfo(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexInfoFn = func(_ context.Context, name string) (*db.IndexInfo, error) {
		return &db.IndexInfo{Name: name, NumDocs: 40, PercentIndexed: 1}, nil
	}

	info, err := repo.Info(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "catalog:idx" || info.NumDocs != 40 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestInfo_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexInfoFn = func(_ context.Context, _ string) (*db.IndexInfo, error) {
		return nil, db.ErrIndexNotFound
	}

	_, err := repo.Info(context.Background())
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestPing(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.pingFn = func(_ context.Context) error { return errors.New("down") }
	if err := repo.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

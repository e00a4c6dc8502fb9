package pipeline

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalograg/internal/domain/search/score"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

type optimizeCall struct {
	query, prior string
}

type mockOptimizer struct {
	optimizeFn func(query, prior string) (string, error)
	available  bool
	calls      []optimizeCall
}

func (m *mockOptimizer) Optimize(_ context.Context, query, prior string) (string, error) {
	m.calls = append(m.calls, optimizeCall{query, prior})
	if m.optimizeFn != nil {
		return m.optimizeFn(query, prior)
	}
	return query, nil
}

func (m *mockOptimizer) IsAvailable(_ context.Context) bool { return m.available }

type retrieveCall struct {
	query, category string
	cancelled       bool
}

type mockRetriever struct {
	retrieveFn func(query, category string) ([]product.RetrievedDocument, error)
	stats      retriever.Stats
	available  bool
	calls      []retrieveCall
}

func (m *mockRetriever) Retrieve(ctx context.Context, query, category string) ([]product.RetrievedDocument, error) {
	m.calls = append(m.calls, retrieveCall{query: query, category: category, cancelled: ctx.Err() != nil})
	if m.retrieveFn != nil {
		return m.retrieveFn(query, category)
	}
	return nil, nil
}

func (m *mockRetriever) IndexStats(_ context.Context) retriever.Stats { return m.stats }

func (m *mockRetriever) IsAvailable(_ context.Context) bool { return m.available }

type mockGenerator struct {
	generateFn func(docs []product.RetrievedDocument, query string) (string, error)
	available  bool
	calls      int
}

func (m *mockGenerator) Generate(_ context.Context, docs []product.RetrievedDocument, query string) (string, error) {
	m.calls++
	if m.generateFn != nil {
		return m.generateFn(docs, query)
	}
	if len(docs) == 0 {
		return "no matching products", nil
	}
	return "Recommended: " + docs[0].Product.Name, nil
}

func (m *mockGenerator) IsAvailable(_ context.Context) bool { return m.available }

type setCall struct {
	session, category, query string
}

type mockContextStore struct {
	categories map[string]string
	inferFn    func(query string) (string, bool)
	sets       []setCall
	active     int
}

func newMockContextStore() *mockContextStore {
	return &mockContextStore{categories: map[string]string{}}
}

func (m *mockContextStore) Set(sessionID, category, query string) {
	m.sets = append(m.sets, setCall{sessionID, category, query})
	m.categories[sessionID] = category
}

func (m *mockContextStore) Get(sessionID string) (string, bool) {
	c, ok := m.categories[sessionID]
	return c, ok
}

func (m *mockContextStore) ExtractCategoryFromResults(docs []product.RetrievedDocument) (string, bool) {
	if len(docs) == 0 {
		return "", false
	}
	return docs[0].Product.Category, true
}

func (m *mockContextStore) InferCategoryFromQuery(query string) (string, bool) {
	if m.inferFn != nil {
		return m.inferFn(query)
	}
	return "", false
}

func (m *mockContextStore) ActiveSessionCount() int { return m.active }

func amdProcessors() []product.RetrievedDocument {
	mk := func(id, name string, price int64, s float64) product.RetrievedDocument {
		return product.RetrievedDocument{
			ID: id,
			Product: product.Product{
				ID: id, Name: name, Brand: "AMD", Category: "processors", Price: price,
			},
			Score: score.Clamp(s),
		}
	}
	return []product.RetrievedDocument{
		mk("cpu-1", "AMD Ryzen 7 7800X3D", 3899000, 0.89),
		mk("cpu-2", "AMD Ryzen 5 7600", 1899000, 0.81),
		mk("cpu-3", "AMD Ryzen 9 7950X", 5499000, 0.77),
	}
}

package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalograg/internal/domain/search/result"
	"github.com/kailas-cloud/catalograg/internal/domain/search/score"
	"github.com/kailas-cloud/catalograg/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

type mockSearcher struct {
	searchFn   func(ctx context.Context, rawQuery, sessionID string) (result.Result, error)
	statsFn    func(ctx context.Context) retriever.Stats
	sessionsFn func() int

	lastSessionID string
}

func (m *mockSearcher) SearchWithContext(ctx context.Context, rawQuery, sessionID string) (result.Result, error) {
	m.lastSessionID = sessionID
	if m.searchFn != nil {
		return m.searchFn(ctx, rawQuery, sessionID)
	}
	return result.New(rawQuery, rawQuery, nil, "nothing"), nil
}

func (m *mockSearcher) IndexStats(ctx context.Context) retriever.Stats {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return retriever.Stats{Status: retriever.StatusReady}
}

func (m *mockSearcher) ActiveSessions() int {
	if m.sessionsFn != nil {
		return m.sessionsFn()
	}
	return 0
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type mockModels struct {
	models []string
	err    error
}

func (m *mockModels) ListModels(_ context.Context) ([]string, error) { return m.models, m.err }

type mockBudget struct {
	status embedding.BudgetStatus
	ok     bool
}

func (m *mockBudget) Budget() (embedding.BudgetStatus, bool) { return m.status, m.ok }

func healthyReport() healthuc.Report {
	return healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
	}
}

// setupRouter builds the full router over the given fakes without auth.
func setupRouter(t *testing.T, s Searcher, h HealthChecker, models ModelLister, budget BudgetReporter) http.Handler {
	t.Helper()
	srv := NewServer(s, h, models, budget, zap.NewNop())
	return NewRouter(srv, RouterConfig{}, zap.NewNop())
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func gpuDocs() []product.RetrievedDocument {
	return []product.RetrievedDocument{
		{
			ID: "gpu-1",
			Product: product.Product{
				ID: "gpu-1", Name: "GeForce RTX 4070", Brand: "NVIDIA",
				Category: "graphics_cards", Price: 6499000,
			},
			Score: score.Clamp(0.91),
		},
		{
			ID: "gpu-2",
			Product: product.Product{
				ID: "gpu-2", Name: "Radeon RX 7800 XT", Brand: "AMD",
				Category: "graphics_cards", Price: 5899050,
			},
			Score: score.Clamp(0.62),
		},
	}
}

package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/domain/search/result"
	"github.com/kailas-cloud/catalograg/internal/domain/session"
	"github.com/kailas-cloud/catalograg/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

func TestSearch_OK(t *testing.T) {
	s := &mockSearcher{
		searchFn: func(ctx context.Context, q, _ string) (result.Result, error) {
			domain.UsageFromContext(ctx).AddTokens(12)
			return result.New(q, "видеокарта rtx", gpuDocs(), "Take the RTX 4070."), nil
		},
	}
	h := setupRouter(t, s, &mockHealth{report: healthyReport()}, nil, nil)

	rr := doRequest(t, h, http.MethodPost, "/v1/search", `{"query":"нужна видеокарта","session_id":"user-1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	if got := rr.Header().Get("X-Embedding-Tokens"); got != "12" {
		t.Errorf("X-Embedding-Tokens = %q, want 12", got)
	}

	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != "user-1" || s.lastSessionID != "user-1" {
		t.Errorf("session = %q / %q, want user-1", resp.SessionID, s.lastSessionID)
	}
	if resp.OptimizedQuery != "видеокарта rtx" {
		t.Errorf("optimized_query = %q", resp.OptimizedQuery)
	}
	if len(resp.Documents) != 2 {
		t.Fatalf("documents = %d, want 2", len(resp.Documents))
	}
	first := resp.Documents[0]
	if first.ID != "gpu-1" || first.Price != "64990.00" || first.Percent != 91 || first.Level != "high" {
		t.Errorf("first document = %+v", first)
	}
	if resp.Documents[1].Level != "medium" || resp.Documents[1].Price != "58990.50" {
		t.Errorf("second document = %+v", resp.Documents[1])
	}
	if resp.Response != "Take the RTX 4070." {
		t.Errorf("response = %q", resp.Response)
	}
}

func TestSearch_DefaultSession(t *testing.T) {
	s := &mockSearcher{}
	h := setupRouter(t, s, &mockHealth{report: healthyReport()}, nil, nil)

	rr := doRequest(t, h, http.MethodPost, "/v1/search", `{"query":"ssd"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if s.lastSessionID != session.DefaultID.String() {
		t.Errorf("session = %q, want %q", s.lastSessionID, session.DefaultID)
	}
	if got := rr.Header().Get("X-Embedding-Tokens"); got != "" {
		t.Errorf("X-Embedding-Tokens = %q, want none without embedding", got)
	}

	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Documents == nil {
		t.Error("documents should encode as an empty list, not null")
	}
}

func TestSearch_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantKey  string
	}{
		{"malformed json", `{"query":`, codeBadRequest, ""},
		{"unknown field", `{"query":"ssd","limit":3}`, codeBadRequest, ""},
		{"missing query", `{}`, codeValidationFailed, "query"},
		{"session too long", fmt.Sprintf(`{"query":"ssd","session_id":%q}`, strings.Repeat("a", 256)),
			codeValidationFailed, "session_id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &mockSearcher{}
			h := setupRouter(t, s, &mockHealth{report: healthyReport()}, nil, nil)

			rr := doRequest(t, h, http.MethodPost, "/v1/search", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tc.wantCode)
			}
			if tc.wantKey != "" {
				if _, ok := resp.Fields[tc.wantKey]; !ok {
					t.Errorf("fields = %v, want key %q", resp.Fields, tc.wantKey)
				}
			}
			if s.lastSessionID != "" {
				t.Error("pipeline must not be called for an invalid request")
			}
		})
	}
}

func TestSearch_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.NewValidationError("query", "contains forbidden characters"),
			http.StatusBadRequest, codeValidationFailed},
		{"retrieval", fmt.Errorf("retrieve: %w: %w", domain.ErrRetrieval, errors.New("dial tcp: refused")),
			http.StatusBadGateway, codeRetrievalFailed},
		{"quota inside retrieval", fmt.Errorf("retrieve: %w: %w", domain.ErrRetrieval, domain.ErrEmbeddingQuotaExceeded),
			http.StatusPaymentRequired, codeQuotaExceeded},
		{"embedding provider", fmt.Errorf("retrieve: %w: %w", domain.ErrRetrieval, domain.ErrEmbeddingProviderError),
			http.StatusBadGateway, codeEmbeddingProvider},
		{"unavailable", domain.NewServiceUnavailable("valkey", errors.New("timeout")),
			http.StatusServiceUnavailable, codeServiceUnavailable},
		{"generation", fmt.Errorf("generate: %w", domain.ErrGeneration),
			http.StatusInternalServerError, codeGenerationFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &mockSearcher{
				searchFn: func(context.Context, string, string) (result.Result, error) {
					return result.Result{}, tc.err
				},
			}
			h := setupRouter(t, s, &mockHealth{report: healthyReport()}, nil, nil)

			rr := doRequest(t, h, http.MethodPost, "/v1/search", `{"query":"ssd"}`)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tc.wantCode)
			}
			if strings.Contains(resp.Message, "dial tcp") || strings.Contains(resp.Message, "boom") {
				t.Errorf("message leaks internals: %q", resp.Message)
			}
		})
	}
}

func TestSessionStats(t *testing.T) {
	s := &mockSearcher{sessionsFn: func() int { return 3 }}
	h := setupRouter(t, s, &mockHealth{report: healthyReport()}, nil, nil)

	rr := doRequest(t, h, http.MethodGet, "/v1/sessions/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp SessionStatsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ActiveSessions != 3 {
		t.Errorf("active_sessions = %d, want 3", resp.ActiveSessions)
	}
}

func TestIndexStats(t *testing.T) {
	s := &mockSearcher{
		statsFn: func(context.Context) retriever.Stats {
			return retriever.Stats{VectorCount: 40, IndexedCount: 20, Status: retriever.StatusIndexing}
		},
	}

	t.Run("without budget", func(t *testing.T) {
		h := setupRouter(t, s, &mockHealth{report: healthyReport()}, nil, &mockBudget{ok: false})
		rr := doRequest(t, h, http.MethodGet, "/v1/index/stats", "")
		var resp IndexStatsResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.VectorCount != 40 || resp.IndexedCount != 20 || resp.Status != retriever.StatusIndexing {
			t.Errorf("stats = %+v", resp)
		}
		if resp.Budget != nil {
			t.Errorf("budget = %+v, want nil", resp.Budget)
		}
	})

	t.Run("with budget", func(t *testing.T) {
		b := &mockBudget{ok: true, status: embedding.BudgetStatus{
			DailyUsed: 100, DailyLimit: 1000, DailyRemaining: 900,
			MonthlyUsed: 100, MonthlyLimit: embedding.Unlimited, MonthlyRemaining: embedding.Unlimited,
		}}
		h := setupRouter(t, s, &mockHealth{report: healthyReport()}, nil, b)
		rr := doRequest(t, h, http.MethodGet, "/v1/index/stats", "")
		var resp IndexStatsResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Budget == nil || resp.Budget.DailyRemaining != 900 || resp.Budget.MonthlyLimit != -1 {
			t.Errorf("budget = %+v", resp.Budget)
		}
	})
}

func TestListModels(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		h := setupRouter(t, &mockSearcher{}, &mockHealth{report: healthyReport()},
			&mockModels{models: []string{"qwen2.5:7b", "llama3.1:8b"}}, nil)
		rr := doRequest(t, h, http.MethodGet, "/v1/models", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var resp ModelsResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Models) != 2 {
			t.Errorf("models = %v", resp.Models)
		}
	})

	t.Run("endpoint down", func(t *testing.T) {
		h := setupRouter(t, &mockSearcher{}, &mockHealth{report: healthyReport()},
			&mockModels{err: errors.New("connection refused")}, nil)
		rr := doRequest(t, h, http.MethodGet, "/v1/models", "")
		if rr.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rr.Code)
		}
	})

	t.Run("no lister", func(t *testing.T) {
		h := setupRouter(t, &mockSearcher{}, &mockHealth{report: healthyReport()}, nil, nil)
		rr := doRequest(t, h, http.MethodGet, "/v1/models", "")
		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		status     healthuc.Status
		wantStatus int
	}{
		{"ok", healthuc.Healthy, http.StatusOK},
		{"degraded", healthuc.Degraded, http.StatusServiceUnavailable},
		{"error", healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report := healthuc.Report{
				Status: tc.status,
				Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK, "generator": healthuc.CheckError},
			}
			h := setupRouter(t, &mockSearcher{}, &mockHealth{report: report}, nil, nil)

			rr := doRequest(t, h, http.MethodGet, "/health", "")
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != string(tc.status) || resp.Checks["generator"] != "error" {
				t.Errorf("health = %+v", resp)
			}
		})
	}
}

func TestRouter_AuthAndRequestID(t *testing.T) {
	srv := NewServer(&mockSearcher{}, &mockHealth{report: healthyReport()}, nil, nil, zap.NewNop())
	h := NewRouter(srv, RouterConfig{APIKeys: []string{"secret"}}, zap.NewNop())

	rr := doRequest(t, h, http.MethodGet, "/v1/sessions/stats", "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want 401", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	rr = doRequest(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("health is exempt: status = %d, want 200", rr.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	h := setupRouter(t, &mockSearcher{}, &mockHealth{report: healthyReport()}, nil, nil)
	rr := doRequest(t, h, http.MethodGet, "/v1/collections", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	s := &mockSearcher{
		searchFn: func(context.Context, string, string) (result.Result, error) {
			panic("nil map")
		},
	}
	h := setupRouter(t, s, &mockHealth{report: healthyReport()}, nil, nil)

	rr := doRequest(t, h, http.MethodPost, "/v1/search", `{"query":"ssd"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != codeInternalError {
		t.Errorf("code = %q", resp.Code)
	}
}

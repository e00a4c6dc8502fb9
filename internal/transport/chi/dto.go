package chi

import (
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalograg/internal/domain/search/result"
	"github.com/kailas-cloud/catalograg/internal/usecase/embedding"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest         = "bad_request"
	codeUnauthorized       = "unauthorized"
	codeValidationFailed   = "validation_failed"
	codeVectorDimMismatch  = "vector_dim_mismatch"
	codeQuotaExceeded      = "embedding_quota_exceeded"
	codeEmbeddingProvider  = "embedding_provider_error"
	codeRetrievalFailed    = "retrieval_failed"
	codeGenerationFailed   = "generation_failed"
	codeServiceUnavailable = "service_unavailable"
	codeInternalError      = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query     string `json:"query" validate:"required,max=4000"`
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=255"`
}

// DocumentItem is one retrieved product.
type DocumentItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand"`
	Category    string            `json:"category"`
	Price       string            `json:"price"`
	Description string            `json:"description,omitempty"`
	Specs       map[string]string `json:"specs,omitempty"`
	Score       float64           `json:"score"`
	Percent     int               `json:"percent"`
	Level       string            `json:"level"`
}

// SearchResponse is the body returned by POST /v1/search.
type SearchResponse struct {
	Query          string         `json:"query"`
	OptimizedQuery string         `json:"optimized_query"`
	SessionID      string         `json:"session_id"`
	Documents      []DocumentItem `json:"documents"`
	Response       string         `json:"response"`
}

// SessionStatsResponse is the body returned by GET /v1/sessions/stats.
type SessionStatsResponse struct {
	ActiveSessions int `json:"active_sessions"`
}

// BudgetResponse reports embedding token usage against its limits.
// A limit of -1 means unlimited.
type BudgetResponse struct {
	DailyUsed        int64 `json:"daily_used"`
	DailyLimit       int64 `json:"daily_limit"`
	DailyRemaining   int64 `json:"daily_remaining"`
	MonthlyUsed      int64 `json:"monthly_used"`
	MonthlyLimit     int64 `json:"monthly_limit"`
	MonthlyRemaining int64 `json:"monthly_remaining"`
}

// IndexStatsResponse is the body returned by GET /v1/index/stats.
type IndexStatsResponse struct {
	VectorCount  int64           `json:"vector_count"`
	IndexedCount int64           `json:"indexed_count"`
	Status       string          `json:"status"`
	Error        string          `json:"error,omitempty"`
	Budget       *BudgetResponse `json:"embedding_budget,omitempty"`
}

// ModelsResponse is the body returned by GET /v1/models.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewSearchResponse converts a pipeline result into its wire form.
func NewSearchResponse(r *result.Result, sessionID string) SearchResponse {
	docs := r.Documents()
	items := make([]DocumentItem, len(docs))
	for i := range docs {
		items[i] = documentToItem(&docs[i])
	}
	return SearchResponse{
		Query:          r.OriginalQuery(),
		OptimizedQuery: r.OptimizedQuery(),
		SessionID:      sessionID,
		Documents:      items,
		Response:       r.Response(),
	}
}

func documentToItem(d *product.RetrievedDocument) DocumentItem {
	return DocumentItem{
		ID:          d.ID,
		Name:        d.Product.Name,
		Brand:       d.Product.Brand,
		Category:    d.Product.Category,
		Price:       d.Product.FormattedPrice(),
		Description: d.Product.Description,
		Specs:       d.Product.Specs,
		Score:       d.Score.Value(),
		Percent:     d.Score.Percent(),
		Level:       string(d.Score.Level()),
	}
}

func indexStatsToResponse(st retriever.Stats) IndexStatsResponse {
	return IndexStatsResponse{
		VectorCount:  st.VectorCount,
		IndexedCount: st.IndexedCount,
		Status:       st.Status,
		Error:        st.Error,
	}
}

func budgetToResponse(b embedding.BudgetStatus) *BudgetResponse {
	return &BudgetResponse{
		DailyUsed:        b.DailyUsed,
		DailyLimit:       b.DailyLimit,
		DailyRemaining:   b.DailyRemaining,
		MonthlyUsed:      b.MonthlyUsed,
		MonthlyLimit:     b.MonthlyLimit,
		MonthlyRemaining: b.MonthlyRemaining,
	}
}

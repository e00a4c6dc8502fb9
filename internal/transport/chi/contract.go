package chi

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/domain/search/result"
	"github.com/kailas-cloud/catalograg/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

// Searcher runs RAG searches and reports pipeline state.
type Searcher interface {
	SearchWithContext(ctx context.Context, rawQuery, sessionID string) (result.Result, error)
	IndexStats(ctx context.Context) retriever.Stats
	ActiveSessions() int
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// ModelLister lists the models served by the LLM endpoint.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// BudgetReporter exposes the embedding token budget, if one is configured.
type BudgetReporter interface {
	Budget() (embedding.BudgetStatus, bool)
}

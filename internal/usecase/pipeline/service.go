// Package pipeline runs the optimize, retrieve and generate stages of one search.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalograg/internal/domain/search/query"
	"github.com/kailas-cloud/catalograg/internal/domain/search/result"
	"github.com/kailas-cloud/catalograg/internal/domain/session"
	logpkg "github.com/kailas-cloud/catalograg/internal/logger"
	"github.com/kailas-cloud/catalograg/internal/metrics"
	"github.com/kailas-cloud/catalograg/internal/usecase/retriever"
)

// HealthReport is the outcome of probing every stage.
// Overall follows the retriever: without it no search can succeed.
type HealthReport struct {
	Optimizer bool
	Retriever bool
	Generator bool
	Overall   bool
}

// Service orchestrates a search across the stages.
type Service struct {
	optimizer Optimizer
	retriever Retriever
	generator Generator
	contexts  ContextStore
	logger    *zap.Logger
}

// New creates the orchestrator.
func New(opt Optimizer, ret Retriever, gen Generator, contexts ContextStore, logger *zap.Logger) *Service {
	return &Service{
		optimizer: opt,
		retriever: ret,
		generator: gen,
		contexts:  contexts,
		logger:    logger,
	}
}

// Search runs a stateless search under the default session.
func (s *Service) Search(ctx context.Context, rawQuery string) (result.Result, error) {
	return s.SearchWithContext(ctx, rawQuery, session.DefaultID.String())
}

// SearchWithContext runs a search that reads and updates the context of sessionID.
// Validation and retrieval errors are returned; optimizer and generator failures are absorbed by their stages.
// Stage calls are detached from ctx cancellation and rely on their own timeouts.
func (s *Service) SearchWithContext(ctx context.Context, rawQuery, sessionID string) (result.Result, error) {
	q, err := query.New(rawQuery)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		return result.Result{}, err
	}
	sid, err := session.NewID(sessionID)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		return result.Result{}, err
	}

	start := time.Now()
	stageCtx := context.WithoutCancel(ctx)
	log := logpkg.FromContextOr(ctx, s.logger).With(zap.String("session_id", sid.String()))

	priorCategory, hasPrior := s.contexts.Get(sid.String())

	optimized := s.optimize(stageCtx, log, q.String(), priorCategory)

	category := priorCategory
	if !hasPrior {
		category, _ = s.contexts.InferCategoryFromQuery(q.String())
	}

	docs, err := s.retrieve(stageCtx, log, optimized, category)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return result.Result{}, err
	}

	if len(docs) > 0 {
		if found, ok := s.contexts.ExtractCategoryFromResults(docs); ok {
			s.contexts.Set(sid.String(), found, q.String())
		}
	}

	response, err := s.generate(stageCtx, docs, q.String())
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return result.Result{}, err
	}

	outcome := "found"
	if len(docs) == 0 {
		outcome = "empty"
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()

	log.Info("Search completed",
		zap.String("query", q.String()),
		zap.String("optimized", optimized),
		zap.String("category", category),
		zap.Int("documents", len(docs)),
		zap.Duration("duration", time.Since(start)),
	)

	return result.New(q.String(), optimized, docs, response), nil
}

// HealthCheck probes each stage independently.
func (s *Service) HealthCheck(ctx context.Context) HealthReport {
	r := HealthReport{
		Optimizer: s.optimizer.IsAvailable(ctx),
		Retriever: s.retriever.IsAvailable(ctx),
		Generator: s.generator.IsAvailable(ctx),
	}
	r.Overall = r.Retriever
	return r
}

// IndexStats reports the state of the vector index.
func (s *Service) IndexStats(ctx context.Context) retriever.Stats {
	return s.retriever.IndexStats(ctx)
}

// ActiveSessions sweeps expired contexts and returns how many sessions remain.
func (s *Service) ActiveSessions() int {
	n := s.contexts.ActiveSessionCount()
	metrics.ActiveSessions.Set(float64(n))
	return n
}

func (s *Service) optimize(ctx context.Context, log *zap.Logger, q, priorCategory string) string {
	defer observe("optimize", time.Now())

	optimized, err := s.optimizer.Optimize(ctx, q, priorCategory)
	if err != nil || optimized == "" {
		log.Warn("Optimizer failed, searching with the original query", zap.Error(err))
		return q
	}
	return optimized
}

// retrieve searches with the category filter and retries once without it when nothing matched.
func (s *Service) retrieve(ctx context.Context, log *zap.Logger, q, category string) ([]product.RetrievedDocument, error) {
	defer observe("retrieve", time.Now())

	docs, err := s.retriever.Retrieve(ctx, q, category)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(docs) > 0 || category == "" {
		return docs, nil
	}

	log.Debug("Nothing in category, retrying without filter", zap.String("category", category))
	metrics.RetrievalFallbacksTotal.Inc()

	docs, err = s.retriever.Retrieve(ctx, q, "")
	if err != nil {
		return nil, fmt.Errorf("retrieve without filter: %w", err)
	}
	return docs, nil
}

func (s *Service) generate(ctx context.Context, docs []product.RetrievedDocument, q string) (string, error) {
	defer observe("generate", time.Now())

	response, err := s.generator.Generate(ctx, docs, q)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return response, nil
}

func observe(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

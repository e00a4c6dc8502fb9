// Package retriever finds catalog products semantically close to a search term.
package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
)

const (
	// DefaultLimit is the number of documents requested from the index.
	DefaultLimit = 5
	// DefaultThreshold is the minimum similarity a document must reach.
	DefaultThreshold = 0.3

	probeTimeout = 5 * time.Second
)

// Index status values reported by IndexStats.
const (
	StatusReady    = "ready"
	StatusIndexing = "indexing"
	StatusError    = "error"
)

// Stats summarizes the vector index. It is informational only.
type Stats struct {
	VectorCount  int64
	IndexedCount int64
	Status       string
	Error        string
}

// Service embeds search terms and queries the vector index.
type Service struct {
	embedder  Embedder
	index     Index
	limit     int
	threshold float64
	logger    *zap.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLimit overrides DefaultLimit.
func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithThreshold overrides DefaultThreshold.
func WithThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 && t <= 1 {
			s.threshold = t
		}
	}
}

// New creates a retriever.
func New(embedder Embedder, index Index, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		embedder:  embedder,
		index:     index,
		limit:     DefaultLimit,
		threshold: DefaultThreshold,
		logger:    logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Retrieve returns up to the configured limit of documents similar to query,
// in index order, dropping those below the threshold.
// A non-empty categoryFilter restricts the search to that category.
func (s *Service) Retrieve(ctx context.Context, query, categoryFilter string) ([]product.RetrievedDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrRetrieval)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("embedder not initialized: %w", domain.ErrRetrieval)
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrRetrieval, err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	found, err := s.index.SearchKNN(ctx, emb.Embedding, categoryFilter, s.limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w: %w", domain.ErrRetrieval, err)
	}

	docs := make([]product.RetrievedDocument, 0, len(found))
	for _, d := range found {
		if d.Score.Value() >= s.threshold {
			docs = append(docs, d)
		}
	}

	s.logger.Debug("Documents retrieved",
		zap.String("query", query),
		zap.String("category", categoryFilter),
		zap.Int("candidates", len(found)),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

// IndexStats reports the index document count and state. Failures are folded into Stats.
func (s *Service) IndexStats(ctx context.Context) Stats {
	info, err := s.index.Info(ctx)
	if err != nil {
		s.logger.Warn("Index stats unavailable", zap.Error(err))
		return Stats{Status: StatusError, Error: err.Error()}
	}

	status := StatusReady
	if info.Indexing {
		status = StatusIndexing
	}
	return Stats{
		VectorCount:  info.NumDocs,
		IndexedCount: info.IndexedDocs(),
		Status:       status,
	}
}

// IsAvailable pings the vector index, bounded by a 5 second timeout.
func (s *Service) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := s.index.Ping(ctx); err != nil {
		s.logger.Warn("Vector index unavailable", zap.Error(err))
		return false
	}
	return true
}

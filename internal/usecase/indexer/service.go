// Package indexer embeds catalog products and writes them into the vector index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	dombatch "github.com/kailas-cloud/catalograg/internal/domain/batch"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
)

// DefaultBatchSize is the number of products embedded and written together.
const DefaultBatchSize = 64

// Report is the outcome of one indexing run.
type Report struct {
	IndexCreated bool
	Results      []dombatch.Result
	Tokens       int
	Duration     time.Duration
}

// Summary counts indexed and failed products.
func (r *Report) Summary() dombatch.Summary { return dombatch.Summarize(r.Results) }

// Service indexes products batch by batch with per-item results.
type Service struct {
	embed     BatchEmbedder
	writer    ProductWriter
	batchSize int
	logger    *zap.Logger
}

// New creates an indexer.
func New(embed BatchEmbedder, writer ProductWriter, logger *zap.Logger) *Service {
	return &Service{embed: embed, writer: writer, batchSize: DefaultBatchSize, logger: logger}
}

// WithBatchSize configures how many products go into one embedding request.
func (s *Service) WithBatchSize(size int) *Service {
	if size > 0 {
		s.batchSize = size
	}
	return s
}

// Index ensures the index exists and writes products into it.
// A failed batch marks its products failed and indexing continues;
// an exhausted embedding quota fails every remaining product.
func (s *Service) Index(ctx context.Context, products []product.Product, recreate bool) (*Report, error) {
	start := time.Now()

	created, err := s.writer.EnsureIndex(ctx, recreate)
	if err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	if created {
		s.logger.Info("Catalog index created", zap.Bool("recreate", recreate))
	}

	report := &Report{IndexCreated: created, Results: make([]dombatch.Result, 0, len(products))}

	for offset := 0; offset < len(products); offset += s.batchSize {
		chunk := products[offset:min(offset+s.batchSize, len(products))]

		tokens, err := s.indexChunk(ctx, chunk)
		report.Tokens += tokens
		if err == nil {
			for i := range chunk {
				report.Results = append(report.Results, dombatch.NewOK(chunk[i].ID))
			}
			continue
		}

		s.logger.Warn("Catalog batch failed",
			zap.Int("offset", offset),
			zap.Int("size", len(chunk)),
			zap.Error(err),
		)

		rest := chunk
		if errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
			rest = products[offset:]
		}
		for i := range rest {
			report.Results = append(report.Results, dombatch.NewError(rest[i].ID, err))
		}
		if len(rest) > len(chunk) {
			break
		}
	}

	report.Duration = time.Since(start)
	sum := report.Summary()
	s.logger.Info("Catalog indexed",
		zap.Int("indexed", sum.OK),
		zap.Int("failed", sum.Failed),
		zap.Int("tokens", report.Tokens),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) indexChunk(ctx context.Context, chunk []product.Product) (int, error) {
	texts := make([]string, len(chunk))
	for i := range chunk {
		texts[i] = chunk[i].EmbeddingText()
	}

	res, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(res.Embeddings) != len(chunk) {
		return res.TotalTokens, fmt.Errorf("embed: got %d vectors for %d products", len(res.Embeddings), len(chunk))
	}

	if err := s.writer.Upsert(ctx, chunk, res.Embeddings); err != nil {
		return res.TotalTokens, fmt.Errorf("store: %w", err)
	}
	return res.TotalTokens, nil
}

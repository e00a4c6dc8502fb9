package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/metrics"
)

const (
	// DefaultMaxAPIBatchSize caps the number of texts sent in one API request.
	DefaultMaxAPIBatchSize = 256

	availabilityTimeout = 5 * time.Second
)

// BudgetChecker enforces a token budget around provider calls.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	Status() BudgetStatus
}

// Provider turns text into fixed-dimension vectors.
// It owns budget enforcement and dimension checks; transport metrics live in transport/openai.
type Provider struct {
	inner    domain.Embedder
	provider string
	model    string
	dims     int
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewProvider wraps an embedder chain. budget may be nil.
func NewProvider(
	inner domain.Embedder, provider, model string, dims int,
	budget BudgetChecker, logger *zap.Logger,
) *Provider {
	return &Provider{
		inner:    inner,
		provider: provider,
		model:    model,
		dims:     dims,
		budget:   budget,
		logger:   logger,
	}
}

// Dimensions returns the vector size every Embed call produces.
func (p *Provider) Dimensions() int { return p.dims }

// Model returns the embedding model name.
func (p *Provider) Model() string { return p.model }

// IsAvailable probes the provider, bounded by a 5 second timeout.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	hc, ok := p.inner.(domain.HealthChecker)
	if !ok {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	if err := hc.HealthCheck(ctx); err != nil {
		p.logger.Warn("Embedding provider unavailable",
			zap.String("provider", p.provider),
			zap.Error(err),
		)
		return false
	}
	return true
}

// Embed vectorizes a single text.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := p.checkBudget(ctx, 1); err != nil {
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if err := p.checkDims(result.Embedding); err != nil {
		return domain.EmbeddingResult{}, err
	}

	p.recordUsage(result.TotalTokens)

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed vectorizes texts in chunks of DefaultMaxAPIBatchSize, re-checking the budget per chunk.
func (p *Provider) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += DefaultMaxAPIBatchSize {
		if err := p.checkBudget(ctx, len(texts)); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("chunk %d: %w", offset, err)
		}

		chunk := texts[offset:min(offset+DefaultMaxAPIBatchSize, len(texts))]
		res, err := p.embedChunk(ctx, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		for _, vec := range res.Embeddings {
			if err := p.checkDims(vec); err != nil {
				return domain.BatchEmbeddingResult{}, err
			}
		}

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
		p.recordUsage(res.TotalTokens)
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

// Budget reports token consumption; ok is false when no budget is configured.
func (p *Provider) Budget() (BudgetStatus, bool) {
	if p.budget == nil {
		return BudgetStatus{}, false
	}
	return p.budget.Status(), true
}

func (p *Provider) embedChunk(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := p.inner.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, p.inner, texts)
}

func (p *Provider) checkBudget(ctx context.Context, n int) error {
	if p.budget == nil {
		return nil
	}
	if err := p.budget.Check(ctx); err != nil {
		p.logger.Error("Embedding budget exceeded",
			zap.String("provider", p.provider),
			zap.Int("texts", n),
			zap.Error(err),
		)
		return fmt.Errorf("budget check: %w", err)
	}
	return nil
}

func (p *Provider) checkDims(vec []float32) error {
	if p.dims > 0 && len(vec) != p.dims {
		return fmt.Errorf("embedding has %d dimensions, want %d: %w", len(vec), p.dims, domain.ErrVectorDimMismatch)
	}
	return nil
}

func (p *Provider) recordUsage(tokens int) {
	if p.budget == nil || tokens <= 0 {
		return
	}
	p.budget.Record(int64(tokens))

	st := p.budget.Status()
	metrics.EmbeddingBudgetRemaining.WithLabelValues("daily").Set(float64(st.DailyRemaining))
	metrics.EmbeddingBudgetRemaining.WithLabelValues("monthly").Set(float64(st.MonthlyRemaining))
}

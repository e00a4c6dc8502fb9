// Package generator writes the final recommendation grounded in retrieved products.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalograg/internal/metrics"
)

const (
	// DefaultTimeout bounds one generation call.
	DefaultTimeout = 30 * time.Second
	// NoResultsMessage is returned when nothing matched the query.
	NoResultsMessage = "Sorry, no matching products were found in the catalog. Try rephrasing your request."

	probeTimeout = 5 * time.Second
	maxTokens    = 400
	temperature  = 0.3
)

const preamble = `You are a shop assistant for a computer hardware store.
Rules:
- Recommend ONLY products from the list below. Never mention products that are not listed.
- Do not invent characteristics, prices or availability that are not in the list.
- Pick exactly one best match, explain briefly why it fits, and state its price.
- Answer in the same language as the customer's request.`

type llm interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Service produces recommendations and never fails on model errors.
type Service struct {
	llm     llm
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a generator. A zero timeout uses DefaultTimeout.
func New(model llm, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{llm: model, timeout: timeout, logger: logger}
}

// Generate answers originalQuery using only docs.
// An empty query is a caller error; empty docs yield NoResultsMessage without a model call.
func (s *Service) Generate(ctx context.Context, docs []product.RetrievedDocument, originalQuery string) (string, error) {
	if strings.TrimSpace(originalQuery) == "" {
		return "", fmt.Errorf("empty query: %w", domain.ErrGeneration)
	}
	if len(docs) == 0 {
		return NoResultsMessage, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.llm.Generate(ctx, BuildPrompt(docs, originalQuery), domain.GenerateOptions{
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Purpose:     "generate",
	})
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		s.logger.Warn("Response generation failed, using fallback",
			zap.Int("documents", len(docs)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		metrics.StageFallbacksTotal.WithLabelValues("generate").Inc()
		return Fallback(docs), nil
	}

	s.logger.Debug("Response generated",
		zap.Int("documents", len(docs)),
		zap.Int("length", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

// IsAvailable probes the model. Models without a probe count as available.
func (s *Service) IsAvailable(ctx context.Context) bool {
	hc, ok := s.llm.(healthChecker)
	if !ok {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return hc.HealthCheck(ctx) == nil
}

// BuildPrompt renders the constrained recommendation prompt.
func BuildPrompt(docs []product.RetrievedDocument, query string) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\nAvailable products:\n")
	for i := range docs {
		d := &docs[i]
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.Product.Name)
		fmt.Fprintf(&b, "   Brand: %s\n", d.Product.Brand)
		fmt.Fprintf(&b, "   Category: %s\n", d.Product.Category)
		fmt.Fprintf(&b, "   Price: %s\n", d.Product.FormattedPrice())
		if d.Product.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", d.Product.Description)
		}
		fmt.Fprintf(&b, "   Relevance: %d%%\n", d.Score.Percent())
	}
	fmt.Fprintf(&b, "\nCustomer request: %s\n\nRecommendation:", query)
	return b.String()
}

// Fallback is the deterministic answer used when the model cannot help.
func Fallback(docs []product.RetrievedDocument) string {
	if len(docs) == 0 {
		return NoResultsMessage
	}
	return fmt.Sprintf("Found %d item(s). Recommended: %s.", len(docs), docs[0].Product.Name)
}

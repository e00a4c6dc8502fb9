// Package optimizer rewrites free-form user queries into concise catalog search terms.
package optimizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/metrics"
)

const (
	// DefaultTimeout bounds one optimization call.
	DefaultTimeout = 15 * time.Second

	probeTimeout = 5 * time.Second
	maxTokens    = 50
	temperature  = 0.1
)

const systemPrompt = `You turn shopper questions about computer hardware into short product search queries.
Reply with the search query only: a concise English search term of 2 to 6 words, no explanations, no quotes.
Translate questions asked in other languages into English.
Keep brand names, model numbers and key specs as written.`

var (
	labelRe    = regexp.MustCompile(`(?i)^\s*(english search query|answer|ответ|search query|query|запрос|поисковый запрос|optimized query)\s*[:\-]\s*`)
	sentenceRe = regexp.MustCompile(`[.!?](\s|$)`)
)

// Service optimizes queries with a language model and falls back to the input on any failure.
type Service struct {
	llm     llm
	timeout time.Duration
	logger  *zap.Logger
}

// New creates an optimizer. A zero timeout uses DefaultTimeout.
func New(model llm, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{llm: model, timeout: timeout, logger: logger}
}

// Optimize returns a concise search term for userQuery.
// priorCategory, when set, biases the rewrite towards the category of the previous turn.
// Only an empty query is an error; model failures return the original query.
func (s *Service) Optimize(ctx context.Context, userQuery, priorCategory string) (string, error) {
	userQuery = strings.TrimSpace(userQuery)
	if userQuery == "" {
		return "", fmt.Errorf("empty query: %w", domain.ErrQueryProcessing)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.llm.Generate(ctx, BuildPrompt(userQuery, priorCategory), domain.GenerateOptions{
		System:      systemPrompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Purpose:     "optimize",
	})
	if err != nil {
		s.logger.Warn("Query optimization failed, using original query",
			zap.String("query", userQuery),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		metrics.StageFallbacksTotal.WithLabelValues("optimize").Inc()
		return userQuery, nil
	}

	optimized := Extract(raw)
	if optimized == "" {
		s.logger.Warn("Query optimization returned nothing usable, using original query",
			zap.String("query", userQuery),
			zap.String("raw", raw),
		)
		metrics.StageFallbacksTotal.WithLabelValues("optimize").Inc()
		return userQuery, nil
	}

	s.logger.Debug("Query optimized",
		zap.String("query", userQuery),
		zap.String("optimized", optimized),
		zap.String("prior_category", priorCategory),
		zap.Duration("duration", time.Since(start)),
	)
	return optimized, nil
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

// BuildPrompt assembles the optimization prompt.
func BuildPrompt(userQuery, priorCategory string) string {
	var b strings.Builder
	if priorCategory != "" {
		fmt.Fprintf(&b, "The shopper was previously looking at the %q category; "+
			"prefer it unless the question clearly asks for something else.\n", priorCategory)
	}
	fmt.Fprintf(&b, "Question: %s\nEnglish search query:", userQuery)
	return b.String()
}

// Extract cleans a model reply down to a single search term:
// first line, leading label and quotes stripped, first sentence, no trailing punctuation.
func Extract(raw string) string {
	text := strings.TrimSpace(raw)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}

	text = trimQuotes(text)
	text = labelRe.ReplaceAllString(text, "")
	text = trimQuotes(text)

	if loc := sentenceRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	text = strings.TrimRight(text, ".,;:!? ")
	return strings.TrimSpace(trimQuotes(text))
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'`«»“”")
}

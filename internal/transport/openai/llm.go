package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/metrics"
)

var (
	_ domain.LLM           = (*LLM)(nil)
	_ domain.ModelLister   = (*LLM)(nil)
	_ domain.HealthChecker = (*LLM)(nil)
)

// LLMConfig holds the chat completion provider settings.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// RequestsPerSecond limits outgoing completions. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	Logger            *zap.Logger
}

// LLM is a chat completion client for any OpenAI-compatible server.
type LLM struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewLLM creates an OpenAI-compatible chat completion client.
func NewLLM(cfg *LLMConfig) *LLM {
	l := &LLM{
		client: newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return l
}

// Model returns the configured model name.
func (l *LLM) Model() string {
	return l.model
}

// Generate runs one chat completion and returns the raw content of the first choice.
func (l *LLM) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	purpose := opts.Purpose
	if purpose == "" {
		purpose = "generate"
	}

	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			metrics.LLMRequestsTotal.WithLabelValues(l.model, purpose, "rate_limited").Inc()
			return "", fmt.Errorf("rate limit wait: %w: %w", err, domain.ErrLLMProviderError)
		}
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if opts.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: opts.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	req := openai.ChatCompletionRequest{
		Model:       l.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	start := time.Now()
	resp, err := l.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(l.model, purpose, "error").Inc()
		l.logger.Warn("Chat completion failed",
			zap.String("purpose", purpose), zap.Duration("duration", duration), zap.Error(err))
		return "", parseAPIError("llm", domain.ErrLLMProviderError, err)
	}

	metrics.LLMRequestDuration.WithLabelValues(l.model, purpose).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(l.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(l.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(l.model, purpose, "empty").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrLLMProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(l.model, purpose, "success").Inc()
	l.logger.Debug("Chat completion",
		zap.String("purpose", purpose),
		zap.Duration("duration", duration),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

// ListModels returns the ids of the models the server exposes.
func (l *LLM) ListModels(ctx context.Context) ([]string, error) {
	list, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, parseAPIError("llm", domain.ErrLLMProviderError, err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// HealthCheck verifies API availability via ListModels.
func (l *LLM) HealthCheck(ctx context.Context) error {
	if _, err := l.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

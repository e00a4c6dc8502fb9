package openai

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// defaultTimeout bounds every HTTP call when no timeout is configured.
const defaultTimeout = 60 * time.Second

// newClient builds a go-openai client for any OpenAI-compatible base URL.
// Local servers (Ollama, LM Studio) accept any non-empty key.
func newClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	if apiKey == "" {
		apiKey = "unused"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return openai.NewClientWithConfig(cfg)
}

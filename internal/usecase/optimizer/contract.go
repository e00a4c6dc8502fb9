package optimizer

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// llm is the language model the optimizer consults.
type llm interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
}

// healthChecker is implemented by models that can be probed.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

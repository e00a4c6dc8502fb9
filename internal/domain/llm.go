package domain

import "context"

// LLM produces text completions for the optimizer and the generator.
type LLM interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions configures one completion.
type GenerateOptions struct {
	// System is an optional system message sent before the prompt.
	System string
	// MaxTokens caps the completion length. Zero leaves it to the provider.
	MaxTokens int
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float32
	// Purpose labels metrics and logs ("optimize", "generate").
	Purpose string
}

// ModelLister lists models served by a provider.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

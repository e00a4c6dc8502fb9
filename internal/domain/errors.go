package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed input (query, session id, score).
	ErrValidation = errors.New("validation failed")
	// ErrQueryProcessing signals that a query could not be optimized.
	ErrQueryProcessing = errors.New("query processing failed")
	// ErrRetrieval signals an embedding or vector index failure during retrieval.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration signals a response generation contract violation.
	ErrGeneration = errors.New("generation failed")
	// ErrServiceUnavailable signals that an external dependency could not be reached.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrLLMProviderError signals a language model provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ServiceUnavailableError wraps ErrServiceUnavailable with the dependency name.
type ServiceUnavailableError struct {
	Service string
	Err     error
}

func (e *ServiceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrServiceUnavailable.Error(), e.Service)
	}
	return fmt.Sprintf("%s: %s: %v", ErrServiceUnavailable.Error(), e.Service, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *ServiceUnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrServiceUnavailable}
	}
	return []error{ErrServiceUnavailable, e.Err}
}

// NewServiceUnavailable creates an unavailability error for a named dependency.
func NewServiceUnavailable(service string, err error) error {
	return &ServiceUnavailableError{Service: service, Err: err}
}

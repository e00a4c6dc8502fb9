package score

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// Level is the display classification of a relevance score.
type Level string

// Relevance levels.
const (
	High   Level = "high"
	Medium Level = "medium"
	Low    Level = "low"
)

// Score is a relevance score in [0, 1] (immutable value object).
type Score struct {
	value float64
}

// New validates the score: finite and within [0, 1].
func New(v float64) (Score, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Score{}, domain.NewValidationError("score", "must be finite")
	}
	if v < 0 || v > 1 {
		return Score{}, domain.NewValidationError("score", fmt.Sprintf("must be between 0 and 1, got %g", v))
	}
	return Score{value: v}, nil
}

// Clamp builds a score from an index similarity, pinning it into [0, 1].
// Non-finite input becomes 0.
func Clamp(v float64) Score {
	switch {
	case math.IsNaN(v) || math.IsInf(v, -1) || v < 0:
		return Score{}
	case math.IsInf(v, 1) || v > 1:
		return Score{value: 1}
	}
	return Score{value: v}
}

// Value returns the raw score.
func (s Score) Value() float64 { return s.value }

// Percent returns the score as a rounded percentage.
func (s Score) Percent() int { return int(math.Round(s.value * 100)) }

// Level classifies the score: high (>0.8), medium ([0.5, 0.8]), low (<0.5).
func (s Score) Level() Level {
	switch {
	case s.value > 0.8:
		return High
	case s.value >= 0.5:
		return Medium
	default:
		return Low
	}
}

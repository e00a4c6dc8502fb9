package query

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// MaxLength is the maximum query length in characters.
const MaxLength = 1000

// forbiddenChars are rejected to keep markup out of prompts and logs.
const forbiddenChars = `<>"'`

// Query is a validated, normalized user search query (immutable value object).
type Query struct {
	text string
}

// New normalizes whitespace and validates the query.
// Rules: non-empty after trim, at most MaxLength characters, no <, >, ", '.
func New(raw string) (Query, error) {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return Query{}, domain.NewValidationError("query", "must not be empty")
	}
	if utf8.RuneCountInString(text) > MaxLength {
		return Query{}, domain.NewValidationError("query", "too long (max 1000 characters)")
	}
	if strings.ContainsAny(text, forbiddenChars) {
		return Query{}, domain.NewValidationError("query", "contains forbidden characters")
	}
	return Query{text: text}, nil
}

// String returns the normalized query text.
func (q Query) String() string { return q.text }

// IsZero reports whether the query was never constructed.
func (q Query) IsZero() bool { return q.text == "" }

package session

import (
	"regexp"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// MaxIDLength is the maximum session identifier length.
const MaxIDLength = 255

// DefaultID is the session used by stateless single-shot searches.
const DefaultID ID = "default_session"

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ID is a validated session identifier.
type ID string

// NewID validates a session identifier: 1-255 chars of [a-zA-Z0-9_.-].
func NewID(raw string) (ID, error) {
	if raw == "" {
		return "", domain.NewValidationError("session_id", "must not be empty")
	}
	if len(raw) > MaxIDLength {
		return "", domain.NewValidationError("session_id", "too long (max 255)")
	}
	if !idRegex.MatchString(raw) {
		return "", domain.NewValidationError("session_id",
			"must contain only letters, digits, underscore, hyphen and dot")
	}
	return ID(raw), nil
}

// String returns the raw identifier.
func (id ID) String() string { return string(id) }

// Package session keeps per-session search context between turns of a conversation.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
)

const (
	// FreshFor is how long a written context influences later searches.
	FreshFor = 10 * time.Minute
	// RetainFor is how long an entry survives before the sweep evicts it.
	RetainFor = time.Hour
)

// Context is the remembered state of one session.
type Context struct {
	Category  string
	LastQuery string
	WrittenAt time.Time
}

// categoryKeywords maps catalog categories to lower-case query keywords.
// Order is priority: the first category with a matching keyword wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"graphics_cards", []string{"видеокарт", "rtx", "gtx", "radeon", "gpu", "geforce"}},
	{"processors", []string{"процессор", "cpu", "ryzen", "core i", "xeon", "threadripper"}},
	{"memory", []string{"оперативн", "ddr", "memory"}},
	{"storage", []string{"ssd", "hdd", "nvme", "накопител", "жестк"}},
	{"motherboards", []string{"материнск", "motherboard", "чипсет"}},
	{"power_supplies", []string{"блок питания", "psu"}},
	{"monitors", []string{"монитор", "monitor"}},
	{"laptops", []string{"ноутбук", "laptop"}},
	{"peripherals", []string{"клавиатур", "мыш", "keyboard", "mouse", "наушник", "headset"}},
}

// Store is an in-memory session context map safe for concurrent use.
// Entries expire lazily on read and in bulk on ActiveSessionCount.
type Store struct {
	mu       sync.Mutex
	sessions map[string]Context
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty context store.
func NewStore(opts ...Option) *Store {
	s := &Store{sessions: make(map[string]Context), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Set records the category and query of the latest successful search.
func (s *Store) Set(sessionID, category, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = Context{
		Category:  category,
		LastQuery: query,
		WrittenAt: s.now(),
	}
}

// Get returns the session category while the context is fresh.
// A stale entry is removed.
func (s *Store) Get(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionID]
	if !ok {
		return "", false
	}
	if s.now().Sub(c.WrittenAt) > FreshFor {
		delete(s.sessions, sessionID)
		return "", false
	}
	if c.Category == "" {
		return "", false
	}
	return c.Category, true
}

// ActiveSessionCount evicts entries older than RetainFor and returns how many remain.
func (s *Store) ActiveSessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-RetainFor)
	for id, c := range s.sessions {
		if c.WrittenAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
	return len(s.sessions)
}

// ExtractCategoryFromResults returns the category of the top document.
func (s *Store) ExtractCategoryFromResults(docs []product.RetrievedDocument) (string, bool) {
	if len(docs) == 0 || docs[0].Category() == "" {
		return "", false
	}
	return docs[0].Category(), true
}

// InferCategoryFromQuery guesses a category from keywords in the raw query.
func (s *Store) InferCategoryFromQuery(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(q, kw) {
				return entry.category, true
			}
		}
	}
	return "", false
}

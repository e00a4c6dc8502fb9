package embcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/db"
	"github.com/kailas-cloud/catalograg/internal/domain"
)

// fakeEmbedder returns vectors derived from the text length and records every call.
type fakeEmbedder struct {
	tokensPerText int
	err           error
	healthErr     error

	single  []string
	batches [][]string
	short   bool // answer batches with one vector too few
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 0.5}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.single = append(f.single, text)
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: vectorFor(text), PromptTokens: f.tokensPerText, TotalTokens: f.tokensPerText}, nil
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return domain.BatchEmbeddingResult{}, f.err
	}
	var out domain.BatchEmbeddingResult
	for _, t := range texts {
		out.Embeddings = append(out.Embeddings, vectorFor(t))
	}
	if f.short {
		out.Embeddings = out.Embeddings[:len(out.Embeddings)-1]
	}
	out.PromptTokens = f.tokensPerText * len(texts)
	out.TotalTokens = out.PromptTokens
	return out, nil
}

func (f *fakeEmbedder) HealthCheck(context.Context) error { return f.healthErr }

// singleOnly hides BatchEmbed so the decorator has to fall back.
type singleOnly struct{ inner *fakeEmbedder }

func (s singleOnly) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return s.inner.Embed(ctx, text)
}

// memKV is an in-memory KV with optional injected failures.
type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func newTestCache(t *testing.T, inner domain.Embedder, opts ...Option) (*CachedEmbedder, *memKV) {
	t.Helper()
	kv := newMemKV()
	return New(inner, kv, nil, zap.NewNop(), opts...), kv
}

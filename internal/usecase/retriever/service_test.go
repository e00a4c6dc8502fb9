package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/db"
	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalograg/internal/domain/search/score"
)

type fakeEmbedder struct {
	vec    []float32
	tokens int
	err    error
	got    string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.got = text
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vec, TotalTokens: f.tokens}, nil
}

type fakeIndex struct {
	docs    []product.RetrievedDocument
	err     error
	info    *db.IndexInfo
	infoErr error
	pingErr error

	gotVector   []float32
	gotCategory string
	gotTopK     int
}

func (f *fakeIndex) SearchKNN(_ context.Context, vector []float32, category string, topK int) ([]product.RetrievedDocument, error) {
	f.gotVector, f.gotCategory, f.gotTopK = vector, category, topK
	return f.docs, f.err
}

func (f *fakeIndex) Info(_ context.Context) (*db.IndexInfo, error) { return f.info, f.infoErr }

func (f *fakeIndex) Ping(_ context.Context) error { return f.pingErr }

func doc(id string, s float64) product.RetrievedDocument {
	return product.RetrievedDocument{
		ID:      id,
		Product: product.Product{ID: id, Name: "Product " + id, Category: "processors"},
		Score:   score.Clamp(s),
	}
}

func TestRetrieve_Success(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{0.1, 0.2}}
	idx := &fakeIndex{docs: []product.RetrievedDocument{doc("a", 0.9), doc("b", 0.6), doc("c", 0.7)}}
	svc := New(emb, idx, zap.NewNop())

	docs, err := svc.Retrieve(context.Background(), " AMD Ryzen ", "processors")
	require.NoError(t, err)

	assert.Equal(t, "AMD Ryzen", emb.got)
	assert.Equal(t, []float32{0.1, 0.2}, idx.gotVector)
	assert.Equal(t, "processors", idx.gotCategory)
	assert.Equal(t, DefaultLimit, idx.gotTopK)

	// index order kept, no re-sort
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
}

func TestRetrieve_RecordsRequestUsage(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{0.1}, tokens: 7}
	svc := New(emb, &fakeIndex{}, zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	_, err := svc.Retrieve(ctx, "ssd", "")
	require.NoError(t, err)
	_, err = svc.Retrieve(ctx, "ssd", "")
	require.NoError(t, err)

	assert.True(t, usage.Used)
	assert.Equal(t, 14, usage.TotalTokens)

	// no collector in the context is fine
	_, err = svc.Retrieve(context.Background(), "ssd", "")
	require.NoError(t, err)
}

func TestRetrieve_ThresholdFilter(t *testing.T) {
	idx := &fakeIndex{docs: []product.RetrievedDocument{doc("a", 0.8), doc("b", 0.3), doc("c", 0.29)}}
	svc := New(&fakeEmbedder{vec: []float32{1}}, idx, zap.NewNop())

	docs, err := svc.Retrieve(context.Background(), "q", "")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[1].ID)
	assert.Empty(t, idx.gotCategory)
}

func TestRetrieve_Options(t *testing.T) {
	idx := &fakeIndex{docs: []product.RetrievedDocument{doc("a", 0.5)}}
	svc := New(&fakeEmbedder{vec: []float32{1}}, idx, zap.NewNop(), WithLimit(10), WithThreshold(0.6))

	docs, err := svc.Retrieve(context.Background(), "q", "")
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 10, idx.gotTopK)
}

func TestRetrieve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		emb   Embedder
		index *fakeIndex
		query string
	}{
		{"empty query", &fakeEmbedder{vec: []float32{1}}, &fakeIndex{}, "  "},
		{"nil embedder", nil, &fakeIndex{}, "q"},
		{"embed failure", &fakeEmbedder{err: domain.ErrEmbeddingProviderError}, &fakeIndex{}, "q"},
		{"index failure", &fakeEmbedder{vec: []float32{1}}, &fakeIndex{err: errors.New("READONLY")}, "q"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.emb, tc.index, zap.NewNop()).Retrieve(context.Background(), tc.query, "")
			require.ErrorIs(t, err, domain.ErrRetrieval)
		})
	}
}

func TestRetrieve_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	svc := New(&fakeEmbedder{vec: []float32{1}}, &fakeIndex{err: cause}, zap.NewNop())

	_, err := svc.Retrieve(context.Background(), "q", "")
	require.ErrorIs(t, err, cause)
}

func TestIndexStats(t *testing.T) {
	ready := New(nil, &fakeIndex{info: &db.IndexInfo{NumDocs: 40, PercentIndexed: 1}}, zap.NewNop())
	assert.Equal(t, Stats{VectorCount: 40, IndexedCount: 40, Status: StatusReady}, ready.IndexStats(context.Background()))

	busy := New(nil, &fakeIndex{info: &db.IndexInfo{NumDocs: 40, PercentIndexed: 0.5, Indexing: true}}, zap.NewNop())
	assert.Equal(t, Stats{VectorCount: 40, IndexedCount: 20, Status: StatusIndexing}, busy.IndexStats(context.Background()))

	broken := New(nil, &fakeIndex{infoErr: errors.New("unknown index name")}, zap.NewNop())
	st := broken.IndexStats(context.Background())
	assert.Equal(t, StatusError, st.Status)
	assert.Contains(t, st.Error, "unknown index name")
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, New(nil, &fakeIndex{}, zap.NewNop()).IsAvailable(context.Background()))
	assert.False(t, New(nil, &fakeIndex{pingErr: errors.New("refused")}, zap.NewNop()).IsAvailable(context.Background()))
}

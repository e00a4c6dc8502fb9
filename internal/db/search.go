package db

import "github.com/kailas-cloud/catalograg/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // defaults to "vector"
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Score is cosine similarity in [0, 1], highest first.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// IndexInfo is the subset of FT.INFO the application reports.
type IndexInfo struct {
	Name           string
	NumDocs        int64
	PercentIndexed float64
	Indexing       bool
}

// IndexedDocs estimates how many documents the index has fully processed.
func (i *IndexInfo) IndexedDocs() int64 {
	if i.PercentIndexed >= 1 {
		return i.NumDocs
	}
	return int64(float64(i.NumDocs) * i.PercentIndexed)
}

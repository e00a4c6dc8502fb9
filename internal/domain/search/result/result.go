package result

import (
	"maps"

	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
)

// Result is the outcome of one RAG search request.
// It is assembled once by the pipeline and never mutated afterwards.
type Result struct {
	originalQuery  string
	optimizedQuery string
	documents      []product.RetrievedDocument
	response       string
}

// New creates a search result. The documents, including their specs, are copied.
func New(originalQuery, optimizedQuery string, documents []product.RetrievedDocument, response string) Result {
	return Result{
		originalQuery:  originalQuery,
		optimizedQuery: optimizedQuery,
		documents:      cloneDocuments(documents),
		response:       response,
	}
}

// OriginalQuery returns the normalized user query.
func (r *Result) OriginalQuery() string { return r.originalQuery }

// OptimizedQuery returns the search term produced by the optimizer.
func (r *Result) OptimizedQuery() string { return r.optimizedQuery }

// Documents returns a copy of the retrieved documents in index order.
func (r *Result) Documents() []product.RetrievedDocument {
	return cloneDocuments(r.documents)
}

// Len returns the number of retrieved documents.
func (r *Result) Len() int { return len(r.documents) }

// Response returns the generated recommendation text.
func (r *Result) Response() string { return r.response }

func cloneDocuments(src []product.RetrievedDocument) []product.RetrievedDocument {
	docs := make([]product.RetrievedDocument, len(src))
	copy(docs, src)
	for i := range docs {
		docs[i].Product.Specs = maps.Clone(docs[i].Product.Specs)
	}
	return docs
}

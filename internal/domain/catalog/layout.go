package catalog

import "strings"

// DefaultPrefix is the keyspace prefix used when none is configured.
const DefaultPrefix = "catalog:"

// Hash field names of a stored product.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldBrand       = "brand"
	FieldCategory    = "category"
	FieldPrice       = "price"
	FieldDescription = "description"
	FieldSpecs       = "specs"
	FieldVector      = "vector"
)

// PayloadFields are the hash fields returned by searches (everything but the vector).
var PayloadFields = []string{
	FieldID, FieldName, FieldBrand, FieldCategory, FieldPrice, FieldDescription, FieldSpecs,
}

// Layout derives index and key names from a single keyspace prefix.
type Layout struct {
	prefix string
}

// NewLayout creates a layout. An empty prefix falls back to DefaultPrefix;
// a missing trailing colon is added.
func NewLayout(prefix string) Layout {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return Layout{prefix: prefix}
}

// Prefix returns the keyspace prefix.
func (l Layout) Prefix() string { return l.prefix }

// IndexName is the FT index over product hashes.
func (l Layout) IndexName() string { return l.prefix + "idx" }

// ProductPrefix is the key prefix the index covers.
func (l Layout) ProductPrefix() string { return l.prefix + "product:" }

// ProductKey returns the hash key of a product.
func (l Layout) ProductKey(id string) string { return l.ProductPrefix() + id }

// ProductID strips the product prefix from a hash key.
func (l Layout) ProductID(key string) string { return strings.TrimPrefix(key, l.ProductPrefix()) }

// EmbeddingCachePrefix namespaces cached embeddings.
func (l Layout) EmbeddingCachePrefix() string { return l.prefix + "emb_cache:" }

package product

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/catalograg/internal/domain/search/score"
)

// Product is a catalog record as supplied by the catalog source.
type Product struct {
	ID          string            `json:"id" validate:"required,max=256,excludesall=:{}"`
	Name        string            `json:"name" validate:"required,max=512"`
	Brand       string            `json:"brand" validate:"required,max=128"`
	Category    string            `json:"category" validate:"required,max=64,category"`
	Price       int64             `json:"price" validate:"gte=0"` // minor units (kopecks, cents)
	Description string            `json:"description" validate:"max=8192"`
	Specs       map[string]string `json:"specs,omitempty"`
}

// EmbeddingText builds the text that represents the product in the vector index.
func (p *Product) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString(". ")
	b.WriteString(p.Brand)
	b.WriteString(". ")
	b.WriteString(p.Category)
	if p.Description != "" {
		b.WriteString(". ")
		b.WriteString(p.Description)
	}
	for _, k := range p.SpecKeys() {
		fmt.Fprintf(&b, ". %s: %s", k, p.Specs[k])
	}
	return b.String()
}

// SpecKeys returns the product attribute names in stable order.
func (p *Product) SpecKeys() []string {
	keys := make([]string, 0, len(p.Specs))
	for k := range p.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormattedPrice renders the minor-unit price as "12345.67".
func (p *Product) FormattedPrice() string {
	return FormatPrice(p.Price)
}

// FormatPrice renders a minor-unit amount with two decimals.
func FormatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// RetrievedDocument is one catalog match produced by a single search call.
type RetrievedDocument struct {
	ID      string
	Product Product
	Score   score.Score
}

// Category returns the matched product's category.
func (d *RetrievedDocument) Category() string { return d.Product.Category }

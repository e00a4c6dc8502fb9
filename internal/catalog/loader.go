// Package catalog loads product catalogs from JSON or YAML files.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
)

// Format is a catalog file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var categoryRe = regexp.MustCompile(`^[a-z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// category values are index TAG values: lower-case slug only
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return categoryRe.MatchString(fl.Field().String())
	})
	return v
}

// ItemError describes why one catalog entry was rejected.
type ItemError struct {
	Index  int
	ID     string
	Fields map[string]string
}

func (e *ItemError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return fmt.Sprintf("product #%d (%s): %s", e.Index, e.ID, strings.Join(parts, "; "))
}

// Catalog is a parsed product list. Invalid holds the entries that failed validation.
type Catalog struct {
	Products []product.Product
	Invalid  []*ItemError
}

// document accepts both a bare list and {"products": [...]}.
type document struct {
	Products []product.Product `json:"products" yaml:"products"`
}

// LoadFile reads a catalog file; the format follows the extension (.yaml/.yml, otherwise JSON).
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return Load(f, format)
}

// Load parses and validates a catalog. Valid products keep their file order.
func Load(r io.Reader, format Format) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	products, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.New("catalog is empty")
	}

	return Validate(products), nil
}

// Validate splits products into valid ones and per-item errors. Later duplicates of an id are rejected.
func Validate(products []product.Product) *Catalog {
	c := &Catalog{Products: make([]product.Product, 0, len(products))}
	seen := make(map[string]bool, len(products))

	for i := range products {
		p := &products[i]
		p.ID = strings.TrimSpace(p.ID)

		if err := validate.Struct(p); err != nil {
			c.Invalid = append(c.Invalid, newItemError(i, p.ID, err))
			continue
		}
		if seen[p.ID] {
			c.Invalid = append(c.Invalid, &ItemError{
				Index: i, ID: p.ID, Fields: map[string]string{"id": "duplicate id"},
			})
			continue
		}
		seen[p.ID] = true
		c.Products = append(c.Products, *p)
	}
	return c
}

// Categories returns the distinct categories of valid products, sorted.
func (c *Catalog) Categories() []string {
	set := make(map[string]struct{})
	for i := range c.Products {
		set[c.Products[i].Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func decode(data []byte, format Format) ([]product.Product, error) {
	trimmed := bytes.TrimSpace(data)

	switch format {
	case FormatYAML:
		var list []product.Product
		if err := yaml.Unmarshal(trimmed, &list); err == nil {
			return list, nil
		}
		var doc document
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
		return doc.Products, nil

	case FormatJSON:
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var list []product.Product
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, fmt.Errorf("decode json catalog: %w", err)
			}
			return list, nil
		}
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
		return doc.Products, nil
	}
	return nil, fmt.Errorf("unsupported catalog format %q", format)
}

func newItemError(index int, id string, err error) *ItemError {
	ie := &ItemError{Index: index, ID: id, Fields: make(map[string]string)}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ie.Fields["_"] = err.Error()
		return ie
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			ie.Fields[field] = field + " is required"
		case "max":
			ie.Fields[field] = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case "gte":
			ie.Fields[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
		case "category":
			ie.Fields[field] = field + " must be a lower-case slug ([a-z0-9_])"
		case "excludesall":
			ie.Fields[field] = fmt.Sprintf("%s must not contain any of %q", field, fe.Param())
		default:
			ie.Fields[field] = fmt.Sprintf("%s failed on %q", field, fe.Tag())
		}
	}
	return ie
}

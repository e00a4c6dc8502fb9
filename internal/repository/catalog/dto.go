package catalog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	domcat "github.com/kailas-cloud/catalograg/internal/domain/catalog"
	"github.com/kailas-cloud/catalograg/internal/domain/catalog/product"
)

// buildHashFields converts a product and its vector into a flat map for HSET.
func buildHashFields(p *product.Product, vector []float32) (map[string]string, error) {
	m := map[string]string{
		domcat.FieldID:          p.ID,
		domcat.FieldName:        p.Name,
		domcat.FieldBrand:       p.Brand,
		domcat.FieldCategory:    p.Category,
		domcat.FieldPrice:       strconv.FormatInt(p.Price, 10),
		domcat.FieldDescription: p.Description,
		domcat.FieldVector:      vectorToBytes(vector),
	}
	if len(p.Specs) > 0 {
		specs, err := json.Marshal(p.Specs)
		if err != nil {
			return nil, fmt.Errorf("marshal specs of %s: %w", p.ID, err)
		}
		m[domcat.FieldSpecs] = string(specs)
	}
	return m, nil
}

// parseHashFields converts a stored hash back into a product.
func parseHashFields(id string, m map[string]string) (product.Product, error) {
	p := product.Product{
		ID:          id,
		Name:        m[domcat.FieldName],
		Brand:       m[domcat.FieldBrand],
		Category:    m[domcat.FieldCategory],
		Description: m[domcat.FieldDescription],
	}
	if v := m[domcat.FieldPrice]; v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return product.Product{}, fmt.Errorf("parse price of %s: %w", id, err)
		}
		p.Price = price
	}
	if v := m[domcat.FieldSpecs]; v != "" {
		if err := json.Unmarshal([]byte(v), &p.Specs); err != nil {
			return product.Product{}, fmt.Errorf("parse specs of %s: %w", id, err)
		}
	}
	return p, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

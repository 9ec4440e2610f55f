// Package catalog holds the read-only product catalog and the brand and
// price rules that apply to its products.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bpc-market/storefront-service/internal/models"
)

// AllCategories is the pseudo-category that disables category filtering.
const AllCategories = "all"

// Catalog is the immutable set of products loaded at startup.
type Catalog struct {
	products []models.Product
	index    map[string]int
}

// New builds a catalog. When ids repeat, lookups return the first record.
func New(products []models.Product) *Catalog {
	c := &Catalog{
		products: make([]models.Product, len(products)),
		index:    make(map[string]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		if _, dup := c.index[p.ID]; !dup {
			c.index[p.ID] = i
		}
	}
	return c
}

// Empty is the catalog used when the products resource could not be loaded.
func Empty() *Catalog {
	return New(nil)
}

// Len is the number of product records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Get returns a copy of the product with the given id.
func (c *Catalog) Get(id string) (*models.Product, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	p := c.products[i]
	return &p, true
}

// All returns every product in catalog order.
func (c *Catalog) All() []models.Product {
	if c == nil {
		return nil
	}
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Categories lists distinct category tags in first-seen order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Filter narrows a product listing.
type Filter struct {
	Category string
	Query    string
}

// Search returns products in the category (empty or "all" matches every
// category) whose name, legacy brand label or any brand name contains the
// query, ignoring case.
func (c *Catalog) Search(f Filter) []models.Product {
	if c == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	category := strings.TrimSpace(f.Category)

	out := make([]models.Product, 0)
	for i := range c.products {
		p := &c.products[i]
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		if q != "" && !matchesQuery(p, q) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func matchesQuery(p *models.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	if p.Brand != "" && strings.Contains(strings.ToLower(p.Brand), q) {
		return true
	}
	brands := strings.ToLower(strings.Join(BrandNames(p), " "))
	return strings.Contains(brands, q)
}

// Decode reads the catalog resource: a JSON array of product records.
// Records without an id are skipped. Brands are normalized here so nothing
// downstream sees the raw shapes.
func Decode(r io.Reader) ([]models.Product, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]models.Product, 0, len(records))
	for _, rec := range records {
		p, ok := productFromRecord(rec)
		if !ok {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) ([]models.Product, error) {
	return Decode(bytes.NewReader(data))
}

func productFromRecord(rec map[string]interface{}) (models.Product, bool) {
	id, _ := scalarString(rec["id"])
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Product{}, false
	}

	price, _ := parseAmount(rec["price"])
	weight, _ := parseAmount(rec["weight"])

	return models.Product{
		ID:       id,
		Name:     stringField(rec, "name"),
		Category: stringField(rec, "category"),
		Unit:     stringField(rec, "unit"),
		Image:    stringField(rec, "image"),
		Origin:   stringField(rec, "origin"),
		Brand:    strings.TrimSpace(stringField(rec, "brand")),
		Price:    price,
		Weight:   weight,
		Brands:   NormalizeBrands(rec["brands"], price),
	}, true
}

func stringField(rec map[string]interface{}, key string) string {
	s, _ := rec[key].(string)
	return s
}

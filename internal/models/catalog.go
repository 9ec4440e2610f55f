package models

import "github.com/shopspring/decimal"

func init() {
	// Persisted carts and API responses carry amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog record. Brands is always in canonical form; the raw
// shapes found in the catalog resource are normalized when it is decoded.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Unit     string          `json:"unit"`
	Image    string          `json:"image"`
	Origin   string          `json:"origin,omitempty"`
	Brand    string          `json:"brand,omitempty"` // legacy single-brand label, search only
	Price    decimal.Decimal `json:"price"`
	Weight   decimal.Decimal `json:"weight"`
	Brands   []BrandVariant  `json:"brands"`
}

// BrandVariant is a named price override for a product.
type BrandVariant struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// HasBrands reports whether the product is sold under named brands.
func (p *Product) HasBrands() bool {
	return p != nil && len(p.Brands) > 0
}

// DistrictRate is the per-kilogram delivery rate and minimum charge for a district.
type DistrictRate struct {
	District  string          `json:"district"`
	PerKg     decimal.Decimal `json:"per_kg"`
	MinCharge decimal.Decimal `json:"min_charge"`
}

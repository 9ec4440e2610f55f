package service

import (
	"github.com/shopspring/decimal"

	"github.com/bpc-market/storefront-service/internal/catalog"
	"github.com/bpc-market/storefront-service/internal/delivery"
	"github.com/bpc-market/storefront-service/internal/errors"
	"github.com/bpc-market/storefront-service/internal/models"
	"github.com/bpc-market/storefront-service/internal/money"
)

// ProductView is a product as listed on the storefront.
type ProductView struct {
	models.Product
	BrandNames      []string        `json:"brand_names"`
	BrandCount      int             `json:"brand_count"`
	DefaultBrand    string          `json:"default_brand,omitempty"`
	MinPrice        decimal.Decimal `json:"min_price"`
	MinPriceDisplay string          `json:"min_price_display"`
}

// PriceView is the resolved price for a product under a brand.
type PriceView struct {
	ProductID string          `json:"product_id"`
	Brand     string          `json:"brand"`
	Price     decimal.Decimal `json:"price"`
	Display   string          `json:"display"`
}

// DistrictView is one entry of the delivery district picker.
type DistrictView struct {
	Name      string           `json:"name"`
	HasRate   bool             `json:"has_rate"`
	PerKg     *decimal.Decimal `json:"per_kg,omitempty"`
	MinCharge *decimal.Decimal `json:"min_charge,omitempty"`
}

// CatalogService answers read-only catalog and district queries.
type CatalogService struct {
	stores *Stores
}

func NewCatalogService(stores *Stores) *CatalogService {
	return &CatalogService{stores: stores}
}

// ListProducts returns the products matching the filter in catalog order.
func (s *CatalogService) ListProducts(f catalog.Filter) []ProductView {
	products := s.stores.Catalog.Search(f)
	out := make([]ProductView, 0, len(products))
	for i := range products {
		out = append(out, newProductView(&products[i]))
	}
	return out
}

// GetProduct returns one product or errors.ErrNotFound.
func (s *CatalogService) GetProduct(id string) (*ProductView, error) {
	p, ok := s.stores.Catalog.Get(id)
	if !ok {
		return nil, errors.ErrNotFound
	}
	v := newProductView(p)
	return &v, nil
}

// ResolvePrice prices a product under a brand. An empty brand means the
// product's default brand; an unknown brand resolves to the base price.
func (s *CatalogService) ResolvePrice(id, brand string) (*PriceView, error) {
	p, ok := s.stores.Catalog.Get(id)
	if !ok {
		return nil, errors.ErrNotFound
	}
	if brand == "" {
		brand = catalog.DefaultBrand(p)
	}
	price := catalog.ResolvePrice(p, brand)
	return &PriceView{
		ProductID: p.ID,
		Brand:     brand,
		Price:     price,
		Display:   money.Format(price),
	}, nil
}

// Categories lists "all" followed by each distinct category in catalog order.
func (s *CatalogService) Categories() []string {
	return append([]string{catalog.AllCategories}, s.stores.Catalog.Categories()...)
}

// Districts lists the fixed district set, with rate details where the rate
// table has them.
func (s *CatalogService) Districts() []DistrictView {
	out := make([]DistrictView, 0, len(delivery.Districts))
	for _, name := range delivery.Districts {
		v := DistrictView{Name: name}
		if r, ok := s.stores.Rates.Rate(name); ok {
			perKg, minCharge := r.PerKg, r.MinCharge
			v.HasRate = true
			v.PerKg = &perKg
			v.MinCharge = &minCharge
		}
		out = append(out, v)
	}
	return out
}

// ProductCount is the number of products in the catalog.
func (s *CatalogService) ProductCount() int {
	return s.stores.Catalog.Len()
}

func newProductView(p *models.Product) ProductView {
	names := catalog.BrandNames(p)
	if names == nil {
		names = []string{}
	}
	minPrice := catalog.MinPrice(p)
	return ProductView{
		Product:         *p,
		BrandNames:      names,
		BrandCount:      len(names),
		DefaultBrand:    catalog.DefaultBrand(p),
		MinPrice:        minPrice,
		MinPriceDisplay: money.From(minPrice),
	}
}

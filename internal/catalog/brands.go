package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bpc-market/storefront-service/internal/models"
)

// NormalizeBrands converts the raw brands field of a catalog record into the
// canonical list. Three shapes are accepted:
//
//	[{"name": "Shah", "price": 520}, ...]  objects; missing or zero price takes base,
//	                                       null or non-object entries are dropped
//	["Shah", "Akij"]                       bare names at the base price
//	"Shah, Akij"                           comma-separated names at the base price
//
// Anything else, including null, yields an empty list. Names are trimmed,
// empty names dropped and duplicates keep their first occurrence.
func NormalizeBrands(raw interface{}, base decimal.Decimal) []models.BrandVariant {
	out := make([]models.BrandVariant, 0)
	seen := make(map[string]bool)

	add := func(name string, price decimal.Decimal) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, models.BrandVariant{Name: name, Price: price})
	}

	switch brands := raw.(type) {
	case []interface{}:
		if len(brands) == 0 {
			return out
		}
		if isStructuredEntry(brands[0]) {
			for _, entry := range brands {
				obj, ok := entry.(map[string]interface{})
				if !ok {
					continue
				}
				name, ok := obj["name"].(string)
				if !ok {
					continue
				}
				price, ok := parseAmount(obj["price"])
				if !ok || price.IsZero() {
					price = base
				}
				add(name, price)
			}
			return out
		}
		for _, entry := range brands {
			if name, ok := scalarString(entry); ok {
				add(name, base)
			}
		}
	case string:
		for _, name := range strings.Split(brands, ",") {
			add(name, base)
		}
	}

	return out
}

// isStructuredEntry reports whether the first entry marks a list of brand
// objects. A leading null counts, as it does in the storefront's own data.
func isStructuredEntry(v interface{}) bool {
	if v == nil {
		return true
	}
	_, ok := v.(map[string]interface{})
	return ok
}

// BrandNames lists the product's canonical brand names in catalog order.
func BrandNames(p *models.Product) []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Brands))
	for _, b := range p.Brands {
		names = append(names, b.Name)
	}
	return names
}

// FindBrand looks up a variant by exact name.
func FindBrand(p *models.Product, name string) (models.BrandVariant, bool) {
	if p == nil || name == "" {
		return models.BrandVariant{}, false
	}
	for _, b := range p.Brands {
		if b.Name == name {
			return b, true
		}
	}
	return models.BrandVariant{}, false
}

// DefaultBrand is the brand a line gets when none is chosen: the first
// variant, or "" when the product has none.
func DefaultBrand(p *models.Product) string {
	if !p.HasBrands() {
		return ""
	}
	return p.Brands[0].Name
}

// ResolvePrice returns the unit price for a product sold under brandName.
// It is total: an empty or unknown brand resolves to the base price, and a
// nil product resolves to zero.
func ResolvePrice(p *models.Product, brandName string) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if b, ok := FindBrand(p, brandName); ok {
		return b.Price
	}
	return p.Price
}

// MinPrice is the cheapest variant price, or the base price when the product
// has no brands. A product without a price counts as zero.
func MinPrice(p *models.Product) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if len(p.Brands) == 0 {
		return p.Price
	}
	lowest := p.Brands[0].Price
	for _, b := range p.Brands[1:] {
		if b.Price.LessThan(lowest) {
			lowest = b.Price
		}
	}
	return lowest
}

// parseAmount reads a JSON number or numeric string. Values decoded with
// UseNumber arrive as json.Number.
func parseAmount(v interface{}) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, true
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Zero, false
}

func scalarString(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64, bool:
		return fmt.Sprint(x), true
	}
	return "", false
}

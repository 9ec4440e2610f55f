// Package cart implements the cart engine: brand-aware line merging,
// fail-soft mutations, delivery cost and order totals.
//
// A Cart is not safe for concurrent use; callers serialize access.
package cart

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/bpc-market/storefront-service/internal/catalog"
	"github.com/bpc-market/storefront-service/internal/delivery"
	"github.com/bpc-market/storefront-service/internal/models"
)

// Cart owns a list of lines and the chosen delivery district.
type Cart struct {
	catalog  *catalog.Catalog
	rates    *delivery.Table
	lines    []models.CartLine
	district string
}

// New builds a cart over the catalog and rate table, seeded with previously
// persisted lines and district. Persisted lines are taken verbatim, except
// that lines with a non-positive quantity are dropped.
func New(cat *catalog.Catalog, rates *delivery.Table, lines []models.CartLine, district string) *Cart {
	c := &Cart{
		catalog:  cat,
		rates:    rates,
		lines:    make([]models.CartLine, 0, len(lines)),
		district: district,
	}
	for _, l := range lines {
		if l.Quantity > 0 {
			c.lines = append(c.lines, l)
		}
	}
	return c
}

// Add puts qty units of a product under a brand into the cart. An empty
// brand means the product's first brand, or no brand if it has none. A line
// with the same product and brand is incremented; otherwise a new line is
// appended. Quantities below 1 count as 1.
//
// Unknown products are ignored and Add reports false.
func (c *Cart) Add(productID, brand string, qty int) bool {
	p, ok := c.catalog.Get(productID)
	if !ok {
		return false
	}

	if brand == "" {
		brand = catalog.DefaultBrand(p)
	}
	if qty < 1 {
		qty = 1
	}

	for i := range c.lines {
		if c.lines[i].SameIdentity(p.ID, brand) {
			c.lines[i].Quantity += qty
			return true
		}
	}

	c.lines = append(c.lines, models.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Unit:      p.Unit,
		Weight:    p.Weight,
		Quantity:  qty,
		Brand:     brand,
		UnitPrice: catalog.ResolvePrice(p, brand),
	})
	return true
}

// UpdateQuantity sets the quantity of the line at index to floor(qty). A
// non-finite qty counts as 1; a result of zero or less removes the line.
// Out-of-range indexes are ignored.
func (c *Cart) UpdateQuantity(index int, qty float64) bool {
	if !c.inRange(index) {
		return false
	}

	n := 1.0
	if !math.IsNaN(qty) && !math.IsInf(qty, 0) {
		n = math.Floor(qty)
	}
	if n <= 0 {
		return c.Remove(index)
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}

	c.lines[index].Quantity = int(n)
	return true
}

// Remove deletes the line at index. Out-of-range indexes are ignored.
func (c *Cart) Remove(index int) bool {
	if !c.inRange(index) {
		return false
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return true
}

// UpdateBrand re-prices the line at index for a new brand. Only the brand
// and the captured unit price change. Lines whose product has left the
// catalog are left as they are.
func (c *Cart) UpdateBrand(index int, brand string) bool {
	if !c.inRange(index) {
		return false
	}
	p, ok := c.catalog.Get(c.lines[index].ProductID)
	if !ok {
		return false
	}
	c.lines[index].Brand = brand
	c.lines[index].UnitPrice = catalog.ResolvePrice(p, brand)
	return true
}

// SetDistrict chooses the delivery district. "" clears the selection.
func (c *Cart) SetDistrict(district string) {
	c.district = district
}

// District is the chosen delivery district, "" if none.
func (c *Cart) District() string {
	return c.district
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len is the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Count is the total number of units across lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// TotalWeight sums catalog weight × quantity. Weights come from the catalog,
// not the line snapshot, so products no longer in the catalog weigh nothing.
func (c *Cart) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		p, ok := c.catalog.Get(l.ProductID)
		if !ok {
			continue
		}
		total = total.Add(p.Weight.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Subtotal is Σ captured unit price × quantity.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// DeliveryCost is the charge for the cart's weight to the chosen district.
func (c *Cart) DeliveryCost() decimal.Decimal {
	return c.rates.Cost(c.district, c.TotalWeight())
}

// GrandTotal is Subtotal + DeliveryCost.
func (c *Cart) GrandTotal() decimal.Decimal {
	return c.Subtotal().Add(c.DeliveryCost())
}

func (c *Cart) inRange(index int) bool {
	return index >= 0 && index < len(c.lines)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one (product, brand) entry in a cart. Name, Image, Unit, Weight
// and UnitPrice are snapshots taken when the line was added or re-branded.
//
// The JSON field names match the persisted cart format so stored carts
// round-trip without translation.
type CartLine struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Unit      string          `json:"unit"`
	Weight    decimal.Decimal `json:"weight"`
	Quantity  int             `json:"qty"`
	Brand     string          `json:"selectedBrand"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// LineTotal is UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SameIdentity reports whether the line is keyed by the given product and brand.
func (l CartLine) SameIdentity(productID, brand string) bool {
	return l.ProductID == productID && l.Brand == brand
}

// OrderTotal is the display breakdown of a cart.
type OrderTotal struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Delivery  decimal.Decimal `json:"delivery"`
	Total     decimal.Decimal `json:"total"`
	WeightKg  decimal.Decimal `json:"weight_kg"`
	ItemCount int             `json:"item_count"`
	Currency  string          `json:"currency"`
}

// QuoteStatus tracks a quotation request.
type QuoteStatus string

const (
	QuoteStatusRequested QuoteStatus = "requested"
	QuoteStatusSent      QuoteStatus = "sent"
)

// Contact is who asked for a quotation.
type Contact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
}

// Quote snapshots a cart for the sales team.
type Quote struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Status    QuoteStatus `json:"status"`
	Contact   Contact     `json:"contact"`
	District  string      `json:"district"`
	Lines     []CartLine  `json:"lines"`
	Totals    OrderTotal  `json:"totals"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateQuoteRequest is the body of a quotation request.
type CreateQuoteRequest struct {
	Contact  Contact `json:"contact"`
	District string  `json:"district"`
	Notes    string  `json:"notes"`
}

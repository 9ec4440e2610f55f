package service

import (
	"github.com/shopspring/decimal"

	"github.com/bpc-market/storefront-service/internal/models"
)

// CalculateOrderTotal builds the display breakdown of a cart. Money is
// rounded to 2 places and weight to 3.
func CalculateOrderTotal(subtotal, delivery, weightKg decimal.Decimal, itemCount int, currency string) models.OrderTotal {
	subtotal = subtotal.Round(2)
	delivery = delivery.Round(2)
	return models.OrderTotal{
		Subtotal:  subtotal,
		Delivery:  delivery,
		Total:     subtotal.Add(delivery),
		WeightKg:  weightKg.Round(3),
		ItemCount: itemCount,
		Currency:  currency,
	}
}

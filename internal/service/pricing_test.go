package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOrderTotal(t *testing.T) {
	tests := []struct {
		name         string
		subtotal     string
		delivery     string
		weight       string
		wantSubtotal string
		wantDelivery string
		wantTotal    string
		wantWeight   string
	}{
		{"worked example", "1080", "210", "100", "1080", "210", "1290", "100"},
		{"no district", "1080", "0", "100", "1080", "0", "1080", "100"},
		{"fractional delivery", "45", "84.0", "40", "45", "84", "129", "40"},
		{"rounds to cents", "10.005", "1.333", "0.12345", "10.01", "1.33", "11.34", "0.123"},
		{"empty cart", "0", "0", "0", "0", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateOrderTotal(dec(tt.subtotal), dec(tt.delivery), dec(tt.weight), 3, "BDT")

			assertDecimal(t, tt.wantSubtotal, got.Subtotal)
			assertDecimal(t, tt.wantDelivery, got.Delivery)
			assertDecimal(t, tt.wantTotal, got.Total)
			assertDecimal(t, tt.wantWeight, got.WeightKg)
			assert.Equal(t, 3, got.ItemCount)
			assert.Equal(t, "BDT", got.Currency)
		})
	}
}

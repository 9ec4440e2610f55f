// Package money renders amounts for display.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Symbol is the taka sign prefixed to every displayed amount.
const Symbol = "৳"

var printer = message.NewPrinter(language.English)

// Format renders an amount with thousands grouping and at most three
// fraction digits, e.g. 1080 -> "৳1,080".
func Format(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return Symbol + printer.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(3)))
}

// From renders the "From ৳X" label used on product cards.
func From(amount decimal.Decimal) string {
	return "From " + Format(amount)
}

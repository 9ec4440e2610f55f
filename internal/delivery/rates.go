// Package delivery computes district-based, weight-tiered delivery charges.
package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bpc-market/storefront-service/internal/models"
)

// Table maps district names to their delivery rate. It is read-only once built.
type Table struct {
	rates map[string]models.DistrictRate
	order []string
}

// NewTable builds a table. A later entry for the same district replaces an earlier one.
func NewTable(rates []models.DistrictRate) *Table {
	t := &Table{rates: make(map[string]models.DistrictRate, len(rates))}
	for _, r := range rates {
		if r.District == "" {
			continue
		}
		if _, exists := t.rates[r.District]; !exists {
			t.order = append(t.order, r.District)
		}
		t.rates[r.District] = r
	}
	return t
}

// EmptyTable is used when the rate resource could not be loaded. Every
// district then costs nothing to deliver to.
func EmptyTable() *Table {
	return NewTable(nil)
}

// Rate returns the rate for a district.
func (t *Table) Rate(district string) (models.DistrictRate, bool) {
	if t == nil || district == "" {
		return models.DistrictRate{}, false
	}
	r, ok := t.rates[district]
	return r, ok
}

// Rates lists every configured rate in resource order.
func (t *Table) Rates() []models.DistrictRate {
	if t == nil {
		return nil
	}
	out := make([]models.DistrictRate, 0, len(t.order))
	for _, d := range t.order {
		out = append(out, t.rates[d])
	}
	return out
}

// Len is the number of districts with a rate.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rates)
}

// Cost is the delivery charge for weightKg to district:
// max(weightKg × PerKg, MinCharge). An unset or unknown district costs 0.
func (t *Table) Cost(district string, weightKg decimal.Decimal) decimal.Decimal {
	r, ok := t.Rate(district)
	if !ok {
		return decimal.Zero
	}
	return decimal.Max(weightKg.Mul(r.PerKg), r.MinCharge)
}

// Decode reads the district-rate resource. Two layouts are accepted:
//
//	{"Dhaka": {"perKg": 2.1, "minCost": 150}, ...}
//	[{"district": "Dhaka", "perKg": 2.1, "minCost": 150}, ...]
func Decode(r io.Reader) ([]models.DistrictRate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read district rates: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("decode district rates: empty document")
	}

	if data[0] == '[' {
		var records []map[string]json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode district rates: %w", err)
		}
		out := make([]models.DistrictRate, 0, len(records))
		for _, rec := range records {
			var name string
			_ = json.Unmarshal(firstOf(rec, "district", "name"), &name)
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			out = append(out, rateFromRecord(name, rec))
		}
		return out, nil
	}

	var byName map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &byName); err != nil {
		return nil, fmt.Errorf("decode district rates: %w", err)
	}
	out := make([]models.DistrictRate, 0, len(byName))
	for _, name := range sortedKeys(byName) {
		out = append(out, rateFromRecord(name, byName[name]))
	}
	return out, nil
}

func rateFromRecord(name string, rec map[string]json.RawMessage) models.DistrictRate {
	return models.DistrictRate{
		District:  name,
		PerKg:     amount(firstOf(rec, "perKg", "per_kg", "perKgRate")),
		MinCharge: amount(firstOf(rec, "minCost", "min_charge", "minimumCharge")),
	}
}

func firstOf(rec map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			return v
		}
	}
	return nil
}

// amount accepts a number or numeric string; anything else is zero.
func amount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero
	}
	return d
}

func sortedKeys(m map[string]map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

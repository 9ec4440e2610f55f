package delivery

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpc-market/storefront-service/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

func dhakaTable() *Table {
	return NewTable([]models.DistrictRate{
		{District: "Dhaka", PerKg: dec("2.1"), MinCharge: dec("150")},
		{District: "Sylhet", PerKg: dec("3.5"), MinCharge: dec("250")},
	})
}

func TestCost_MinimumChargeFloor(t *testing.T) {
	table := dhakaTable()

	assertDecimal(t, "150", table.Cost("Dhaka", dec("10")))
	assertDecimal(t, "2100", table.Cost("Dhaka", dec("1000")))
	assertDecimal(t, "210", table.Cost("Dhaka", dec("100")))
	assertDecimal(t, "150", table.Cost("Dhaka", decimal.Zero))
}

func TestCost_UnsetOrUnknownDistrictIsFree(t *testing.T) {
	table := dhakaTable()

	for _, weight := range []string{"0", "10", "5000"} {
		assertDecimal(t, "0", table.Cost("", dec(weight)))
		assertDecimal(t, "0", table.Cost("UnknownDistrict", dec(weight)))
	}
	assertDecimal(t, "0", EmptyTable().Cost("Dhaka", dec("100")))

	var nilTable *Table
	assertDecimal(t, "0", nilTable.Cost("Dhaka", dec("100")))
}

func TestDecode_Map(t *testing.T) {
	doc := `{
	  "Sylhet": {"perKg": 3.5, "minCost": 250},
	  "Dhaka": {"perKg": 2.1, "minCost": 150}
	}`
	rates, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rates, 2)

	assert.Equal(t, "Dhaka", rates[0].District)
	assertDecimal(t, "2.1", rates[0].PerKg)
	assertDecimal(t, "150", rates[0].MinCharge)
	assert.Equal(t, "Sylhet", rates[1].District)
}

func TestDecode_Array(t *testing.T) {
	doc := `[
	  {"district": "Dhaka", "perKg": 2.1, "minCost": 150},
	  {"name": "Gazipur", "per_kg": "2.4", "min_charge": 175},
	  {"perKg": 9}
	]`
	rates, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rates, 2)

	table := NewTable(rates)
	assertDecimal(t, "175", table.Cost("Gazipur", dec("10")))
	assertDecimal(t, "240", table.Cost("Gazipur", dec("100")))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("[1, 2"))
	assert.Error(t, err)
}

func TestNewTable_LaterEntryWins(t *testing.T) {
	table := NewTable([]models.DistrictRate{
		{District: "Dhaka", PerKg: dec("1"), MinCharge: dec("100")},
		{District: "Dhaka", PerKg: dec("2"), MinCharge: dec("120")},
	})

	assert.Equal(t, 1, table.Len())
	assertDecimal(t, "120", table.Cost("Dhaka", dec("1")))
	assert.Len(t, table.Rates(), 1)
}

func TestDistricts(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range Districts {
		assert.Falsef(t, seen[d], "duplicate district %s", d)
		seen[d] = true
	}
	assert.True(t, IsKnownDistrict("Dhaka"))
	assert.True(t, IsKnownDistrict("Cox's Bazar"))
	assert.False(t, IsKnownDistrict("dhaka"))
	assert.False(t, IsKnownDistrict(""))
}

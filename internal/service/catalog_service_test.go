package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpc-market/storefront-service/internal/catalog"
	"github.com/bpc-market/storefront-service/internal/delivery"
	"github.com/bpc-market/storefront-service/internal/errors"
)

func TestCatalogService_ListProducts(t *testing.T) {
	svc := NewCatalogService(testStores())

	all := svc.ListProducts(catalog.Filter{})
	require.Len(t, all, 3)

	p1 := all[0]
	assert.Equal(t, "p1", p1.ID)
	assert.Equal(t, []string{"Shah", "Akij"}, p1.BrandNames)
	assert.Equal(t, 2, p1.BrandCount)
	assert.Equal(t, "Shah", p1.DefaultBrand)
	assertDecimal(t, "520", p1.MinPrice)
	assert.Equal(t, "From ৳520", p1.MinPriceDisplay)

	sand := all[1]
	assert.Equal(t, []string{}, sand.BrandNames)
	assert.Equal(t, 0, sand.BrandCount)
	assert.Equal(t, "From ৳45", sand.MinPriceDisplay)

	rebar := all[2]
	assertDecimal(t, "95", rebar.MinPrice)

	steel := svc.ListProducts(catalog.Filter{Category: "steel"})
	require.Len(t, steel, 1)
	assert.Equal(t, "r1", steel[0].ID)

	byBrand := svc.ListProducts(catalog.Filter{Query: "akij"})
	require.Len(t, byBrand, 1)
	assert.Equal(t, "p1", byBrand[0].ID)
}

func TestCatalogService_GetProduct(t *testing.T) {
	svc := NewCatalogService(testStores())

	p, err := svc.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, "Portland Cement", p.Name)

	_, err = svc.GetProduct("missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestCatalogService_ResolvePrice(t *testing.T) {
	svc := NewCatalogService(testStores())

	tests := []struct {
		brand     string
		wantBrand string
		wantPrice string
	}{
		{"Akij", "Akij", "540"},
		{"", "Shah", "520"},
		{"Unknown", "Unknown", "520"},
	}
	for _, tt := range tests {
		got, err := svc.ResolvePrice("p1", tt.brand)
		require.NoError(t, err)
		assert.Equal(t, tt.wantBrand, got.Brand)
		assertDecimal(t, tt.wantPrice, got.Price)
	}

	got, err := svc.ResolvePrice("s1", "Anything")
	require.NoError(t, err)
	assertDecimal(t, "45", got.Price)

	_, err = svc.ResolvePrice("missing", "")
	assert.True(t, errors.IsNotFound(err))
}

func TestCatalogService_Categories(t *testing.T) {
	svc := NewCatalogService(testStores())
	assert.Equal(t, []string{"all", "cement", "sand", "steel"}, svc.Categories())

	empty := NewCatalogService(EmptyStores())
	assert.Equal(t, []string{"all"}, empty.Categories())
}

func TestCatalogService_Districts(t *testing.T) {
	svc := NewCatalogService(testStores())

	districts := svc.Districts()
	require.Len(t, districts, len(delivery.Districts))

	byName := map[string]DistrictView{}
	for _, d := range districts {
		byName[d.Name] = d
	}

	dhaka := byName["Dhaka"]
	require.True(t, dhaka.HasRate)
	assertDecimal(t, "2.1", *dhaka.PerKg)
	assertDecimal(t, "150", *dhaka.MinCharge)

	sylhet := byName["Sylhet"]
	assert.False(t, sylhet.HasRate)
	assert.Nil(t, sylhet.PerKg)
}

package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bpc-market/storefront-service/internal/catalog"
	"github.com/bpc-market/storefront-service/internal/delivery"
	"github.com/bpc-market/storefront-service/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

func testStores() *Stores {
	return &Stores{
		Catalog: catalog.New([]models.Product{
			{
				ID: "p1", Name: "Portland Cement", Category: "cement", Unit: "bag",
				Image: "img/cement.jpg", Price: dec("520"), Weight: dec("50"),
				Brands: []models.BrandVariant{
					{Name: "Shah", Price: dec("520")},
					{Name: "Akij", Price: dec("540")},
				},
			},
			{
				ID: "s1", Name: "Sylhet Sand", Category: "sand", Unit: "cft",
				Price: dec("45"), Weight: dec("40"), Brands: []models.BrandVariant{},
			},
			{
				ID: "r1", Name: "Deformed Bar 12mm", Category: "steel", Unit: "kg",
				Price: dec("98"), Weight: dec("1"),
				Brands: []models.BrandVariant{
					{Name: "BSRM", Price: dec("102")},
					{Name: "AKS", Price: dec("95")},
				},
			},
		}),
		Rates: delivery.NewTable([]models.DistrictRate{
			{District: "Dhaka", PerKg: dec("2.1"), MinCharge: dec("150")},
			{District: "Chattogram", PerKg: dec("3"), MinCharge: dec("250")},
		}),
	}
}

// failingStore fails every call.
type failingStore struct{}

var errStoreDown = fmt.Errorf("store down")

func (failingStore) LoadCart(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	return nil, errStoreDown
}

func (failingStore) SaveCart(ctx context.Context, sessionID string, lines []models.CartLine) error {
	return errStoreDown
}

func (failingStore) LoadDistrict(ctx context.Context, sessionID string) (string, error) {
	return "", errStoreDown
}

func (failingStore) SaveDistrict(ctx context.Context, sessionID string, district string) error {
	return errStoreDown
}

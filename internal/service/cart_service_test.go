package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/metrics"
	"github.com/bpc-market/storefront-service/internal/models"
	"github.com/bpc-market/storefront-service/internal/repository"
)

func newCartService(t *testing.T) (*CartService, *repository.MemoryCartStore, *metrics.Metrics) {
	t.Helper()
	store := repository.NewMemoryCartStore()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	return NewCartService(testStores(), store, m, "BDT", logging.NewNop()), store, m
}

func TestCartService_WorkedExample(t *testing.T) {
	svc, _, _ := newCartService(t)
	ctx := context.Background()

	view, ok := svc.Add(ctx, "s1", "p1", "Akij", 2)
	require.True(t, ok)
	view = svc.SetDistrict(ctx, "s1", "Dhaka")

	require.Len(t, view.Lines, 1)
	line := view.Lines[0]
	assert.Equal(t, 0, line.Index)
	assert.Equal(t, "Akij", line.Brand)
	assert.Equal(t, []string{"Shah", "Akij"}, line.Brands)
	assertDecimal(t, "1080", line.LineTotal)
	assert.Equal(t, "৳1,080", line.LineTotalDisplay)

	assert.Equal(t, 2, view.Count)
	assert.Equal(t, "Dhaka", view.District)
	assertDecimal(t, "1080", view.Totals.Subtotal)
	assertDecimal(t, "210", view.Totals.Delivery)
	assertDecimal(t, "1290", view.Totals.Total)
	assertDecimal(t, "100", view.Totals.WeightKg)
	assert.Equal(t, "৳1,290", view.Display.Total)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	svc, _, _ := newCartService(t)
	ctx := context.Background()

	svc.Add(ctx, "a", "p1", "", 1)
	svc.Add(ctx, "b", "s1", "", 3)

	a := svc.Get(ctx, "a")
	b := svc.Get(ctx, "b")
	require.Len(t, a.Lines, 1)
	require.Len(t, b.Lines, 1)
	assert.Equal(t, "p1", a.Lines[0].ProductID)
	assert.Equal(t, "s1", b.Lines[0].ProductID)
	assert.Equal(t, 2, svc.Sessions())
}

func TestCartService_PersistsAndReloads(t *testing.T) {
	svc, store, _ := newCartService(t)
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1", "Akij", 2)
	svc.SetDistrict(ctx, "s1", "Dhaka")

	saved, err := store.LoadCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 2, saved[0].Quantity)

	district, _ := store.LoadDistrict(ctx, "s1")
	assert.Equal(t, "Dhaka", district)

	// A fresh service over the same store restores the session verbatim.
	restarted := NewCartService(testStores(), store, nil, "BDT", logging.NewNop())
	view := restarted.Get(ctx, "s1")
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "Akij", view.Lines[0].Brand)
	assertDecimal(t, "1290", view.Totals.Total)
}

func TestCartService_ReloadKeepsSnapshotPrice(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryCartStore()
	require.NoError(t, store.SaveCart(ctx, "s1", []models.CartLine{
		{ProductID: "p1", Name: "Portland Cement", Quantity: 1, Brand: "Akij", UnitPrice: dec("500"), Weight: dec("50")},
	}))

	svc := NewCartService(testStores(), store, nil, "BDT", logging.NewNop())
	view := svc.Get(ctx, "s1")
	assertDecimal(t, "500", view.Totals.Subtotal)
}

func TestCartService_FailSoftMutations(t *testing.T) {
	svc, store, m := newCartService(t)
	ctx := context.Background()

	_, ok := svc.Add(ctx, "s1", "missing", "", 1)
	assert.False(t, ok)

	_, ok = svc.Remove(ctx, "s1", 3)
	assert.False(t, ok)

	_, ok = svc.UpdateQuantity(ctx, "s1", -1, 2)
	assert.False(t, ok)

	_, ok = svc.UpdateBrand(ctx, "s1", 0, "Akij")
	assert.False(t, ok)

	assert.Equal(t, 0, svc.Get(ctx, "s1").Count)

	// Ignored mutations write nothing.
	_, persisted := store.Raw(repository.CartKey("s1"))
	assert.False(t, persisted)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutations.WithLabelValues(OpAdd, metrics.OutcomeIgnored)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutations.WithLabelValues(OpRemove, metrics.OutcomeIgnored)))
}

func TestCartService_UpdateQuantityAndBrand(t *testing.T) {
	svc, _, _ := newCartService(t)
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1", "Shah", 1)

	view, ok := svc.UpdateQuantity(ctx, "s1", 0, 4.7)
	require.True(t, ok)
	assert.Equal(t, 4, view.Lines[0].Quantity)

	view, ok = svc.UpdateBrand(ctx, "s1", 0, "Akij")
	require.True(t, ok)
	assert.Equal(t, "Akij", view.Lines[0].Brand)
	assertDecimal(t, "540", view.Lines[0].UnitPrice)

	view, ok = svc.UpdateQuantity(ctx, "s1", 0, 0)
	require.True(t, ok)
	assert.Empty(t, view.Lines)
}

func TestCartService_StoreFailuresAreSwallowed(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	svc := NewCartService(testStores(), failingStore{}, m, "BDT", logging.NewNop())
	ctx := context.Background()

	view, ok := svc.Add(ctx, "s1", "p1", "", 1)
	require.True(t, ok)
	assert.Equal(t, 1, view.Count)

	view = svc.SetDistrict(ctx, "s1", "Dhaka")
	assert.Equal(t, "Dhaka", view.District)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailures.WithLabelValues("load_cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailures.WithLabelValues("save_cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceFailures.WithLabelValues("save_district")))
}

func TestCartService_ConcurrentAddsOnOneSession(t *testing.T) {
	svc, _, _ := newCartService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Add(ctx, "s1", "p1", "Akij", 1)
		}()
	}
	wg.Wait()

	view := svc.Get(ctx, "s1")
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 50, view.Lines[0].Quantity)
}

func TestCartService_Sweep(t *testing.T) {
	svc, store, _ := newCartService(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.Add(ctx, "old", "p1", "", 2)
	now = now.Add(3 * time.Hour)
	svc.Add(ctx, "fresh", "s1", "", 1)

	assert.Equal(t, 1, svc.Sweep(2*time.Hour))
	assert.Equal(t, 1, svc.Sessions())

	// The evicted cart comes back from the store.
	view := svc.Get(ctx, "old")
	assert.Equal(t, 2, view.Count)

	lines, _ := store.LoadCart(ctx, "old")
	assert.Len(t, lines, 1)
}

func TestCartService_Snapshot(t *testing.T) {
	svc, _, _ := newCartService(t)
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1", "Akij", 2)
	svc.SetDistrict(ctx, "s1", "Dhaka")

	lines, district, totals := svc.Snapshot(ctx, "s1")
	require.Len(t, lines, 1)
	assert.Equal(t, "Dhaka", district)
	assertDecimal(t, "1290", totals.Total)

	// The snapshot is a copy.
	lines[0].Quantity = 99
	assert.Equal(t, 2, svc.Get(ctx, "s1").Count)
}

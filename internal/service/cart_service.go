package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bpc-market/storefront-service/internal/cart"
	"github.com/bpc-market/storefront-service/internal/catalog"
	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/metrics"
	"github.com/bpc-market/storefront-service/internal/models"
	"github.com/bpc-market/storefront-service/internal/money"
	"github.com/bpc-market/storefront-service/internal/repository"
)

// Cart mutation names used in logs and metrics.
const (
	OpAdd            = "add"
	OpUpdateQuantity = "update_quantity"
	OpUpdateBrand    = "update_brand"
	OpRemove         = "remove"
	OpSetDistrict    = "set_district"
)

const defaultPersistTimeout = 5 * time.Second

// CartLineView is a cart line as rendered in the drawer.
type CartLineView struct {
	Index int `json:"index"`
	models.CartLine
	Brands           []string        `json:"brands"`
	LineTotal        decimal.Decimal `json:"line_total"`
	UnitPriceDisplay string          `json:"unit_price_display"`
	LineTotalDisplay string          `json:"line_total_display"`
}

// TotalsDisplay holds the preformatted totals.
type TotalsDisplay struct {
	Subtotal string `json:"subtotal"`
	Delivery string `json:"delivery"`
	Total    string `json:"total"`
}

// CartView is the full state of a session's cart.
type CartView struct {
	Lines    []CartLineView    `json:"lines"`
	District string            `json:"district"`
	Count    int               `json:"count"`
	Totals   models.OrderTotal `json:"totals"`
	Display  TotalsDisplay     `json:"display"`
}

type session struct {
	mu   sync.Mutex
	cart *cart.Cart

	// lastSeen is guarded by CartService.mu.
	lastSeen time.Time
}

// CartService owns one cart per session. A cart.Cart is single-threaded, so
// every operation on a session runs under that session's lock.
type CartService struct {
	stores         *Stores
	store          repository.CartStateStore
	metrics        *metrics.Metrics
	currency       string
	persistTimeout time.Duration
	logger         *logging.Logger
	now            func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewCartService creates a cart service. metrics may be nil.
func NewCartService(stores *Stores, store repository.CartStateStore, m *metrics.Metrics, currency string, logger *logging.Logger) *CartService {
	return &CartService{
		stores:         stores,
		store:          store,
		metrics:        m,
		currency:       currency,
		persistTimeout: defaultPersistTimeout,
		logger:         logger.Named("cart-service"),
		now:            time.Now,
		sessions:       make(map[string]*session),
	}
}

// acquire returns the session locked, loading persisted state on first use.
// The caller must unlock it.
func (s *CartService) acquire(ctx context.Context, sessionID string) *session {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = s.now()
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		s.metrics.SetSessions(n)
	}

	sess.mu.Lock()
	if sess.cart == nil {
		lines, district := s.load(ctx, sessionID)
		sess.cart = cart.New(s.stores.Catalog, s.stores.Rates, lines, district)
	}
	return sess
}

// load reads persisted state. Failures are logged and yield an empty cart.
func (s *CartService) load(ctx context.Context, sessionID string) ([]models.CartLine, string) {
	lines, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		s.metrics.PersistenceFailure("load_cart")
		s.logger.Warn("Failed to load cart, starting empty", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		lines = nil
	}

	district, err := s.store.LoadDistrict(ctx, sessionID)
	if err != nil {
		s.metrics.PersistenceFailure("load_district")
		s.logger.Warn("Failed to load district", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		district = ""
	}
	return lines, district
}

// persistCart saves the lines. Errors are logged and counted, never returned.
// It runs under the session lock so saves land in mutation order.
func (s *CartService) persistCart(ctx context.Context, sessionID string, c *cart.Cart) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	if err := s.store.SaveCart(ctx, sessionID, c.Lines()); err != nil {
		s.metrics.PersistenceFailure("save_cart")
		s.logger.Error("Failed to save cart", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func (s *CartService) persistDistrict(ctx context.Context, sessionID, district string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	if err := s.store.SaveDistrict(ctx, sessionID, district); err != nil {
		s.metrics.PersistenceFailure("save_district")
		s.logger.Error("Failed to save district", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

// mutate runs fn on the session's cart and persists the lines if it applied.
func (s *CartService) mutate(ctx context.Context, sessionID, op string, fn func(c *cart.Cart) bool) (CartView, bool) {
	sess := s.acquire(ctx, sessionID)
	defer sess.mu.Unlock()

	applied := fn(sess.cart)
	s.metrics.CartMutation(op, applied)

	if applied {
		s.persistCart(ctx, sessionID, sess.cart)
	} else {
		s.logger.Debug("Cart mutation ignored", logging.Fields{
			"session_id": sessionID,
			"op":         op,
		})
	}
	return s.view(sess.cart), applied
}

// Get returns the session's cart.
func (s *CartService) Get(ctx context.Context, sessionID string) CartView {
	sess := s.acquire(ctx, sessionID)
	defer sess.mu.Unlock()
	return s.view(sess.cart)
}

// Add adds qty of a product under brand. An unknown product leaves the cart
// unchanged and reports false.
func (s *CartService) Add(ctx context.Context, sessionID, productID, brand string, qty int) (CartView, bool) {
	return s.mutate(ctx, sessionID, OpAdd, func(c *cart.Cart) bool {
		return c.Add(productID, brand, qty)
	})
}

// UpdateQuantity sets the quantity of the line at index.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, index int, qty float64) (CartView, bool) {
	return s.mutate(ctx, sessionID, OpUpdateQuantity, func(c *cart.Cart) bool {
		return c.UpdateQuantity(index, qty)
	})
}

// UpdateBrand re-brands the line at index.
func (s *CartService) UpdateBrand(ctx context.Context, sessionID string, index int, brand string) (CartView, bool) {
	return s.mutate(ctx, sessionID, OpUpdateBrand, func(c *cart.Cart) bool {
		return c.UpdateBrand(index, brand)
	})
}

// Remove deletes the line at index.
func (s *CartService) Remove(ctx context.Context, sessionID string, index int) (CartView, bool) {
	return s.mutate(ctx, sessionID, OpRemove, func(c *cart.Cart) bool {
		return c.Remove(index)
	})
}

// SetDistrict records the delivery district. Any string is accepted; a
// district without a rate simply costs nothing to deliver.
func (s *CartService) SetDistrict(ctx context.Context, sessionID, district string) CartView {
	sess := s.acquire(ctx, sessionID)
	defer sess.mu.Unlock()

	sess.cart.SetDistrict(district)
	s.metrics.CartMutation(OpSetDistrict, true)
	s.persistDistrict(ctx, sessionID, district)
	return s.view(sess.cart)
}

// Snapshot returns a copy of the lines and totals for a quotation.
func (s *CartService) Snapshot(ctx context.Context, sessionID string) ([]models.CartLine, string, models.OrderTotal) {
	sess := s.acquire(ctx, sessionID)
	defer sess.mu.Unlock()
	c := sess.cart
	return c.Lines(), c.District(), s.totals(c)
}

// SnapshotWithDistrict checks for a non-empty cart, applies district when one
// is given and snapshots the result, all under one session lock. An empty
// cart reports false and is left untouched, district included.
func (s *CartService) SnapshotWithDistrict(ctx context.Context, sessionID, district string) ([]models.CartLine, string, models.OrderTotal, bool) {
	sess := s.acquire(ctx, sessionID)
	defer sess.mu.Unlock()
	c := sess.cart

	if c.Count() == 0 {
		return nil, c.District(), models.OrderTotal{}, false
	}
	if district != "" && district != c.District() {
		c.SetDistrict(district)
		s.metrics.CartMutation(OpSetDistrict, true)
		s.persistDistrict(ctx, sessionID, district)
	}
	return c.Lines(), c.District(), s.totals(c), true
}

// Sweep drops carts idle for longer than maxIdle. Their state stays in the
// cart store and is reloaded on the next request.
func (s *CartService) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
		sess.mu.Unlock()
	}
	s.metrics.SetSessions(len(s.sessions))

	if evicted > 0 {
		s.logger.Debug("Evicted idle carts", logging.Fields{
			"evicted":   evicted,
			"remaining": len(s.sessions),
		})
	}
	return evicted
}

// RunJanitor sweeps idle carts every interval until ctx is done.
func (s *CartService) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(maxIdle)
		}
	}
}

// Sessions is the number of carts held in memory.
func (s *CartService) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *CartService) totals(c *cart.Cart) models.OrderTotal {
	return CalculateOrderTotal(c.Subtotal(), c.DeliveryCost(), c.TotalWeight(), c.Count(), s.currency)
}

func (s *CartService) view(c *cart.Cart) CartView {
	lines := c.Lines()
	views := make([]CartLineView, 0, len(lines))
	for i, l := range lines {
		var brands []string
		if p, ok := s.stores.Catalog.Get(l.ProductID); ok {
			brands = catalog.BrandNames(p)
		}
		if brands == nil {
			brands = []string{}
		}
		total := l.LineTotal()
		views = append(views, CartLineView{
			Index:            i,
			CartLine:         l,
			Brands:           brands,
			LineTotal:        total,
			UnitPriceDisplay: money.Format(l.UnitPrice),
			LineTotalDisplay: money.Format(total),
		})
	}

	totals := s.totals(c)
	return CartView{
		Lines:    views,
		District: c.District(),
		Count:    c.Count(),
		Totals:   totals,
		Display: TotalsDisplay{
			Subtotal: money.Format(totals.Subtotal),
			Delivery: money.Format(totals.Delivery),
			Total:    money.Format(totals.Total),
		},
	}
}

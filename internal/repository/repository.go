package repository

import (
	"context"

	"github.com/bpc-market/storefront-service/internal/models"
)

// Storage keys for a session's cart and delivery district. The session id
// is appended after a colon.
const (
	CartKeyPrefix     = "bpc-CART:"
	DistrictKeyPrefix = "bpc-DISTRICTS:"
)

// CartKey is the storage key holding a session's cart lines.
func CartKey(sessionID string) string { return CartKeyPrefix + sessionID }

// DistrictKey is the storage key holding a session's delivery district.
func DistrictKey(sessionID string) string { return DistrictKeyPrefix + sessionID }

// CartStateStore persists a session's cart lines and district verbatim.
// A session with nothing stored loads as an empty cart and "" district.
type CartStateStore interface {
	LoadCart(ctx context.Context, sessionID string) ([]models.CartLine, error)
	SaveCart(ctx context.Context, sessionID string, lines []models.CartLine) error
	LoadDistrict(ctx context.Context, sessionID string) (string, error)
	SaveDistrict(ctx context.Context, sessionID string, district string) error
}

// QuoteRepository stores quotation requests.
type QuoteRepository interface {
	Create(ctx context.Context, quote *models.Quote) error
	GetByID(ctx context.Context, id string) (*models.Quote, error)
	UpdateStatus(ctx context.Context, id string, status models.QuoteStatus) error
}

var (
	_ CartStateStore  = (*RedisCartStore)(nil)
	_ CartStateStore  = (*MemoryCartStore)(nil)
	_ QuoteRepository = (*PostgresQuoteRepository)(nil)
	_ QuoteRepository = (*MemoryQuoteRepository)(nil)
)

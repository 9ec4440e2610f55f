package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bpc-market/storefront-service/internal/errors"
	"github.com/bpc-market/storefront-service/internal/models"
)

// MemoryCartStore keeps cart state in process. It is used when cart
// persistence is turned off and in tests. Values are stored as JSON so a
// reload behaves like one from Redis.
type MemoryCartStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryCartStore creates an empty in-memory cart store.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{data: make(map[string][]byte)}
}

func (s *MemoryCartStore) LoadCart(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	s.mu.RLock()
	raw, ok := s.data[CartKey(sessionID)]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var lines []models.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *MemoryCartStore) SaveCart(ctx context.Context, sessionID string, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data[CartKey(sessionID)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryCartStore) LoadDistrict(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return string(s.data[DistrictKey(sessionID)]), nil
}

func (s *MemoryCartStore) SaveDistrict(ctx context.Context, sessionID string, district string) error {
	s.mu.Lock()
	s.data[DistrictKey(sessionID)] = []byte(district)
	s.mu.Unlock()
	return nil
}

// Raw returns the stored bytes under a key. Tests use it to check the
// persisted format.
func (s *MemoryCartStore) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// MemoryQuoteRepository keeps quotes in process when no database is configured.
type MemoryQuoteRepository struct {
	mu     sync.RWMutex
	quotes map[string]*models.Quote
}

func NewMemoryQuoteRepository() *MemoryQuoteRepository {
	return &MemoryQuoteRepository{quotes: make(map[string]*models.Quote)}
}

func (r *MemoryQuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := *quote
	r.quotes[quote.ID] = &q
	return nil
}

func (r *MemoryQuoteRepository) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	out := *q
	return &out, nil
}

func (r *MemoryQuoteRepository) UpdateStatus(ctx context.Context, id string, status models.QuoteStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return errors.ErrNotFound
	}
	q.Status = status
	return nil
}

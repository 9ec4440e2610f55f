package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bpc-market/storefront-service/internal/config"
	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/models"
)

const defaultCartTTL = 30 * 24 * time.Hour

// RedisCartStore implements CartStateStore using Redis. Every write refreshes
// the TTL of both session keys so active sessions do not expire.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisCartStore creates a Redis-backed cart store.
func NewRedisCartStore(cfg config.RedisConfig, logger *logging.Logger) *RedisCartStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisCartStoreWithClient(client, cfg.TTL, logger)
}

// NewRedisCartStoreWithClient wraps an existing client.
func NewRedisCartStoreWithClient(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisCartStore {
	if ttl == 0 {
		ttl = defaultCartTTL
	}
	return &RedisCartStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("cart-store"),
	}
}

// LoadCart reads a session's cart. A missing key is an empty cart.
func (s *RedisCartStore) LoadCart(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	data, err := s.client.Get(ctx, CartKey(sessionID)).Bytes()
	if err == redis.Nil {
		s.logger.Debug("Cart miss", logging.Fields{"session_id": sessionID})
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Cart get error", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, err
	}

	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}

	s.logger.Debug("Cart loaded", logging.Fields{
		"session_id": sessionID,
		"lines":      len(lines),
	})
	return lines, nil
}

// SaveCart writes a session's cart and refreshes the district's TTL.
func (s *RedisCartStore) SaveCart(ctx context.Context, sessionID string, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}

	// The district key shares the cart's lifetime, so a cart write keeps it alive.
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, CartKey(sessionID), data, s.ttl)
		pipe.Expire(ctx, DistrictKey(sessionID), s.ttl)
		return nil
	})
	if err != nil {
		s.logger.Error("Cart set error", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}

	s.logger.Debug("Cart saved", logging.Fields{
		"session_id": sessionID,
		"lines":      len(lines),
		"ttl":        s.ttl.String(),
	})
	return nil
}

// LoadDistrict reads a session's delivery district; "" when never set.
func (s *RedisCartStore) LoadDistrict(ctx context.Context, sessionID string) (string, error) {
	district, err := s.client.Get(ctx, DistrictKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		s.logger.Error("District get error", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return "", err
	}
	return district, nil
}

// SaveDistrict writes a session's delivery district and refreshes the cart's TTL.
func (s *RedisCartStore) SaveDistrict(ctx context.Context, sessionID string, district string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, DistrictKey(sessionID), district, s.ttl)
		pipe.Expire(ctx, CartKey(sessionID), s.ttl)
		return nil
	})
	if err != nil {
		s.logger.Error("District set error", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (s *RedisCartStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (s *RedisCartStore) Close() error {
	return s.client.Close()
}

// internal/common/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/models"
)

const historyCachePrefix = "history:"

// CachedHistoryStore is a read-through, write-through Redis cache in front
// of another HistoryStore. Cache failures are logged and bypassed.
type CachedHistoryStore struct {
	next   HistoryStore
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedHistoryStore(next HistoryStore, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedHistoryStore {
	return &CachedHistoryStore{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "history-cache"}),
	}
}

func (s *CachedHistoryStore) Get(ctx context.Context, email string) (*models.UserHistory, error) {
	key := historyCachePrefix + email

	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var h models.UserHistory
		if jsonErr := json.Unmarshal(raw, &h); jsonErr == nil {
			return &h, nil
		}
		s.logger.Warn("Discarding undecodable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("History cache read failed", map[string]interface{}{"error": err})
	}

	h, err := s.next.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	s.set(ctx, h)
	return h, nil
}

func (s *CachedHistoryStore) Put(ctx context.Context, history *models.UserHistory) error {
	if err := s.next.Put(ctx, history); err != nil {
		return err
	}
	s.set(ctx, history)
	return nil
}

func (s *CachedHistoryStore) set(ctx context.Context, h *models.UserHistory) {
	raw, err := json.Marshal(h)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, historyCachePrefix+h.Email, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("History cache write failed", map[string]interface{}{"error": err})
	}
}

package db

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/soaringjerry/Resilience/internal/models"
	"github.com/soaringjerry/Resilience/internal/services"
)

// Cache is the byte-oriented cache a CachedStore reads through.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedStore caches each user's record list and drops it on every write.
// Cache failures are logged and the backing store answers instead.
type CachedStore struct {
	next   services.RecordStore
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStore(next services.RecordStore, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{next: next, cache: cache, ttl: ttl, logger: logger}
}

func historyKey(userID string) string { return "assessments:" + userID }

func (s *CachedStore) Insert(ctx context.Context, in models.AssessmentRecordInput) (*models.AssessmentRecord, error) {
	rec, err := s.next.Insert(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, in.UserID)
	return rec, nil
}

func (s *CachedStore) Query(ctx context.Context, userID string) ([]models.AssessmentRecord, error) {
	key := historyKey(userID)
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "history cache read failed", "user", userID, "error", err)
	} else if ok {
		var recs []models.AssessmentRecord
		if err := json.Unmarshal(b, &recs); err == nil {
			return recs, nil
		}
		s.logger.WarnContext(ctx, "history cache entry unreadable", "user", userID)
	}

	recs, err := s.next.Query(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(recs); err == nil {
		if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "history cache write failed", "user", userID, "error", err)
		}
	}
	return recs, nil
}

func (s *CachedStore) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.next.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, historyKey(userID)); err != nil {
		s.logger.WarnContext(ctx, "history cache invalidation failed", "user", userID, "error", err)
	}
}

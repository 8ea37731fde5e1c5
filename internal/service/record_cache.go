package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wiki-quiz/internal/cache"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuizRecordCache is a read-through cache of stored quiz records.
// A cache failure is never fatal: lookups report a miss and writes are dropped.
type QuizRecordCache interface {
	GetByURL(ctx context.Context, url string) *domain.QuizRecord
	GetByID(ctx context.Context, id int64) *domain.QuizRecord
	Put(ctx context.Context, record *domain.QuizRecord)
	Invalidate(ctx context.Context, record *domain.QuizRecord)
}

type quizRecordCache struct {
	cache domain.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewQuizRecordCache wraps cache. A nil cache yields a no-op implementation.
func NewQuizRecordCache(c domain.Cache, ttl time.Duration) QuizRecordCache {
	if c == nil {
		logger.Get().Warn("QuizRecordCache initialized with nil cache. Service will be no-op.")
		return noopQuizRecordCache{}
	}
	return &quizRecordCache{cache: c, ttl: ttl}
}

func (c *quizRecordCache) GetByURL(ctx context.Context, url string) *domain.QuizRecord {
	return c.get(ctx, cache.QuizURLKey(url))
}

func (c *quizRecordCache) GetByID(ctx context.Context, id int64) *domain.QuizRecord {
	return c.get(ctx, cache.QuizIDKey(id))
}

func (c *quizRecordCache) get(ctx context.Context, key string) *domain.QuizRecord {
	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		data, err := c.cache.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, domain.ErrCacheMiss) {
				logger.Get().Warn("Quiz record cache lookup failed", zap.String("key", key), zap.Error(err))
			}
			return nil, nil
		}
		if data == "" {
			return nil, nil
		}
		var record domain.QuizRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			logger.Get().Warn("Discarding undecodable quiz record cache entry", zap.String("key", key), zap.Error(err))
			return nil, nil
		}
		record.Document.Normalize()
		return &record, nil
	})
	record, _ := v.(*domain.QuizRecord)
	// callers sharing a flight must not alias one another's record
	return record.Clone()
}

func (c *quizRecordCache) Put(ctx context.Context, record *domain.QuizRecord) {
	if record == nil {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		logger.Get().Error("Failed to marshal quiz record for caching", zap.Int64("quiz_id", record.ID), zap.Error(err))
		return
	}
	for _, key := range []string{cache.QuizURLKey(record.URL), cache.QuizIDKey(record.ID)} {
		if err := c.cache.Set(ctx, key, string(data), c.ttl); err != nil {
			logger.Get().Warn("Failed to cache quiz record", zap.String("key", key), zap.Error(err))
			return
		}
	}
	logger.Get().Debug("Cached quiz record", zap.Int64("quiz_id", record.ID), zap.Duration("ttl", c.ttl))
}

func (c *quizRecordCache) Invalidate(ctx context.Context, record *domain.QuizRecord) {
	if record == nil {
		return
	}
	if err := c.cache.Delete(ctx, cache.QuizURLKey(record.URL), cache.QuizIDKey(record.ID)); err != nil {
		logger.Get().Warn("Failed to invalidate quiz record cache", zap.Int64("quiz_id", record.ID), zap.Error(err))
	}
}

type noopQuizRecordCache struct{}

func (noopQuizRecordCache) GetByURL(context.Context, string) *domain.QuizRecord { return nil }
func (noopQuizRecordCache) GetByID(context.Context, int64) *domain.QuizRecord   { return nil }
func (noopQuizRecordCache) Put(context.Context, *domain.QuizRecord)             {}
func (noopQuizRecordCache) Invalidate(context.Context, *domain.QuizRecord)      {}

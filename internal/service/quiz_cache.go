package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/config"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// QuizCache keeps validated quiz payloads so reconnecting players skip the
// database. A cache failure is never fatal.
type QuizCache interface {
	Get(ctx context.Context, ownerID, documentID uuid.UUID) (*model.SoalContent, bool)
	Set(ctx context.Context, ownerID, documentID uuid.UUID, soal *model.SoalContent)
	Invalidate(ctx context.Context, documentID uuid.UUID)
}

type cachedQuiz struct {
	OwnerID uuid.UUID          `json:"owner_id"`
	Soal    *model.SoalContent `json:"soal"`
}

// RedisQuizCache stores quiz payloads under document:<id>:quiz.
type RedisQuizCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewRedisQuizCache creates a RedisQuizCache.
func NewRedisQuizCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisQuizCache {
	return &RedisQuizCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "quiz_cache").Logger(),
	}
}

// Get returns the cached payload if it exists and belongs to ownerID.
func (c *RedisQuizCache) Get(ctx context.Context, ownerID, documentID uuid.UUID) (*model.SoalContent, bool) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.DocumentQuizKey(documentID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("document_id", documentID.String()).Msg("Quiz cache read failed")
		}
		return nil, false
	}

	var entry cachedQuiz
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Soal == nil {
		return nil, false
	}
	if entry.OwnerID != ownerID {
		return nil, false
	}
	return entry.Soal, true
}

// Set stores the payload with the configured TTL.
func (c *RedisQuizCache) Set(ctx context.Context, ownerID, documentID uuid.UUID, soal *model.SoalContent) {
	raw, err := json.Marshal(cachedQuiz{OwnerID: ownerID, Soal: soal})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, config.CacheKey.DocumentQuizKey(documentID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("document_id", documentID.String()).Msg("Quiz cache write failed")
	}
}

// Invalidate drops the cached payload of a document.
func (c *RedisQuizCache) Invalidate(ctx context.Context, documentID uuid.UUID) {
	if err := c.rdb.Del(ctx, config.CacheKey.DocumentQuizKey(documentID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("document_id", documentID.String()).Msg("Quiz cache invalidation failed")
	}
}

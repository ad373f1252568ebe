package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parenting-server/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ SessionRepository = (*redisSessionRepository)(nil)

const sessionKeyPrefix = "parenting:session:"

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionRepository создает хранилище сессий в Redis.
// Каждое сохранение продлевает TTL ключа.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) SessionRepository {
	return &redisSessionRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSessionRepo"),
	}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (r *redisSessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		r.logger.Error("Failed to get session from redis", zap.Error(err), zap.String("sessionID", id.String()))
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		r.logger.Error("Failed to unmarshal session", zap.Error(err), zap.String("sessionID", id.String()))
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *redisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session to redis", zap.Error(err), zap.String("sessionID", session.ID.String()))
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

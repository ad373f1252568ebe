package main

import (
	"context"
	"fmt"
	"time"

	"parenting-server/internal/config"
	"parenting-server/internal/database"
	"parenting-server/internal/messaging"
	"parenting-server/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// storage - выбранные по конфигурации хранилища и внешние подключения.
type storage struct {
	sessions  repository.SessionRepository
	archive   repository.ArchiveRepository
	publisher *messaging.RabbitMQOutcomePublisher

	closers []func()
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func setupStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	s := &storage{}

	switch cfg.SessionStore {
	case "redis":
		client, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.sessions = repository.NewRedisSessionRepository(client, cfg.SessionTTL, logger)
		logger.Info("Session store: redis")
	default:
		s.sessions = repository.NewMemorySessionRepository(cfg.SessionTTL, logger)
		logger.Info("Session store: memory")
	}

	if cfg.DatabaseURL != "" {
		pool, err := setupArchive(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		s.archive = repository.NewPgArchiveRepository(pool, logger)
	} else {
		logger.Warn("DATABASE_URL not set: finished games will not be archived")
	}

	if cfg.RabbitMQURL != "" {
		conn, err := messaging.Connect(ctx, cfg.RabbitMQURL, 5, 5*time.Second, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = conn.Close() })
		publisher, err := messaging.NewRabbitMQOutcomePublisher(conn, cfg.OutcomesQueue, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = publisher.Close() })
		s.publisher = publisher
		watchConnection(conn, logger)
	}

	return s, nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func setupArchive(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := database.ConnectPostgres(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	if err := database.NewPostgresMigrator(pool, logger).Up(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return pool, nil
}

// watchConnection логирует разрыв соединения с брокером.
func watchConnection(conn *amqp.Connection, logger *zap.Logger) {
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if err, ok := <-closed; ok && err != nil {
			logger.Error("RabbitMQ connection lost; outcome publishing disabled until restart", zap.Error(err))
		}
	}()
}

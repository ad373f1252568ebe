package repository

import (
	"context"

	"parenting-server/internal/domain"

	"github.com/google/uuid"
)

// SessionRepository хранит текущее состояние игровых сессий.
type SessionRepository interface {
	// Get возвращает копию сессии или domain.ErrSessionNotFound.
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	// Save создает или перезаписывает сессию.
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ArchiveRepository хранит итоги завершенных игр.
type ArchiveRepository interface {
	// Save сохраняет итог. Повторное сохранение той же сессии перезаписывает запись.
	Save(ctx context.Context, game domain.FinishedGame) error
	// ListRecent возвращает последние итоги, новые первыми.
	ListRecent(ctx context.Context, limit int) ([]domain.FinishedGame, error)
	// CountByOutcome возвращает количество игр по каждому исходу.
	CountByOutcome(ctx context.Context) (map[domain.OutcomeCode]int, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

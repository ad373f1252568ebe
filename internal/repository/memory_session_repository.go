package repository

import (
	"context"
	"sync"
	"time"

	"parenting-server/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ SessionRepository = (*memorySessionRepository)(nil)

type memoryEntry struct {
	session   *domain.Session
	expiresAt time.Time
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]memoryEntry
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewMemorySessionRepository создает хранилище сессий в памяти процесса.
// ttl <= 0 отключает истечение.
func NewMemorySessionRepository(ttl time.Duration, logger *zap.Logger) SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[uuid.UUID]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.Named("MemorySessionRepo"),
	}
}

func (r *memorySessionRepository) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		r.logger.Debug("Session expired", zap.String("sessionID", id.String()))
		return nil, domain.ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

func (r *memorySessionRepository) Save(_ context.Context, session *domain.Session) error {
	entry := memoryEntry{session: session.Clone()}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	r.sessions[session.ID] = entry
	r.mu.Unlock()
	return nil
}

func (r *memorySessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

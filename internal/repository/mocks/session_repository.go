package mocks

import (
	"context"

	"parenting-server/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// SessionRepository - мок repository.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

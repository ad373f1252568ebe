package mocks

import (
	"context"

	"parenting-server/internal/domain"

	"github.com/stretchr/testify/mock"
)

// ArchiveRepository - мок repository.ArchiveRepository.
type ArchiveRepository struct {
	mock.Mock
}

func (m *ArchiveRepository) Save(ctx context.Context, game domain.FinishedGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *ArchiveRepository) ListRecent(ctx context.Context, limit int) ([]domain.FinishedGame, error) {
	args := m.Called(ctx, limit)
	games, _ := args.Get(0).([]domain.FinishedGame)
	return games, args.Error(1)
}

func (m *ArchiveRepository) CountByOutcome(ctx context.Context) (map[domain.OutcomeCode]int, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[domain.OutcomeCode]int)
	return counts, args.Error(1)
}

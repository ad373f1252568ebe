package mocks

import (
	"context"

	"parenting-server/internal/domain"
	"parenting-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// GameService - мок service.GameService для тестов обработчиков.
type GameService struct {
	mock.Mock
}

func (m *GameService) CreateSession(ctx context.Context, childName string) (*domain.Session, error) {
	args := m.Called(ctx, childName)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *GameService) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *GameService) SubmitResponse(ctx context.Context, id uuid.UUID, text string) (*domain.Session, error) {
	args := m.Called(ctx, id, text)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *GameService) ResetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *GameService) EndSession(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *GameService) GetOutcome(code domain.OutcomeCode) (domain.Outcome, error) {
	args := m.Called(code)
	o, _ := args.Get(0).(domain.Outcome)
	return o, args.Error(1)
}

func (m *GameService) GetResult(ctx context.Context, id uuid.UUID) (*service.GameResult, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*service.GameResult)
	return r, args.Error(1)
}

func (m *GameService) GetHistory(ctx context.Context, id uuid.UUID) ([]domain.RoundRecord, error) {
	args := m.Called(ctx, id)
	h, _ := args.Get(0).([]domain.RoundRecord)
	return h, args.Error(1)
}

func (m *GameService) ListScenarios() []domain.Scenario {
	args := m.Called()
	s, _ := args.Get(0).([]domain.Scenario)
	return s
}

func (m *GameService) RecentOutcomes(ctx context.Context, limit int) ([]domain.FinishedGame, error) {
	args := m.Called(ctx, limit)
	g, _ := args.Get(0).([]domain.FinishedGame)
	return g, args.Error(1)
}

func (m *GameService) OutcomeStats(ctx context.Context) (map[domain.OutcomeCode]int, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(map[domain.OutcomeCode]int)
	return s, args.Error(1)
}

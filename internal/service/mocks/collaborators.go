package mocks

import (
	"context"

	"parenting-server/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Evaluator - мок service.Evaluator.
type Evaluator struct {
	mock.Mock
}

func (m *Evaluator) Evaluate(ctx context.Context, scenario domain.Scenario, age int, response string) domain.Evaluation {
	args := m.Called(ctx, scenario, age, response)
	return args.Get(0).(domain.Evaluation)
}

// SessionNotifier - мок service.SessionNotifier.
type SessionNotifier struct {
	mock.Mock
}

func (m *SessionNotifier) Notify(event domain.SessionEvent) {
	m.Called(event)
}

// OutcomePublisher - мок service.OutcomePublisher.
type OutcomePublisher struct {
	mock.Mock
}

func (m *OutcomePublisher) PublishOutcome(ctx context.Context, game domain.FinishedGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

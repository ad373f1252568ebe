package service_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"parenting-server/internal/catalog"
	"parenting-server/internal/domain"
	"parenting-server/internal/game"
	"parenting-server/internal/repository"
	repomocks "parenting-server/internal/repository/mocks"
	"parenting-server/internal/service"
	"parenting-server/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func evaluation(delta int) domain.Evaluation {
	effects := domain.ZeroEffects()
	for _, tr := range domain.AllTraits() {
		effects[tr] = delta
	}
	return domain.Evaluation{Effects: effects, Feedback: "ok", ResponseType: "empathetic"}
}

func newPicker() game.ScenarioPicker {
	return catalog.NewSelector(rand.New(rand.NewSource(7)))
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	repo := new(repomocks.SessionRepository)
	notifier := new(mocks.SessionNotifier)
	svc := service.NewGameService(repo, new(mocks.Evaluator), newPicker(),
		service.Options{Notifier: notifier, Now: func() time.Time { return fixedNow }}, zap.NewNop())

	repo.On("Save", ctx, mock.MatchedBy(func(s *domain.Session) bool {
		return s.ChildName == "Mina" && s.Age == domain.StartAge && s.CurrentScenario != nil
	})).Return(nil).Once()
	notifier.On("Notify", mock.MatchedBy(func(e domain.SessionEvent) bool {
		return e.Type == domain.EventSessionCreated
	})).Return().Once()

	s, err := svc.CreateSession(ctx, "  Mina ")
	require.NoError(t, err)
	assert.Equal(t, "Mina", s.ChildName)
	assert.Equal(t, fixedNow, s.CreatedAt)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)

	t.Run("Save error", func(t *testing.T) {
		repo := new(repomocks.SessionRepository)
		svc := service.NewGameService(repo, new(mocks.Evaluator), newPicker(), service.Options{}, zap.NewNop())
		repo.On("Save", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		_, err := svc.CreateSession(ctx, "")
		assert.Error(t, err)
		repo.AssertExpectations(t)
	})
}

func TestGameService_SubmitResponse_Validation(t *testing.T) {
	ctx := context.Background()
	picker := newPicker()
	inProgress := game.NewSession(uuid.New(), "", picker, fixedNow)

	tests := []struct {
		name    string
		session *domain.Session
		getErr  error
		text    string
		wantErr error
	}{
		{"Session not found", nil, domain.ErrSessionNotFound, "answer", domain.ErrSessionNotFound},
		{"Empty response", inProgress, nil, " \n\t ", domain.ErrEmptyResponse},
		{"Response too long", inProgress, nil, strings.Repeat("я", 11), domain.ErrResponseTooLong},
		{"Concluded session", &domain.Session{ID: inProgress.ID, Phase: domain.PhaseConcluded, Round: domain.TotalRounds}, nil, "answer", domain.ErrSessionConcluded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repomocks.SessionRepository)
			evaluator := new(mocks.Evaluator)
			svc := service.NewGameService(repo, evaluator, picker, service.Options{MaxResponseLength: 10}, zap.NewNop())

			repo.On("Get", ctx, inProgress.ID).Return(tt.session, tt.getErr).Once()

			_, err := svc.SubmitResponse(ctx, inProgress.ID, tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
			// Оценка не запускается для некорректного запроса.
			evaluator.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			repo.AssertExpectations(t)
		})
	}
}

func TestGameService_SubmitResponse_Rounds(t *testing.T) {
	ctx := context.Background()
	picker := newPicker()

	t.Run("Successful round", func(t *testing.T) {
		repo := new(repomocks.SessionRepository)
		evaluator := new(mocks.Evaluator)
		svc := service.NewGameService(repo, evaluator, picker, service.Options{Now: func() time.Time { return fixedNow }}, zap.NewNop())
		s := game.NewSession(uuid.New(), "", picker, fixedNow)

		repo.On("Get", ctx, s.ID).Return(s, nil).Once()
		evaluator.On("Evaluate", ctx, *s.CurrentScenario, domain.StartAge, "I listen first").Return(evaluation(3)).Once()
		repo.On("Save", ctx, mock.MatchedBy(func(n *domain.Session) bool {
			return n.Round == 1 && n.Age == 5 && len(n.History) == 1 && n.Traits.Happiness == 73
		})).Return(nil).Once()

		next, err := svc.SubmitResponse(ctx, s.ID, "  I listen first ")
		require.NoError(t, err)
		assert.Equal(t, 1, next.Round)
		assert.Equal(t, fixedNow, next.History[0].PlayedAt)
		repo.AssertExpectations(t)
		evaluator.AssertExpectations(t)
	})

	t.Run("Failed evaluation keeps the round", func(t *testing.T) {
		repo := new(repomocks.SessionRepository)
		evaluator := new(mocks.Evaluator)
		notifier := new(mocks.SessionNotifier)
		svc := service.NewGameService(repo, evaluator, picker, service.Options{Notifier: notifier}, zap.NewNop())
		s := game.NewSession(uuid.New(), "", picker, fixedNow)
		neutral := domain.NeutralEvaluation(domain.FailureCompletionFailed, service.CompletionFailedFeedback)

		repo.On("Get", ctx, s.ID).Return(s, nil).Once()
		evaluator.On("Evaluate", ctx, mock.Anything, domain.StartAge, "answer").Return(neutral).Once()
		repo.On("Save", ctx, mock.MatchedBy(func(n *domain.Session) bool {
			return n.Round == 0 && n.FailedAttempts == 1 && n.LastEvaluation != nil && n.LastEvaluation.IsError()
		})).Return(nil).Once()
		notifier.On("Notify", mock.MatchedBy(func(e domain.SessionEvent) bool { return e.Type == domain.EventEvaluationStarted })).Return().Once()
		notifier.On("Notify", mock.MatchedBy(func(e domain.SessionEvent) bool { return e.Type == domain.EventRoundFailed })).Return().Once()

		next, err := svc.SubmitResponse(ctx, s.ID, "answer")
		require.NoError(t, err)
		assert.Equal(t, s.Traits, next.Traits)
		assert.Equal(t, *s.CurrentScenario, *next.CurrentScenario)
		repo.AssertExpectations(t)
		evaluator.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})
}

func TestGameService_FullGame(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySessionRepository(time.Hour, zap.NewNop())
	archive := new(repomocks.ArchiveRepository)
	publisher := new(mocks.OutcomePublisher)
	evaluator := new(mocks.Evaluator)
	svc := service.NewGameService(repo, evaluator, newPicker(), service.Options{
		Archive:   archive,
		Publisher: publisher,
		Now:       func() time.Time { return fixedNow },
	}, zap.NewNop())

	s, err := svc.CreateSession(ctx, "Mina")
	require.NoError(t, err)

	_, err = svc.GetResult(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionInProgress)

	// +10 к каждой характеристике за раунд: сумма 280 + 8*50 → лидер.
	evaluator.On("Evaluate", ctx, mock.Anything, mock.Anything, "answer").Return(evaluation(10)).Times(domain.TotalRounds)
	archive.On("Save", ctx, mock.MatchedBy(func(g domain.FinishedGame) bool {
		return g.SessionID == s.ID && g.OutcomeCode == domain.OutcomeLeader && g.FinishedAt.Equal(fixedNow)
	})).Return(nil).Once()
	// Ошибка публикации не мешает завершению игры.
	publisher.On("PublishOutcome", ctx, mock.Anything).Return(errors.New("broker down")).Once()

	for i := 0; i < domain.TotalRounds; i++ {
		s, err = svc.SubmitResponse(ctx, s.ID, "answer")
		require.NoError(t, err)
	}
	assert.True(t, s.Concluded())

	_, err = svc.SubmitResponse(ctx, s.ID, "answer")
	assert.ErrorIs(t, err, domain.ErrSessionConcluded)

	result, err := svc.GetResult(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeLeader, result.Outcome.Code)
	assert.Equal(t, domain.TotalRounds, result.Rounds)
	assert.Equal(t, "Mina", result.ChildName)

	history, err := svc.GetHistory(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, history, domain.TotalRounds)

	fresh, err := svc.ResetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, fresh.ID)
	assert.Equal(t, domain.PhaseInProgress, fresh.Phase)
	assert.Equal(t, domain.DefaultTraits(), fresh.Traits)

	evaluator.AssertExpectations(t)
	archive.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestGameService_ConcurrentSubmit(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySessionRepository(time.Hour, zap.NewNop())
	evaluator := new(mocks.Evaluator)
	svc := service.NewGameService(repo, evaluator, newPicker(), service.Options{}, zap.NewNop())

	s, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	evaluator.On("Evaluate", ctx, mock.Anything, mock.Anything, "first").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(evaluation(1)).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.SubmitResponse(ctx, s.ID, "first")
		assert.NoError(t, err)
	}()

	<-started
	_, err = svc.SubmitResponse(ctx, s.ID, "second")
	assert.ErrorIs(t, err, domain.ErrEvaluationInProgress)
	_, err = svc.ResetSession(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrEvaluationInProgress)

	close(release)
	wg.Wait()

	got, err := svc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Round)
	evaluator.AssertExpectations(t)
}

func TestGameService_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("Without archive", func(t *testing.T) {
		svc := service.NewGameService(new(repomocks.SessionRepository), new(mocks.Evaluator), newPicker(), service.Options{}, zap.NewNop())
		games, err := svc.RecentOutcomes(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, games)
		stats, err := svc.OutcomeStats(ctx)
		require.NoError(t, err)
		assert.Empty(t, stats)
	})

	t.Run("With archive", func(t *testing.T) {
		archive := new(repomocks.ArchiveRepository)
		svc := service.NewGameService(new(repomocks.SessionRepository), new(mocks.Evaluator), newPicker(), service.Options{Archive: archive}, zap.NewNop())
		want := []domain.FinishedGame{{SessionID: uuid.New(), OutcomeCode: domain.OutcomeArtist}}
		archive.On("ListRecent", ctx, 5).Return(want, nil).Once()
		archive.On("CountByOutcome", ctx).Return(nil, errors.New("db down")).Once()

		games, err := svc.RecentOutcomes(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, want, games)
		_, err = svc.OutcomeStats(ctx)
		assert.Error(t, err)
		archive.AssertExpectations(t)
	})

	t.Run("Scenarios", func(t *testing.T) {
		svc := service.NewGameService(new(repomocks.SessionRepository), new(mocks.Evaluator), newPicker(), service.Options{}, zap.NewNop())
		assert.Len(t, svc.ListScenarios(), catalog.Len())
	})
}

func TestGameService_EndSession(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySessionRepository(time.Hour, zap.NewNop())
	notifier := new(mocks.SessionNotifier)
	svc := service.NewGameService(repo, new(mocks.Evaluator), newPicker(), service.Options{Notifier: notifier}, zap.NewNop())

	notifier.On("Notify", mock.MatchedBy(func(e domain.SessionEvent) bool {
		return e.Type == domain.EventSessionCreated
	})).Return().Once()
	s, err := svc.CreateSession(ctx, "Mina")
	require.NoError(t, err)

	notifier.On("Notify", mock.MatchedBy(func(e domain.SessionEvent) bool {
		return e.Type == domain.EventSessionEnded && e.SessionID == s.ID
	})).Return().Once()
	require.NoError(t, svc.EndSession(ctx, s.ID))

	_, err = svc.GetSession(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, svc.EndSession(ctx, s.ID), domain.ErrSessionNotFound)
	notifier.AssertExpectations(t)

	t.Run("Delete error", func(t *testing.T) {
		repo := new(repomocks.SessionRepository)
		svc := service.NewGameService(repo, new(mocks.Evaluator), newPicker(), service.Options{}, zap.NewNop())
		id := uuid.New()
		repo.On("Get", ctx, id).Return(&domain.Session{ID: id}, nil).Once()
		repo.On("Delete", ctx, id).Return(errors.New("redis down")).Once()

		err := svc.EndSession(ctx, id)
		assert.ErrorContains(t, err, "redis down")
		repo.AssertExpectations(t)
	})
}

func TestGameService_GetOutcome(t *testing.T) {
	svc := service.NewGameService(new(repomocks.SessionRepository), new(mocks.Evaluator), newPicker(), service.Options{}, zap.NewNop())

	o, err := svc.GetOutcome(domain.OutcomeCounselor)
	require.NoError(t, err)
	assert.Equal(t, "Beloved Counselor", o.Title)

	_, err = svc.GetOutcome("astronaut")
	assert.ErrorIs(t, err, domain.ErrOutcomeNotFound)
}

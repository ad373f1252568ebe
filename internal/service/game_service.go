package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"parenting-server/internal/catalog"
	"parenting-server/internal/domain"
	"parenting-server/internal/game"
	"parenting-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxResponseLength - максимальная длина ответа родителя в символах.
const DefaultMaxResponseLength = 2000

// SessionNotifier доставляет события сессии подписчикам (websocket).
type SessionNotifier interface {
	Notify(event domain.SessionEvent)
}

// OutcomePublisher публикует итоги завершенных игр во внешнюю очередь.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, game domain.FinishedGame) error
}

// GameResult - итог завершенной игры.
type GameResult struct {
	SessionID      uuid.UUID      `json:"session_id"`
	ChildName      string         `json:"child_name"`
	Outcome        domain.Outcome `json:"outcome"`
	Traits         domain.Traits  `json:"traits"`
	Rounds         int            `json:"rounds"`
	FailedAttempts int            `json:"failed_attempts"`
}

// GameService - сценарии использования игровой сессии.
type GameService interface {
	CreateSession(ctx context.Context, childName string) (*domain.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	// SubmitResponse оценивает ответ и продвигает сессию. Ошибка оценки
	// не является ошибкой метода: она видна в LastEvaluation.
	SubmitResponse(ctx context.Context, id uuid.UUID, text string) (*domain.Session, error)
	ResetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	// EndSession удаляет сессию. Архив завершенных игр не затрагивается.
	EndSession(ctx context.Context, id uuid.UUID) error
	GetResult(ctx context.Context, id uuid.UUID) (*GameResult, error)
	GetHistory(ctx context.Context, id uuid.UUID) ([]domain.RoundRecord, error)
	ListScenarios() []domain.Scenario
	GetOutcome(code domain.OutcomeCode) (domain.Outcome, error)
	RecentOutcomes(ctx context.Context, limit int) ([]domain.FinishedGame, error)
	OutcomeStats(ctx context.Context) (map[domain.OutcomeCode]int, error)
}

// Options - необязательные зависимости GameService.
type Options struct {
	// Archive может быть nil: тогда итоги не сохраняются.
	Archive   repository.ArchiveRepository
	Notifier  SessionNotifier
	Publisher OutcomePublisher
	// MaxResponseLength <= 0 означает DefaultMaxResponseLength.
	MaxResponseLength int
	Now               func() time.Time
}

type gameServiceImpl struct {
	sessions  repository.SessionRepository
	archive   repository.ArchiveRepository
	evaluator Evaluator
	picker    game.ScenarioPicker
	notifier  SessionNotifier
	publisher OutcomePublisher
	maxLen    int
	now       func() time.Time
	logger    *zap.Logger

	inflightMu sync.Mutex
	inflight   map[uuid.UUID]struct{}
}

// NewGameService создает новый экземпляр GameService.
func NewGameService(
	sessions repository.SessionRepository,
	evaluator Evaluator,
	picker game.ScenarioPicker,
	opts Options,
	logger *zap.Logger,
) GameService {
	if opts.MaxResponseLength <= 0 {
		opts.MaxResponseLength = DefaultMaxResponseLength
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &gameServiceImpl{
		sessions:  sessions,
		archive:   opts.Archive,
		evaluator: evaluator,
		picker:    picker,
		notifier:  opts.Notifier,
		publisher: opts.Publisher,
		maxLen:    opts.MaxResponseLength,
		now:       opts.Now,
		logger:    logger.Named("GameService"),
		inflight:  make(map[uuid.UUID]struct{}),
	}
}

func (s *gameServiceImpl) CreateSession(ctx context.Context, childName string) (*domain.Session, error) {
	session := game.NewSession(uuid.New(), childName, s.picker, s.now().UTC())
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("Failed to save new session", zap.String("sessionID", session.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("save session: %w", err)
	}
	sessionsCreated.Inc()
	s.logger.Info("Session created", zap.String("sessionID", session.ID.String()), zap.String("childName", session.ChildName))
	s.notify(domain.EventSessionCreated, session)
	return session, nil
}

func (s *gameServiceImpl) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.sessions.Get(ctx, id)
}

func (s *gameServiceImpl) SubmitResponse(ctx context.Context, id uuid.UUID, text string) (*domain.Session, error) {
	log := s.logger.With(zap.String("sessionID", id.String()))

	if !s.acquire(id) {
		log.Warn("Submit rejected: evaluation already in progress")
		return nil, domain.ErrEvaluationInProgress
	}
	defer s.release(id)

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Concluded() {
		return nil, domain.ErrSessionConcluded
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyResponse
	}
	if utf8.RuneCountInString(text) > s.maxLen {
		return nil, fmt.Errorf("%w: limit is %d characters", domain.ErrResponseTooLong, s.maxLen)
	}
	if session.CurrentScenario == nil {
		// Не должно случаться для сессии в процессе.
		log.Error("In-progress session has no current scenario", zap.Int("round", session.Round))
		return nil, domain.ErrInternalServer
	}

	s.notify(domain.EventEvaluationStarted, session)
	ev := s.evaluator.Evaluate(ctx, *session.CurrentScenario, session.Age, text)

	next, err := game.Apply(session, game.SubmitResponse{Text: text, Evaluation: ev, At: s.now().UTC()}, s.picker)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, next); err != nil {
		log.Error("Failed to save session after round", zap.Error(err))
		return nil, fmt.Errorf("save session: %w", err)
	}

	if ev.IsError() {
		roundsTotal.WithLabelValues("failed").Inc()
		log.Warn("Round not counted: evaluation failed",
			zap.String("failure", string(ev.Failure)),
			zap.Int("failedAttempts", next.FailedAttempts),
		)
		s.notify(domain.EventRoundFailed, next)
		return next, nil
	}

	roundsTotal.WithLabelValues("completed").Inc()
	log.Info("Round completed", zap.Int("round", next.Round), zap.Int("age", next.Age), zap.String("responseType", ev.ResponseType))
	s.notify(domain.EventRoundCompleted, next)

	if next.Concluded() {
		s.onConcluded(ctx, next)
	}
	return next, nil
}

// onConcluded архивирует и публикует итог. Ошибки только логируются:
// игрок уже получил результат.
func (s *gameServiceImpl) onConcluded(ctx context.Context, session *domain.Session) {
	log := s.logger.With(zap.String("sessionID", session.ID.String()))
	outcome := game.ResolveOutcome(session.Traits)
	finished := domain.NewFinishedGame(session, outcome, s.now().UTC())
	finishedGamesTotal.WithLabelValues(string(outcome.Code)).Inc()
	log.Info("Session concluded", zap.String("outcome", string(outcome.Code)), zap.Int("sum", session.Traits.Sum()))

	if s.archive != nil {
		if err := s.archive.Save(ctx, finished); err != nil {
			log.Error("Failed to archive finished game", zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOutcome(ctx, finished); err != nil {
			log.Error("Failed to publish outcome", zap.Error(err))
		}
	}
	if s.notifier != nil {
		event := domain.NewSessionEvent(domain.EventSessionConcluded, session, s.now().UTC())
		event.Outcome = &outcome
		s.notifier.Notify(event)
	}
}

func (s *gameServiceImpl) ResetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if !s.acquire(id) {
		return nil, domain.ErrEvaluationInProgress
	}
	defer s.release(id)

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fresh, err := game.Apply(session, game.Reset{At: s.now().UTC()}, s.picker)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("Session reset", zap.String("sessionID", id.String()), zap.Int("previousRound", session.Round))
	s.notify(domain.EventSessionReset, fresh)
	return fresh, nil
}

func (s *gameServiceImpl) EndSession(ctx context.Context, id uuid.UUID) error {
	if !s.acquire(id) {
		return domain.ErrEvaluationInProgress
	}
	defer s.release(id)

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete session", zap.String("sessionID", id.String()), zap.Error(err))
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("Session ended", zap.String("sessionID", id.String()), zap.Int("round", session.Round))
	s.notify(domain.EventSessionEnded, session)
	return nil
}

func (s *gameServiceImpl) GetResult(ctx context.Context, id uuid.UUID) (*GameResult, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Concluded() {
		return nil, domain.ErrSessionInProgress
	}
	return &GameResult{
		SessionID:      session.ID,
		ChildName:      session.ChildName,
		Outcome:        game.ResolveOutcome(session.Traits),
		Traits:         session.Traits,
		Rounds:         session.Round,
		FailedAttempts: session.FailedAttempts,
	}, nil
}

func (s *gameServiceImpl) GetHistory(ctx context.Context, id uuid.UUID) ([]domain.RoundRecord, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.History, nil
}

func (s *gameServiceImpl) ListScenarios() []domain.Scenario {
	return catalog.All()
}

func (s *gameServiceImpl) GetOutcome(code domain.OutcomeCode) (domain.Outcome, error) {
	outcome, ok := game.OutcomeByCode(code)
	if !ok {
		return domain.Outcome{}, fmt.Errorf("%w: %q", domain.ErrOutcomeNotFound, code)
	}
	return outcome, nil
}

func (s *gameServiceImpl) RecentOutcomes(ctx context.Context, limit int) ([]domain.FinishedGame, error) {
	if s.archive == nil {
		return []domain.FinishedGame{}, nil
	}
	games, err := s.archive.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list recent outcomes", zap.Error(err))
		return nil, fmt.Errorf("list recent outcomes: %w", err)
	}
	return games, nil
}

func (s *gameServiceImpl) OutcomeStats(ctx context.Context) (map[domain.OutcomeCode]int, error) {
	if s.archive == nil {
		return map[domain.OutcomeCode]int{}, nil
	}
	stats, err := s.archive.CountByOutcome(ctx)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	return stats, nil
}

func (s *gameServiceImpl) notify(t domain.EventType, session *domain.Session) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.NewSessionEvent(t, session, s.now().UTC()))
}

// acquire отмечает сессию как занятую. Возвращает false, если по ней уже идет оценка.
func (s *gameServiceImpl) acquire(id uuid.UUID) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *gameServiceImpl) release(id uuid.UUID) {
	s.inflightMu.Lock()
	delete(s.inflight, id)
	s.inflightMu.Unlock()
}

// IsClientError сообщает, вызвана ли ошибка некорректным запросом игрока.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrEmptyResponse) ||
		errors.Is(err, domain.ErrResponseTooLong) ||
		errors.Is(err, domain.ErrSessionConcluded) ||
		errors.Is(err, domain.ErrSessionInProgress) ||
		errors.Is(err, domain.ErrEvaluationInProgress)
}

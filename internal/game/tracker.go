// Package game содержит чистую логику сессии: применение эффектов,
// переходы состояния и определение итога.
package game

import (
	"fmt"
	"strings"
	"time"

	"parenting-server/internal/domain"

	"github.com/google/uuid"
)

// ScenarioPicker выбирает сценарий для возраста с учетом уже показанных.
type ScenarioPicker interface {
	Pick(age int, used []int) (domain.Scenario, int)
}

// Command - действие игрока над сессией.
type Command interface {
	isCommand()
}

// SubmitResponse - ответ родителя вместе с результатом его оценки.
type SubmitResponse struct {
	Text       string
	Evaluation domain.Evaluation
	// At - время раунда; нулевое значение означает time.Now().
	At time.Time
}

// Reset - начать игру заново с теми же ID и именем ребенка.
type Reset struct {
	At time.Time
}

func (SubmitResponse) isCommand() {}
func (Reset) isCommand()          {}

// ApplyEffects прибавляет изменения к характеристикам и ограничивает
// результат диапазоном [MinTrait, MaxTrait]. Неизвестные ключи игнорируются.
func ApplyEffects(traits domain.Traits, effects domain.Effects) domain.Traits {
	const span = domain.MaxTrait - domain.MinTrait
	for trait, delta := range effects {
		current, ok := traits.Get(trait)
		if !ok {
			continue
		}
		// Изменение больше ширины диапазона дает тот же результат, а сумма не переполняется.
		delta = clamp(delta, -span, span)
		traits = traits.With(trait, clamp(current+delta, domain.MinTrait, domain.MaxTrait))
	}
	return traits
}

// NewSession создает сессию со стартовыми значениями и первым сценарием для StartAge.
func NewSession(id uuid.UUID, childName string, picker ScenarioPicker, now time.Time) *domain.Session {
	childName = strings.TrimSpace(childName)
	if childName == "" {
		childName = domain.DefaultChildName
	}
	s := &domain.Session{
		ID:            id,
		ChildName:     childName,
		Age:           domain.StartAge,
		Traits:        domain.DefaultTraits(),
		Round:         0,
		Phase:         domain.PhaseInProgress,
		UsedScenarios: []int{},
		History:       []domain.RoundRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	setScenario(s, picker)
	return s
}

// Apply применяет команду к сессии и возвращает новое состояние.
// Исходная сессия не изменяется.
func Apply(session *domain.Session, cmd Command, picker ScenarioPicker) (*domain.Session, error) {
	switch c := cmd.(type) {
	case SubmitResponse:
		return submit(session, c, picker)
	case *SubmitResponse:
		return submit(session, *c, picker)
	case Reset:
		return NewSession(session.ID, session.ChildName, picker, timeOrNow(c.At)), nil
	case *Reset:
		return NewSession(session.ID, session.ChildName, picker, timeOrNow(c.At)), nil
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrUnknownCommand, cmd)
	}
}

func submit(session *domain.Session, c SubmitResponse, picker ScenarioPicker) (*domain.Session, error) {
	if session.Concluded() {
		return nil, domain.ErrSessionConcluded
	}
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return nil, domain.ErrEmptyResponse
	}

	at := timeOrNow(c.At)
	next := session.Clone()
	next.UpdatedAt = at
	ev := c.Evaluation
	next.LastEvaluation = &ev

	// Неудачная оценка не расходует раунд: сценарий остается прежним.
	if ev.IsError() {
		next.FailedAttempts++
		return next, nil
	}

	var scenario domain.Scenario
	if next.CurrentScenario != nil {
		scenario = *next.CurrentScenario
	}

	next.Traits = ApplyEffects(next.Traits, ev.Effects)
	next.History = append(next.History, domain.RoundRecord{
		Round:      next.Round + 1,
		Scenario:   scenario,
		Response:   text,
		Evaluation: ev,
		Age:        next.Age,
		PlayedAt:   at,
	})
	if next.CurrentScenarioIndex >= 0 {
		next.UsedScenarios = append(next.UsedScenarios, next.CurrentScenarioIndex)
	}
	next.Age += domain.AgeStep
	next.Round++

	if next.Round >= domain.TotalRounds {
		next.Phase = domain.PhaseConcluded
		next.CurrentScenario = nil
		next.CurrentScenarioIndex = -1
		return next, nil
	}

	setScenario(next, picker)
	return next, nil
}

func setScenario(s *domain.Session, picker ScenarioPicker) {
	scenario, idx := picker.Pick(s.Age, s.UsedScenarios)
	if idx < 0 {
		s.CurrentScenario = nil
		s.CurrentScenarioIndex = -1
		return
	}
	s.CurrentScenario = &scenario
	s.CurrentScenarioIndex = idx
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

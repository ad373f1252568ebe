package domain

import (
	"time"

	"github.com/google/uuid"
)

// Параметры игры.
const (
	TotalRounds      = 8
	StartAge         = 3
	AgeStep          = 2
	DefaultChildName = "Our Child"
)

// Phase - фаза сессии.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseConcluded  Phase = "concluded"
)

// FailureKind описывает, почему оценка ответа не удалась.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureMalformedReply   FailureKind = "malformed_reply"
	FailureCompletionFailed FailureKind = "completion_failed"
)

// ResponseTypeError - метка типа ответа для нейтрального результата.
const ResponseTypeError = "error"

// Evaluation - результат оценки одного ответа родителя.
type Evaluation struct {
	Effects      Effects     `json:"effects"`
	Feedback     string      `json:"feedback"`
	ResponseType string      `json:"response_type"`
	Failure      FailureKind `json:"failure,omitempty"`
}

// IsError сообщает, является ли оценка нейтральным результатом после ошибки.
func (e Evaluation) IsError() bool {
	return e.Failure != FailureNone || e.ResponseType == ResponseTypeError
}

// NeutralEvaluation возвращает результат без влияния на характеристики.
func NeutralEvaluation(kind FailureKind, feedback string) Evaluation {
	return Evaluation{
		Effects:      ZeroEffects(),
		Feedback:     feedback,
		ResponseType: ResponseTypeError,
		Failure:      kind,
	}
}

// RoundRecord - завершенный раунд. После добавления в историю не изменяется.
type RoundRecord struct {
	Round      int        `json:"round"`
	Scenario   Scenario   `json:"scenario"`
	Response   string     `json:"response"`
	Evaluation Evaluation `json:"evaluation"`
	Age        int        `json:"age"`
	PlayedAt   time.Time  `json:"played_at"`
}

// Session - состояние одной игры.
type Session struct {
	ID                   uuid.UUID     `json:"id"`
	ChildName            string        `json:"child_name"`
	Age                  int           `json:"age"`
	Traits               Traits        `json:"traits"`
	Round                int           `json:"round"`
	Phase                Phase         `json:"phase"`
	CurrentScenario      *Scenario     `json:"current_scenario,omitempty"`
	CurrentScenarioIndex int           `json:"current_scenario_index"`
	UsedScenarios        []int         `json:"used_scenarios"`
	History              []RoundRecord `json:"history"`
	FailedAttempts       int           `json:"failed_attempts"`
	LastEvaluation       *Evaluation   `json:"last_evaluation,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// Concluded сообщает, завершена ли игра.
func (s *Session) Concluded() bool {
	return s.Phase == PhaseConcluded
}

// LatestRound возвращает последний завершенный раунд, если он есть.
func (s *Session) LatestRound() (RoundRecord, bool) {
	if len(s.History) == 0 {
		return RoundRecord{}, false
	}
	return s.History[len(s.History)-1], true
}

// Clone возвращает глубокую копию сессии.
func (s *Session) Clone() *Session {
	c := *s
	if s.CurrentScenario != nil {
		sc := *s.CurrentScenario
		c.CurrentScenario = &sc
	}
	c.UsedScenarios = append([]int(nil), s.UsedScenarios...)
	c.History = append([]RoundRecord(nil), s.History...)
	if s.LastEvaluation != nil {
		ev := cloneEvaluation(*s.LastEvaluation)
		c.LastEvaluation = &ev
	}
	return &c
}

func cloneEvaluation(e Evaluation) Evaluation {
	effects := make(Effects, len(e.Effects))
	for k, v := range e.Effects {
		effects[k] = v
	}
	e.Effects = effects
	return e
}

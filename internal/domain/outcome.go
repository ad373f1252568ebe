package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeCode - идентификатор итогового исхода.
type OutcomeCode string

const (
	OutcomeLeader     OutcomeCode = "respected_leader"
	OutcomeCivil      OutcomeCode = "model_civil_servant"
	OutcomeArtist     OutcomeCode = "creative_artist"
	OutcomeCounselor  OutcomeCode = "beloved_counselor"
	OutcomeResearcher OutcomeCode = "thoughtful_researcher"
	OutcomeFreeSpirit OutcomeCode = "happy_free_spirit"
	OutcomeWandering  OutcomeCode = "wandering_young_adult"
	OutcomeOrdinary   OutcomeCode = "ordinary_office_worker"
)

// Outcome - итог игры: кем стал ребенок.
type Outcome struct {
	Code        OutcomeCode `json:"code"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// FinishedGame - запись архива о завершенной игре.
type FinishedGame struct {
	SessionID      uuid.UUID   `json:"session_id" db:"session_id"`
	ChildName      string      `json:"child_name" db:"child_name"`
	OutcomeCode    OutcomeCode `json:"outcome_code" db:"outcome_code"`
	OutcomeTitle   string      `json:"outcome_title" db:"outcome_title"`
	Happiness      int         `json:"happiness" db:"happiness"`
	Growth         int         `json:"growth" db:"growth"`
	Social         int         `json:"social" db:"social"`
	Creativity     int         `json:"creativity" db:"creativity"`
	Responsibility int         `json:"responsibility" db:"responsibility"`
	FailedAttempts int         `json:"failed_attempts" db:"failed_attempts"`
	FinishedAt     time.Time   `json:"finished_at" db:"finished_at"`
}

// Traits возвращает итоговые характеристики записи.
func (g FinishedGame) Traits() Traits {
	return Traits{
		Happiness:      g.Happiness,
		Growth:         g.Growth,
		Social:         g.Social,
		Creativity:     g.Creativity,
		Responsibility: g.Responsibility,
	}
}

// NewFinishedGame собирает запись архива из завершенной сессии.
func NewFinishedGame(s *Session, outcome Outcome, finishedAt time.Time) FinishedGame {
	return FinishedGame{
		SessionID:      s.ID,
		ChildName:      s.ChildName,
		OutcomeCode:    outcome.Code,
		OutcomeTitle:   outcome.Title,
		Happiness:      s.Traits.Happiness,
		Growth:         s.Traits.Growth,
		Social:         s.Traits.Social,
		Creativity:     s.Traits.Creativity,
		Responsibility: s.Traits.Responsibility,
		FailedAttempts: s.FailedAttempts,
		FinishedAt:     finishedAt,
	}
}

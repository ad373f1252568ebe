package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType - тип события сессии.
type EventType string

const (
	EventSessionCreated    EventType = "session_created"
	EventEvaluationStarted EventType = "evaluation_started"
	EventRoundCompleted    EventType = "round_completed"
	EventRoundFailed       EventType = "round_failed"
	EventSessionConcluded  EventType = "session_concluded"
	EventSessionReset      EventType = "session_reset"
	EventSessionEnded      EventType = "session_ended"
)

// SessionEvent - уведомление о изменении сессии для подписчиков (websocket, очередь).
type SessionEvent struct {
	Type       EventType   `json:"type"`
	SessionID  uuid.UUID   `json:"session_id"`
	Round      int         `json:"round"`
	Age        int         `json:"age"`
	Phase      Phase       `json:"phase"`
	Traits     Traits      `json:"traits"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Outcome    *Outcome    `json:"outcome,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewSessionEvent собирает событие по текущему состоянию сессии.
func NewSessionEvent(t EventType, s *Session, at time.Time) SessionEvent {
	return SessionEvent{
		Type:       t,
		SessionID:  s.ID,
		Round:      s.Round,
		Age:        s.Age,
		Phase:      s.Phase,
		Traits:     s.Traits,
		Evaluation: s.LastEvaluation,
		OccurredAt: at,
	}
}

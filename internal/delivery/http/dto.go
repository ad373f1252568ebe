package http

import (
	"fmt"
	"time"

	"parenting-server/internal/domain"
	"parenting-server/internal/service"

	"github.com/google/uuid"
)

type createSessionRequest struct {
	ChildName string `json:"child_name" binding:"omitempty,max=40"`
}

type submitResponseRequest struct {
	Response string `json:"response" binding:"required"`
}

// TraitView - характеристика с подписью для отображения.
type TraitView struct {
	Key   domain.Trait `json:"key"`
	Label string       `json:"label"`
	Emoji string       `json:"emoji"`
	Value int          `json:"value"`
	// Delta - изменение за последний раунд, если он был.
	Delta *int `json:"delta,omitempty"`
}

// SessionView - состояние сессии для клиента.
type SessionView struct {
	ID              uuid.UUID           `json:"id"`
	ChildName       string              `json:"child_name"`
	Age             int                 `json:"age"`
	Round           int                 `json:"round"`
	TotalRounds     int                 `json:"total_rounds"`
	Progress        string              `json:"progress"`
	Phase           domain.Phase        `json:"phase"`
	Traits          []TraitView         `json:"traits"`
	CurrentScenario *domain.Scenario    `json:"current_scenario,omitempty"`
	LatestRound     *domain.RoundRecord `json:"latest_round,omitempty"`
	LastEvaluation  *domain.Evaluation  `json:"last_evaluation,omitempty"`
	FailedAttempts  int                 `json:"failed_attempts"`
	// Notice - сообщение игроку, если последняя оценка не удалась.
	Notice string `json:"notice,omitempty"`
}

type createSessionResponse struct {
	Session        SessionView `json:"session"`
	Token          string      `json:"token"`
	TokenExpiresAt time.Time   `json:"token_expires_at"`
}

type resultResponse struct {
	service.GameResult
	TraitList []TraitView `json:"trait_list"`
}

type outcomeStatsResponse struct {
	Counts map[domain.OutcomeCode]int `json:"counts"`
	Total  int                        `json:"total"`
}

func traitViews(traits domain.Traits, last *domain.Evaluation) []TraitView {
	views := make([]TraitView, 0, len(domain.AllTraits()))
	for _, tr := range domain.AllTraits() {
		value, _ := traits.Get(tr)
		info := tr.Info()
		v := TraitView{Key: tr, Label: info.Label, Emoji: info.Emoji, Value: value}
		if last != nil && !last.IsError() {
			d := last.Effects[tr]
			v.Delta = &d
		}
		views = append(views, v)
	}
	return views
}

func newSessionView(s *domain.Session) SessionView {
	view := SessionView{
		ID:              s.ID,
		ChildName:       s.ChildName,
		Age:             s.Age,
		Round:           s.Round,
		TotalRounds:     domain.TotalRounds,
		Progress:        fmt.Sprintf("%d/%d", s.Round, domain.TotalRounds),
		Phase:           s.Phase,
		Traits:          traitViews(s.Traits, s.LastEvaluation),
		CurrentScenario: s.CurrentScenario,
		LastEvaluation:  s.LastEvaluation,
		FailedAttempts:  s.FailedAttempts,
	}
	if latest, ok := s.LatestRound(); ok {
		view.LatestRound = &latest
	}
	if s.LastEvaluation != nil && s.LastEvaluation.IsError() {
		view.Notice = s.LastEvaluation.Feedback
	}
	return view
}

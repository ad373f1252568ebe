package game

import "parenting-server/internal/domain"

const (
	leaderSum     = 400
	traitStandout = 80
	wanderingSum  = 200
)

var outcomes = map[domain.OutcomeCode]domain.Outcome{
	domain.OutcomeLeader: {
		Code:        domain.OutcomeLeader,
		Title:       "Respected Leader",
		Description: "Balanced growth turned your child into a leader people trust and follow.",
	},
	domain.OutcomeCivil: {
		Code:        domain.OutcomeCivil,
		Title:       "Model Civil Servant",
		Description: "A strong sense of responsibility made your child a public servant others rely on.",
	},
	domain.OutcomeArtist: {
		Code:        domain.OutcomeArtist,
		Title:       "Creative Artist",
		Description: "Rich creativity led your child to a life as an artist with a voice of their own.",
	},
	domain.OutcomeCounselor: {
		Code:        domain.OutcomeCounselor,
		Title:       "Beloved Counselor",
		Description: "Excellent social skills made your child a counselor who understands people.",
	},
	domain.OutcomeResearcher: {
		Code:        domain.OutcomeResearcher,
		Title:       "Thoughtful Researcher",
		Description: "A steady drive to learn made your child a researcher who keeps asking questions.",
	},
	domain.OutcomeFreeSpirit: {
		Code:        domain.OutcomeFreeSpirit,
		Title:       "Happy Free Spirit",
		Description: "Above all your child grew up happy and lives freely on their own terms.",
	},
	domain.OutcomeWandering: {
		Code:        domain.OutcomeWandering,
		Title:       "Wandering Young Adult",
		Description: "Your child is still searching for direction. It is not too late to find a way.",
	},
	domain.OutcomeOrdinary: {
		Code:        domain.OutcomeOrdinary,
		Title:       "Ordinary Office Worker",
		Description: "Your child grew into an ordinary adult living a quiet, stable life.",
	},
}

// ResolveOutcome определяет итог по финальным характеристикам.
// Порядок проверок важен: срабатывает первая подходящая.
func ResolveOutcome(t domain.Traits) domain.Outcome {
	sum := t.Sum()
	switch {
	case sum >= leaderSum:
		return outcomes[domain.OutcomeLeader]
	case t.Responsibility >= traitStandout:
		return outcomes[domain.OutcomeCivil]
	case t.Creativity >= traitStandout:
		return outcomes[domain.OutcomeArtist]
	case t.Social >= traitStandout:
		return outcomes[domain.OutcomeCounselor]
	case t.Growth >= traitStandout:
		return outcomes[domain.OutcomeResearcher]
	case t.Happiness >= traitStandout:
		return outcomes[domain.OutcomeFreeSpirit]
	case sum < wanderingSum:
		return outcomes[domain.OutcomeWandering]
	default:
		return outcomes[domain.OutcomeOrdinary]
	}
}

// OutcomeByCode возвращает описание исхода по коду.
func OutcomeByCode(code domain.OutcomeCode) (domain.Outcome, bool) {
	o, ok := outcomes[code]
	return o, ok
}

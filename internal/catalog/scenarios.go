// Package catalog содержит фиксированный набор сценариев и выбор сценария по возрасту.
package catalog

import "parenting-server/internal/domain"

var scenarios = []domain.Scenario{
	{
		Ages:    domain.AgeRange{Min: 3, Max: 3},
		Text:    "At the supermarket your child is lying on the floor, screaming for a bag of snacks. People around you are staring.",
		Context: "A tantrum in a public place",
	},
	{
		Ages:    domain.AgeRange{Min: 5, Max: 5},
		Text:    "A kindergarten friend is playing with the toy your child has wanted for weeks. Your child shouts \"I want that too!\" and starts to throw a fit.",
		Context: "Sharing and possessiveness",
	},
	{
		Ages:    domain.AgeRange{Min: 7, Max: 7},
		Text:    "Your child does not want to do homework and has been sitting at the desk for 30 minutes without doing anything.",
		Context: "Study habits and responsibility",
	},
	{
		Ages:    domain.AgeRange{Min: 9, Max: 9},
		Text:    "\"Everyone goes to a cram school except me,\" your child says, comparing themselves with their friends and begging to be sent to one.",
		Context: "Peer pressure and academic zeal",
	},
	{
		Ages:    domain.AgeRange{Min: 11, Max: 11},
		Text:    "You find out your child lied to you. They said \"I finished my homework\" but they had not done it.",
		Context: "Honesty and trust",
	},
	{
		Ages:    domain.AgeRange{Min: 13, Max: 13},
		Text:    "Your child's test scores dropped sharply. They give up, saying \"I'm just not smart anyway.\"",
		Context: "Self-esteem and motivation to learn",
	},
	{
		Ages:    domain.AgeRange{Min: 15, Max: 15},
		Text:    "Your child stayed up late on their smartphone and was late for school the next day. When you point it out they snap back: \"My friends stay up even later.\"",
		Context: "Media use and autonomy",
	},
	{
		Ages:    domain.AgeRange{Min: 17, Max: 17},
		Text:    "Your child comes home late smelling of alcohol and honestly tells you it was the first time they drank with friends.",
		Context: "Teenage deviance and trust",
	},
}

// All возвращает копию каталога в исходном порядке.
func All() []domain.Scenario {
	return append([]domain.Scenario(nil), scenarios...)
}

// Get возвращает сценарий по индексу.
func Get(index int) (domain.Scenario, bool) {
	if index < 0 || index >= len(scenarios) {
		return domain.Scenario{}, false
	}
	return scenarios[index], true
}

// Len - количество сценариев в каталоге.
func Len() int {
	return len(scenarios)
}

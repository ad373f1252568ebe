// Package evaluation строит запрос на оценку ответа родителя и разбирает ответ модели.
package evaluation

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"parenting-server/internal/domain"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// FeedbackLimit - желаемая длина отзыва в символах.
const FeedbackLimit = 50

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// Prompt - пара инструкций для модели.
type Prompt struct {
	System string
	User   string
}

type promptData struct {
	Scenario      domain.Scenario
	Age           int
	Response      string
	MinDelta      int
	MaxDelta      int
	FeedbackLimit int
}

// BuildPrompt рендерит системную и пользовательскую инструкции.
func BuildPrompt(scenario domain.Scenario, age int, response string) (Prompt, error) {
	data := promptData{
		Scenario:      scenario,
		Age:           age,
		Response:      response,
		MinDelta:      domain.MinDelta,
		MaxDelta:      domain.MaxDelta,
		FeedbackLimit: FeedbackLimit,
	}

	system, err := render("system.tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := render("user.tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: system, User: user}, nil
}

func render(name string, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

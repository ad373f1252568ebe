package tui

import (
	"fmt"
	"strings"

	"parenting-server/internal/domain"
	"parenting-server/internal/service"

	"github.com/charmbracelet/lipgloss"
)

const chartWidth = 30

func (m Model) View() string {
	if m.session == nil {
		if m.err != nil {
			return m.styles.Error.Render("Could not start a game: "+m.err.Error()) + "\n"
		}
		return m.spinner.View() + " Preparing your family...\n"
	}
	if m.session.Concluded() {
		return m.renderFinal()
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderScenario(),
		m.renderFeedback(),
		m.renderInput(),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, main, " ", m.renderSidebar())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.styles.Help.Render("enter: send • alt+enter: new line • ctrl+r: restart • esc: quit"),
	)
}

func (m Model) renderHeader() string {
	s := m.session
	return m.styles.Header.Render(fmt.Sprintf("%s • age %d • round %d/%d • %s",
		s.ChildName, s.Age, s.Round+1, domain.TotalRounds, strings.ReplaceAll(string(s.Phase), "_", " ")))
}

func (m Model) contentWidth() int {
	w := m.width - 36
	if w < 40 {
		w = 40
	}
	return w
}

func (m Model) renderScenario() string {
	sc := m.session.CurrentScenario
	if sc == nil {
		return ""
	}
	text := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Badge.Render(fmt.Sprintf("Age %d", m.session.Age)),
		sc.Text,
		m.styles.Context.Render(sc.Context),
	)
	return m.styles.Card.Width(m.contentWidth()).Render(text)
}

func (m Model) renderFeedback() string {
	var parts []string

	if ev := m.session.LastEvaluation; ev != nil && ev.IsError() {
		parts = append(parts, m.styles.Notice.Render(ev.Feedback))
	} else if rec, ok := m.session.LatestRound(); ok {
		var lines []string
		lines = append(lines, m.styles.Badge.Render("Round "+fmt.Sprint(rec.Round)+" • "+rec.Evaluation.ResponseType))
		lines = append(lines, rec.Evaluation.Feedback)
		lines = append(lines, m.renderDeltas(rec.Evaluation.Effects))
		parts = append(parts, m.styles.Feedback.Width(m.contentWidth()).Render(strings.Join(lines, "\n")))
	}

	if m.err != nil {
		style := m.styles.Error
		if service.IsClientError(m.err) {
			style = m.styles.Muted
		}
		parts = append(parts, style.Render(m.err.Error()))
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderDeltas(effects domain.Effects) string {
	var out []string
	for _, t := range domain.AllTraits() {
		d := effects[t]
		style := m.styles.Muted
		switch {
		case d > 0:
			style = m.styles.Positive
		case d < 0:
			style = m.styles.Negative
		}
		out = append(out, style.Render(fmt.Sprintf("%s %+d", t.Info().Label, d)))
	}
	return strings.Join(out, "  ")
}

func (m Model) renderInput() string {
	if m.evaluating {
		return m.spinner.View() + " Thinking about how that went..."
	}
	return m.input.View()
}

func (m Model) renderSidebar() string {
	lines := []string{m.styles.Title.Render("Traits")}
	for _, t := range domain.AllTraits() {
		v, _ := m.session.Traits.Get(t)
		info := t.Info()
		lines = append(lines,
			fmt.Sprintf("%s %-14s %3d", info.Emoji, info.Label, v),
			m.bar.ViewAs(float64(v)/float64(domain.MaxTrait)),
		)
	}
	if m.session.FailedAttempts > 0 {
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("retries: %d", m.session.FailedAttempts)))
	}
	return m.styles.Sidebar.Render(strings.Join(lines, "\n"))
}

func (m Model) renderFinal() string {
	if m.result == nil {
		return m.spinner.View() + " Twenty years pass...\n"
	}
	r := m.result
	lines := []string{
		m.styles.Header.Render(fmt.Sprintf("%s grew up", r.ChildName)),
		"",
		m.styles.Title.Render(r.Outcome.Title),
		r.Outcome.Description,
		"",
		barChart(r.Traits, m.styles),
		"",
		m.styles.Muted.Render(fmt.Sprintf("Total %d • rounds %d • retries %d", r.Traits.Sum(), r.Rounds, r.FailedAttempts)),
		m.styles.Help.Render("r: play again • q: quit"),
	}
	return m.styles.Card.Render(strings.Join(lines, "\n"))
}

// barChart рисует горизонтальную диаграмму итоговых характеристик.
func barChart(traits domain.Traits, styles Styles) string {
	var rows []string
	for _, t := range domain.AllTraits() {
		v, _ := traits.Get(t)
		filled := v * chartWidth / domain.MaxTrait
		bar := styles.Bar.Render(strings.Repeat("█", filled)) +
			styles.Muted.Render(strings.Repeat("░", chartWidth-filled))
		rows = append(rows, fmt.Sprintf("%-14s %s %3d", t.Info().Label, bar, v))
	}
	return strings.Join(rows, "\n")
}

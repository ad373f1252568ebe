package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7C4DFF")
	colorMuted   = lipgloss.Color("#8A8F98")
	colorGood    = lipgloss.Color("#8BC34A")
	colorBad     = lipgloss.Color("#E53935")
	colorWarn    = lipgloss.Color("#FFC107")
	colorBorder  = lipgloss.Color("#3A3F4B")
)

// Styles - набор стилей экрана.
type Styles struct {
	Header   lipgloss.Style
	Badge    lipgloss.Style
	Card     lipgloss.Style
	Context  lipgloss.Style
	Sidebar  lipgloss.Style
	Feedback lipgloss.Style
	Notice   lipgloss.Style
	Error    lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Muted    lipgloss.Style
	Title    lipgloss.Style
	Bar      lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles возвращает стили по умолчанию.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1),
		Badge: lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),
		Context: lipgloss.NewStyle().Italic(true).Foreground(colorMuted),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		Feedback: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGood).
			Padding(0, 1),
		Notice: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorBad).
			Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(colorBad),
		Positive: lipgloss.NewStyle().Foreground(colorGood),
		Negative: lipgloss.NewStyle().Foreground(colorBad),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorWarn),
		Bar:      lipgloss.NewStyle().Foreground(colorPrimary),
		Help:     lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
	}
}

// Package tui - консольный клиент игры на bubbletea.
package tui

import (
	"context"
	"strings"

	"parenting-server/internal/domain"
	"parenting-server/internal/service"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type sessionMsg struct {
	session *domain.Session
}

type resultMsg struct {
	result *service.GameResult
}

type errMsg struct {
	err error
}

// Model - состояние экрана игры.
type Model struct {
	ctx       context.Context
	svc       service.GameService
	childName string

	session *domain.Session
	result  *service.GameResult

	input      textarea.Model
	spinner    spinner.Model
	bar        progress.Model
	styles     Styles
	evaluating bool
	err        error
	width      int
	height     int
}

// New создает модель. Сессия создается в Init.
func New(ctx context.Context, svc service.GameService, childName string) Model {
	ta := textarea.New()
	ta.Placeholder = "How do you respond? (Enter to send, Alt+Enter for a new line)"
	ta.CharLimit = service.DefaultMaxResponseLength
	ta.ShowLineNumbers = false
	ta.SetWidth(70)
	ta.SetHeight(4)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := DefaultStyles()
	sp.Style = styles.Badge

	return Model{
		ctx:       ctx,
		svc:       svc,
		childName: childName,
		input:     ta,
		spinner:   sp,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(20), progress.WithoutPercentage()),
		styles:    styles,
		width:     100,
		height:    40,
	}
}

// Session возвращает текущее состояние сессии (для тестов и вызывающего кода).
func (m Model) Session() *domain.Session {
	return m.session
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.createSession())
}

func (m Model) createSession() tea.Cmd {
	return func() tea.Msg {
		s, err := m.svc.CreateSession(m.ctx, m.childName)
		if err != nil {
			return errMsg{err}
		}
		return sessionMsg{s}
	}
}

func (m Model) submit(id uuid.UUID, text string) tea.Cmd {
	return func() tea.Msg {
		s, err := m.svc.SubmitResponse(m.ctx, id, text)
		if err != nil {
			return errMsg{err}
		}
		return sessionMsg{s}
	}
}

func (m Model) reset(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		s, err := m.svc.ResetSession(m.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return sessionMsg{s}
	}
}

func (m Model) fetchResult(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		r, err := m.svc.GetResult(m.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return resultMsg{r}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if w := msg.Width - 36; w > 20 {
			m.input.SetWidth(w)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionMsg:
		m.evaluating = false
		m.err = nil
		// Текст ответа сохраняется, пока раунд не засчитан.
		if m.session != nil && msg.session.Round != m.session.Round {
			m.input.Reset()
		}
		m.session = msg.session
		if m.session.Concluded() {
			m.input.Blur()
			return m, m.fetchResult(m.session.ID)
		}
		m.result = nil
		m.input.Focus()
		return m, textarea.Blink

	case resultMsg:
		m.result = msg.result
		return m, nil

	case errMsg:
		m.evaluating = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.evaluating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	}
	if m.evaluating || m.session == nil {
		return m, nil
	}

	if m.session.Concluded() {
		switch msg.String() {
		case "r", "ctrl+r":
			return m, m.reset(m.session.ID)
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+r":
		return m, m.reset(m.session.ID)
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.err = domain.ErrEmptyResponse
			return m, nil
		}
		m.evaluating = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.submit(m.session.ID, text))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

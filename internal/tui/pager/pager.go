// Package pager is a scrollable full-screen view of a rendered preview.
package pager

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/tracerender/internal/output"
)

// ContentMsg replaces the pager content, keeping the scroll position when
// possible. Send it through tea.Program.Send when the source file changes.
type ContentMsg struct {
	Content string
}

// ErrorMsg shows a message in the footer without replacing the content.
type ErrorMsg struct {
	Err error
}

// KeyMap defines keybindings for the pager
type KeyMap struct {
	Quit   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

var keys = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "quit"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
)

// Model is the pager's bubbletea model.
type Model struct {
	title    string
	content  string
	status   string
	viewport viewport.Model
	ready    bool
	quitting bool
}

// New creates a pager showing content under title.
func New(title, content string) Model {
	return Model{title: title, content: content}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - 2
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		return m, nil

	case ContentMsg:
		m.content = msg.Content
		m.status = ""
		if m.ready {
			offset := m.viewport.YOffset
			m.viewport.SetContent(m.content)
			m.viewport.SetYOffset(offset)
		}
		return m, nil

	case ErrorMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(output.Truncate(m.title, m.viewport.Width)))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.footer())
	return sb.String()
}

func (m Model) footer() string {
	if m.status != "" {
		return errorStyle.Render(output.Truncate(m.status, m.viewport.Width))
	}
	help := fmt.Sprintf("%3.0f%%  %s %s  %s %s  %s %s",
		m.viewport.ScrollPercent()*100,
		keys.Quit.Help().Key, keys.Quit.Help().Desc,
		keys.Top.Help().Key, keys.Top.Help().Desc,
		keys.Bottom.Help().Key, keys.Bottom.Help().Desc,
	)
	return footerStyle.Render(help)
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

// Run shows the pager on the alternate screen until the user quits. The
// returned program can be used to Send ContentMsg values while it runs;
// wait on the error channel for it to exit.
func Run(title, content string) (*tea.Program, <-chan error) {
	p := tea.NewProgram(New(title, content), tea.WithAltScreen())
	errCh := make(chan error, 1)
	go func() {
		_, err := p.Run()
		if err != nil {
			err = fmt.Errorf("running pager: %w", err)
		}
		errCh <- err
	}()
	return p, errCh
}

package pager

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func longContent(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return strings.Join(lines, "\n")
}

func sized(t *testing.T, m Model, w, h int) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(Model)
}

func TestViewBeforeSize(t *testing.T) {
	if got := New("t", "body").View(); got != "Loading..." {
		t.Errorf("View() = %q", got)
	}
}

func TestViewShowsTitleAndContent(t *testing.T) {
	m := sized(t, New("Build a CLI", "hello pager"), 40, 10)
	view := m.View()
	if !strings.Contains(view, "Build a CLI") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, "hello pager") {
		t.Error("view missing content")
	}
	if !strings.Contains(view, "quit") {
		t.Error("view missing help footer")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		m := sized(t, New("t", "body"), 40, 10)
		next, cmd := m.Update(k)
		if cmd == nil {
			t.Errorf("%s: expected quit command", k)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
		if !next.(Model).Quitting() {
			t.Errorf("%s: model not marked quitting", k)
		}
		if next.View() != "" {
			t.Errorf("%s: view should be empty after quit", k)
		}
	}
}

func TestScrolling(t *testing.T) {
	m := sized(t, New("t", longContent(100)), 40, 12)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	m = next.(Model)
	if !m.viewport.AtBottom() {
		t.Error("G should jump to bottom")
	}
	if !strings.Contains(m.View(), "line 100") {
		t.Error("bottom view should show last line")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	m = next.(Model)
	if !m.viewport.AtTop() {
		t.Error("g should jump to top")
	}
}

func TestContentMsgKeepsOffset(t *testing.T) {
	m := sized(t, New("t", longContent(100)), 40, 12)
	m.viewport.SetYOffset(20)

	next, _ := m.Update(ContentMsg{Content: longContent(120)})
	m = next.(Model)
	if m.viewport.YOffset != 20 {
		t.Errorf("YOffset = %d, want 20", m.viewport.YOffset)
	}
	if m.content != longContent(120) {
		t.Error("content not replaced")
	}
}

func TestErrorMsgShownInFooter(t *testing.T) {
	m := sized(t, New("t", "body"), 60, 10)
	next, _ := m.Update(ErrorMsg{Err: errors.New("parse failed")})
	m = next.(Model)
	if !strings.Contains(m.View(), "parse failed") {
		t.Error("error not shown")
	}

	next, _ = m.Update(ContentMsg{Content: "fixed"})
	if strings.Contains(next.View(), "parse failed") {
		t.Error("new content should clear the error")
	}
}

func TestResize(t *testing.T) {
	m := sized(t, New("t", "body"), 40, 10)
	m = sized(t, m, 80, 30)
	if m.viewport.Width != 80 || m.viewport.Height != 28 {
		t.Errorf("viewport = %dx%d, want 80x28", m.viewport.Width, m.viewport.Height)
	}
}

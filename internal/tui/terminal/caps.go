// Package terminal provides terminal capability detection for graceful fallbacks.
package terminal

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal width cannot be determined.
const DefaultWidth = 80

// Capabilities holds detected terminal capabilities
type Capabilities struct {
	TTY            bool // Stdout is an interactive terminal
	TrueColor      bool // Supports 24-bit RGB colors
	Unicode        bool // Box drawing and emoji are expected to render
	DarkBackground bool
	Width          int
	Term           string
	ColorTerm      string
}

// env is swapped in tests.
var env = os.Getenv

// Detect inspects stdout and the environment.
func Detect() Capabilities {
	caps := Capabilities{
		Term:      env("TERM"),
		ColorTerm: env("COLORTERM"),
		Width:     DefaultWidth,
	}

	fd := os.Stdout.Fd()
	caps.TTY = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	caps.TrueColor = supportsTrueColor(caps.Term, caps.ColorTerm)
	caps.Unicode = supportsUnicode(caps.Term)
	caps.DarkBackground = true

	if caps.TTY {
		if w, _, err := term.GetSize(int(fd)); err == nil && w > 0 {
			caps.Width = w
		}
		caps.DarkBackground = termenv.HasDarkBackground()
	}
	return caps
}

// GlamourStyle resolves a configured style name. "auto" (or empty) picks
// dark or light from the background, and "notty" when output is not a
// terminal.
func (c Capabilities) GlamourStyle(configured string) string {
	switch strings.ToLower(strings.TrimSpace(configured)) {
	case "", "auto":
		if !c.TTY {
			return "notty"
		}
		if c.DarkBackground {
			return "dark"
		}
		return "light"
	default:
		return strings.ToLower(strings.TrimSpace(configured))
	}
}

// WrapWidth returns the configured width, or the terminal width when
// configured is not positive.
func (c Capabilities) WrapWidth(configured int) int {
	if configured > 0 {
		return configured
	}
	if c.Width > 0 {
		return c.Width
	}
	return DefaultWidth
}

// supportsTrueColor checks for 24-bit color support via COLORTERM or TERM.
func supportsTrueColor(term, colorterm string) bool {
	ct := strings.ToLower(colorterm)
	if ct == "truecolor" || ct == "24bit" {
		return true
	}

	t := strings.ToLower(term)
	if strings.Contains(t, "truecolor") || strings.Contains(t, "24bit") {
		return true
	}

	for _, name := range []string{"kitty", "iterm", "alacritty", "wezterm", "ghostty"} {
		if strings.Contains(t, name) {
			return true
		}
	}
	return false
}

// supportsUnicode reports whether the round glyphs (├─, ✅) will render.
func supportsUnicode(term string) bool {
	t := strings.ToLower(term)
	if t == "dumb" || t == "vt100" {
		return false
	}
	if env("NO_UNICODE") == "1" {
		return false
	}

	for _, v := range []string{env("LC_ALL"), env("LC_CTYPE"), env("LANG")} {
		v = strings.ToLower(v)
		if strings.Contains(v, "utf-8") || strings.Contains(v, "utf8") {
			return true
		}
	}

	// Most modern terminals support UTF-8 even without a locale hint.
	return strings.Contains(t, "xterm") ||
		strings.Contains(t, "256color") ||
		strings.Contains(t, "screen") ||
		strings.Contains(t, "tmux") ||
		strings.Contains(t, "linux")
}

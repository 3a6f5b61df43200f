package terminal

import "testing"

func withEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	orig := env
	env = func(k string) string { return vars[k] }
	t.Cleanup(func() { env = orig })
}

func TestSupportsTrueColor(t *testing.T) {
	tests := []struct {
		term, colorterm string
		want            bool
	}{
		{"xterm-256color", "truecolor", true},
		{"xterm-256color", "24bit", true},
		{"xterm-kitty", "", true},
		{"wezterm", "", true},
		{"xterm-256color", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := supportsTrueColor(tt.term, tt.colorterm); got != tt.want {
			t.Errorf("supportsTrueColor(%q, %q) = %v, want %v", tt.term, tt.colorterm, got, tt.want)
		}
	}
}

func TestSupportsUnicode(t *testing.T) {
	tests := []struct {
		name string
		term string
		vars map[string]string
		want bool
	}{
		{"dumb", "dumb", map[string]string{"LANG": "en_US.UTF-8"}, false},
		{"opt out", "xterm", map[string]string{"NO_UNICODE": "1"}, false},
		{"utf8 locale", "", map[string]string{"LANG": "en_US.UTF-8"}, true},
		{"lc_all wins", "", map[string]string{"LC_ALL": "C.utf8"}, true},
		{"tmux", "tmux-256color", nil, true},
		{"unknown", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, tt.vars)
			if got := supportsUnicode(tt.term); got != tt.want {
				t.Errorf("supportsUnicode(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestGlamourStyle(t *testing.T) {
	tests := []struct {
		caps       Capabilities
		configured string
		want       string
	}{
		{Capabilities{TTY: false}, "auto", "notty"},
		{Capabilities{TTY: true, DarkBackground: true}, "auto", "dark"},
		{Capabilities{TTY: true, DarkBackground: false}, "", "light"},
		{Capabilities{TTY: false}, "Dracula", "dracula"},
		{Capabilities{TTY: true}, " light ", "light"},
	}
	for _, tt := range tests {
		if got := tt.caps.GlamourStyle(tt.configured); got != tt.want {
			t.Errorf("GlamourStyle(%q) with %+v = %q, want %q", tt.configured, tt.caps, got, tt.want)
		}
	}
}

func TestWrapWidth(t *testing.T) {
	c := Capabilities{Width: 120}
	if got := c.WrapWidth(60); got != 60 {
		t.Errorf("configured width ignored: %d", got)
	}
	if got := c.WrapWidth(0); got != 120 {
		t.Errorf("terminal width ignored: %d", got)
	}
	if got := (Capabilities{}).WrapWidth(0); got != DefaultWidth {
		t.Errorf("fallback = %d, want %d", got, DefaultWidth)
	}
}

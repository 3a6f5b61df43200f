package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Dicklesworthstone/tracerender/internal/render"
	"github.com/Dicklesworthstone/tracerender/internal/util"
)

// Config represents the main configuration
type Config struct {
	Render  RenderConfig  `toml:"render"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
	Preview PreviewConfig `toml:"preview"`
}

// RenderConfig tunes the HTML renderer.
type RenderConfig struct {
	SummaryLimit int    `toml:"summary_limit"`
	Ellipsis     string `toml:"ellipsis"`
}

// StoreConfig locates the trace database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// PreviewConfig controls terminal previews.
type PreviewConfig struct {
	// Style is a glamour style name ("dark", "light", "notty") or "auto".
	Style string `toml:"style"`
	// Width is the word-wrap width; 0 means use the terminal width.
	Width int `toml:"width"`
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tracerender", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tracerender", "config.toml")
}

// DefaultStorePath returns the default trace database path
func DefaultStorePath() string {
	dir, err := util.DataDir()
	if err != nil {
		return "traces.db"
	}
	return filepath.Join(dir, "traces.db")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			SummaryLimit: render.DefaultSummaryLimit,
			Ellipsis:     render.DefaultEllipsis,
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8765",
		},
		Preview: PreviewConfig{
			Style: "auto",
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults for missing values
	def := Default()
	if cfg.Render.SummaryLimit <= 0 {
		cfg.Render.SummaryLimit = def.Render.SummaryLimit
	}
	if cfg.Render.Ellipsis == "" {
		cfg.Render.Ellipsis = def.Render.Ellipsis
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Preview.Style == "" {
		cfg.Preview.Style = def.Preview.Style
	}

	return &cfg, nil
}

// RenderOptions converts the [render] section to renderer options.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		SummaryLimit: c.Render.SummaryLimit,
		Ellipsis:     c.Render.Ellipsis,
	}
}

// CreateDefault creates a default config file
func CreateDefault() (string, error) {
	path := DefaultPath()

	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := Print(Default(), f); err != nil {
		return "", err
	}

	return path, nil
}

// Print writes config to a writer in TOML format
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# tracerender configuration")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[render]")
	fmt.Fprintln(w, "# Characters of each phase summary shown before the ellipsis")
	fmt.Fprintf(w, "summary_limit = %d\n", cfg.Render.SummaryLimit)
	fmt.Fprintf(w, "ellipsis = %q\n", cfg.Render.Ellipsis)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[store]")
	fmt.Fprintln(w, "# SQLite database holding saved traces")
	fmt.Fprintf(w, "path = %q\n", cfg.Store.Path)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[server]")
	fmt.Fprintf(w, "addr = %q\n", cfg.Server.Addr)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[preview]")
	fmt.Fprintln(w, "# auto, dark, light or notty")
	fmt.Fprintf(w, "style = %q\n", cfg.Preview.Style)
	fmt.Fprintln(w, "# 0 uses the terminal width")
	_, err := fmt.Fprintf(w, "width = %d\n", cfg.Preview.Width)
	return err
}

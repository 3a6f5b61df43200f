package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Render.SummaryLimit != 80 {
		t.Errorf("SummaryLimit = %d, want 80", cfg.Render.SummaryLimit)
	}
	if cfg.Render.Ellipsis != "..." {
		t.Errorf("Ellipsis = %q, want ...", cfg.Render.Ellipsis)
	}
	if cfg.Store.Path == "" {
		t.Error("Store path should not be empty")
	}
	if cfg.Server.Addr == "" {
		t.Error("Server addr should not be empty")
	}
	if cfg.Preview.Style != "auto" {
		t.Errorf("Preview style = %q, want auto", cfg.Preview.Style)
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("Expected error for non-existent config")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = ":9000"

[preview]
width = 100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Preview.Width != 100 {
		t.Errorf("Width = %d, want 100", cfg.Preview.Width)
	}
	if cfg.Render.SummaryLimit != 80 || cfg.Render.Ellipsis != "..." {
		t.Errorf("render defaults not applied: %+v", cfg.Render)
	}
	if cfg.Preview.Style != "auto" {
		t.Errorf("Style = %q, want auto", cfg.Preview.Style)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[render\nsummary_limit = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestPrintRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Render.SummaryLimit = 40
	cfg.Render.Ellipsis = "…"
	cfg.Preview.Style = "light"

	var buf bytes.Buffer
	if err := Print(cfg, &buf); err != nil {
		t.Fatalf("Print: %v", err)
	}

	var got Config
	if _, err := toml.Decode(buf.String(), &got); err != nil {
		t.Fatalf("printed config is not valid TOML: %v\n%s", err, buf.String())
	}
	if got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, *cfg)
	}
}

func TestRenderOptions(t *testing.T) {
	cfg := Default()
	cfg.Render.SummaryLimit = 12
	opts := cfg.RenderOptions()
	if opts.SummaryLimit != 12 || opts.Ellipsis != "..." {
		t.Errorf("RenderOptions = %+v", opts)
	}
}

func TestCreateDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := CreateDefault()
	if err != nil {
		t.Fatalf("CreateDefault: %v", err)
	}
	if path != DefaultPath() {
		t.Errorf("path = %q, want %q", path, DefaultPath())
	}
	if _, err := Load(path); err != nil {
		t.Errorf("created config should load: %v", err)
	}
	if _, err := CreateDefault(); err == nil {
		t.Error("second CreateDefault should refuse to overwrite")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileIsNotError(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Scrollback != 0 || cfg.Shell != "" {
		t.Errorf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadFrom_ParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "shell: /bin/zsh\nscrollback: 5000\nmirrored: false\nkeybinds:\n  - mode: pane\n    key: ctrl-n\n    action: split_horizontal\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Shell != "/bin/zsh" {
		t.Errorf("Shell = %q, want /bin/zsh", cfg.Shell)
	}
	if cfg.Scrollback != 5000 {
		t.Errorf("Scrollback = %d, want 5000", cfg.Scrollback)
	}
	if cfg.MirroredOrDefault() != false {
		t.Error("MirroredOrDefault() = true, want false")
	}
	if len(cfg.Keybinds) != 1 || cfg.Keybinds[0].Action != "split_horizontal" {
		t.Errorf("Keybinds = %+v, want one split_horizontal entry", cfg.Keybinds)
	}
}

func TestScrollbackOrDefault(t *testing.T) {
	var c *Config
	if got := c.ScrollbackOrDefault(); got != DefaultScrollbackLines {
		t.Errorf("nil config ScrollbackOrDefault() = %d, want %d", got, DefaultScrollbackLines)
	}
	c = &Config{Scrollback: 42}
	if got := c.ScrollbackOrDefault(); got != 42 {
		t.Errorf("ScrollbackOrDefault() = %d, want 42", got)
	}
}

func TestShellOrDefault(t *testing.T) {
	c := &Config{Shell: "/bin/fish"}
	if got := c.ShellOrDefault(); got != "/bin/fish" {
		t.Errorf("ShellOrDefault() = %q, want /bin/fish", got)
	}

	t.Setenv("SHELL", "/bin/bash")
	c = &Config{}
	if got := c.ShellOrDefault(); got != "/bin/bash" {
		t.Errorf("ShellOrDefault() = %q, want /bin/bash (from $SHELL)", got)
	}
}

func TestMirroredOrDefault(t *testing.T) {
	var c *Config
	if !c.MirroredOrDefault() {
		t.Error("nil config MirroredOrDefault() should default true")
	}
}

// Package config loads loom's single configuration file: keybind
// overrides, the default scrollback length, and the default shell.
// Grounded in h2's internal/config/config.go (same ConfigDir() pattern,
// same gopkg.in/yaml.v3 loader, same "missing file is not an error"
// semantics), narrowed to the fields spec.md §1 keeps in scope — layout
// files, themes, and plugin config stay external collaborators.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultScrollbackLines is used when Config.Scrollback is zero.
const DefaultScrollbackLines = 10000

// Config is the full contents of ~/.loom/config.yaml.
type Config struct {
	// Shell overrides $SHELL as the default command spawned for a new
	// pane when no explicit command is given.
	Shell string `yaml:"shell"`

	// Scrollback is the default per-pane scrollback capacity in lines.
	// Zero means DefaultScrollbackLines.
	Scrollback int `yaml:"scrollback"`

	// Keybinds overrides/extends the built-in keybind table: a flat list
	// of mode/key/action entries, decoded by internal/keybind's config
	// adapter. Parsing the key/mode grammar is keybind's concern, not
	// config's — this is just the YAML shape.
	Keybinds []KeybindEntry `yaml:"keybinds"`

	// Mirrored sets the session-wide default for mirrored vs per-client
	// focus (spec.md §4.8). Defaults to true (mirrored) when absent —
	// see DESIGN.md's resolution of that Open Question.
	Mirrored *bool `yaml:"mirrored"`
}

// KeybindEntry is one configured override: Mode and Key are parsed by
// internal/keybind; Action names a keybind.ActionKind by its config
// name (e.g. "split_horizontal"), Arg is its payload.
type KeybindEntry struct {
	Mode   string `yaml:"mode"`
	Key    string `yaml:"key"`
	Action string `yaml:"action"`
	Arg    string `yaml:"arg,omitempty"`
}

// ConfigDir returns loom's configuration directory (~/.loom/).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".loom")
	}
	return filepath.Join(home, ".loom")
}

// Path returns the path to the config file itself.
func Path() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Load reads loom's config from ~/.loom/config.yaml. A missing file is
// not an error: it returns the zero Config, which callers resolve
// against their own defaults via the *OrDefault helpers.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads config from an explicit path, for tests.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ScrollbackOrDefault returns c.Scrollback, or DefaultScrollbackLines
// when unset.
func (c *Config) ScrollbackOrDefault() int {
	if c == nil || c.Scrollback <= 0 {
		return DefaultScrollbackLines
	}
	return c.Scrollback
}

// ShellOrDefault returns c.Shell, or $SHELL, or "/bin/sh" as a last
// resort — the same fallback chain h2's spawn path uses.
func (c *Config) ShellOrDefault() string {
	if c != nil && c.Shell != "" {
		return c.Shell
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// MirroredOrDefault returns c.Mirrored, defaulting to true (a single
// shared view across clients) when unset.
func (c *Config) MirroredOrDefault() bool {
	if c == nil || c.Mirrored == nil {
		return true
	}
	return *c.Mirrored
}

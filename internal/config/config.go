// Package config loads and saves the wt settings document.
//
// Settings live in <dir>/config.yaml and are parsed with gopkg.in/yaml.v3.
// A hand-written config.json or config.jsonc in the same directory is also
// accepted; github.com/tidwall/jsonc strips its comments and trailing
// commas before encoding/json parses it. Saves always write YAML.
//
// The directory is injected through NewStore, so tests and the
// --config-dir flag never touch the user's real settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/wt/internal/model"
)

// Version is the settings document version written by this release.
const Version = "1.0.0"

// DirName is the directory under the user config root.
const DirName = "worktree-manager"

// EnvConfigDir overrides the config directory when set.
const EnvConfigDir = "WT_CONFIG_DIR"

const (
	yamlFile  = "config.yaml"
	jsonFile  = "config.json"
	jsoncFile = "config.jsonc"
)

// validLayouts are the values fzf accepts for --layout.
var validLayouts = []string{"default", "reverse", "reverse-list"}

// Config is the settings document.
type Config struct {
	Version       string              `yaml:"version" json:"version"`
	Editor        string              `yaml:"editor,omitempty" json:"editor,omitempty"`
	Fzf           FzfConfig           `yaml:"fzf" json:"fzf"`
	AutoDiscovery AutoDiscoveryConfig `yaml:"auto_discovery" json:"auto_discovery"`
}

// FzfConfig holds the picker's appearance settings.
type FzfConfig struct {
	Height        string `yaml:"height" json:"height"`
	Layout        string `yaml:"layout" json:"layout"`
	PreviewWindow string `yaml:"preview_window" json:"preview_window"`
}

// AutoDiscoveryConfig lists the roots searched by --all.
type AutoDiscoveryConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Paths   []string `yaml:"paths" json:"paths"`
}

// Default returns the settings used when no document exists.
func Default() *Config {
	return &Config{
		Version: Version,
		Fzf: FzfConfig{
			Height:        "40%",
			Layout:        "reverse",
			PreviewWindow: "right:60%",
		},
		AutoDiscovery: AutoDiscoveryConfig{
			Enabled: true,
			Paths:   []string{},
		},
	}
}

// Validate checks values that would otherwise fail later inside fzf.
func (c *Config) Validate() error {
	if c.Fzf.Layout != "" && !slices.Contains(validLayouts, c.Fzf.Layout) {
		return fmt.Errorf("invalid fzf.layout %q (valid: default, reverse, reverse-list)", c.Fzf.Layout)
	}
	return nil
}

// DefaultDir returns the config directory: $WT_CONFIG_DIR if set, else
// $XDG_CONFIG_HOME/worktree-manager, else ~/.config/worktree-manager.
// Callers pass the environment lookups so tests control both.
func DefaultDir(getenv func(string) string, homeDir func() (string, error)) (string, error) {
	if dir := getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, DirName), nil
	}

	home, err := homeDir()
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigError, "cannot determine home directory", err)
	}
	return filepath.Join(home, ".config", DirName), nil
}

// Store reads and writes the settings document in one directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the YAML document path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, yamlFile)
}

// Exists reports whether a settings document is present in any format.
func (s *Store) Exists() bool {
	_, ok := s.source()
	return ok
}

// source returns the document to read, preferring YAML.
func (s *Store) source() (string, bool) {
	for _, name := range []string{yamlFile, jsoncFile, jsonFile} {
		p := filepath.Join(s.dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Load reads the settings document. A missing document yields Default();
// fields missing from the document keep their default values.
func (s *Store) Load() (*Config, error) {
	cfg := Default()

	path, ok := s.source()
	if !ok {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to read config file %s", path), err)
	}

	if filepath.Ext(path) == ".yaml" {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	}
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to parse config file %s", path), err)
	}

	if cfg.AutoDiscovery.Paths == nil {
		cfg.AutoDiscovery.Paths = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("invalid config file %s", path), err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the directory if needed.
func (s *Store) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return model.WrapCLIError(model.ExitConfigError, "refusing to save invalid config", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to create config directory %s", s.dir), err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "failed to serialize config", err)
	}

	if err := os.WriteFile(s.Path(), data, 0644); err != nil {
		return model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to write config file %s", s.Path()), err)
	}
	return nil
}

// Init writes the default document unless one already exists. It reports
// whether a file was written.
func (s *Store) Init() (bool, error) {
	if s.Exists() {
		return false, nil
	}
	if err := s.Save(Default()); err != nil {
		return false, err
	}
	return true, nil
}

// Update loads the document, applies fn, and saves the result.
func (s *Store) Update(fn func(*Config) error) (*Config, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(cfg); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			return nil, err
		}
		return nil, model.WrapCLIError(model.ExitConfigError, "cannot update config", err)
	}
	if err := s.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/wt/internal/model"
)

// writeFile is a test helper that creates a file with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func requireConfigError(t *testing.T, err error) {
	t.Helper()
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "expected CLIError, got %v", err)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, "40%", cfg.Fzf.Height)
	assert.Equal(t, "reverse", cfg.Fzf.Layout)
	assert.Equal(t, "right:60%", cfg.Fzf.PreviewWindow)
	assert.True(t, cfg.AutoDiscovery.Enabled)
	assert.Empty(t, cfg.AutoDiscovery.Paths)
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := NewStore(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

// TestLoad_YAML verifies a full document and that missing fields keep
// their defaults.
func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
version: "1.0.0"
fzf:
  height: "50%"
auto_discovery:
  enabled: false
  paths:
    - /home/user/projects
    - /home/user/work
`)

	cfg, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "50%", cfg.Fzf.Height)
	assert.Equal(t, "reverse", cfg.Fzf.Layout, "missing field keeps default")
	assert.Equal(t, "right:60%", cfg.Fzf.PreviewWindow)
	assert.False(t, cfg.AutoDiscovery.Enabled)
	assert.Equal(t, []string{"/home/user/projects", "/home/user/work"}, cfg.AutoDiscovery.Paths)
}

// TestLoad_JSONC verifies comments and trailing commas are accepted.
func TestLoad_JSONC(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.jsonc"), `{
  // editor used by Ctrl-E
  "editor": "nvim",
  "fzf": {"layout": "default",},
  /* roots */
  "auto_discovery": {"paths": ["~/src"]},
}`)

	cfg, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "nvim", cfg.Editor)
	assert.Equal(t, "default", cfg.Fzf.Layout)
	assert.Equal(t, "40%", cfg.Fzf.Height)
	assert.Equal(t, []string{"~/src"}, cfg.AutoDiscovery.Paths)
	assert.True(t, cfg.AutoDiscovery.Enabled)
}

func TestLoad_PrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json"), `{"editor": "from-json"}`)
	writeFile(t, filepath.Join(dir, "config.yaml"), "editor: from-yaml\n")

	cfg, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.Editor)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "config.yaml"), "fzf: [unclosed\n")
		_, err := NewStore(dir).Load()
		requireConfigError(t, err)
	})

	t.Run("invalid layout", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "config.yaml"), "fzf:\n  layout: sideways\n")
		_, err := NewStore(dir).Load()
		requireConfigError(t, err)
	})
}

// TestSaveLoad verifies a saved document reads back identically.
func TestSaveLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "dir"))

	cfg := Default()
	cfg.Editor = "code"
	cfg.AutoDiscovery.Paths = []string{"/a", "/b"}
	require.NoError(t, store.Save(cfg))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "auto_discovery:")
	assert.Contains(t, string(data), "preview_window:")

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestInit(t *testing.T) {
	store := NewStore(t.TempDir())

	written, err := store.Init()
	require.NoError(t, err)
	assert.True(t, written)
	assert.True(t, store.Exists())

	written, err = store.Init()
	require.NoError(t, err)
	assert.False(t, written, "an existing document is left alone")
}

func TestUpdate(t *testing.T) {
	store := NewStore(t.TempDir())

	cfg, err := store.Update(func(c *Config) error {
		c.Editor = "hx"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hx", cfg.Editor)

	_, err = store.Update(func(c *Config) error { return errors.New("nope") })
	requireConfigError(t, err)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "hx", got.Editor)
}

func TestDefaultDir(t *testing.T) {
	vars := map[string]string{}
	getenv := func(k string) string { return vars[k] }
	home := func() (string, error) { return "/home/me", nil }

	dir, err := DefaultDir(getenv, home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/me", ".config", DirName), dir)

	vars["XDG_CONFIG_HOME"] = "/tmp/xdg"
	dir, err = DefaultDir(getenv, home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", DirName), dir)

	vars[EnvConfigDir] = "/tmp/wt-conf"
	dir, err = DefaultDir(getenv, home)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wt-conf", dir)
}

func TestDefaultDir_NoHome(t *testing.T) {
	_, err := DefaultDir(func(string) string { return "" }, func() (string, error) {
		return "", errors.New("$HOME is not defined")
	})
	requireConfigError(t, err)
}

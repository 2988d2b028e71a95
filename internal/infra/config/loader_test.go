package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/todo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Load_NoFiles(t *testing.T) {
	loader := NewLoaderWithGlobalDir(t.TempDir(), "")

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.NewDefaultConfig(), cfg)
}

func TestLoader_Load_GlobalConfigOnly(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `
[store]
backend = "git"
namespace = "mytodo"
encryption_key = "abcd"

[log]
level = "debug"
`)

	cfg, err := NewLoaderWithGlobalDir(globalDir, "").Load()
	require.NoError(t, err)

	assert.Equal(t, domain.BackendGit, cfg.Store.Backend)
	assert.Equal(t, "mytodo", cfg.Store.Namespace)
	assert.Equal(t, "abcd", cfg.Store.EncryptionKey)
	assert.Equal(t, domain.DefaultTasksKey, cfg.Store.TasksKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Empty(t, cfg.Warnings)
}

func TestLoader_Load_OverrideTakesPrecedence(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `
[store]
backend = "git"
tasks_key = "global.tasks"

[log]
level = "debug"
`)
	overridePath := writeConfig(t, t.TempDir(), `
[store]
backend = "sqlite"
path = "/tmp/todo.db"
`)

	cfg, err := NewLoaderWithGlobalDir(globalDir, overridePath).Load()
	require.NoError(t, err)

	assert.Equal(t, domain.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/todo.db", cfg.Store.Path)
	assert.Equal(t, "global.tasks", cfg.Store.TasksKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoader_Load_MissingOverrideIsError(t *testing.T) {
	loader := NewLoaderWithGlobalDir(t.TempDir(), filepath.Join(t.TempDir(), "missing.toml"))

	_, err := loader.Load()

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Load_InvalidTOML(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `[store`)

	_, err := NewLoaderWithGlobalDir(globalDir, "").Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoader_Load_Warnings(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `
[store]
backend = "json"
colour = "blue"
path = 3

[log]
verbose = true

[sync]
remote = "origin"
`)

	cfg, err := NewLoaderWithGlobalDir(globalDir, "").Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"invalid value in [store]: path must be a string",
		"unknown key in [log]: verbose",
		"unknown key in [store]: colour",
		"unknown section: sync",
	}, cfg.Warnings)
	assert.Equal(t, domain.BackendJSON, cfg.Store.Backend)
	assert.Empty(t, cfg.Store.Path)
}

func TestLoader_Load_RenderedTemplateRoundTrip(t *testing.T) {
	want := domain.NewDefaultConfig()
	want.Store.Backend = domain.BackendMySQL
	want.Store.DSN = "user:pass@tcp(127.0.0.1:3306)/todo"
	want.Log.Level = "warn"

	globalDir := t.TempDir()
	writeConfig(t, globalDir, domain.RenderConfigTemplate(want))

	cfg, err := NewLoaderWithGlobalDir(globalDir, "").Load()
	require.NoError(t, err)

	assert.Equal(t, want, cfg)
}

func TestMergeConfigs_KeepsBaseForEmptyFields(t *testing.T) {
	base := domain.NewDefaultConfig()
	base.Warnings = []string{"a"}
	override := &domain.Config{Warnings: []string{"b"}}
	override.Store.ThemeKey = "ui.theme"

	got := mergeConfigs(base, override)

	assert.Equal(t, "ui.theme", got.Store.ThemeKey)
	assert.Equal(t, domain.DefaultBackend, got.Store.Backend)
	assert.Equal(t, []string{"a", "b"}, got.Warnings)
	assert.Equal(t, []string{"a"}, base.Warnings)
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/data", "todo"), DefaultDataDir())

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", ".local", "share", "todo"), DefaultDataDir())
}

func TestDefaultGlobalConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	assert.Equal(t, filepath.Join("/conf", "todo"), defaultGlobalConfigDir())
}

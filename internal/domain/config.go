package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"text/template"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string    `toml:"-"`
	Store    StoreConfig `toml:"store"`
	Log      LogConfig   `toml:"log"`
}

// StoreConfig holds persistence settings from the [store] section.
type StoreConfig struct {
	Backend       string `toml:"backend,omitempty"`        // json (default), git, sqlite or mysql
	Path          string `toml:"path,omitempty"`           // File or repository path (default: under the data dir)
	DSN           string `toml:"dsn,omitempty"`            // MySQL data source name
	Namespace     string `toml:"namespace,omitempty"`      // Git ref namespace
	EncryptionKey string `toml:"encryption_key,omitempty"` // Hex AES-256 key; git backend encrypts values when set
	TasksKey      string `toml:"tasks_key,omitempty"`      // Key holding the task collection
	ThemeKey      string `toml:"theme_key,omitempty"`      // Key holding the UI theme
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// Store backends.
const (
	BackendJSON   = "json"
	BackendGit    = "git"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Default configuration values.
const (
	DefaultBackend   = BackendJSON
	DefaultNamespace = "todo"
	DefaultTasksKey  = "todo.tasks"
	DefaultThemeKey  = "todo.theme"
	DefaultLogLevel  = "info"
)

// Directory and file names.
const (
	AppDirName     = "todo"        // Directory name under config/data homes
	ConfigFileName = "config.toml" // Config file name
	LogFileName    = "todo.log"    // Log file name
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:   DefaultBackend,
			Namespace: DefaultNamespace,
			TasksKey:  DefaultTasksKey,
			ThemeKey:  DefaultThemeKey,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// GlobalConfigDir returns the global config directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}

// DataDir returns the data directory.
// dataHome is typically XDG_DATA_HOME or ~/.local/share (resolved by caller).
func DataDir(dataHome string) string {
	return filepath.Join(dataHome, AppDirName)
}

// LogPath returns the log file path inside the data directory.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", LogFileName)
}

// DefaultStorePath returns the default store location for a backend.
func DefaultStorePath(dataDir, backend string) string {
	switch backend {
	case BackendGit:
		return filepath.Join(dataDir, "store.git")
	case BackendSQLite:
		return filepath.Join(dataDir, "todo.db")
	default:
		return filepath.Join(dataDir, "store.json")
	}
}

// templateData holds all data for rendering the config template.
type templateData struct {
	Backend       string
	Path          string
	DSN           string
	Namespace     string
	EncryptionKey string
	TasksKey      string
	ThemeKey      string
	LogLevel      string
}

// RenderConfigTemplate renders a commented config file from cfg.
func RenderConfigTemplate(cfg *Config) string {
	data := templateData{
		Backend:       cfg.Store.Backend,
		Path:          cfg.Store.Path,
		DSN:           cfg.Store.DSN,
		Namespace:     cfg.Store.Namespace,
		EncryptionKey: cfg.Store.EncryptionKey,
		TasksKey:      cfg.Store.TasksKey,
		ThemeKey:      cfg.Store.ThemeKey,
		LogLevel:      cfg.Log.Level,
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}

	return buf.String()
}

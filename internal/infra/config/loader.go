// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/todo/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	globalConfDir string // Path to global config directory (e.g., ~/.config/todo)
	overridePath  string // Explicit config file from --config; must exist when set
}

// NewLoader creates a new Loader.
func NewLoader(overridePath string) *Loader {
	return &Loader{
		globalConfDir: defaultGlobalConfigDir(),
		overridePath:  overridePath,
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(globalConfDir, overridePath string) *Loader {
	return &Loader{
		globalConfDir: globalConfDir,
		overridePath:  overridePath,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// DefaultDataDir returns the data directory ($XDG_DATA_HOME/todo or ~/.local/share/todo).
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), domain.AppDirName)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return domain.DataDir(dataHome)
}

// Load returns the merged configuration (global + override).
// The override file takes precedence over the global file.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var override *domain.Config
	if l.overridePath != "" {
		override, err = l.loadFile(l.overridePath)
		if err != nil {
			return nil, err
		}
	}

	base := domain.NewDefaultConfig()

	// Merge: default <- global <- override (later takes precedence)
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if override != nil {
		base = mergeConfigs(base, override)
	}

	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	globalPath := filepath.Join(l.globalConfDir, domain.ConfigFileName)
	return l.loadFile(globalPath)
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string

	for section, value := range raw {
		switch section {
		case "store":
			m, ok := value.(map[string]any)
			if !ok {
				warnings = append(warnings, "[store] must be a table")
				continue
			}
			for k, v := range m {
				s, isString := v.(string)
				if !isString {
					warnings = append(warnings, fmt.Sprintf("invalid value in [store]: %s must be a string", k))
					continue
				}
				switch k {
				case "backend":
					res.Store.Backend = s
				case "path":
					res.Store.Path = s
				case "dsn":
					res.Store.DSN = s
				case "namespace":
					res.Store.Namespace = s
				case "encryption_key":
					res.Store.EncryptionKey = s
				case "tasks_key":
					res.Store.TasksKey = s
				case "theme_key":
					res.Store.ThemeKey = s
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [store]: %s", k))
				}
			}
		case "log":
			m, ok := value.(map[string]any)
			if !ok {
				warnings = append(warnings, "[log] must be a table")
				continue
			}
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						res.Log.Level = s
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		Store: base.Store,
		Log:   base.Log,
	}

	// Base warnings first, then override warnings
	result.Warnings = append(result.Warnings, base.Warnings...)
	result.Warnings = append(result.Warnings, override.Warnings...)

	if override.Store.Backend != "" {
		result.Store.Backend = override.Store.Backend
	}
	if override.Store.Path != "" {
		result.Store.Path = override.Store.Path
	}
	if override.Store.DSN != "" {
		result.Store.DSN = override.Store.DSN
	}
	if override.Store.Namespace != "" {
		result.Store.Namespace = override.Store.Namespace
	}
	if override.Store.EncryptionKey != "" {
		result.Store.EncryptionKey = override.Store.EncryptionKey
	}
	if override.Store.TasksKey != "" {
		result.Store.TasksKey = override.Store.TasksKey
	}
	if override.Store.ThemeKey != "" {
		result.Store.ThemeKey = override.Store.ThemeKey
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}

	return result
}

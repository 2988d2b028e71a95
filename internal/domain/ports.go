package domain

import (
	"context"
	"time"
)

// KeyValueStore is durable key-value storage that survives process restarts.
// Set replaces the value of one key atomically; other keys are untouched.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases backend resources.
	Close() error
}

// TaskStore persists the task collection.
type TaskStore interface {
	// Load returns the stored tasks. It never fails: missing or corrupt
	// data yields an empty collection.
	Load(ctx context.Context) []Task

	// Save replaces the stored collection with tasks.
	Save(ctx context.Context, tasks []Task) error
}

// Logger provides logging functionality.
// taskID of 0 means the entry is not about a specific task.
type Logger interface {
	Info(taskID int64, category, msg string)
	Debug(taskID int64, category, msg string)
	Warn(taskID int64, category, msg string)
	Error(taskID int64, category, msg string)
}

// NopLogger discards every entry.
type NopLogger struct{}

// Info does nothing.
func (NopLogger) Info(int64, string, string) {}

// Debug does nothing.
func (NopLogger) Debug(int64, string, string) {}

// Warn does nothing.
func (NopLogger) Warn(int64, string, string) {}

// Error does nothing.
func (NopLogger) Error(int64, string, string) {}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (defaults + global + override).
	Load() (*Config, error)
}

// ConfigInfo describes a config file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager inspects and creates config files.
type ConfigManager interface {
	// ConfigInfo returns information about the active config file.
	ConfigInfo() ConfigInfo

	// InitConfig writes a commented config file rendered from cfg.
	// Returns ErrConfigExists if the file is already present.
	InitConfig(cfg *Config) error
}

// Clock provides the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

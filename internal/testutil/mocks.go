// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/todo/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockKeyValueStore is an in-memory domain.KeyValueStore with injectable errors.
// Fields are ordered to minimize memory padding.
type MockKeyValueStore struct {
	Values   map[string][]byte
	GetErr   error
	SetErr   error
	CloseErr error
	SetCalls int
	Closed   bool
	mu       sync.Mutex
}

// NewMockKeyValueStore creates an empty MockKeyValueStore.
func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{
		Values: make(map[string][]byte),
	}
}

// Get returns a copy of the stored value.
func (m *MockKeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.Values[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value unless SetErr is configured.
func (m *MockKeyValueStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Values[key] = append([]byte(nil), value...)
	return nil
}

// Close marks the store closed.
func (m *MockKeyValueStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed = true
	return m.CloseErr
}

// Raw returns the stored value as a string, or "" when absent.
func (m *MockKeyValueStore) Raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return string(m.Values[key])
}

// LogEntry is a single entry captured by MockLogger.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	TaskID   int64
}

// String formats the entry for assertion messages.
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] [%d] [%s] %s", e.Level, e.TaskID, e.Category, e.Msg)
}

// MockLogger records log entries.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) add(level string, taskID int64, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(taskID int64, category, msg string) { m.add("INFO", taskID, category, msg) }

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID int64, category, msg string) { m.add("DEBUG", taskID, category, msg) }

// Warn records a warning entry.
func (m *MockLogger) Warn(taskID int64, category, msg string) { m.add("WARN", taskID, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(taskID int64, category, msg string) { m.add("ERROR", taskID, category, msg) }

// Levels returns the recorded levels in order.
func (m *MockLogger) Levels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	levels := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		levels = append(levels, e.Level)
	}
	return levels
}

// MockConfigLoader returns a fixed config.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Config == nil {
		return domain.NewDefaultConfig(), nil
	}
	return m.Config, nil
}

// MockConfigManager records InitConfig calls.
type MockConfigManager struct {
	InitErr  error
	Inited   *domain.Config
	Info     domain.ConfigInfo
	InitCall int
}

// ConfigInfo returns the configured info.
func (m *MockConfigManager) ConfigInfo() domain.ConfigInfo {
	return m.Info
}

// InitConfig records cfg or returns InitErr.
func (m *MockConfigManager) InitConfig(cfg *domain.Config) error {
	m.InitCall++
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Inited = cfg
	return nil
}

// Ensure mocks implement the ports.
var (
	_ domain.KeyValueStore = (*MockKeyValueStore)(nil)
	_ domain.Logger        = (*MockLogger)(nil)
	_ domain.Clock         = (*MockClock)(nil)
	_ domain.ConfigLoader  = (*MockConfigLoader)(nil)
	_ domain.ConfigManager = (*MockConfigManager)(nil)
)

// Package taskstore persists the task collection as a JSON blob stored
// under a single key of a domain.KeyValueStore.
package taskstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/todo/internal/domain"
)

// Ensure Store implements domain.TaskStore.
var _ domain.TaskStore = (*Store)(nil)

// Store implements domain.TaskStore on top of a key-value backend.
type Store struct {
	kv     domain.KeyValueStore
	logger domain.Logger
	key    string
}

// New creates a Store that keeps the collection under key.
// A nil logger disables logging.
func New(kv domain.KeyValueStore, key string, logger domain.Logger) *Store {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	if key == "" {
		key = domain.DefaultTasksKey
	}
	return &Store{
		kv:     kv,
		key:    key,
		logger: logger,
	}
}

// Key returns the key holding the collection.
func (s *Store) Key() string {
	return s.key
}

// Load reads the stored collection.
// A missing key, an unreadable backend or a malformed blob yields an empty
// collection.
func (s *Store) Load(ctx context.Context) []domain.Task {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Warn(0, "store", fmt.Sprintf("read %s failed, starting empty: %v", s.key, err))
		}
		return []domain.Task{}
	}

	tasks, dropped, err := Decode(data)
	if err != nil {
		s.logger.Warn(0, "store", fmt.Sprintf("%s is corrupt, starting empty: %v", s.key, err))
		return []domain.Task{}
	}
	if dropped > 0 {
		s.logger.Warn(0, "store", fmt.Sprintf("skipped %d malformed entries in %s", dropped, s.key))
	}
	s.logger.Debug(0, "store", fmt.Sprintf("loaded %d tasks", len(tasks)))
	return tasks
}

// Save replaces the stored collection.
// Errors wrap domain.ErrPersistence.
func (s *Store) Save(ctx context.Context, tasks []domain.Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.Error(0, "store", fmt.Sprintf("write %s failed: %v", s.key, err))
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

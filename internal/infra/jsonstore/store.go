// Package jsonstore provides a JSON file-based implementation of domain.KeyValueStore.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/runoshun/todo/internal/domain"
)

// lockRetryDelay is how often a blocked lock attempt is retried.
const lockRetryDelay = 20 * time.Millisecond

// Ensure Store implements domain.KeyValueStore.
var _ domain.KeyValueStore = (*Store)(nil)

// storeData is the file layout: one JSON object mapping keys to string values.
type storeData map[string]string

// Store implements domain.KeyValueStore using a single JSON file.
// Values are kept as JSON strings, so they must be valid UTF-8.
type Store struct {
	lock *flock.Flock
	path string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.withLock(ctx, func(data storeData) error {
		v, ok := data[key]
		if !ok {
			return domain.ErrKeyNotFound
		}
		value = []byte(v)
		return nil
	})
	return value, err
}

// Set stores value under key, keeping every other key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.withLockWrite(ctx, func(data storeData) error {
		data[key] = string(value)
		return nil
	})
}

// Close releases the lock file handle.
func (s *Store) Close() error {
	return s.lock.Close()
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(ctx context.Context, fn func(storeData) error) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if _, err := s.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := s.read()
	if err != nil {
		return err
	}
	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
// A file that cannot be parsed is moved aside so that writes can recover.
func (s *Store) withLockWrite(ctx context.Context, fn func(storeData) error) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := s.read()
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
			return err
		}
		if err := os.Rename(s.path, s.path+".corrupt"); err != nil {
			return fmt.Errorf("move corrupt store aside: %w", err)
		}
		data = make(storeData)
	}

	if err := fn(data); err != nil {
		return err
	}
	return s.write(data)
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return nil
}

func (s *Store) read() (storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(storeData), nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	if data == nil {
		data = make(storeData)
	}
	return data, nil
}

func (s *Store) write(data storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

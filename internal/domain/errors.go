package domain

import "errors"

// Domain errors.
var (
	ErrEmptyInput     = errors.New("task text cannot be empty")
	ErrNotFound       = errors.New("task not found")
	ErrPersistence    = errors.New("failed to persist tasks")
	ErrKeyNotFound    = errors.New("key not found")
	ErrInvalidFilter  = errors.New("invalid filter (use all, active or completed)")
	ErrInvalidTheme   = errors.New("invalid theme (use dark or light)")
	ErrInvalidTaskID  = errors.New("invalid task ID")
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrConfigExists   = errors.New("config file already exists")
	ErrIDExhausted    = errors.New("no task IDs left")
)

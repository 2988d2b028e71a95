package taskstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/runoshun/todo/internal/domain"
)

// ThemeStore keeps the UI theme as a literal string under its own key.
type ThemeStore struct {
	kv     domain.KeyValueStore
	logger domain.Logger
	key    string
}

// NewThemeStore creates a ThemeStore that keeps the theme under key.
func NewThemeStore(kv domain.KeyValueStore, key string, logger domain.Logger) *ThemeStore {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	if key == "" {
		key = domain.DefaultThemeKey
	}
	return &ThemeStore{kv: kv, key: key, logger: logger}
}

// Load returns the stored theme, or dark when missing or unreadable.
func (s *ThemeStore) Load(ctx context.Context) domain.Theme {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Warn(0, "theme", fmt.Sprintf("read %s failed: %v", s.key, err))
		}
		return domain.ThemeDark
	}
	theme, err := domain.ParseTheme(strings.TrimSpace(string(data)))
	if err != nil {
		s.logger.Warn(0, "theme", err.Error())
		return domain.ThemeDark
	}
	return theme
}

// Save stores theme.
func (s *ThemeStore) Save(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, []byte(theme)); err != nil {
		s.logger.Error(0, "theme", fmt.Sprintf("write %s failed: %v", s.key, err))
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

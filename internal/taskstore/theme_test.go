package taskstore

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeStore_LoadDefaultsToDark(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	logger := &testutil.MockLogger{}
	store := NewThemeStore(kv, "", logger)

	assert.Equal(t, domain.ThemeDark, store.Load(context.Background()))
	assert.Empty(t, logger.Entries)
}

func TestThemeStore_LoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		err   error
	}{
		{"unknown value", "solarized", nil},
		{"backend error", "", errors.New("disk gone")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := testutil.NewMockKeyValueStore()
			kv.Values[domain.DefaultThemeKey] = []byte(tt.value)
			kv.GetErr = tt.err
			logger := &testutil.MockLogger{}

			got := NewThemeStore(kv, domain.DefaultThemeKey, logger).Load(context.Background())

			assert.Equal(t, domain.ThemeDark, got)
			assert.Equal(t, []string{"WARN"}, logger.Levels())
		})
	}
}

func TestThemeStore_SaveThenLoad(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	store := NewThemeStore(kv, "ui.theme", nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.ThemeLight))

	assert.Equal(t, "light", kv.Raw("ui.theme"))
	assert.Equal(t, domain.ThemeLight, store.Load(ctx))
}

func TestThemeStore_SaveRejectsInvalid(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	store := NewThemeStore(kv, "", nil)

	err := store.Save(context.Background(), domain.Theme("blue"))

	assert.ErrorIs(t, err, domain.ErrInvalidTheme)
	assert.Zero(t, kv.SetCalls)
}

func TestThemeStore_SaveFailure(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	kv.SetErr = errors.New("read-only")

	err := NewThemeStore(kv, "", nil).Save(context.Background(), domain.ThemeDark)

	assert.ErrorIs(t, err, domain.ErrPersistence)
}

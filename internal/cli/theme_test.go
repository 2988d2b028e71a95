package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/testutil"
)

func TestThemeCommand_ShowDefault(t *testing.T) {
	container := newTestContainer(testutil.NewMockKeyValueStore())

	out, _, err := run(newThemeCommand(container), "")

	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)
}

func TestThemeCommand_Set(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	container := newTestContainer(kv)

	out, _, err := run(newThemeCommand(container), "", "light")
	require.NoError(t, err)
	assert.Equal(t, "Theme set to light\n", out)
	assert.Equal(t, "light", kv.Raw(domain.DefaultThemeKey))

	out, _, err = run(newThemeCommand(container), "")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)
}

func TestThemeCommand_Invalid(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()

	_, _, err := run(newThemeCommand(newTestContainer(kv)), "", "neon")

	assert.ErrorIs(t, err, domain.ErrInvalidTheme)
	assert.Zero(t, kv.SetCalls)
}

func TestThemeCommand_PersistenceFailure(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	kv.SetErr = errors.New("read-only")

	out, errOut, err := run(newThemeCommand(newTestContainer(kv)), "", "light")

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Empty(t, out)
	assert.Equal(t, persistenceWarning+"\n", errOut)
}

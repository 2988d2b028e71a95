package tasklist

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/taskstore"
	"github.com/runoshun/todo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newTestManager creates a Manager over an in-memory key-value store with a fixed clock.
func newTestManager(t *testing.T) (*Manager, *testutil.MockKeyValueStore, *testutil.MockClock) {
	t.Helper()
	kv := testutil.NewMockKeyValueStore()
	clock := &testutil.MockClock{NowTime: testNow}
	m := New(context.Background(), taskstore.New(kv, domain.DefaultTasksKey, nil), WithClock(clock))
	return m, kv, clock
}

// persisted decodes the stored blob.
func persisted(t *testing.T, kv *testutil.MockKeyValueStore) []domain.Task {
	t.Helper()
	raw, ok := kv.Values[domain.DefaultTasksKey]
	if !ok {
		return []domain.Task{}
	}
	tasks, dropped, err := taskstore.Decode(raw)
	require.NoError(t, err)
	require.Zero(t, dropped)
	return tasks
}

func requireConsistent(t *testing.T, m *Manager, kv *testutil.MockKeyValueStore) {
	t.Helper()
	require.Equal(t, m.Tasks(), persisted(t, kv))
}

func texts(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Text)
	}
	return out
}

func TestNew_LoadsFromStore(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	kv.Values[domain.DefaultTasksKey] = []byte(`[{"id":5,"text":"a","done":false},{"id":9,"text":"b","done":true}]`)
	clock := &testutil.MockClock{NowTime: time.UnixMilli(1)}

	m := New(context.Background(), taskstore.New(kv, domain.DefaultTasksKey, nil), WithClock(clock))

	assert.Equal(t, []domain.Task{{ID: 5, Text: "a"}, {ID: 9, Text: "b", Done: true}}, m.Tasks())
	assert.Equal(t, domain.ViewCriteria{Filter: domain.FilterAll}, m.Criteria())

	// A clock behind the largest loaded ID must not produce a reused ID.
	task, err := m.Add(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, int64(10), task.ID)
}

func TestAdd_RefusesWhenIDsExhausted(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	kv.Values[domain.DefaultTasksKey] = []byte(`[{"id":9223372036854775807,"text":"last","done":false}]`)
	clock := &testutil.MockClock{NowTime: testNow}
	m := New(context.Background(), taskstore.New(kv, domain.DefaultTasksKey, nil), WithClock(clock))
	before := kv.Values[domain.DefaultTasksKey]

	var events []domain.Event
	m.Subscribe(func(ev domain.Event) { events = append(events, ev) })

	task, err := m.Add(context.Background(), "next")

	require.ErrorIs(t, err, domain.ErrIDExhausted)
	assert.Zero(t, task.ID)
	assert.Equal(t, []domain.Task{{ID: math.MaxInt64, Text: "last"}}, m.Tasks())
	assert.Equal(t, before, kv.Values[domain.DefaultTasksKey])
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventRejected, events[0].Kind)
	for _, tk := range m.Tasks() {
		assert.Positive(t, tk.ID)
	}
}

func TestNew_CorruptStoreStartsEmpty(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	kv.Values[domain.DefaultTasksKey] = []byte(`{not json`)

	m := New(context.Background(), taskstore.New(kv, domain.DefaultTasksKey, nil))

	assert.Empty(t, m.Tasks())
	assert.Empty(t, m.VisibleTasks())
}

func TestAdd_TrimsAndAppends(t *testing.T) {
	m, kv, _ := newTestManager(t)
	existing, err := m.Add(context.Background(), "first")
	require.NoError(t, err)

	task, err := m.Add(context.Background(), " buy milk ")

	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Text)
	assert.False(t, task.Done)
	assert.NotEqual(t, existing.ID, task.ID)
	assert.Equal(t, []string{"first", "buy milk"}, texts(m.Tasks()))
	requireConsistent(t, m, kv)
}

func TestAdd_RejectsBlank(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		t.Run(raw, func(t *testing.T) {
			m, kv, _ := newTestManager(t)
			_, err := m.Add(context.Background(), "keep")
			require.NoError(t, err)
			calls := kv.SetCalls

			_, err = m.Add(context.Background(), raw)

			assert.ErrorIs(t, err, domain.ErrEmptyInput)
			assert.Equal(t, []string{"keep"}, texts(m.Tasks()))
			assert.Equal(t, calls, kv.SetCalls, "rejected add must not write")
		})
	}
}

func TestAdd_UniqueIDsUnderSameMillisecond(t *testing.T) {
	m, kv, _ := newTestManager(t)

	seen := make(map[int64]bool)
	for i := 0; i < 500; i++ {
		task, err := m.Add(context.Background(), "bulk")
		require.NoError(t, err)
		require.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
	}
	assert.Len(t, m.Tasks(), 500)
	requireConsistent(t, m, kv)
}

func TestAdd_IDsFollowClock(t *testing.T) {
	m, _, clock := newTestManager(t)

	first, err := m.Add(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, testNow.UnixMilli(), first.ID)

	clock.NowTime = testNow.Add(time.Second)
	second, err := m.Add(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Second).UnixMilli(), second.ID)

	// Clock going backwards still yields increasing IDs.
	clock.NowTime = testNow.Add(-time.Hour)
	third, err := m.Add(context.Background(), "c")
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID)
}

func TestEdit(t *testing.T) {
	m, kv, _ := newTestManager(t)
	a, _ := m.Add(context.Background(), "a")
	b, _ := m.Add(context.Background(), "b")
	_, _ = m.ToggleDone(context.Background(), b.ID)

	edited, err := m.Edit(context.Background(), b.ID, "  bee  ")

	require.NoError(t, err)
	assert.Equal(t, domain.Task{ID: b.ID, Text: "bee", Done: true}, edited)
	assert.Equal(t, []domain.Task{{ID: a.ID, Text: "a"}, {ID: b.ID, Text: "bee", Done: true}}, m.Tasks())
	requireConsistent(t, m, kv)
}

func TestEdit_BlankKeepsText(t *testing.T) {
	m, kv, _ := newTestManager(t)
	a, _ := m.Add(context.Background(), "original")
	calls := kv.SetCalls

	_, err := m.Edit(context.Background(), a.ID, "")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	_, err = m.Edit(context.Background(), a.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	got, ok := m.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "original", got.Text)
	assert.Equal(t, calls, kv.SetCalls)
	requireConsistent(t, m, kv)
}

func TestEdit_NotFound(t *testing.T) {
	m, kv, _ := newTestManager(t)
	_, _ = m.Add(context.Background(), "a")
	before := m.Tasks()

	_, err := m.Edit(context.Background(), 12345, "text")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, before, m.Tasks())
	requireConsistent(t, m, kv)
}

func TestEdit_NotFoundWinsOverBlank(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.Edit(context.Background(), 1, "  ")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleDone(t *testing.T) {
	m, kv, _ := newTestManager(t)
	a, _ := m.Add(context.Background(), "a")

	once, err := m.ToggleDone(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, once.Done)
	requireConsistent(t, m, kv)

	twice, err := m.ToggleDone(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, twice.Done)
	assert.Equal(t, a, twice)
	requireConsistent(t, m, kv)
}

func TestToggleDone_NotFound(t *testing.T) {
	m, kv, _ := newTestManager(t)
	calls := kv.SetCalls

	_, err := m.ToggleDone(context.Background(), 42)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, calls, kv.SetCalls)
}

func TestRemove_Twice(t *testing.T) {
	m, kv, _ := newTestManager(t)
	a, _ := m.Add(context.Background(), "a")
	b, _ := m.Add(context.Background(), "b")

	removed, err := m.Remove(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, removed)
	after := m.Tasks()

	_, err = m.Remove(context.Background(), a.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, after, m.Tasks())
	assert.Equal(t, []domain.Task{b}, m.Tasks())
	requireConsistent(t, m, kv)
}

func TestRemove_PreservesOrder(t *testing.T) {
	m, kv, _ := newTestManager(t)
	var ids []int64
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		task, err := m.Add(context.Background(), text)
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	_, err := m.Remove(context.Background(), ids[2])

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "four", "five"}, texts(m.Tasks()))
	requireConsistent(t, m, kv)
}

func TestVisibleTasks_FilterAndSearch(t *testing.T) {
	m, kv, _ := newTestManager(t)
	a, _ := m.Add(context.Background(), "A")
	b, _ := m.Add(context.Background(), "B")
	c, _ := m.Add(context.Background(), "C")
	b, _ = m.ToggleDone(context.Background(), b.ID)
	calls := kv.SetCalls

	m.SetFilter(domain.FilterActive)
	assert.Equal(t, []domain.Task{a, c}, m.VisibleTasks())

	m.SetFilter(domain.FilterCompleted)
	assert.Equal(t, []domain.Task{b}, m.VisibleTasks())

	m.SetFilter(domain.FilterAll)
	m.SetSearch("b")
	assert.Equal(t, []domain.Task{b}, m.VisibleTasks())

	m.SetSearch("")
	assert.Equal(t, []domain.Task{a, b, c}, m.VisibleTasks())

	assert.Equal(t, calls, kv.SetCalls, "criteria changes must not persist")
	_, stored := kv.Values[domain.DefaultThemeKey]
	assert.False(t, stored)
}

func TestVisibleTasks_Pure(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, _ = m.Add(context.Background(), "Write report")
	_, _ = m.Add(context.Background(), "read book")
	m.SetSearch("R")

	first := m.VisibleTasks()
	second := m.VisibleTasks()

	assert.Equal(t, first, second)

	// Mutating a returned slice must not leak into the model.
	first[0].Text = "tampered"
	assert.Equal(t, second, m.VisibleTasks())
}

func TestSetFilter_InvalidFallsBackToAll(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.SetFilter(domain.FilterActive)

	m.SetFilter(domain.Filter("bogus"))

	assert.Equal(t, domain.FilterAll, m.Criteria().Filter)
}

func TestSaveFailure_KeepsMutationAndReports(t *testing.T) {
	m, kv, _ := newTestManager(t)
	a, err := m.Add(context.Background(), "a")
	require.NoError(t, err)
	kv.SetErr = errors.New("disk full")

	b, err := m.Add(context.Background(), "b")

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, "b", b.Text)
	assert.NotZero(t, b.ID)
	assert.Equal(t, []string{"a", "b"}, texts(m.Tasks()))
	assert.True(t, m.Dirty())
	assert.Equal(t, []domain.Task{a}, persisted(t, kv))

	kv.SetErr = nil
	require.NoError(t, m.Flush(context.Background()))
	assert.False(t, m.Dirty())
	requireConsistent(t, m, kv)
}

func TestSaveFailure_NextMutationResyncs(t *testing.T) {
	m, kv, _ := newTestManager(t)
	a, _ := m.Add(context.Background(), "a")
	kv.SetErr = errors.New("disk full")
	_, err := m.ToggleDone(context.Background(), a.ID)
	require.ErrorIs(t, err, domain.ErrPersistence)

	kv.SetErr = nil
	_, err = m.Add(context.Background(), "b")

	require.NoError(t, err)
	assert.False(t, m.Dirty())
	requireConsistent(t, m, kv)
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	m, kv, _ := newTestManager(t)
	var events []domain.Event
	unsubscribe := m.Subscribe(func(ev domain.Event) { events = append(events, ev) })

	a, _ := m.Add(context.Background(), "a")
	_, _ = m.Add(context.Background(), " ")
	_, _ = m.ToggleDone(context.Background(), a.ID)
	_, _ = m.Edit(context.Background(), a.ID, "aa")
	kv.SetErr = errors.New("boom")
	_, _ = m.Remove(context.Background(), a.ID)
	_, _ = m.Remove(context.Background(), a.ID)
	unsubscribe()
	_, _ = m.Add(context.Background(), "after unsubscribe")

	require.Len(t, events, 6)
	assert.Equal(t, domain.EventAdded, events[0].Kind)
	assert.True(t, events[0].Saved())
	assert.Equal(t, domain.EventRejected, events[1].Kind)
	assert.ErrorIs(t, events[1].Err, domain.ErrEmptyInput)
	assert.Equal(t, "add", events[1].Op)
	assert.Equal(t, domain.EventToggled, events[2].Kind)
	assert.True(t, events[2].Task.Done)
	assert.Equal(t, domain.EventEdited, events[3].Kind)
	assert.Equal(t, "aa", events[3].Task.Text)
	assert.Equal(t, domain.EventRemoved, events[4].Kind)
	assert.ErrorIs(t, events[4].Err, domain.ErrPersistence)
	assert.False(t, events[4].Saved())
	assert.Equal(t, domain.EventRejected, events[5].Kind)
	assert.ErrorIs(t, events[5].Err, domain.ErrNotFound)
	assert.Equal(t, a.ID, events[5].Task.ID)
}

func TestSubscribe_CallbackMayReenter(t *testing.T) {
	m, kv, _ := newTestManager(t)
	var visible []domain.Task
	m.Subscribe(func(domain.Event) {
		// A renderer recomputes the view from inside the notification.
		visible = m.VisibleTasks()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Add(context.Background(), "a")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber re-entering the manager deadlocked")
	}
	assert.Len(t, visible, 1)
	requireConsistent(t, m, kv)
}

func TestCounts(t *testing.T) {
	m, _, _ := newTestManager(t)
	a, _ := m.Add(context.Background(), "a")
	_, _ = m.Add(context.Background(), "b")
	_, _ = m.ToggleDone(context.Background(), a.ID)

	assert.Equal(t, domain.Counts{Total: 2, Active: 1, Completed: 1}, m.Counts())
}

// TestRandomOperations_StayConsistent drives a long random sequence of
// operations and checks after every step that the stored blob equals the
// in-memory collection and that IDs stay unique.
func TestRandomOperations_StayConsistent(t *testing.T) {
	m, kv, clock := newTestManager(t)
	rng := rand.New(rand.NewSource(7))
	inputs := []string{"", "  ", "milk", " Bread ", "call mom", "BUG fix"}

	for step := 0; step < 400; step++ {
		if rng.Intn(3) == 0 {
			clock.NowTime = clock.NowTime.Add(time.Duration(rng.Intn(3)) * time.Millisecond)
		}
		tasks := m.Tasks()
		id := int64(rng.Intn(10))
		if len(tasks) > 0 && rng.Intn(4) > 0 {
			id = tasks[rng.Intn(len(tasks))].ID
		}

		switch rng.Intn(6) {
		case 0, 1:
			_, _ = m.Add(context.Background(), inputs[rng.Intn(len(inputs))])
		case 2:
			_, _ = m.Edit(context.Background(), id, inputs[rng.Intn(len(inputs))])
		case 3:
			_, _ = m.ToggleDone(context.Background(), id)
		case 4:
			_, _ = m.Remove(context.Background(), id)
		case 5:
			m.SetFilter(domain.AllFilters()[rng.Intn(3)])
			m.SetSearch(inputs[rng.Intn(len(inputs))])
		}

		requireConsistent(t, m, kv)
		seen := make(map[int64]bool)
		for _, task := range m.Tasks() {
			require.False(t, seen[task.ID], "step %d: duplicate id", step)
			require.NotEmpty(t, task.Text)
			seen[task.ID] = true
		}
	}
}

func TestLogger_RecordsMutationsAndRejections(t *testing.T) {
	kv := testutil.NewMockKeyValueStore()
	logger := &testutil.MockLogger{}
	m := New(context.Background(), taskstore.New(kv, domain.DefaultTasksKey, logger),
		WithClock(&testutil.MockClock{NowTime: testNow}), WithLogger(logger))

	a, err := m.Add(context.Background(), "a")
	require.NoError(t, err)
	_, _ = m.Edit(context.Background(), a.ID, " ")
	kv.SetErr = errors.New("disk full")
	_, _ = m.ToggleDone(context.Background(), a.ID)

	assert.Equal(t, []string{"INFO", "DEBUG", "ERROR", "INFO"}, logger.Levels())
	assert.Equal(t, a.ID, logger.Entries[0].TaskID)
	assert.Contains(t, logger.Entries[2].Msg, "disk full")
}

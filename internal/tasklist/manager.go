// Package tasklist implements the task state manager: the single owner of
// the task collection and the current view criteria.
package tasklist

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/runoshun/todo/internal/domain"
)

// Manager owns the task collection and view criteria.
// Every mutation is applied in memory, then the full collection is saved,
// then subscribers are notified. Operations are serialized by mu; events are
// delivered after mu is released so subscribers may call back in.
// Fields are ordered to minimize memory padding.
type Manager struct {
	store       domain.TaskStore
	clock       domain.Clock
	logger      domain.Logger
	tasks       []domain.Task
	subscribers map[int]func(domain.Event)
	criteria    domain.ViewCriteria
	lastID      int64
	nextSubID   int
	mu          sync.Mutex
	dirty       bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used to seed IDs.
func WithClock(clock domain.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger domain.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// New creates a Manager and loads the collection from store.
func New(ctx context.Context, store domain.TaskStore, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		clock:       domain.RealClock{},
		logger:      domain.NopLogger{},
		subscribers: make(map[int]func(domain.Event)),
		criteria:    domain.ViewCriteria{Filter: domain.FilterAll},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.tasks = domain.CloneTasks(store.Load(ctx))
	for _, t := range m.tasks {
		if t.ID > m.lastID {
			m.lastID = t.ID
		}
	}
	return m
}

// Add creates a task from raw text and appends it to the collection.
// Blank text is rejected with ErrEmptyInput without touching the store.
// If the save fails the task is still added and the returned error wraps
// ErrPersistence.
func (m *Manager) Add(ctx context.Context, raw string) (domain.Task, error) {
	text, err := domain.NormalizeText(raw)
	if err != nil {
		return domain.Task{}, m.reject("add", 0, err)
	}

	m.mu.Lock()
	id, err := m.newID()
	if err != nil {
		m.mu.Unlock()
		return domain.Task{}, m.reject("add", 0, err)
	}
	task := domain.Task{ID: id, Text: text}
	m.tasks = append(m.tasks, task)
	saveErr := m.saveLocked(ctx)
	m.mu.Unlock()

	m.logger.Info(task.ID, "task", fmt.Sprintf("added: %q", task.Text))
	m.publish(domain.Event{Kind: domain.EventAdded, Op: "add", Task: task, Err: saveErr})
	return task, saveErr
}

// Edit replaces the text of the task with the given ID.
// The ID, completion state and position are preserved. Blank text is
// rejected with ErrEmptyInput and leaves the existing text in place.
func (m *Manager) Edit(ctx context.Context, id int64, raw string) (domain.Task, error) {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return domain.Task{}, m.reject("edit", id, domain.ErrNotFound)
	}
	text, err := domain.NormalizeText(raw)
	if err != nil {
		m.mu.Unlock()
		return domain.Task{}, m.reject("edit", id, err)
	}
	m.tasks[idx].Text = text
	task := m.tasks[idx]
	saveErr := m.saveLocked(ctx)
	m.mu.Unlock()

	m.logger.Info(id, "task", fmt.Sprintf("edited: %q", task.Text))
	m.publish(domain.Event{Kind: domain.EventEdited, Op: "edit", Task: task, Err: saveErr})
	return task, saveErr
}

// ToggleDone flips the completion state of the task with the given ID.
func (m *Manager) ToggleDone(ctx context.Context, id int64) (domain.Task, error) {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return domain.Task{}, m.reject("toggle", id, domain.ErrNotFound)
	}
	m.tasks[idx].Done = !m.tasks[idx].Done
	task := m.tasks[idx]
	saveErr := m.saveLocked(ctx)
	m.mu.Unlock()

	m.logger.Info(id, "task", fmt.Sprintf("done=%t", task.Done))
	m.publish(domain.Event{Kind: domain.EventToggled, Op: "toggle", Task: task, Err: saveErr})
	return task, saveErr
}

// Remove deletes the task with the given ID and returns it.
// The remaining tasks keep their relative order.
func (m *Manager) Remove(ctx context.Context, id int64) (domain.Task, error) {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return domain.Task{}, m.reject("remove", id, domain.ErrNotFound)
	}
	task := m.tasks[idx]
	m.tasks = slices.Delete(m.tasks, idx, idx+1)
	saveErr := m.saveLocked(ctx)
	m.mu.Unlock()

	m.logger.Info(id, "task", "removed")
	m.publish(domain.Event{Kind: domain.EventRemoved, Op: "remove", Task: task, Err: saveErr})
	return task, saveErr
}

// SetFilter changes the completion filter. Invalid values fall back to all.
func (m *Manager) SetFilter(f domain.Filter) {
	if !f.IsValid() {
		f = domain.FilterAll
	}
	m.mu.Lock()
	m.criteria.Filter = f
	m.mu.Unlock()
}

// SetSearch changes the search term.
func (m *Manager) SetSearch(term string) {
	m.mu.Lock()
	m.criteria.Search = term
	m.mu.Unlock()
}

// Criteria returns the current view criteria.
func (m *Manager) Criteria() domain.ViewCriteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.criteria
}

// VisibleTasks returns the tasks passing the current criteria, in
// collection order. It does not mutate anything.
func (m *Manager) VisibleTasks() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.criteria.Apply(m.tasks)
}

// Tasks returns a copy of the whole collection.
func (m *Manager) Tasks() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CloneTasks(m.tasks)
}

// Get returns the task with the given ID.
func (m *Manager) Get(id int64) (domain.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexLocked(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return m.tasks[idx], true
}

// Counts summarizes the whole collection.
func (m *Manager) Counts() domain.Counts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CountTasks(m.tasks)
}

// Dirty reports whether the last save failed.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// Flush saves the full collection again, clearing Dirty on success.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(ctx)
}

// Subscribe registers fn to receive events and returns a function that
// removes it.
func (m *Manager) Subscribe(fn func(domain.Event)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// newID returns a strictly increasing ID seeded from the clock.
// Once the largest ID is math.MaxInt64 it fails with ErrIDExhausted.
// Caller must hold mu.
func (m *Manager) newID() (int64, error) {
	id := m.clock.Now().UnixMilli()
	if id <= m.lastID {
		if m.lastID == math.MaxInt64 {
			return 0, domain.ErrIDExhausted
		}
		id = m.lastID + 1
	}
	m.lastID = id
	return id, nil
}

// indexLocked returns the position of id or -1. Caller must hold mu.
func (m *Manager) indexLocked(id int64) int {
	return slices.IndexFunc(m.tasks, func(t domain.Task) bool { return t.ID == id })
}

// saveLocked writes the collection and tracks dirtiness. Caller must hold mu.
func (m *Manager) saveLocked(ctx context.Context) error {
	if err := m.store.Save(ctx, m.tasks); err != nil {
		m.dirty = true
		return err
	}
	m.dirty = false
	return nil
}

// reject logs and publishes a rejected operation and returns err.
func (m *Manager) reject(op string, id int64, err error) error {
	m.logger.Debug(id, "task", fmt.Sprintf("%s rejected: %v", op, err))
	m.publish(domain.Event{Kind: domain.EventRejected, Op: op, Task: domain.Task{ID: id}, Err: err})
	return err
}

// publish delivers ev to every subscriber. Must be called without mu held.
func (m *Manager) publish(ev domain.Event) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.subscribers))
	for id := range m.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(domain.Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subscribers[id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

package tui

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/tasklist"
	"github.com/runoshun/todo/internal/taskstore"
)

// toastDuration is how long a notification stays visible.
const toastDuration = 1500 * time.Millisecond

// eventBuffer is the capacity of the manager event channel.
const eventBuffer = 64

// toastKind selects the toast color.
type toastKind int

const (
	toastSuccess toastKind = iota
	toastRemoval
	toastWarning
	toastError
)

// toast is a short-lived notification shown above the status line.
type toast struct {
	text string
	kind toastKind
	seq  int
}

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies
	ctx         context.Context
	manager     *tasklist.Manager
	themes      *taskstore.ThemeStore
	events      chan domain.Event
	unsubscribe func()

	// Components
	keys   KeyMap
	styles Styles
	help   help.Model
	input  textinput.Model

	// State
	toast         toast
	theme         domain.Theme
	mode          Mode
	confirmAction ConfirmAction
	selectedID    int64
	confirmTaskID int64
	editTaskID    int64
	editInitial   string
	cursor        int
	offset        int
	width         int
	height        int
	toastSeq      int
}

// New creates a new TUI Model over the given task manager.
// themes may be nil, in which case the theme is dark and not persisted.
func New(ctx context.Context, manager *tasklist.Manager, themes *taskstore.ThemeStore) *Model {
	ti := textinput.New()
	ti.CharLimit = 0

	theme := domain.ThemeDark
	if themes != nil {
		theme = themes.Load(ctx)
	}

	m := &Model{
		ctx:     ctx,
		manager: manager,
		themes:  themes,
		events:  make(chan domain.Event, eventBuffer),
		keys:    DefaultKeyMap(),
		styles:  NewStyles(theme),
		help:    help.New(),
		input:   ti,
		theme:   theme,
		mode:    ModeNormal,
	}
	m.unsubscribe = manager.Subscribe(m.forward)
	m.syncCursor()
	return m
}

// forward hands a manager event to the update loop.
func (m *Model) forward(ev domain.Event) {
	select {
	case m.events <- ev:
	case <-m.ctx.Done():
	}
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Close detaches the model from the task manager.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Theme returns the active theme.
func (m *Model) Theme() domain.Theme {
	return m.theme
}

// Mode returns the current UI mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// waitForEvent returns a command that blocks until the next manager event.
func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case ev := <-events:
			return MsgTaskEvent{Event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) addTask(text string) tea.Cmd {
	return func() tea.Msg {
		_, _ = m.manager.Add(m.ctx, text)
		return nil
	}
}

func (m *Model) editTask(id int64, text string) tea.Cmd {
	return func() tea.Msg {
		_, _ = m.manager.Edit(m.ctx, id, text)
		return nil
	}
}

func (m *Model) toggleTask(id int64) tea.Cmd {
	return func() tea.Msg {
		_, _ = m.manager.ToggleDone(m.ctx, id)
		return nil
	}
}

func (m *Model) removeTask(id int64) tea.Cmd {
	return func() tea.Msg {
		_, _ = m.manager.Remove(m.ctx, id)
		return nil
	}
}

// saveTheme returns a command that persists the theme.
func (m *Model) saveTheme(theme domain.Theme) tea.Cmd {
	themes := m.themes
	if themes == nil {
		return nil
	}
	return func() tea.Msg {
		return MsgThemeSaved{Theme: theme, Err: themes.Save(m.ctx, theme)}
	}
}

// SelectedTask returns the task under the cursor.
func (m *Model) SelectedTask() (domain.Task, bool) {
	visible := m.manager.VisibleTasks()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return domain.Task{}, false
	}
	return visible[m.cursor], true
}

// syncCursor keeps the cursor on the selected task when it is still
// visible and clamps it otherwise.
func (m *Model) syncCursor() {
	visible := m.manager.VisibleTasks()
	if idx := slices.IndexFunc(visible, func(t domain.Task) bool { return t.ID == m.selectedID }); idx >= 0 {
		m.cursor = idx
	}
	m.cursor = max(0, min(m.cursor, len(visible)-1))
	if len(visible) > 0 {
		m.selectedID = visible[m.cursor].ID
	} else {
		m.selectedID = 0
	}
	m.ensureVisible()
}

// moveCursor moves the cursor by delta within the visible tasks.
func (m *Model) moveCursor(delta int) {
	visible := m.manager.VisibleTasks()
	if len(visible) == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(visible)-1))
	m.selectedID = visible[m.cursor].ID
	m.ensureVisible()
}

// listHeight returns the number of task rows that fit on screen.
// Zero means unlimited (size not known yet).
func (m *Model) listHeight() int {
	if m.height <= 0 {
		return 0
	}
	// padding(2) + header(2) + blank + input/dialog(3) + toast + status
	return max(1, m.height-10)
}

// ensureVisible scrolls so the cursor row is on screen.
func (m *Model) ensureVisible() {
	h := m.listHeight()
	if h == 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// showToast replaces the current toast and schedules its removal.
func (m *Model) showToast(text string, kind toastKind) tea.Cmd {
	m.toastSeq++
	m.toast = toast{text: text, kind: kind, seq: m.toastSeq}
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return MsgClearToast{Seq: seq}
	})
}

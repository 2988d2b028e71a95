package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/todo/internal/domain"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(10, msg.Width-12)
		m.ensureVisible()
		return m, nil

	case MsgTaskEvent:
		return m, tea.Batch(m.handleTaskEvent(msg.Event), m.waitForEvent())

	case MsgThemeSaved:
		if msg.Err != nil {
			return m, m.showToast(fmt.Sprintf("Theme %s not saved: %v", msg.Theme, msg.Err), toastError)
		}
		return m, nil

	case MsgError:
		return m, m.showToast("Error: "+msg.Err.Error(), toastError)

	case MsgClearToast:
		if msg.Seq == m.toast.seq {
			m.toast = toast{}
		}
		return m, nil
	}

	if m.mode.IsInputMode() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleTaskEvent refreshes the cursor and shows a toast for ev.
func (m *Model) handleTaskEvent(ev domain.Event) tea.Cmd {
	if ev.Kind == domain.EventAdded {
		m.selectedID = ev.Task.ID
	}
	m.syncCursor()
	text, kind := toastFor(ev)
	return m.showToast(text, kind)
}

// toastFor describes an event for the user.
func toastFor(ev domain.Event) (string, toastKind) {
	if ev.Kind == domain.EventRejected {
		switch {
		case errors.Is(ev.Err, domain.ErrEmptyInput):
			return "Task text cannot be empty", toastWarning
		case errors.Is(ev.Err, domain.ErrNotFound):
			return fmt.Sprintf("Task #%d not found", ev.Task.ID), toastWarning
		}
		return "Error: " + ev.Err.Error(), toastWarning
	}

	var text string
	kind := toastSuccess
	switch ev.Kind {
	case domain.EventAdded:
		text = "Added: " + ev.Task.Text
	case domain.EventEdited:
		text = "Updated: " + ev.Task.Text
	case domain.EventToggled:
		if ev.Task.Done {
			text = "Completed: " + ev.Task.Text
		} else {
			text = "Reopened: " + ev.Task.Text
		}
	case domain.EventRemoved:
		text = "Removed: " + ev.Task.Text
		kind = toastRemoval
	case domain.EventRejected:
		// handled above
	}

	if ev.Err != nil {
		return text + " (not saved, changes may not survive a restart)", toastError
	}
	return text, kind
}

// handleKeyMsg dispatches a key press according to the current mode.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.Close()
		return m, tea.Quit
	}

	switch m.mode {
	case ModeInputNew, ModeInputEdit:
		return m.handleInputMode(msg)
	case ModeSearch:
		return m.handleSearchMode(msg)
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeHelp:
		return m.handleHelpMode(msg)
	case ModeNormal:
	}
	return m.handleNormalMode(msg)
}

// handleNormalMode handles keys in normal mode.
func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.mode = ModeInputNew
		m.input.Reset()
		m.input.Placeholder = "What needs to be done?"
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Edit):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		m.mode = ModeInputEdit
		m.editTaskID = task.ID
		m.input.Placeholder = ""
		m.input.SetValue(task.Text)
		m.input.CursorEnd()
		// SetValue rewrites tabs and newlines.
		m.editInitial = m.input.Value()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Toggle):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, m.toggleTask(task.ID)

	case key.Matches(msg, m.keys.Delete):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		m.mode = ModeConfirm
		m.confirmAction = ConfirmDelete
		m.confirmTaskID = task.ID
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.setFilter(m.manager.Criteria().Filter.Next())
		return m, nil

	case key.Matches(msg, m.keys.FilterAll):
		m.setFilter(domain.FilterAll)
		return m, nil

	case key.Matches(msg, m.keys.FilterActive):
		m.setFilter(domain.FilterActive)
		return m, nil

	case key.Matches(msg, m.keys.FilterCompleted):
		m.setFilter(domain.FilterCompleted)
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.input.Placeholder = "Search tasks..."
		m.input.SetValue(m.manager.Criteria().Search)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Theme):
		m.theme = m.theme.Toggle()
		m.styles = NewStyles(m.theme)
		return m, m.saveTheme(m.theme)

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.manager.Criteria().Search != "" {
			m.setSearch("")
		}
		return m, nil
	}
	return m, nil
}

// handleInputMode handles keys while creating or editing a task.
func (m *Model) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.leaveInput()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		value := m.input.Value()
		mode, id, initial := m.mode, m.editTaskID, m.editInitial
		m.leaveInput()
		if mode == ModeInputEdit {
			if value == initial {
				return m, nil
			}
			return m, m.editTask(id, value)
		}
		return m, m.addTask(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSearchMode narrows the list on every keystroke.
func (m *Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.setSearch("")
		m.leaveInput()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		m.leaveInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.setSearch(m.input.Value())
	return m, cmd
}

// handleConfirmMode handles keys in the delete confirmation dialog.
func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.confirmTaskID
		action := m.confirmAction
		m.resetConfirm()
		if action == ConfirmDelete {
			return m, m.removeTask(id)
		}
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.resetConfirm()
		return m, nil
	}
	return m, nil
}

// handleHelpMode closes the help overlay.
func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) setFilter(f domain.Filter) {
	m.manager.SetFilter(f)
	m.syncCursor()
}

func (m *Model) setSearch(term string) {
	m.manager.SetSearch(term)
	m.syncCursor()
}

// leaveInput returns to normal mode and clears the input.
func (m *Model) leaveInput() {
	m.mode = ModeNormal
	m.editTaskID = 0
	m.editInitial = ""
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) resetConfirm() {
	m.mode = ModeNormal
	m.confirmAction = ConfirmNone
	m.confirmTaskID = 0
}

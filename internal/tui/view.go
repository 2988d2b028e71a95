package tui

import (
	"fmt"
	"strings"

	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/infra/export"
)

// View renders the TUI.
func (m *Model) View() string {
	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeNormal, ModeInputNew, ModeInputEdit, ModeSearch, ModeConfirm:
		content = m.viewMain()
	}
	return m.styles.App.Render(content)
}

// viewMain renders the task list with its header, input and footer.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")
	b.WriteString(m.viewTaskList())

	switch m.mode {
	case ModeInputNew:
		b.WriteString("\n")
		b.WriteString(m.styles.InputPrompt.Render("New task: ") + m.input.View())
		b.WriteString("\n")
	case ModeInputEdit:
		b.WriteString("\n")
		b.WriteString(m.styles.InputPrompt.Render(fmt.Sprintf("Edit #%d: ", m.editTaskID)) + m.input.View())
		b.WriteString("\n")
	case ModeSearch:
		b.WriteString("\n")
		b.WriteString(m.styles.InputPrompt.Render("Search: ") + m.input.View())
		b.WriteString("\n")
	case ModeConfirm:
		b.WriteString("\n")
		b.WriteString(m.viewConfirmDialog())
		b.WriteString("\n")
	case ModeNormal, ModeHelp:
	}

	if t := m.viewToast(); t != "" {
		b.WriteString("\n")
		b.WriteString(t)
	}

	b.WriteString("\n")
	b.WriteString(NewStatusLine(m.width, &m.styles).Render(m.GetStatusInfo()))
	return b.String()
}

// viewHeader renders the title and the visible/total summary.
func (m *Model) viewHeader() string {
	v := export.View{
		Tasks:    m.manager.VisibleTasks(),
		Criteria: m.manager.Criteria(),
		Total:    m.manager.Counts().Total,
	}
	return m.styles.Header.Render("Tasks") + "  " + m.styles.HeaderInfo.Render(export.Summary(v))
}

// viewTaskList renders the visible window of tasks.
func (m *Model) viewTaskList() string {
	visible := m.manager.VisibleTasks()
	if len(visible) == 0 {
		return m.styles.Empty.Render("No tasks found") + "\n"
	}

	start, end := 0, len(visible)
	if h := m.listHeight(); h > 0 {
		start = min(m.offset, len(visible))
		end = min(start+h, len(visible))
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.viewTaskRow(visible[i], i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

// viewTaskRow renders one task line.
func (m *Model) viewTaskRow(t domain.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = m.styles.Cursor.Render("> ")
	}

	box := m.styles.Checkbox.Render("[ ]")
	if t.Done {
		box = m.styles.CheckboxDone.Render("[x]")
	}

	textStyle := m.styles.TaskNormal
	switch {
	case t.Done:
		textStyle = m.styles.TaskDone
	case selected:
		textStyle = m.styles.TaskSelected
	}
	return cursor + box + " " + textStyle.Render(t.Text)
}

// viewConfirmDialog renders the delete confirmation.
func (m *Model) viewConfirmDialog() string {
	text := fmt.Sprintf("#%d", m.confirmTaskID)
	if t, ok := m.manager.Get(m.confirmTaskID); ok {
		text = fmt.Sprintf("%q", t.Text)
	}
	body := m.styles.DialogTitle.Render("Delete task "+text+"?") + "\n" +
		m.styles.DialogPrompt.Render("(y/n)")
	return m.styles.Dialog.Render(body)
}

// viewToast renders the current notification, if any.
func (m *Model) viewToast() string {
	if m.toast.text == "" {
		return ""
	}
	style := m.styles.ToastSuccess
	switch m.toast.kind {
	case toastSuccess:
	case toastRemoval:
		style = m.styles.ToastRemoval
	case toastWarning:
		style = m.styles.ToastWarning
	case toastError:
		style = m.styles.ToastError
	}
	return style.Render(m.toast.text)
}

// viewHelp renders the keybinding overlay.
func (m *Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.HelpTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(m.styles.FooterMuted.Render("esc or ? to close"))
	return b.String()
}

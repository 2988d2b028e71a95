package tui

import "github.com/runoshun/todo/internal/domain"

// Msg is the sealed interface for all TUI messages.
// All message types must implement the sealed() method.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgTaskEvent carries a task manager event to the update loop.
type MsgTaskEvent struct {
	Event domain.Event
}

func (MsgTaskEvent) sealed() {}

// MsgThemeSaved is sent after the theme was written to the store.
type MsgThemeSaved struct {
	Err   error
	Theme domain.Theme
}

func (MsgThemeSaved) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// MsgClearToast is sent to clear a toast. Seq identifies the toast it was
// scheduled for, so a newer toast is not cleared early.
type MsgClearToast struct {
	Seq int
}

func (MsgClearToast) sealed() {}

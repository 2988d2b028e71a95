package domain

// EventKind identifies what happened to the task collection.
type EventKind string

// Event kinds.
const (
	EventAdded    EventKind = "added"
	EventEdited   EventKind = "edited"
	EventToggled  EventKind = "toggled"
	EventRemoved  EventKind = "removed"
	EventRejected EventKind = "rejected"
)

// Event is published after every mutation attempt.
// For EventRejected, Err is ErrEmptyInput or ErrNotFound and Task carries
// only the requested ID (if any). For the other kinds Task is the task as
// it is after the mutation (or as it was, for EventRemoved) and Err is
// non-nil only when the save failed.
type Event struct {
	Err  error
	Kind EventKind
	Op   string // Operation name: add, edit, toggle, remove
	Task Task
}

// Saved returns true if the mutation reached the store.
func (e Event) Saved() bool {
	return e.Kind != EventRejected && e.Err == nil
}

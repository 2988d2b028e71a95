// Package domain contains core business entities and interfaces.
package domain

import "strings"

// Task is a single to-do item.
// The JSON shape is the persisted layout: {"id": number, "text": string, "done": bool}.
type Task struct {
	Text string `json:"text"` // Trimmed, never blank
	ID   int64  `json:"id"`   // Assigned once at creation
	Done bool   `json:"done"` // Completion status
}

// Active returns true if the task is not completed.
func (t Task) Active() bool {
	return !t.Done
}

// NormalizeText trims raw input and reports ErrEmptyInput when nothing remains.
func NormalizeText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyInput
	}
	return text, nil
}

// Counts summarizes a task collection.
type Counts struct {
	Total     int
	Active    int
	Completed int
}

// CountTasks returns totals for the given tasks.
func CountTasks(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}

// CloneTasks returns a copy of tasks that never aliases the input.
// A nil or empty input yields an empty, non-nil slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

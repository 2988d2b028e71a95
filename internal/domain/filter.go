package domain

import (
	"fmt"
	"strings"
)

// Filter narrows visible tasks by completion status.
type Filter string

// Filter values.
const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// AllFilters returns every filter in display order.
func AllFilters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// ParseFilter parses a filter name. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FilterAll):
		return FilterAll, nil
	case string(FilterActive):
		return FilterActive, nil
	case string(FilterCompleted):
		return FilterCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// IsValid returns true if f is one of the known filters.
func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// Next cycles all -> active -> completed -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Matches reports whether the task passes the completion filter.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return t.Active()
	case FilterCompleted:
		return t.Done
	default:
		return true
	}
}

// ViewCriteria is the transient filter + search state.
type ViewCriteria struct {
	Filter Filter
	Search string
}

// Apply projects tasks through the criteria: filter first, then a
// case-insensitive substring match of the trimmed search term.
// Relative order is preserved and the input is never modified.
func (c ViewCriteria) Apply(tasks []Task) []Task {
	term := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !c.Filter.Matches(t) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(t.Text), term) {
			continue
		}
		out = append(out, t)
	}
	return out
}

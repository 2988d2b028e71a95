package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusLineInfo contains information for rendering the status line.
type StatusLineInfo struct {
	Right    string // Filter and theme indicator
	KeyHints []KeyHint
}

// KeyHint represents a key and its description.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusLine renders a unified status line at the bottom of the screen.
type StatusLine struct {
	styles *Styles
	width  int
}

// NewStatusLine creates a new StatusLine with the given width and styles.
func NewStatusLine(width int, styles *Styles) *StatusLine {
	return &StatusLine{
		width:  width,
		styles: styles,
	}
}

// SetWidth updates the status line width.
func (s *StatusLine) SetWidth(width int) {
	s.width = width
}

// Render renders the status line with the given info.
func (s *StatusLine) Render(info StatusLineInfo) string {
	hints := make([]string, 0, len(info.KeyHints))
	for _, h := range info.KeyHints {
		hints = append(hints, s.styles.FooterKey.Render(h.Key)+" "+h.Desc)
	}
	content := strings.Join(hints, "  ")
	right := s.styles.FooterMuted.Render(info.Right)

	if s.width <= 0 {
		return content + "  " + right
	}

	contentWidth := s.width - 2 // Account for padding
	rightLen := lipgloss.Width(right)
	contentLen := lipgloss.Width(content)

	maxContentWidth := contentWidth - rightLen - 2
	if contentLen > maxContentWidth {
		if maxContentWidth <= 3 {
			content = "..."
		} else {
			content = lipgloss.NewStyle().MaxWidth(maxContentWidth-3).Render(content) + "..."
		}
		contentLen = lipgloss.Width(content)
	}

	spacing := contentWidth - contentLen - rightLen
	if spacing < 1 {
		spacing = 1
	}

	return s.styles.Footer.Width(s.width).Render(content + strings.Repeat(" ", spacing) + right)
}

// GetStatusInfo returns status line info for the TUI model.
func (m *Model) GetStatusInfo() StatusLineInfo {
	info := StatusLineInfo{
		Right: "filter:" + string(m.manager.Criteria().Filter) + "  theme:" + string(m.theme),
	}

	switch m.mode {
	case ModeNormal:
		info.KeyHints = []KeyHint{
			{Key: "j/k", Desc: "nav"},
			{Key: "n", Desc: "new"},
			{Key: "space", Desc: "toggle"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "delete"},
			{Key: "/", Desc: "search"},
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		}
	case ModeInputNew, ModeInputEdit:
		info.KeyHints = []KeyHint{
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}
	case ModeSearch:
		info.KeyHints = []KeyHint{
			{Key: "enter", Desc: "keep"},
			{Key: "esc", Desc: "clear"},
		}
	case ModeHelp:
		info.KeyHints = []KeyHint{
			{Key: "esc", Desc: "close"},
		}
	case ModeConfirm:
		// Dialog shows its own prompt
		info.KeyHints = nil
	}

	return info
}

package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/todo/internal/domain"
)

// Palette defines the colors for one theme.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color

	Text         lipgloss.Color
	TextSelected lipgloss.Color
	FooterBg     lipgloss.Color
}

var darkPalette = Palette{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Success:   lipgloss.Color("#00B894"), // Green
	Warning:   lipgloss.Color("#FDCB6E"), // Yellow

	Text:         lipgloss.Color("#DFE6E9"),
	TextSelected: lipgloss.Color("#FFEAA7"),
	FooterBg:     lipgloss.Color("#2D3436"),
}

var lightPalette = Palette{
	Primary:   lipgloss.Color("#5F3DC4"),
	Secondary: lipgloss.Color("#7048E8"),
	Muted:     lipgloss.Color("#868E96"),
	Error:     lipgloss.Color("#C92A2A"),
	Success:   lipgloss.Color("#2B8A3E"),
	Warning:   lipgloss.Color("#E67700"),

	Text:         lipgloss.Color("#212529"),
	TextSelected: lipgloss.Color("#5F3DC4"),
	FooterBg:     lipgloss.Color("#E9ECEF"),
}

// PaletteFor returns the palette for a theme. Unknown themes get dark.
func PaletteFor(theme domain.Theme) Palette {
	if theme == domain.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	Colors Palette

	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderInfo lipgloss.Style

	// Task list
	Cursor       lipgloss.Style
	TaskNormal   lipgloss.Style
	TaskSelected lipgloss.Style
	TaskDone     lipgloss.Style
	Checkbox     lipgloss.Style
	CheckboxDone lipgloss.Style
	Empty        lipgloss.Style

	// Footer
	Footer      lipgloss.Style
	FooterKey   lipgloss.Style
	FooterMuted lipgloss.Style

	// Dialog
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogPrompt lipgloss.Style

	// Input
	InputPrompt lipgloss.Style

	// Toasts
	ToastSuccess lipgloss.Style
	ToastRemoval lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style

	// Help
	HelpTitle lipgloss.Style
}

// NewStyles returns the styles for the given theme.
func NewStyles(theme domain.Theme) Styles {
	c := PaletteFor(theme)
	return Styles{
		Colors: c,

		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(c.Primary),

		HeaderInfo: lipgloss.NewStyle().
			Foreground(c.Muted),

		Cursor: lipgloss.NewStyle().
			Foreground(c.Primary).
			Bold(true),

		TaskNormal: lipgloss.NewStyle().
			Foreground(c.Text),

		TaskSelected: lipgloss.NewStyle().
			Foreground(c.TextSelected).
			Bold(true),

		TaskDone: lipgloss.NewStyle().
			Foreground(c.Muted).
			Strikethrough(true),

		Checkbox: lipgloss.NewStyle().
			Foreground(c.Secondary),

		CheckboxDone: lipgloss.NewStyle().
			Foreground(c.Success),

		Empty: lipgloss.NewStyle().
			Foreground(c.Muted).
			Italic(true),

		Footer: lipgloss.NewStyle().
			Foreground(c.Text).
			Background(c.FooterBg).
			Padding(0, 1),

		FooterKey: lipgloss.NewStyle().
			Foreground(c.Secondary).
			Bold(true),

		FooterMuted: lipgloss.NewStyle().
			Foreground(c.Muted),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Error).
			Padding(0, 2),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(c.Error),

		DialogPrompt: lipgloss.NewStyle().
			Foreground(c.Muted),

		InputPrompt: lipgloss.NewStyle().
			Foreground(c.Primary).
			Bold(true),

		ToastSuccess: lipgloss.NewStyle().
			Foreground(c.Success),

		ToastRemoval: lipgloss.NewStyle().
			Foreground(c.Error),

		ToastWarning: lipgloss.NewStyle().
			Foreground(c.Warning),

		ToastError: lipgloss.NewStyle().
			Foreground(c.Error).
			Bold(true),

		HelpTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(c.Primary).
			MarginBottom(1),
	}
}

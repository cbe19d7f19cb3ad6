package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used for terminal output
type Theme struct {
	Name string

	Border  string
	Header  string
	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string
}

// Styles holds the lipgloss styles derived from a Theme
type Styles struct {
	Border      lipgloss.Style
	Header      lipgloss.Style
	Title       lipgloss.Style
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	Label       lipgloss.Style
	Panel       lipgloss.Style
}

// DefaultTheme is the palette used unless NO_COLOR or a pipe disables colors
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Border:  "#5f6b7a",
		Header:  "#7aa2f7",
		Text:    "#c0caf5",
		Muted:   "#737aa2",
		Accent:  "#7dcfff",
		Success: "#9ece6a",
		Warning: "#e0af68",
		Danger:  "#f7768e",
	}
}

// Styles returns lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Border: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Border)),

		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Header)).
			Bold(true).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Bold(true),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
	}
}

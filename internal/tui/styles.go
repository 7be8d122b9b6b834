package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the UI.
type Styles struct {
	Frame    lipgloss.Style
	Title    lipgloss.Style
	Welcome  lipgloss.Style
	Pane     lipgloss.Style
	Focused  lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Hint     lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Welcome:  lipgloss.NewStyle().Bold(true),
		Pane:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1, 1),
		Focused:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("10")).Padding(1, 1),
		Header:   lipgloss.NewStyle().Bold(true),
		Selected: lipgloss.NewStyle().Reverse(true),
		Hint:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8")),
		Positive: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Negative: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

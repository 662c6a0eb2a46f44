package adminui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the console views.
type Styles struct {
	Title    lipgloss.Style
	Help     lipgloss.Style
	Selected lipgloss.Style
	Main     lipgloss.Style
	Child    lipgloss.Style
	Slug     lipgloss.Style
	Badge    lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Dialog   lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
}

// DefaultStyles returns the console's color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")).MarginBottom(1),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
		Main:     lipgloss.NewStyle().Bold(true),
		Child:    lipgloss.NewStyle().PaddingLeft(4),
		Slug:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Badge:    lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8BC34A")).
			Padding(1, 2),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Focused: lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
	}
}

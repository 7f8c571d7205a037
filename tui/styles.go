package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the search view.
type Styles struct {
	Title    lipgloss.Style
	Input    lipgloss.Style
	HeroID   lipgloss.Style
	HeroName lipgloss.Style
	Empty    lipgloss.Style
	Status   lipgloss.Style
	Busy     lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		HeroID:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(4).Align(lipgloss.Right),
		HeroName: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Empty:    lipgloss.NewStyle().Faint(true).Italic(true),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		Busy:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")).MarginTop(1), // yellow
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).MarginTop(1), // red
		Help:     lipgloss.NewStyle().Faint(true),
	}
}

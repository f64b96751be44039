package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle styles the prompt header line.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	descStyle     = lipgloss.NewStyle().Faint(true)
)

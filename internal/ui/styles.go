package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorPrimary = lipgloss.Color("#00BFFF") // Deep sky blue
	colorDanger  = lipgloss.Color("#FF6B6B") // Red for failures
	colorSuccess = lipgloss.Color("#6BCF7F") // Green
	colorMuted   = lipgloss.Color("#6C757D") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	countStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	failDetailStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

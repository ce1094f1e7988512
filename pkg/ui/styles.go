package ui

import "github.com/charmbracelet/lipgloss"

var (
	skyBlue   = lipgloss.Color("#5FAFFF")
	starGold  = lipgloss.Color("#FFD75F")
	nebula    = lipgloss.Color("#AF87FF")
	okGreen   = lipgloss.Color("#5FD787")
	alertRed  = lipgloss.Color("#FF5F5F")
	softAmber = lipgloss.Color("#FFAF5F")
	dimGray   = lipgloss.Color("#8A8A8A")

	labelStyle     = lipgloss.NewStyle().Foreground(skyBlue).Bold(true)
	valueStyle     = lipgloss.NewStyle().Foreground(starGold)
	successStyle   = lipgloss.NewStyle().Foreground(okGreen).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(alertRed).Bold(true)
	warningStyle   = lipgloss.NewStyle().Foreground(softAmber).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(nebula).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(dimGray)
	logoStyle      = lipgloss.NewStyle().Foreground(skyBlue).Bold(true)

	// summary box around a finished stage
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(nebula).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(nebula).
			Bold(true)
)

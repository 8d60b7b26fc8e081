package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")
	targetFg  = lipgloss.Color("#EF4444")
	lineFg    = lipgloss.Color("#F87171")
	nightFg   = lipgloss.Color("#3B4A6B")
	errorFg   = lipgloss.Color("#F59E0B")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	errorStyle = lipgloss.NewStyle().Foreground(errorFg)

	targetStyle = lipgloss.NewStyle().Foreground(targetFg).Bold(true)
	lineStyle   = lipgloss.NewStyle().Foreground(lineFg)
	nightStyle  = lipgloss.NewStyle().Foreground(nightFg)
)

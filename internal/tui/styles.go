package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#4F6AF0")
	muted  = lipgloss.Color("#888888")
	danger = lipgloss.Color("#D93025")

	titleStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	countStyle = lipgloss.NewStyle().Foreground(muted)
	metaStyle  = lipgloss.NewStyle().Foreground(muted)
	errorStyle = lipgloss.NewStyle().Foreground(danger)

	selectedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(accent).
			PaddingLeft(1)

	rowStyle = lipgloss.NewStyle().PaddingLeft(2)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)
)

package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#58a6ff")).
			Bold(true)

	headerCountStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#484f58"))

	channelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c9d1d9"))

	hiddenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#484f58")).
			Strikethrough(true)

	favoriteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d29922"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1f3a5f")).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)

	playingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3fb950")).
			Bold(true)

	sourceBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8b949e"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f85149"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#484f58"))
)

package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AFBEE1")).
			Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})

	correctStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	incorrectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED567A")).
			Bold(true)

	retryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#43BF6D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EBBD34"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EE6FF8")).
			Bold(true)

	missedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED567A"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"}).
			Background(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#353533"})

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7571F9")).
			Bold(true)
)

package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#7D56F4")
	muted   = lipgloss.Color("#6C7086")
	danger  = lipgloss.Color("#F38BA8")
	success = lipgloss.Color("#A6E3A1")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.
				BorderForeground(accent)

	paneTitleStyle = lipgloss.NewStyle().
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(danger)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent)

	disabledButtonStyle = buttonStyle.
				Background(muted)

	successButtonStyle = buttonStyle.
				Background(success).
				Foreground(lipgloss.Color("#1E1E2E"))

	errorButtonStyle = buttonStyle.
				Background(danger).
				Foreground(lipgloss.Color("#1E1E2E"))

	statusStyle = lipgloss.NewStyle().
			Foreground(muted)

	helpStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)
)

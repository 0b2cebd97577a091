package tui

import "github.com/charmbracelet/lipgloss"

// Board palette. Pink (205) marks the active column, selection, and column
// headers; dim gray (241) is chrome. Badge colors follow the pending marker
// lifecycle: yellow in flight, green confirmed, red failed.
var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	pendingBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("228"))

	successBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	errorBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	abortModeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("205")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1)

	offlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)
)

// Space picker styles, shared with the bubbles list component.
var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205")).
				MarginBottom(1)

	pickerItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	pickerPaginationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	pickerHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

// helpOverlayStyle frames the expanded key binding list over the board.
var helpOverlayStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("205")).
	Padding(1, 2).
	MarginTop(2)

package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorNavy   = lipgloss.Color("17")
	ColorBlue   = lipgloss.Color("33")
	ColorGreen  = lipgloss.Color("34")
	ColorYellow = lipgloss.Color("220")
	ColorOrange = lipgloss.Color("208")
	ColorRed    = lipgloss.Color("196")
	ColorGray   = lipgloss.Color("245")
	ColorWhite  = lipgloss.Color("255")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)

	activeSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBlue)

	deckTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue)

	deckWarnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorOrange)

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(ColorWhite)

	highlightRowStyle = lipgloss.NewStyle().
				Background(ColorGreen).
				Foreground(lipgloss.Color("16")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(ColorGray)

	statusStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(ColorGray)

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorBlue)

	toastInfoStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("16")).
			Background(ColorGreen)

	toastErrorStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(ColorWhite).
			Background(ColorRed)

	badgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(ColorYellow)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(1, 2)
)

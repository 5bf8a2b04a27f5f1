package tui

import "github.com/charmbracelet/lipgloss"

var (
	purple = lipgloss.Color("99")
	peach  = lipgloss.Color("216")
	grey   = lipgloss.Color("245")
	red    = lipgloss.Color("203")

	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(purple)
	affirmationStyle = lipgloss.NewStyle().Italic(true).Foreground(peach)
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(purple).Padding(0, 2)
	tabStyle         = lipgloss.NewStyle().Foreground(grey).Padding(0, 2)
	hintStyle        = lipgloss.NewStyle().Foreground(grey)
	errorStyle       = lipgloss.NewStyle().Foreground(red)
	userStyle        = lipgloss.NewStyle().Bold(true).Foreground(purple)
	assistantStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	cardStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(purple).Padding(0, 1)
	insightStyle     = lipgloss.NewStyle().Background(lipgloss.Color("223")).Foreground(lipgloss.Color("236")).Padding(0, 1)
	selectedStyle    = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(purple)
	barStyle         = lipgloss.NewStyle().Foreground(purple)
	emptyBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

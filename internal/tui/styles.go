package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Green means on target, amber means short, violet marks days
// that carry no target.
var (
	colorPrimary   = lipgloss.Color("#0EA5E9")
	colorHighlight = lipgloss.Color("#38BDF8")
	colorSuccess   = lipgloss.Color("#22C55E")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorTimeOff   = lipgloss.Color("#A78BFA")
	colorFg        = lipgloss.Color("#E5E7EB")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSubtle    = lipgloss.Color("#374151")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return fg(c).Bold(true)
}

var (
	titleStyle     = bold(colorFg)
	subtitleStyle  = fg(colorMuted)
	mutedStyle     = fg(colorMuted)
	highlightStyle = fg(colorHighlight)
	successStyle   = fg(colorSuccess)
	warningStyle   = fg(colorWarning)
	errorStyle     = fg(colorError)
	timeOffStyle   = fg(colorTimeOff)

	normalItemStyle   = fg(colorFg)
	selectedItemStyle = bold(colorPrimary)

	activeTabStyle = bold(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = fg(colorMuted).Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)
	activePanelStyle = panelStyle.BorderForeground(colorPrimary)

	// The big clock on the dashboard, one per tracking state.
	timerStyle        = bold(colorPrimary).Align(lipgloss.Center)
	timerRunningStyle = timerStyle.Foreground(colorSuccess)
	timerPausedStyle  = timerStyle.Foreground(colorWarning)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = fg(colorMuted).Padding(0, 1)
)

// balanceStyle colours a balance green when on or above target.
func balanceStyle(minutes int) lipgloss.Style {
	if minutes < 0 {
		return errorStyle
	}
	return successStyle
}

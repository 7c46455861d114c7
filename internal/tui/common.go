package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/worktrack/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewEntries
	viewReports
	viewTimeOff
	viewSettings
)

var viewNames = []string{"Dashboard", "Entries", "Reports", "Time Off", "Settings"}

// --- Messages ---

type timerStartedMsg struct {
	entry *store.Entry
}

type timerStoppedMsg struct {
	entry *store.Entry
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type settingsSavedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func errorCmd(err error) tea.Cmd {
	return statusCmd(fmt.Sprintf("Error: %v", err), true)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatHours(minutes int) string {
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}

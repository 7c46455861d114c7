package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/worktrack/internal/logger"
	"github.com/sadopc/worktrack/internal/tui"
)

// runTUI runs the interactive dashboard until the user quits.
func runTUI(a *app) error {
	p := tea.NewProgram(tui.NewApp(a.svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("tui exited", "err", err)
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

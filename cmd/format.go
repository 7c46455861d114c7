package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
)

var (
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	boldStyle     = lipgloss.NewStyle().Bold(true)
)

// balance renders a signed balance, green when ahead and red when behind.
func balance(minutes int) string {
	s := timecalc.FormatBalance(minutes)
	switch {
	case minutes > 0:
		return positiveStyle.Render(s)
	case minutes < 0:
		return negativeStyle.Render(s)
	}
	return s
}

func clock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// describe is the one-line form of an entry used by most commands.
func describe(e *store.Entry, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s  %s", e.ID, e.Start.In(loc).Format("2006-01-02"), clock(e.Start, loc))
	if e.End != nil {
		fmt.Fprintf(&b, "-%s  %s", clock(*e.End, loc), timecalc.FormatMinutes(e.WorkedMinutes()))
	} else {
		b.WriteString("-      running")
	}
	fmt.Fprintf(&b, "  %s", e.Activity)
	if e.Tags != "" {
		b.WriteString(dimStyle.Render("  [" + e.Tags + "]"))
	}
	return b.String()
}

// parseMonth accepts YYYY-MM.
func parseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// parseWeekday accepts full or three-letter English names.
func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// parseDuration accepts plain minutes or a Go duration such as 7h30m.
func parseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use minutes or e.g. 7h30m", s)
	}
	return int(d / time.Minute), nil
}

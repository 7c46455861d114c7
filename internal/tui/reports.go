package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktrack/internal/report"
	"github.com/sadopc/worktrack/internal/service"
	"github.com/sadopc/worktrack/internal/timecalc"
)

type reportMode int

const (
	reportMonthly reportMode = iota
	reportWeekly
)

type reportsModel struct {
	svc    *service.Service
	width  int
	height int

	mode   reportMode
	offset int // months or weeks back from the current one (0 = current)
	report *report.Report

	chart barchart.Model
}

func newReportsModel(svc *service.Service) reportsModel {
	return reportsModel{
		svc:   svc,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	if r.report != nil {
		r.buildChart()
	}
}

type reportsDataMsg struct {
	mode   reportMode
	offset int
	report *report.Report
}

// month is the year and month shown in monthly mode.
func (r reportsModel) month() (int, time.Month) {
	today := r.svc.Today()
	t := time.Date(today.Year, today.Month-time.Month(r.offset), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// weekRange is the week shown in weekly mode, honoring week_start.
func (r reportsModel) weekRange() (timecalc.Date, timecalc.Date) {
	day := r.svc.Today().AddDays(-7 * r.offset)
	return timecalc.WeekBounds(day, r.svc.WeekStart())
}

func (r reportsModel) refresh() tea.Cmd {
	mode, offset := r.mode, r.offset
	return func() tea.Msg {
		var rep *report.Report
		var err error
		if mode == reportWeekly {
			from, to := r.weekRange()
			res := r.svc.RangeReport(from, to)
			rep, err = res.Data, res.Err()
		} else {
			year, month := r.month()
			res := r.svc.MonthlyReport(year, month)
			err = res.Err()
			if err == nil {
				rep = &res.Data.Report
			}
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return reportsDataMsg{mode: mode, offset: offset, report: rep}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.mode != r.mode || msg.offset != r.offset {
			return r, nil
		}
		r.report = msg.report
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Enter):
			if r.mode == reportMonthly {
				r.mode = reportWeekly
			} else {
				r.mode = reportMonthly
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

// buildChart draws one bar per day: worked hours, green when the target
// was met and amber otherwise. Exempt days are drawn in the time-off colour.
func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 36 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)
	if r.report == nil {
		return
	}

	label := "Mon 02"
	if len(r.report.Daily) > 7 {
		label = "02"
	}

	var bars []barchart.BarData
	for _, d := range r.report.Daily {
		style := lipgloss.NewStyle().Foreground(colorWarning)
		switch {
		case d.DayOff || d.Vacation:
			style = lipgloss.NewStyle().Foreground(colorTimeOff)
		case d.BalanceMinutes >= 0:
			style = lipgloss.NewStyle().Foreground(colorSuccess)
		}
		bars = append(bars, barchart.BarData{
			Label: d.Date.Start(time.UTC).Format(label),
			Values: []barchart.BarValue{{
				Name:  "worked",
				Value: float64(d.WorkedMinutes) / 60,
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) title() string {
	if r.mode == reportWeekly {
		from, to := r.weekRange()
		return fmt.Sprintf("%s to %s", from.Start(time.UTC).Format("Jan 02"), to.Start(time.UTC).Format("Jan 02, 2006"))
	}
	year, month := r.month()
	return fmt.Sprintf("%s %d", month, year)
}

func (r reportsModel) view() string {
	w := r.width - 4

	monthTab := inactiveTabStyle.Render("Month")
	weekTab := inactiveTabStyle.Render("Week")
	if r.mode == reportMonthly {
		monthTab = activeTabStyle.Render("Month")
	} else {
		weekTab = activeTabStyle.Render("Week")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, monthTab, weekTab)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", mutedStyle.Render(r.title()),
	)

	nav := mutedStyle.Render("  ←/→: navigate  enter: switch mode  e: export month")

	if r.report == nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("  Loading..."), "", nav),
		)
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderTotals(), "", r.renderTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderTotals() string {
	rep := r.report
	parts := []string{
		fmt.Sprintf("  Worked %s", highlightStyle.Render(timecalc.FormatMinutes(rep.TotalWorkedMinutes))),
		fmt.Sprintf("Target %s", timecalc.FormatMinutes(rep.TotalTargetMinutes)),
		fmt.Sprintf("Balance %s", balanceStyle(rep.BalanceMinutes).Render(timecalc.FormatBalance(rep.BalanceMinutes))),
	}
	if n := len(rep.DayOffs); n > 0 {
		parts = append(parts, timeOffStyle.Render(fmt.Sprintf("%d day(s) off", n)))
	}
	if n := len(rep.Vacations); n > 0 {
		parts = append(parts, timeOffStyle.Render(fmt.Sprintf("%d vacation(s)", n)))
	}
	return strings.Join(parts, "   ")
}

// renderTable lists the days that have work, a target or time off.
func (r reportsModel) renderTable(w int) string {
	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-14s %9s %9s %10s  %s", "Date", "Worked", "Target", "Balance", "Entries"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 58))))

	for _, d := range r.report.Daily {
		if d.WorkedMinutes == 0 && d.TargetMinutes == 0 && !d.DayOff && !d.Vacation {
			continue
		}
		note := fmt.Sprintf("%d", len(d.Entries))
		switch {
		case d.Vacation:
			note = timeOffStyle.Render("vacation")
		case d.DayOff:
			note = timeOffStyle.Render("day off")
		}
		rows = append(rows, fmt.Sprintf("  %-14s %9s %9s %10s  %s",
			d.Date.Start(time.UTC).Format("Mon Jan 02"),
			timecalc.FormatMinutes(d.WorkedMinutes),
			timecalc.FormatMinutes(d.TargetMinutes),
			balanceStyle(d.BalanceMinutes).Render(fmt.Sprintf("%10s", timecalc.FormatBalance(d.BalanceMinutes))),
			note,
		))
	}
	if len(rows) == 2 {
		return mutedStyle.Render("  No data for this period")
	}
	return strings.Join(rows, "\n")
}

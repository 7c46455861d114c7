package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktrack/internal/report"
	"github.com/sadopc/worktrack/internal/service"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
	"github.com/sadopc/worktrack/internal/tracker"
)

type dashboardModel struct {
	svc    *service.Service
	timer  timerModel
	width  int
	height int

	today         *report.Report
	week          *report.Report
	recentEntries []store.Entry

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formActivity *string
	formTags     *string
	formNote     *string
	formBackdate *string
}

func newDashboardModel(svc *service.Service) dashboardModel {
	activity, tags, note, backdate := "", "", "", ""
	return dashboardModel{
		svc:          svc,
		timer:        newTimerModel(svc),
		formActivity: &activity,
		formTags:     &tags,
		formNote:     &note,
		formBackdate: &backdate,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	today         *report.Report
	week          *report.Report
	recentEntries []store.Entry
}

func (d dashboardModel) loadData() tea.Cmd {
	svc := d.svc
	return func() tea.Msg {
		var msg dashboardDataMsg
		today := svc.Today()
		if res := svc.RangeReport(today, today); res.Success {
			msg.today = res.Data
		}
		if res := svc.CurrentWeekReport(); res.Success {
			msg.week = res.Data
		}
		if res := svc.RecentEntries(5); res.Success {
			msg.recentEntries = res.Data
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.week = msg.week
		d.recentEntries = msg.recentEntries
		return d, nil

	case settingsSavedMsg:
		d.timer.loadIdleConfig()
		return d, d.loadData()

	case tickMsg:
		stopped, err := d.timer.tick()
		if err != nil {
			return d, errorCmd(err)
		}
		if stopped != nil {
			return d, tea.Batch(
				d.loadData(),
				statusCmd(fmt.Sprintf("Idle: stopped %q", stopped.Activity), false),
			)
		}
		return d, nil

	case tea.KeyMsg:
		if err := d.timer.recordActivity(); err != nil {
			return d, errorCmd(err)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, statusCmd("Stop the current entry first", true)
			}
			return d.showStartForm()

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()

		case key.Matches(msg, keys.Pause):
			if err := d.timer.toggle(); err != nil {
				return d, errorCmd(err)
			}
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) showStartForm() (dashboardModel, tea.Cmd) {
	*d.formActivity = ""
	*d.formTags = ""
	*d.formNote = ""
	*d.formBackdate = "0"

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Activity").Value(d.formActivity).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("activity is required")
					}
					return nil
				}),
			huh.NewInput().Title("Tags (comma-separated)").Value(d.formTags),
			huh.NewInput().Title("Note").Value(d.formNote),
			huh.NewInput().Title("Started minutes ago").Value(d.formBackdate).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
						return fmt.Errorf("enter a whole number of minutes")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		d.form = nil
		backdate, _ := strconv.Atoi(strings.TrimSpace(*d.formBackdate))
		return d.startTimer(tracker.StartRequest{
			Activity:        *d.formActivity,
			Tags:            *d.formTags,
			Note:            *d.formNote,
			BackdateMinutes: backdate,
		})
	}

	return d, cmd
}

func (d dashboardModel) startTimer(req tracker.StartRequest) (dashboardModel, tea.Cmd) {
	entry, err := d.timer.start(req)
	if err != nil {
		return d, errorCmd(err)
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStartedMsg{entry: entry} },
	)
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	entry, err := d.timer.stop()
	if err != nil {
		return d, errorCmd(err)
	}
	if entry == nil {
		return d, nil
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{entry: entry} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	if d.formActive && d.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Start Tracking"), "", d.form.View())
		return activePanelStyle.Width(contentWidth).Render(content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTimerPanel(contentWidth),
		d.renderBalancePanel(contentWidth),
		d.renderRecentPanel(contentWidth),
	)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.timer.running() {
		timeStr := formatDuration(d.timer.currentElapsed())

		var timeDisplay, indicator string
		if d.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if d.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  RUNNING")
		}

		e := d.timer.entry
		activityLine := highlightStyle.Render(e.Activity)
		if e.Tags != "" {
			activityLine += mutedStyle.Render(" [" + e.Tags + "]")
		}
		since := mutedStyle.Render("since " + e.Start.In(d.svc.Location()).Format("15:04"))

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			activityLine,
			since,
		)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timerStyle.Width(w-6).Render("00:00:00"),
		mutedStyle.Render("■  IDLE"),
		mutedStyle.Render("Press s to start tracking"),
	)
	return panelStyle.Width(w).Render(content)
}

// renderBalancePanel compares today and this week with their targets. The
// running entry is added on top of the stored totals.
func (d dashboardModel) renderBalancePanel(w int) string {
	running := int(d.timer.currentElapsed().Minutes())

	rows := []string{titleStyle.Render("Balance")}
	line := func(label string, r *report.Report) string {
		if r == nil {
			return fmt.Sprintf("  %-10s %s", label, mutedStyle.Render("unavailable"))
		}
		worked := r.TotalWorkedMinutes + running
		bal := worked - r.TotalTargetMinutes
		return fmt.Sprintf("  %-10s %9s of %-9s %s", label,
			timecalc.FormatMinutes(worked), timecalc.FormatMinutes(r.TotalTargetMinutes),
			balanceStyle(bal).Render(timecalc.FormatBalance(bal)))
	}
	rows = append(rows, line("Today", d.today), line("This week", d.week))

	if d.today != nil && len(d.today.Daily) == 1 {
		day := d.today.Daily[0]
		switch {
		case day.Vacation:
			rows = append(rows, timeOffStyle.Render("  On vacation today"))
		case day.DayOff:
			rows = append(rows, timeOffStyle.Render("  Day off today"))
		}
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Entries")
	if len(d.recentEntries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	loc := d.svc.Location()
	rows := []string{title}
	for _, e := range d.recentEntries {
		status := "✓"
		dur := timecalc.FormatMinutes(e.WorkedMinutes())
		if e.Running() {
			status = "●"
			dur = "running"
		}
		row := fmt.Sprintf("  %s %s  %-24s %s", status, e.Start.In(loc).Format("Jan 02 15:04"), e.Activity, dur)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

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
	"github.com/dustin/go-humanize"

	"github.com/sadopc/worktrack/internal/service"
	"github.com/sadopc/worktrack/internal/timecalc"
)

// weekOrder lists weekdays starting on Monday for the targets form.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

type settingsModel struct {
	svc    *service.Service
	width  int
	height int

	targets timecalc.WeeklyTargets

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	targetHours []*string
	idleTimeout *string
	idleAction  *string
	weekStart   *string
}

func newSettingsModel(svc *service.Service) settingsModel {
	it, ia, ws := "", "", ""
	hours := make([]*string, len(weekOrder))
	for i := range hours {
		v := ""
		hours[i] = &v
	}
	return settingsModel{
		svc:         svc,
		targetHours: hours,
		idleTimeout: &it,
		idleAction:  &ia,
		weekStart:   &ws,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	targets timecalc.WeeklyTargets
}

func (s settingsModel) refresh() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		targets := svc.Targets()
		if err := targets.Err(); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return settingsDataMsg{targets: targets.Data}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.targets = msg.targets
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		case key.Matches(msg, keys.Backup):
			return s, s.backup()
		}
	}
	return s, nil
}

func validateHours(v string) error {
	h, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || h < 0 || h > 24 {
		return fmt.Errorf("enter hours between 0 and 24")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	timeout, action := s.svc.IdleConfig()
	*s.idleTimeout = strconv.Itoa(int(timeout / time.Minute))
	*s.idleAction = action
	*s.weekStart = "monday"
	if s.svc.WeekStart() == time.Sunday {
		*s.weekStart = "sunday"
	}

	targetFields := make([]huh.Field, len(weekOrder))
	for i, wd := range weekOrder {
		*s.targetHours[i] = minutesToHours(s.targets.For(wd))
		targetFields[i] = huh.NewInput().Title(wd.String() + " (hours)").Value(s.targetHours[i]).Validate(validateHours)
	}

	s.form = huh.NewForm(
		huh.NewGroup(targetFields...).Title("Daily targets"),
		huh.NewGroup(
			huh.NewInput().Title("Idle timeout (min, 0 disables)").Value(s.idleTimeout).
				Validate(func(v string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || n < 0 {
						return fmt.Errorf("enter a whole number of minutes")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Idle action").
				Options(
					huh.NewOption("Pause", "pause"),
					huh.NewOption("Stop", "stop"),
				).Value(s.idleAction),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.saveSettings(); err != nil {
			return s, tea.Batch(s.refresh(), errorCmd(err))
		}
		return s, tea.Batch(
			s.refresh(),
			statusCmd("Settings saved", false),
			func() tea.Msg { return settingsSavedMsg{} },
		)
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	for i, wd := range weekOrder {
		if err := s.svc.SetTarget(wd, hoursToMinutes(*s.targetHours[i])).Err(); err != nil {
			return err
		}
	}
	mins, _ := strconv.Atoi(strings.TrimSpace(*s.idleTimeout))
	values := [][2]string{
		{service.SettingIdleTimeout, strconv.Itoa(mins * 60)},
		{service.SettingIdleAction, *s.idleAction},
		{service.SettingWeekStart, *s.weekStart},
	}
	for _, kv := range values {
		if err := s.svc.SetSetting(kv[0], kv[1]).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) backup() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		res := svc.Backup()
		if err := res.Err(); err != nil {
			return statusMsg{text: fmt.Sprintf("Backup error: %v", err), isError: true}
		}
		return statusMsg{text: fmt.Sprintf("Backup saved: %s (%s)", res.Data.Name(), humanize.Bytes(uint64(res.Data.Size)))}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	rows := []string{titleStyle.Render("Daily Targets"), ""}
	for _, wd := range weekOrder {
		label := lipgloss.NewStyle().Width(24).Render(wd.String())
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(timecalc.FormatMinutes(s.targets.For(wd)))))
	}
	label := lipgloss.NewStyle().Width(24).Render("Week")
	rows = append(rows, fmt.Sprintf("  %s %s", label, titleStyle.Render(timecalc.FormatMinutes(s.targets.WeekTotal()))))

	rows = append(rows, "", titleStyle.Render("General"), "")
	timeout, action := s.svc.IdleConfig()
	general := [][2]string{
		{"Idle timeout", formatIdle(timeout)},
		{"Idle action", action},
		{"Week starts on", s.svc.WeekStart().String()},
	}
	for _, kv := range general {
		label := lipgloss.NewStyle().Width(24).Render(kv[0])
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(kv[1])))
	}

	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings, b to back up the database"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatIdle(d time.Duration) string {
	if d <= 0 {
		return "off"
	}
	return fmt.Sprintf("%d min", int(d/time.Minute))
}

func minutesToHours(minutes int) string {
	return strconv.FormatFloat(float64(minutes)/60, 'f', -1, 64)
}

func hoursToMinutes(s string) int {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(h*60 + 0.5)
}

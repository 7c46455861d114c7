package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktrack/internal/service"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
)

// timeOffItem is one row of the time-off list: a day off or a vacation.
type timeOffItem struct {
	dayOff   timecalc.Date
	vacation *store.Vacation
}

// timeOffModel manages days off and vacations of one year.
type timeOffModel struct {
	svc    *service.Service
	width  int
	height int

	year   int
	items  []timeOffItem
	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "dayoff", "vacation"

	// Form field pointers (survive value copies)
	formStart *string
	formEnd   *string
}

func newTimeOffModel(svc *service.Service) timeOffModel {
	start, end := "", ""
	return timeOffModel{
		svc:       svc,
		year:      svc.Today().Year,
		formStart: &start,
		formEnd:   &end,
	}
}

func (m *timeOffModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type timeOffDataMsg struct {
	year  int
	items []timeOffItem
}

func (m timeOffModel) refresh() tea.Cmd {
	svc, year := m.svc, m.year
	return func() tea.Msg {
		from, to := timecalc.NewDate(year, 1, 1), timecalc.NewDate(year, 12, 31)
		days := svc.DayOffs(from, to)
		if err := days.Err(); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		vacations := svc.Vacations(from, to)
		if err := vacations.Err(); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return timeOffDataMsg{year: year, items: mergeTimeOff(days.Data, vacations.Data)}
	}
}

// mergeTimeOff interleaves both lists by first date.
func mergeTimeOff(days []timecalc.Date, vacations []store.Vacation) []timeOffItem {
	items := make([]timeOffItem, 0, len(days)+len(vacations))
	i, j := 0, 0
	for i < len(days) || j < len(vacations) {
		if j == len(vacations) || (i < len(days) && days[i].Before(vacations[j].Start)) {
			items = append(items, timeOffItem{dayOff: days[i]})
			i++
			continue
		}
		v := vacations[j]
		items = append(items, timeOffItem{vacation: &v})
		j++
	}
	return items
}

func (m timeOffModel) update(msg tea.Msg) (timeOffModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case timeOffDataMsg:
		if msg.year != m.year {
			return m, nil
		}
		m.items = msg.items
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			m.year--
			m.cursor = 0
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			m.year++
			m.cursor = 0
			return m, m.refresh()
		case key.Matches(msg, keys.New):
			return m.showForm("dayoff")
		case key.Matches(msg, keys.Vacation):
			return m.showForm("vacation")
		case key.Matches(msg, keys.Delete):
			if len(m.items) > 0 {
				return m, m.remove(m.items[m.cursor])
			}
		}
	}
	return m, nil
}

func validateDate(s string) error {
	_, err := timecalc.ParseDate(strings.TrimSpace(s))
	return err
}

func (m timeOffModel) showForm(kind string) (timeOffModel, tea.Cmd) {
	today := m.svc.Today().String()
	*m.formStart = today
	*m.formEnd = today
	m.formType = kind

	if kind == "vacation" {
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("First day (YYYY-MM-DD)").Value(m.formStart).Validate(validateDate),
				huh.NewInput().Title("Last day (YYYY-MM-DD)").Value(m.formEnd).Validate(validateDate),
			),
		).WithShowHelp(true).WithShowErrors(true)
	} else {
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Date (YYYY-MM-DD)").Value(m.formStart).Validate(validateDate),
			),
		).WithShowHelp(true).WithShowErrors(true)
	}

	m.formActive = true
	return m, m.form.Init()
}

func (m timeOffModel) updateForm(msg tea.Msg) (timeOffModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m, m.save()
	}

	return m, cmd
}

func (m timeOffModel) save() tea.Cmd {
	start, err := timecalc.ParseDate(strings.TrimSpace(*m.formStart))
	if err != nil {
		return errorCmd(err)
	}

	if m.formType == "vacation" {
		end, err := timecalc.ParseDate(strings.TrimSpace(*m.formEnd))
		if err != nil {
			return errorCmd(err)
		}
		res := m.svc.AddVacation(start, end)
		if err := res.Err(); err != nil {
			return errorCmd(err)
		}
		return tea.Batch(m.refresh(), statusCmd(fmt.Sprintf("Added vacation %s to %s", start, end), false))
	}

	res := m.svc.AddDayOff(start)
	if err := res.Err(); err != nil {
		return errorCmd(err)
	}
	if !res.Data {
		return statusCmd(fmt.Sprintf("%s is already a day off", start), false)
	}
	return tea.Batch(m.refresh(), statusCmd(fmt.Sprintf("Added day off %s", start), false))
}

func (m timeOffModel) remove(item timeOffItem) tea.Cmd {
	if item.vacation != nil {
		if err := m.svc.RemoveVacation(item.vacation.ID).Err(); err != nil {
			return errorCmd(err)
		}
		return tea.Batch(m.refresh(), statusCmd(fmt.Sprintf("Removed vacation %s to %s", item.vacation.Start, item.vacation.End), false))
	}
	if err := m.svc.RemoveDayOff(item.dayOff).Err(); err != nil {
		return errorCmd(err)
	}
	return tea.Batch(m.refresh(), statusCmd(fmt.Sprintf("Removed day off %s", item.dayOff), false))
}

func (m timeOffModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Add Day Off")
		if m.formType == "vacation" {
			title = titleStyle.Render("Add Vacation")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render(fmt.Sprintf("Time Off  %d", m.year))
	nav := mutedStyle.Render("  ←/→: year  n: day off  v: vacation  d: delete")

	if len(m.items) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No days off or vacations this year."),
			"",
			nav,
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title, ""}
	total := 0
	for i, item := range m.items {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		var line string
		if v := item.vacation; v != nil {
			days := v.Range().Days()
			total += days
			line = fmt.Sprintf("%s%s  %s to %s  (%d days)", cursor, timeOffStyle.Render("vacation"), v.Start, v.End, days)
		} else {
			total++
			line = fmt.Sprintf("%s%s   %s %s", cursor, timeOffStyle.Render("day off"), item.dayOff, item.dayOff.Weekday().String()[:3])
		}
		rows = append(rows, style.Render(line))
	}

	rows = append(rows, "", subtitleStyle.Render(fmt.Sprintf("  %d calendar day(s) exempt", total)), "", nav)
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/worktrack/internal/service"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
)

// entriesModel lists the entries of one month and edits them.
type entriesModel struct {
	svc    *service.Service
	width  int
	height int

	year    int
	month   time.Month
	entries []store.Entry
	cursor  int

	formActive bool
	form       *huh.Form
	formType   string // "edit", "delete"

	// Form field pointers (survive value copies)
	formActivity *string
	formTags     *string
	formNote     *string
	formConfirm  *bool

	editingID int64
}

func newEntriesModel(svc *service.Service) entriesModel {
	activity, tags, note, confirm := "", "", "", false
	today := svc.Today()
	return entriesModel{
		svc:          svc,
		year:         today.Year,
		month:        today.Month,
		formActivity: &activity,
		formTags:     &tags,
		formNote:     &note,
		formConfirm:  &confirm,
	}
}

func (m *entriesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type entriesDataMsg struct {
	year    int
	month   time.Month
	entries []store.Entry
}

func (m entriesModel) refresh() tea.Cmd {
	svc, year, month := m.svc, m.year, m.month
	return func() tea.Msg {
		from, to := timecalc.MonthBounds(year, month)
		res := svc.Entries(from, to)
		if err := res.Err(); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return entriesDataMsg{year: year, month: month, entries: res.Data}
	}
}

// shiftMonth moves the viewed month by n.
func (m *entriesModel) shiftMonth(n int) {
	t := time.Date(m.year, m.month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	m.year, m.month = t.Year(), t.Month()
	m.cursor = 0
}

func (m entriesModel) update(msg tea.Msg) (entriesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case entriesDataMsg:
		if msg.year != m.year || msg.month != m.month {
			return m, nil
		}
		m.entries = msg.entries
		if m.cursor >= len(m.entries) {
			m.cursor = max(0, len(m.entries)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			m.shiftMonth(-1)
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			m.shiftMonth(1)
			return m, m.refresh()
		case key.Matches(msg, keys.Enter):
			if len(m.entries) > 0 {
				return m.showEditForm()
			}
		case key.Matches(msg, keys.Delete):
			if len(m.entries) > 0 {
				return m.showDeleteForm()
			}
		}
	}
	return m, nil
}

func (m entriesModel) showEditForm() (entriesModel, tea.Cmd) {
	e := m.entries[m.cursor]
	*m.formActivity = e.Activity
	*m.formTags = e.Tags
	*m.formNote = e.Note
	m.formType = "edit"
	m.editingID = e.ID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Activity").Value(m.formActivity).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("activity is required")
					}
					return nil
				}),
			huh.NewInput().Title("Tags (comma-separated)").Value(m.formTags),
			huh.NewText().Title("Note").Value(m.formNote),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m entriesModel) showDeleteForm() (entriesModel, tea.Cmd) {
	e := m.entries[m.cursor]
	*m.formConfirm = false
	m.formType = "delete"
	m.editingID = e.ID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", e.Activity)).
				Description(e.Start.In(m.svc.Location()).Format("Mon Jan 02 15:04")).
				Affirmative("Delete").
				Negative("Keep").
				Value(m.formConfirm),
		),
	).WithShowHelp(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m entriesModel) updateForm(msg tea.Msg) (entriesModel, tea.Cmd) {
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
		switch m.formType {
		case "edit":
			return m, m.saveEdit()
		case "delete":
			if *m.formConfirm {
				return m, m.deleteEntry()
			}
		}
		return m, nil
	}

	return m, cmd
}

func (m entriesModel) saveEdit() tea.Cmd {
	activity, tags, note := *m.formActivity, *m.formTags, *m.formNote
	res := m.svc.EditEntry(m.editingID, store.EntryPatch{
		Activity: &activity,
		Tags:     &tags,
		Note:     &note,
	})
	if err := res.Err(); err != nil {
		return errorCmd(err)
	}
	return tea.Batch(m.refresh(), statusCmd(fmt.Sprintf("Updated entry #%d", m.editingID), false))
}

func (m entriesModel) deleteEntry() tea.Cmd {
	res := m.svc.DeleteEntry(m.editingID)
	if err := res.Err(); err != nil {
		return errorCmd(err)
	}
	return tea.Batch(m.refresh(), statusCmd(fmt.Sprintf("Deleted entry #%d", m.editingID), false))
}

func (m entriesModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Edit Entry")
		if m.formType == "delete" {
			title = titleStyle.Render("Delete Entry")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render(fmt.Sprintf("Entries  %s %d", m.month, m.year))
	nav := mutedStyle.Render("  ←/→: month  enter: edit  d: delete")

	if len(m.entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No entries this month."),
			"",
			nav,
		)
		return panelStyle.Width(w).Render(content)
	}

	loc := m.svc.Location()
	rows := []string{title, ""}
	header := mutedStyle.Render(fmt.Sprintf("  %-12s %-13s %-9s %-28s %s", "Date", "Time", "Worked", "Activity", "Tags"))
	rows = append(rows, header)

	visible := m.height - 10
	if visible < 5 {
		visible = 5
	}
	first := 0
	if m.cursor >= visible {
		first = m.cursor - visible + 1
	}
	last := min(len(m.entries), first+visible)

	for i := first; i < last; i++ {
		e := m.entries[i]
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		span := e.Start.In(loc).Format("15:04") + "-"
		worked := timecalc.FormatMinutes(e.WorkedMinutes())
		if e.End != nil {
			span += e.End.In(loc).Format("15:04")
		} else {
			worked = "running"
		}
		row := style.Render(fmt.Sprintf("%s%-12s %-13s %-9s %-28s", cursor,
			e.Start.In(loc).Format("Mon Jan 02"), span, worked, truncate(e.Activity, 28)))
		if e.Tags != "" {
			row += mutedStyle.Render(" " + e.Tags)
		}
		rows = append(rows, row)
	}

	if e := m.entries[m.cursor]; e.Note != "" {
		rows = append(rows, "", subtitleStyle.Render("  "+e.Note))
	}
	rows = append(rows, "", nav)

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

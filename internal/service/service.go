// Package service is the boundary used by the CLI and the TUI. Every method
// returns a Result and logs failures; the packages below it never log.
package service

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/worktrack/internal/apperr"
	"github.com/sadopc/worktrack/internal/backup"
	"github.com/sadopc/worktrack/internal/export"
	"github.com/sadopc/worktrack/internal/report"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
	"github.com/sadopc/worktrack/internal/tracker"
)

// Setting keys understood by SetSetting.
const (
	SettingIdleTimeout = "idle_timeout"
	SettingIdleAction  = "idle_action"
	SettingWeekStart   = "week_start"
)

// Options configures a Service. Zero values fall back to the system zone,
// Monday weeks and the wall clock.
type Options struct {
	Location  *time.Location
	WeekStart time.Weekday
	Backups   *backup.Manager
	Clock     func() time.Time
}

type Service struct {
	store   *store.Store
	tracker *tracker.Tracker
	reports *report.Builder
	backups *backup.Manager
	loc     *time.Location
	week    time.Weekday
	now     func() time.Time
}

func New(s *store.Store, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	week := opts.WeekStart
	if week != time.Sunday {
		week = time.Monday
	}
	return &Service{
		store:   s,
		tracker: tracker.New(s, tracker.WithClock(now)),
		reports: report.NewBuilder(s, loc),
		backups: opts.Backups,
		loc:     loc,
		week:    week,
		now:     now,
	}
}

// Location is the zone used for calendar dates.
func (s *Service) Location() *time.Location { return s.loc }

// Today is the current calendar date in the service's zone.
func (s *Service) Today() timecalc.Date {
	return timecalc.DateOf(s.now(), s.loc)
}

// WeekStart prefers the stored week_start setting over the configured one.
func (s *Service) WeekStart() time.Weekday {
	v, err := s.store.SettingOr(SettingWeekStart, "")
	if err != nil || v == "" {
		return s.week
	}
	if v == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// ============================================================
// Tracking
// ============================================================

// Status is the live view of the tracker.
type Status struct {
	State   tracker.State `json:"state"`
	Entry   *store.Entry  `json:"entry,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

func (s *Service) Start(req tracker.StartRequest) Result[*store.Entry] {
	return call("start", func() (*store.Entry, error) {
		id, err := s.tracker.Start(req)
		if err != nil {
			return nil, err
		}
		return s.loadEntry(id)
	})
}

func (s *Service) Pause(id int64) Result[bool] {
	return call("pause", func() (bool, error) { return s.tracker.Pause(id) })
}

func (s *Service) Resume(id int64) Result[bool] {
	return call("resume", func() (bool, error) { return s.tracker.Resume(id) })
}

func (s *Service) Stop(id int64) Result[bool] {
	return call("stop", func() (bool, error) { return s.tracker.Stop(id) })
}

// Current reports the active entry, if any, with its live worked time.
func (s *Service) Current() Result[Status] {
	return call("current", func() (Status, error) {
		e, err := s.tracker.Active()
		if err != nil {
			return Status{}, err
		}
		return Status{State: tracker.StateOf(e), Entry: e, Elapsed: s.tracker.Elapsed(e)}, nil
	})
}

// Entry loads one entry.
func (s *Service) Entry(id int64) Result[*store.Entry] {
	return call("entry", func() (*store.Entry, error) { return s.loadEntry(id) })
}

func (s *Service) loadEntry(id int64) (*store.Entry, error) {
	e, err := s.store.GetEntry(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFoundf("entry %d not found", id)
	}
	if err != nil {
		return nil, apperr.StorageErr("load entry", err)
	}
	return e, nil
}

// Entries lists entries that started on the local dates from..to, oldest
// first.
func (s *Service) Entries(from, to timecalc.Date) Result[[]store.Entry] {
	return call("entries", func() ([]store.Entry, error) {
		if from.After(to) {
			return nil, apperr.Validationf("range start %s is after end %s", from, to)
		}
		entries, err := s.store.EntriesInRange(from.Start(s.loc), to.AddDays(1).Start(s.loc))
		if err != nil {
			return nil, apperr.StorageErr("list entries", err)
		}
		if entries == nil {
			entries = []store.Entry{}
		}
		return entries, nil
	})
}

// RecentEntries returns up to limit entries, newest first.
func (s *Service) RecentEntries(limit int) Result[[]store.Entry] {
	return call("recent entries", func() ([]store.Entry, error) {
		entries, err := s.store.ListEntries(store.EntryFilter{Limit: limit})
		if err != nil {
			return nil, apperr.StorageErr("list entries", err)
		}
		return entries, nil
	})
}

func (s *Service) EditEntry(id int64, patch store.EntryPatch) Result[bool] {
	return call("edit entry", func() (bool, error) { return s.tracker.Edit(id, patch) })
}

func (s *Service) DeleteEntry(id int64) Result[bool] {
	return call("delete entry", func() (bool, error) { return s.tracker.Delete(id) })
}

// ============================================================
// Reports
// ============================================================

func (s *Service) MonthlyReport(year int, month time.Month) Result[*report.MonthlyReport] {
	return call("monthly report", func() (*report.MonthlyReport, error) {
		return s.reports.Monthly(year, month)
	})
}

func (s *Service) WeeklyReport(isoYear, week int) Result[*report.WeeklyReport] {
	return call("weekly report", func() (*report.WeeklyReport, error) {
		return s.reports.Weekly(isoYear, week)
	})
}

func (s *Service) RangeReport(from, to timecalc.Date) Result[*report.Report] {
	return call("range report", func() (*report.Report, error) {
		return s.reports.Range(from, to)
	})
}

// CurrentWeekReport covers the week containing today, honoring week_start.
func (s *Service) CurrentWeekReport() Result[*report.Report] {
	first, last := timecalc.WeekBounds(s.Today(), s.WeekStart())
	return s.RangeReport(first, last)
}

// ============================================================
// Targets and time off
// ============================================================

func (s *Service) Targets() Result[timecalc.WeeklyTargets] {
	return call("targets", func() (timecalc.WeeklyTargets, error) {
		t, err := s.store.GetWeeklyTargets()
		if err != nil {
			return t, apperr.StorageErr("load targets", err)
		}
		return t, nil
	})
}

func (s *Service) SetTarget(wd time.Weekday, minutes int) Result[bool] {
	return call("set target", func() (bool, error) {
		if err := timecalc.ValidateTarget(wd, minutes); err != nil {
			return false, err
		}
		if err := s.store.SetDailyTarget(wd, minutes); err != nil {
			return false, apperr.StorageErr("set target", err)
		}
		return true, nil
	})
}

func (s *Service) AddDayOff(d timecalc.Date) Result[bool] {
	return call("add day off", func() (bool, error) {
		changed, err := s.store.AddDayOff(d)
		return changed, apperr.StorageErr("add day off", err)
	})
}

func (s *Service) RemoveDayOff(d timecalc.Date) Result[bool] {
	return call("remove day off", func() (bool, error) {
		changed, err := s.store.RemoveDayOff(d)
		return changed, apperr.StorageErr("remove day off", err)
	})
}

func (s *Service) DayOffs(from, to timecalc.Date) Result[[]timecalc.Date] {
	return call("day offs", func() ([]timecalc.Date, error) {
		days, err := s.store.ListDayOffs(from, to)
		if err != nil {
			return nil, apperr.StorageErr("list day offs", err)
		}
		if days == nil {
			days = []timecalc.Date{}
		}
		return days, nil
	})
}

func (s *Service) AddVacation(start, end timecalc.Date) Result[*store.Vacation] {
	return call("add vacation", func() (*store.Vacation, error) {
		r, err := timecalc.NewDateRange(start, end)
		if err != nil {
			return nil, err
		}
		v, err := s.store.AddVacation(r)
		if err != nil {
			return nil, apperr.StorageErr("add vacation", err)
		}
		return v, nil
	})
}

func (s *Service) RemoveVacation(id int64) Result[bool] {
	return call("remove vacation", func() (bool, error) {
		changed, err := s.store.RemoveVacation(id)
		return changed, apperr.StorageErr("remove vacation", err)
	})
}

func (s *Service) Vacations(from, to timecalc.Date) Result[[]store.Vacation] {
	return call("vacations", func() ([]store.Vacation, error) {
		v, err := s.store.ListVacations(from, to)
		if err != nil {
			return nil, apperr.StorageErr("list vacations", err)
		}
		if v == nil {
			v = []store.Vacation{}
		}
		return v, nil
	})
}

// ============================================================
// Settings
// ============================================================

func (s *Service) Settings() Result[map[string]string] {
	return call("settings", func() (map[string]string, error) {
		all, err := s.store.GetAllSettings()
		if err != nil {
			return nil, apperr.StorageErr("load settings", err)
		}
		m := make(map[string]string, len(all))
		for _, st := range all {
			m[st.Key] = st.Value
		}
		return m, nil
	})
}

func (s *Service) SetSetting(key, value string) Result[bool] {
	return call("set setting", func() (bool, error) {
		key = strings.TrimSpace(key)
		value = strings.ToLower(strings.TrimSpace(value))
		if err := validateSetting(key, value); err != nil {
			return false, err
		}
		if err := s.store.SetSetting(key, value); err != nil {
			return false, apperr.StorageErr("save setting", err)
		}
		return true, nil
	})
}

func validateSetting(key, value string) error {
	switch key {
	case SettingIdleTimeout:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return apperr.Validationf("%s must be a non-negative number of seconds", key)
		}
	case SettingIdleAction:
		if value != "pause" && value != "stop" {
			return apperr.Validationf("%s must be pause or stop", key)
		}
	case SettingWeekStart:
		if value != "monday" && value != "sunday" {
			return apperr.Validationf("%s must be monday or sunday", key)
		}
	default:
		return apperr.Validationf("unknown setting %q", key)
	}
	return nil
}

// IdleConfig returns the idle timeout and action, falling back to five
// minutes and pause.
func (s *Service) IdleConfig() (time.Duration, string) {
	timeout := 300
	if v, err := s.store.SettingOr(SettingIdleTimeout, "300"); err == nil {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			timeout = n
		}
	}
	action, err := s.store.SettingOr(SettingIdleAction, "pause")
	if err != nil || (action != "pause" && action != "stop") {
		action = "pause"
	}
	return time.Duration(timeout) * time.Second, action
}

// ============================================================
// Export and backup
// ============================================================

// Export writes the month report to path and returns the path. An empty
// path or a directory gets the default file name.
func (s *Service) Export(year int, month time.Month, format, path string) Result[string] {
	return call("export", func() (string, error) {
		f, err := export.ParseFormat(format)
		if err != nil {
			return "", err
		}
		r, err := s.reports.Monthly(year, month)
		if err != nil {
			return "", err
		}
		name := export.FileName(r, f)
		if path == "" {
			path = name
		} else if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			path = filepath.Join(path, name)
		}
		if err := export.WriteFile(r, s.loc, f, path); err != nil {
			return "", apperr.StorageErr("write export", err)
		}
		return path, nil
	})
}

// Backup writes a copy of the database file.
func (s *Service) Backup() Result[backup.Info] {
	return call("backup", func() (backup.Info, error) {
		if s.backups == nil {
			return backup.Info{}, apperr.Validationf("backups are not configured")
		}
		info, err := s.backups.Create()
		if err != nil {
			return backup.Info{}, apperr.StorageErr("create backup", err)
		}
		return info, nil
	})
}

func (s *Service) Backups() Result[[]backup.Info] {
	return call("list backups", func() ([]backup.Info, error) {
		if s.backups == nil {
			return nil, apperr.Validationf("backups are not configured")
		}
		list, err := s.backups.List()
		if err != nil {
			return nil, apperr.StorageErr("list backups", err)
		}
		return list, nil
	})
}

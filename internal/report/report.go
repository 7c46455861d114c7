// Package report reconciles worked time against daily targets for a month,
// a week or an arbitrary date range.
package report

import (
	"time"

	"github.com/sadopc/worktrack/internal/apperr"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
)

// Day is one row of the daily breakdown.
type Day struct {
	Date           timecalc.Date `json:"date"`
	WorkedMinutes  int           `json:"worked_minutes"`
	TargetMinutes  int           `json:"target_minutes"`
	BalanceMinutes int           `json:"balance_minutes"`
	DayOff         bool          `json:"day_off"`
	Vacation       bool          `json:"vacation"`
	Entries        []store.Entry `json:"entries"`
}

// Report covers the inclusive dates From..To.
type Report struct {
	From               timecalc.Date    `json:"from"`
	To                 timecalc.Date    `json:"to"`
	TotalWorkedMinutes int              `json:"total_worked_minutes"`
	TotalTargetMinutes int              `json:"total_target_minutes"`
	BalanceMinutes     int              `json:"balance_minutes"`
	Entries            []store.Entry    `json:"entries"`
	DayOffs            []timecalc.Date  `json:"day_offs"`
	Vacations          []store.Vacation `json:"vacations"`
	Daily              []Day            `json:"daily"`
}

type MonthlyReport struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Report
}

type WeeklyReport struct {
	ISOYear int `json:"iso_year"`
	Week    int `json:"week"`
	Report
}

// Builder assembles reports from the store. Entries are attributed to the
// local date of their start instant in the builder's location.
type Builder struct {
	store *store.Store
	loc   *time.Location
}

func NewBuilder(s *store.Store, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{store: s, loc: loc}
}

// Location is the zone used for day bucketing.
func (b *Builder) Location() *time.Location { return b.loc }

// Monthly reports on every day of the given calendar month.
func (b *Builder) Monthly(year int, month time.Month) (*MonthlyReport, error) {
	if month < time.January || month > time.December {
		return nil, apperr.Validationf("invalid month %d: want 1-12", int(month))
	}
	if year < 1 || year > 9999 {
		return nil, apperr.Validationf("invalid year %d", year)
	}
	first, last := timecalc.MonthBounds(year, month)
	r, err := b.Range(first, last)
	if err != nil {
		return nil, err
	}
	return &MonthlyReport{Year: year, Month: month, Report: *r}, nil
}

// Weekly reports on the seven days of an ISO week.
func (b *Builder) Weekly(isoYear, week int) (*WeeklyReport, error) {
	if isoYear < 1 || isoYear > 9999 {
		return nil, apperr.Validationf("invalid year %d", isoYear)
	}
	if week < 1 || week > isoWeeksIn(isoYear) {
		return nil, apperr.Validationf("invalid week %d for %d", week, isoYear)
	}
	first, last := timecalc.ISOWeekBounds(isoYear, week)
	r, err := b.Range(first, last)
	if err != nil {
		return nil, err
	}
	return &WeeklyReport{ISOYear: isoYear, Week: week, Report: *r}, nil
}

func isoWeeksIn(year int) int {
	_, w := time.Date(year, time.December, 28, 12, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// Range reports on the inclusive dates from..to.
func (b *Builder) Range(from, to timecalc.Date) (*Report, error) {
	if from.After(to) {
		return nil, apperr.Validationf("range start %s is after end %s", from, to)
	}

	windowStart := from.Start(b.loc)
	windowEnd := to.AddDays(1).Start(b.loc)
	entries, err := b.store.EntriesInRange(windowStart, windowEnd)
	if err != nil {
		return nil, apperr.StorageErr("load entries", err)
	}
	dayOffs, err := b.store.ListDayOffs(from, to)
	if err != nil {
		return nil, apperr.StorageErr("load day offs", err)
	}
	vacations, err := b.store.ListVacations(from, to)
	if err != nil {
		return nil, apperr.StorageErr("load vacations", err)
	}
	weekly, err := b.store.GetWeeklyTargets()
	if err != nil {
		return nil, apperr.StorageErr("load targets", err)
	}

	ranges := make([]timecalc.DateRange, len(vacations))
	for i, v := range vacations {
		ranges[i] = v.Range()
	}
	cal := timecalc.NewCalendar(weekly, dayOffs, ranges)

	r := &Report{
		From:      from,
		To:        to,
		Entries:   nonNil(entries),
		DayOffs:   nonNil(dayOffs),
		Vacations: nonNil(vacations),
	}

	byDate := make(map[timecalc.Date][]store.Entry)
	for _, e := range entries {
		d := timecalc.DateOf(e.Start, b.loc)
		byDate[d] = append(byDate[d], e)
	}

	for d := from; !d.After(to); d = d.AddDays(1) {
		day := Day{
			Date:          d,
			TargetMinutes: cal.TargetMinutes(d),
			DayOff:        cal.IsDayOff(d),
			Vacation:      cal.InVacation(d),
			Entries:       nonNil(byDate[d]),
		}
		for _, e := range day.Entries {
			day.WorkedMinutes += e.WorkedMinutes()
		}
		day.BalanceMinutes = day.WorkedMinutes - day.TargetMinutes

		r.TotalWorkedMinutes += day.WorkedMinutes
		r.TotalTargetMinutes += day.TargetMinutes
		r.Daily = append(r.Daily, day)
	}
	r.BalanceMinutes = r.TotalWorkedMinutes - r.TotalTargetMinutes
	return r, nil
}

// Day returns the breakdown row for d, or nil when d is outside the report.
func (r *Report) Day(d timecalc.Date) *Day {
	if d.Before(r.From) || d.After(r.To) {
		return nil
	}
	for i := range r.Daily {
		if r.Daily[i].Date == d {
			return &r.Daily[i]
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

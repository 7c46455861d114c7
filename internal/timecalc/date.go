package timecalc

import (
	"fmt"
	"time"

	"github.com/sadopc/worktrack/internal/apperr"
)

// DateLayout is the persisted form of a calendar date. Fixed width, so
// lexicographic order equals chronological order.
const DateLayout = "2006-01-02"

// Date is a local calendar date with no time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes overflowing values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DateOf returns the calendar date of instant t as seen in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, apperr.Validationf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// MustParseDate is ParseDate for literals; it panics on bad input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Start returns local midnight of d in loc.
func (d Date) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// DateRange is an inclusive range of dates.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewDateRange validates that start is not after end.
func NewDateRange(start, end Date) (DateRange, error) {
	if start.After(end) {
		return DateRange{}, apperr.Validationf("range start %s is after end %s", start, end)
	}
	return DateRange{Start: start, End: end}, nil
}

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps reports whether r shares at least one day with [from, to].
func (r DateRange) Overlaps(from, to Date) bool {
	return !r.Start.After(to) && !r.End.Before(from)
}

// Days returns the number of dates in the range.
func (r DateRange) Days() int {
	n := 0
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		n++
	}
	return n
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first and last date of a month.
func MonthBounds(year int, month time.Month) (Date, Date) {
	return Date{Year: year, Month: month, Day: 1}, Date{Year: year, Month: month, Day: DaysIn(year, month)}
}

// ISOWeekBounds returns Monday and Sunday of the given ISO week.
func ISOWeekBounds(isoYear, week int) (Date, Date) {
	// January 4th is always in week 1.
	jan4 := Date{Year: isoYear, Month: time.January, Day: 4}
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDays(-offset + 7*(week-1))
	return monday, monday.AddDays(6)
}

// WeekBounds returns the seven-day week containing d, starting on weekStart.
func WeekBounds(d Date, weekStart time.Weekday) (Date, Date) {
	back := (int(d.Weekday()) - int(weekStart) + 7) % 7
	first := d.AddDays(-back)
	return first, first.AddDays(6)
}

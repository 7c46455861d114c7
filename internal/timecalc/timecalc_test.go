package timecalc

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/worktrack/internal/apperr"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 10, 1, hour, min, 0, 0, time.UTC)
}

func closed(start, end time.Time) PauseInterval {
	return PauseInterval{Start: start, End: &end}
}

// ============================================================
// Duration
// ============================================================

func TestDurationMinutesWithLunchBreak(t *testing.T) {
	pauses := []PauseInterval{closed(at(12, 0), at(13, 0))}
	got := DurationMinutes(at(9, 0), at(17, 30), pauses)
	if got != 450 {
		t.Fatalf("DurationMinutes = %d, want 450", got)
	}
}

func TestDurationMinutesTwoPauses(t *testing.T) {
	pauses := []PauseInterval{
		closed(at(10, 0), at(10, 15)),
		closed(at(11, 0), at(11, 10)),
	}
	got := DurationMinutes(at(9, 0), at(12, 0), pauses)
	if got != 155 {
		t.Fatalf("DurationMinutes = %d, want 155", got)
	}
}

func TestDurationMinutesDropsPartialMinutes(t *testing.T) {
	start := at(9, 0)
	end := start.Add(10*time.Minute + 59*time.Second + 999*time.Millisecond)
	if got := DurationMinutes(start, end, nil); got != 10 {
		t.Fatalf("DurationMinutes = %d, want 10", got)
	}
}

func TestDurationMinutesNeverNegative(t *testing.T) {
	// Pauses longer than the session clamp to zero.
	pauses := []PauseInterval{closed(at(8, 0), at(12, 0))}
	if got := DurationMinutes(at(9, 0), at(10, 0), pauses); got != 0 {
		t.Fatalf("DurationMinutes = %d, want 0", got)
	}
	if got := DurationMinutes(at(10, 0), at(9, 0), nil); got != 0 {
		t.Fatalf("end before start = %d, want 0", got)
	}
}

func TestDurationMinutesIgnoresOpenPause(t *testing.T) {
	pauses := []PauseInterval{{Start: at(10, 0)}}
	if got := DurationMinutes(at(9, 0), at(11, 0), pauses); got != 120 {
		t.Fatalf("DurationMinutes = %d, want 120", got)
	}
}

func TestDurationMinutesIdempotent(t *testing.T) {
	pauses := []PauseInterval{closed(at(10, 0), at(10, 7))}
	a := DurationMinutes(at(9, 3), at(15, 44), pauses)
	b := DurationMinutes(at(9, 3), at(15, 44), pauses)
	if a != b {
		t.Fatalf("not idempotent: %d vs %d", a, b)
	}
}

func TestDurationMinutesMatchesFormula(t *testing.T) {
	start := at(8, 0)
	var pauses []PauseInterval
	cursor := start
	var pausedMs int64
	for i := 0; i < 6; i++ {
		cursor = cursor.Add(time.Duration(17+i*3)*time.Minute + 13*time.Second)
		end := cursor.Add(time.Duration(4+i)*time.Minute + 41*time.Second)
		pauses = append(pauses, closed(cursor, end))
		pausedMs += end.Sub(cursor).Milliseconds()
		cursor = end
	}
	end := cursor.Add(37*time.Minute + 5*time.Second)
	want := int((end.Sub(start).Milliseconds() - pausedMs) / 60000)
	if got := DurationMinutes(start, end, pauses); got != want {
		t.Fatalf("DurationMinutes = %d, want %d", got, want)
	}
}

func TestFallbackMinutes(t *testing.T) {
	if got := FallbackMinutes(at(9, 0), at(11, 30)); got != 150 {
		t.Fatalf("FallbackMinutes = %d, want 150", got)
	}
}

func TestElapsedWorked(t *testing.T) {
	pauses := []PauseInterval{closed(at(9, 30), at(9, 45)), {Start: at(10, 0)}}
	got := ElapsedWorked(at(9, 0), at(10, 20), pauses)
	if got != 45*time.Minute {
		t.Fatalf("ElapsedWorked = %s, want 45m", got)
	}
	if ElapsedWorked(at(10, 0), at(9, 0), nil) != 0 {
		t.Fatal("ElapsedWorked should clamp at zero")
	}
}

func TestPaused(t *testing.T) {
	if Paused(nil) {
		t.Fatal("no pauses means not paused")
	}
	if Paused([]PauseInterval{closed(at(9, 0), at(9, 5))}) {
		t.Fatal("closed last interval means not paused")
	}
	if !Paused([]PauseInterval{{Start: at(9, 0)}}) {
		t.Fatal("open last interval means paused")
	}
}

func TestValidatePauses(t *testing.T) {
	ok := []PauseInterval{closed(at(9, 0), at(9, 5)), closed(at(9, 5), at(9, 10)), {Start: at(10, 0)}}
	if err := ValidatePauses(ok); err != nil {
		t.Fatalf("valid pauses rejected: %v", err)
	}

	tests := []struct {
		name   string
		pauses []PauseInterval
	}{
		{"reversed", []PauseInterval{closed(at(10, 0), at(9, 0))}},
		{"open in middle", []PauseInterval{{Start: at(9, 0)}, closed(at(10, 0), at(10, 5))}},
		{"overlap", []PauseInterval{closed(at(9, 0), at(9, 30)), closed(at(9, 20), at(9, 40))}},
	}
	for _, tt := range tests {
		err := ValidatePauses(tt.pauses)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", tt.name, err)
		}
	}
}

// ============================================================
// Dates
// ============================================================

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-10-01")
	if err != nil {
		t.Fatal(err)
	}
	if d != (Date{2025, time.October, 1}) {
		t.Fatalf("ParseDate = %+v", d)
	}
	if d.Weekday() != time.Wednesday {
		t.Fatalf("weekday = %s, want Wednesday", d.Weekday())
	}

	for _, bad := range []string{"", "2025-1-01", "2025/10/01", "2025-13-01", "2025-02-30", "yesterday"} {
		if _, err := ParseDate(bad); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("ParseDate(%q) should be a validation error, got %v", bad, err)
		}
	}
}

func TestDateStringOrdering(t *testing.T) {
	a := NewDate(2025, time.September, 30)
	b := NewDate(2025, time.October, 1)
	if !(a.String() < b.String()) || !a.Before(b) || !b.After(a) {
		t.Fatal("string and Compare ordering should agree")
	}
	if a.AddDays(1) != b {
		t.Fatalf("AddDays crossed month wrong: %s", a.AddDays(1))
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	instant := time.Date(2025, 10, 2, 1, 30, 0, 0, time.UTC)
	if got := DateOf(instant, loc); got.String() != "2025-10-01" {
		t.Fatalf("DateOf = %s, want 2025-10-01", got)
	}
	if got := DateOf(instant, time.UTC); got.String() != "2025-10-02" {
		t.Fatalf("DateOf UTC = %s, want 2025-10-02", got)
	}
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(struct{ D Date }{NewDate(2025, 3, 7)})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"D":"2025-03-07"}` {
		t.Fatalf("json = %s", data)
	}
	var out struct{ D Date }
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.D != NewDate(2025, 3, 7) {
		t.Fatalf("round trip = %s", out.D)
	}
}

func TestDaysInAndMonthBounds(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2025, time.February, 28},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tt := range tests {
		if got := DaysIn(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysIn(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
	first, last := MonthBounds(2025, time.December)
	if first.String() != "2025-12-01" || last.String() != "2025-12-31" {
		t.Fatalf("MonthBounds = %s..%s", first, last)
	}
}

func TestISOWeekBounds(t *testing.T) {
	tests := []struct {
		year, week int
		monday     string
	}{
		{2025, 1, "2024-12-30"},
		{2025, 40, "2025-09-29"},
		{2026, 1, "2025-12-29"},
		{2020, 53, "2020-12-28"},
	}
	for _, tt := range tests {
		mon, sun := ISOWeekBounds(tt.year, tt.week)
		if mon.String() != tt.monday {
			t.Errorf("ISOWeekBounds(%d, %d) monday = %s, want %s", tt.year, tt.week, mon, tt.monday)
		}
		if mon.Weekday() != time.Monday || sun.Weekday() != time.Sunday {
			t.Errorf("ISOWeekBounds(%d, %d) = %s..%s not Mon..Sun", tt.year, tt.week, mon, sun)
		}
	}
}

func TestWeekBounds(t *testing.T) {
	wed := MustParseDate("2025-10-01")
	first, last := WeekBounds(wed, time.Monday)
	if first.String() != "2025-09-29" || last.String() != "2025-10-05" {
		t.Fatalf("monday week = %s..%s", first, last)
	}
	first, _ = WeekBounds(wed, time.Sunday)
	if first.String() != "2025-09-28" {
		t.Fatalf("sunday week starts %s", first)
	}
}

func TestDateRange(t *testing.T) {
	r, err := NewDateRange(MustParseDate("2025-10-10"), MustParseDate("2025-10-12"))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Contains(MustParseDate("2025-10-10")) || !r.Contains(MustParseDate("2025-10-12")) {
		t.Fatal("range bounds are inclusive")
	}
	if r.Contains(MustParseDate("2025-10-13")) {
		t.Fatal("date after range contained")
	}
	if r.Days() != 3 {
		t.Fatalf("Days = %d, want 3", r.Days())
	}
	if !r.Overlaps(MustParseDate("2025-10-12"), MustParseDate("2025-10-31")) {
		t.Fatal("touching range should overlap")
	}
	if r.Overlaps(MustParseDate("2025-11-01"), MustParseDate("2025-11-30")) {
		t.Fatal("disjoint range should not overlap")
	}
	if _, err := NewDateRange(MustParseDate("2025-10-12"), MustParseDate("2025-10-10")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("inverted range should fail validation, got %v", err)
	}
}

// ============================================================
// Targets
// ============================================================

func TestDailyTargetWeekday(t *testing.T) {
	weekly := DefaultWeeklyTargets()
	if got := DailyTargetMinutes(MustParseDate("2025-10-01"), weekly, nil, nil); got != 480 {
		t.Fatalf("Wednesday target = %d, want 480", got)
	}
	if got := DailyTargetMinutes(MustParseDate("2025-10-04"), weekly, nil, nil); got != 0 {
		t.Fatalf("Saturday target = %d, want 0", got)
	}
}

func TestDailyTargetDayOff(t *testing.T) {
	tuesday := MustParseDate("2025-10-07")
	got := DailyTargetMinutes(tuesday, DefaultWeeklyTargets(), []Date{tuesday}, nil)
	if got != 0 {
		t.Fatalf("day off target = %d, want 0", got)
	}
}

func TestDailyTargetVacationBeatsWeekday(t *testing.T) {
	weekly := DefaultWeeklyTargets()
	weekly[time.Thursday] = 600
	vac := []DateRange{{Start: MustParseDate("2025-10-01"), End: MustParseDate("2025-10-03")}}
	if got := DailyTargetMinutes(MustParseDate("2025-10-02"), weekly, nil, vac); got != 0 {
		t.Fatalf("vacation target = %d, want 0", got)
	}
	if got := DailyTargetMinutes(MustParseDate("2025-10-06"), weekly, nil, vac); got != 480 {
		t.Fatalf("after vacation target = %d, want 480", got)
	}
}

func TestCalendarExemptionIsBoolean(t *testing.T) {
	day := MustParseDate("2025-10-02")
	vac := []DateRange{
		{Start: MustParseDate("2025-10-01"), End: MustParseDate("2025-10-05")},
		{Start: MustParseDate("2025-10-02"), End: MustParseDate("2025-10-02")},
	}
	cal := NewCalendar(DefaultWeeklyTargets(), []Date{day}, vac)
	if !cal.IsDayOff(day) || !cal.InVacation(day) || !cal.Exempt(day) {
		t.Fatal("day should be both day off and vacation")
	}
	if cal.TargetMinutes(day) != 0 {
		t.Fatalf("target = %d, want 0", cal.TargetMinutes(day))
	}
}

func TestValidateTarget(t *testing.T) {
	if err := ValidateTarget(time.Monday, 480); err != nil {
		t.Fatal(err)
	}
	if err := ValidateTarget(time.Monday, -1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatal("negative target should fail")
	}
	if err := ValidateTarget(time.Monday, MaxDailyTarget+1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatal("target over a day should fail")
	}
	if err := ValidateTarget(time.Weekday(7), 0); !errors.Is(err, apperr.ErrValidation) {
		t.Fatal("weekday 7 should fail")
	}
}

func TestWeekTotal(t *testing.T) {
	if got := DefaultWeeklyTargets().WeekTotal(); got != 2400 {
		t.Fatalf("WeekTotal = %d, want 2400", got)
	}
}

// ============================================================
// Formatting
// ============================================================

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
		balance string
	}{
		{0, "0m", "0m"},
		{45, "45m", "+45m"},
		{60, "1h 00m", "+1h 00m"},
		{450, "7h 30m", "+7h 30m"},
		{-30, "-30m", "-30m"},
		{-125, "-2h 05m", "-2h 05m"},
	}
	for _, tt := range tests {
		if got := FormatMinutes(tt.minutes); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
		if got := FormatBalance(tt.minutes); got != tt.balance {
			t.Errorf("FormatBalance(%d) = %q, want %q", tt.minutes, got, tt.balance)
		}
	}
}

package timecalc

import (
	"time"

	"github.com/sadopc/worktrack/internal/apperr"
)

// MaxDailyTarget caps a weekday target at a full day.
const MaxDailyTarget = 24 * 60

// WeeklyTargets holds expected minutes per weekday, indexed by time.Weekday.
type WeeklyTargets [7]int

// DefaultWeeklyTargets is 8h Monday to Friday and nothing on weekends.
func DefaultWeeklyTargets() WeeklyTargets {
	return WeeklyTargets{
		time.Sunday:    0,
		time.Monday:    480,
		time.Tuesday:   480,
		time.Wednesday: 480,
		time.Thursday:  480,
		time.Friday:    480,
		time.Saturday:  0,
	}
}

func (w WeeklyTargets) For(wd time.Weekday) int { return w[wd] }

// WeekTotal sums all seven weekdays.
func (w WeeklyTargets) WeekTotal() int {
	total := 0
	for _, m := range w {
		total += m
	}
	return total
}

// ValidateTarget checks a single weekday target.
func ValidateTarget(wd time.Weekday, minutes int) error {
	if wd < time.Sunday || wd > time.Saturday {
		return apperr.Validationf("invalid weekday %d", int(wd))
	}
	if minutes < 0 || minutes > MaxDailyTarget {
		return apperr.Validationf("target for %s must be between 0 and %d minutes", wd, MaxDailyTarget)
	}
	return nil
}

// DailyTargetMinutes resolves the expected minutes for date: zero on a day
// off or inside any vacation, otherwise the weekday target.
func DailyTargetMinutes(date Date, weekly WeeklyTargets, dayOffs []Date, vacations []DateRange) int {
	return NewCalendar(weekly, dayOffs, vacations).TargetMinutes(date)
}

// Calendar answers target lookups for many dates against one set of
// exemptions.
type Calendar struct {
	weekly    WeeklyTargets
	dayOffs   map[Date]struct{}
	vacations []DateRange
}

func NewCalendar(weekly WeeklyTargets, dayOffs []Date, vacations []DateRange) *Calendar {
	set := make(map[Date]struct{}, len(dayOffs))
	for _, d := range dayOffs {
		set[d] = struct{}{}
	}
	return &Calendar{weekly: weekly, dayOffs: set, vacations: vacations}
}

func (c *Calendar) IsDayOff(d Date) bool {
	_, ok := c.dayOffs[d]
	return ok
}

func (c *Calendar) InVacation(d Date) bool {
	for _, v := range c.vacations {
		if v.Contains(d) {
			return true
		}
	}
	return false
}

// Exempt is boolean: a day off inside a vacation is exempt once.
func (c *Calendar) Exempt(d Date) bool {
	return c.IsDayOff(d) || c.InVacation(d)
}

func (c *Calendar) TargetMinutes(d Date) int {
	if c.Exempt(d) {
		return 0
	}
	return c.weekly.For(d.Weekday())
}

package timecalc

import (
	"time"

	"github.com/sadopc/worktrack/internal/apperr"
)

// PauseInterval is one paused stretch of an entry. End is nil while the
// entry is paused.
type PauseInterval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Open reports whether the interval has not been closed yet.
func (p PauseInterval) Open() bool { return p.End == nil }

// Length is the closed interval length; open intervals count as zero.
func (p PauseInterval) Length() time.Duration {
	if p.End == nil {
		return 0
	}
	return p.End.Sub(p.Start)
}

// Paused reports whether the last interval is open.
func Paused(pauses []PauseInterval) bool {
	return len(pauses) > 0 && pauses[len(pauses)-1].Open()
}

// TotalPaused sums the closed intervals.
func TotalPaused(pauses []PauseInterval) time.Duration {
	var total time.Duration
	for _, p := range pauses {
		total += p.Length()
	}
	return total
}

// ValidatePauses checks the intervals are chronological, non-overlapping and
// that only the last one is open.
func ValidatePauses(pauses []PauseInterval) error {
	for i, p := range pauses {
		if p.End != nil && p.End.Before(p.Start) {
			return apperr.Validationf("pause %d ends before it starts", i)
		}
		if i == len(pauses)-1 {
			break
		}
		if p.End == nil {
			return apperr.Validationf("pause %d is open but not the last one", i)
		}
		if pauses[i+1].Start.Before(*p.End) {
			return apperr.Validationf("pause %d overlaps pause %d", i, i+1)
		}
	}
	return nil
}

// DurationMinutes returns whole worked minutes between start and end minus
// the closed pauses. Partial minutes are dropped and the result is never
// negative.
func DurationMinutes(start, end time.Time, pauses []PauseInterval) int {
	var pausedMs int64
	for _, p := range pauses {
		pausedMs += p.Length().Milliseconds()
	}
	workedMs := end.Sub(start).Milliseconds() - pausedMs
	if workedMs <= 0 {
		return 0
	}
	return int(workedMs / 60000)
}

// FallbackMinutes is used for stopped entries whose cached duration and
// pauses are unavailable. Paused time is not subtracted.
func FallbackMinutes(start, end time.Time) int {
	return DurationMinutes(start, end, nil)
}

// ElapsedWorked is the live worked time of an unfinished entry at now. An
// open pause counts as paused up to now. Display only; reports never use it.
func ElapsedWorked(start, now time.Time, pauses []PauseInterval) time.Duration {
	paused := TotalPaused(pauses)
	if Paused(pauses) {
		paused += now.Sub(pauses[len(pauses)-1].Start)
	}
	d := now.Sub(start) - paused
	if d < 0 {
		return 0
	}
	return d
}

package store

import (
	"time"

	"github.com/sadopc/worktrack/internal/timecalc"
)

// Entry is one tracked activity session. Start and End are UTC instants.
type Entry struct {
	ID              int64                    `json:"id"`
	Activity        string                   `json:"activity"`
	Start           time.Time                `json:"start"`
	Pauses          []timecalc.PauseInterval `json:"pauses"`
	End             *time.Time               `json:"end,omitempty"`
	DurationMinutes *int                     `json:"duration_minutes,omitempty"`
	Tags            string                   `json:"tags,omitempty"`
	Note            string                   `json:"note,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`

	// PausesUnavailable is set when the stored pause list could not be read.
	PausesUnavailable bool `json:"-"`
}

// Running reports whether the entry has not been stopped.
func (e Entry) Running() bool { return e.End == nil }

// Paused reports whether the entry is unfinished with an open pause.
func (e Entry) Paused() bool { return e.End == nil && timecalc.Paused(e.Pauses) }

// WorkedMinutes is the cached duration of a stopped entry. A stopped entry
// without a cache is recomputed from its timestamps and pauses, or from the
// timestamps alone when the pauses are unavailable. Running entries count 0.
func (e Entry) WorkedMinutes() int {
	if e.End == nil {
		return 0
	}
	if e.DurationMinutes != nil {
		return *e.DurationMinutes
	}
	if e.PausesUnavailable {
		return timecalc.FallbackMinutes(e.Start, *e.End)
	}
	return timecalc.DurationMinutes(e.Start, *e.End, e.Pauses)
}

// Vacation is an inclusive range of exempt dates.
type Vacation struct {
	ID        int64         `json:"id"`
	Start     timecalc.Date `json:"start"`
	End       timecalc.Date `json:"end"`
	CreatedAt time.Time     `json:"created_at"`
}

func (v Vacation) Range() timecalc.DateRange {
	return timecalc.DateRange{Start: v.Start, End: v.End}
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EntryFilter is used to filter entries in queries. From is inclusive and
// To exclusive, both compared against the start instant.
type EntryFilter struct {
	From      *time.Time
	To        *time.Time
	Activity  string
	Limit     int
	Ascending bool
}

// EntryPatch carries the fields a direct edit may change. Nil means keep.
type EntryPatch struct {
	Activity *string
	Tags     *string
	Note     *string
}

func (p EntryPatch) Empty() bool {
	return p.Activity == nil && p.Tags == nil && p.Note == nil
}

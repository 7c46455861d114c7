// Package tracker runs the lifecycle of the single tracked entry:
// start, pause, resume and stop, plus direct edits.
package tracker

import (
	"errors"
	"strings"
	"time"

	"github.com/sadopc/worktrack/internal/apperr"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
)

// State is the lifecycle position of an entry.
type State int

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// StateOf derives the state of e. A nil entry is Idle.
func StateOf(e *store.Entry) State {
	switch {
	case e == nil:
		return Idle
	case e.End != nil:
		return Stopped
	case timecalc.Paused(e.Pauses):
		return Paused
	default:
		return Running
	}
}

// StartRequest describes a new entry.
type StartRequest struct {
	Activity        string
	Tags            string
	Note            string
	BackdateMinutes int
}

// Tracker mutates entries through the store. It assumes a single caller.
type Tracker struct {
	store *store.Store
	now   func() time.Time
}

type Option func(*Tracker)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(s *store.Store, opts ...Option) *Tracker {
	t := &Tracker{store: s, now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Tracker) clock() time.Time {
	return t.now().UTC().Truncate(time.Millisecond)
}

// MaxBackdateMinutes is the furthest back a new entry may start (one week).
const MaxBackdateMinutes = 7 * 24 * 60

// Start creates a new running entry and returns its id. It fails with a
// conflict when another entry is still unfinished.
func (t *Tracker) Start(req StartRequest) (int64, error) {
	activity := strings.TrimSpace(req.Activity)
	if activity == "" {
		return 0, apperr.Validationf("activity must not be empty")
	}
	if req.BackdateMinutes < 0 {
		return 0, apperr.Validationf("backdate must not be negative, got %d", req.BackdateMinutes)
	}
	if req.BackdateMinutes > MaxBackdateMinutes {
		return 0, apperr.Validationf("backdate must be at most %d minutes, got %d", MaxBackdateMinutes, req.BackdateMinutes)
	}

	active, err := t.store.GetActiveEntry()
	if err != nil {
		return 0, apperr.StorageErr("check active entry", err)
	}
	if active != nil {
		return 0, apperr.Conflictf("%q is already being tracked (entry %d)", active.Activity, active.ID)
	}

	start := t.clock().Add(-time.Duration(req.BackdateMinutes) * time.Minute)
	id, err := t.store.InsertEntry(&store.Entry{
		Activity: activity,
		Start:    start,
		Tags:     strings.TrimSpace(req.Tags),
		Note:     strings.TrimSpace(req.Note),
	})
	if errors.Is(err, store.ErrActiveExists) {
		return 0, apperr.Conflictf("another entry is already being tracked")
	}
	if err != nil {
		return 0, apperr.StorageErr("start entry", err)
	}
	return id, nil
}

// unfinished loads id and returns nil when it is missing or stopped.
func (t *Tracker) unfinished(id int64) (*store.Entry, error) {
	e, err := t.store.GetEntry(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.StorageErr("load entry", err)
	}
	if e.End != nil {
		return nil, nil
	}
	return e, nil
}

// Pause opens a pause interval. It reports false when there is nothing to
// pause.
func (t *Tracker) Pause(id int64) (bool, error) {
	e, err := t.unfinished(id)
	if err != nil || e == nil {
		return false, err
	}
	if timecalc.Paused(e.Pauses) {
		return false, nil
	}

	pauses := append(e.Pauses, timecalc.PauseInterval{Start: notBefore(e, t.clock())})
	ok, err := t.store.SavePauses(id, pauses)
	if err != nil {
		return false, apperr.StorageErr("pause entry", err)
	}
	return ok, nil
}

// Resume closes the open pause interval. It reports false when the entry is
// not paused.
func (t *Tracker) Resume(id int64) (bool, error) {
	e, err := t.unfinished(id)
	if err != nil || e == nil {
		return false, err
	}
	if !timecalc.Paused(e.Pauses) {
		return false, nil
	}

	closePause(e.Pauses, t.clock())
	ok, err := t.store.SavePauses(id, e.Pauses)
	if err != nil {
		return false, apperr.StorageErr("resume entry", err)
	}
	return ok, nil
}

// Stop finishes the entry. An open pause is closed at the stop instant so the
// paused tail is not counted as worked.
func (t *Tracker) Stop(id int64) (bool, error) {
	e, err := t.unfinished(id)
	if err != nil || e == nil {
		return false, err
	}

	now := notBefore(e, t.clock())
	if timecalc.Paused(e.Pauses) {
		closePause(e.Pauses, now)
	}
	minutes := timecalc.DurationMinutes(e.Start, now, e.Pauses)

	ok, err := t.store.FinishEntry(id, now, e.Pauses, minutes)
	if err != nil {
		return false, apperr.StorageErr("stop entry", err)
	}
	return ok, nil
}

// notBefore clamps at to the latest instant already recorded on e, so a
// clock that steps backwards cannot produce overlapping pauses.
func notBefore(e *store.Entry, at time.Time) time.Time {
	floor := e.Start
	if n := len(e.Pauses); n > 0 {
		last := e.Pauses[n-1]
		floor = last.Start
		if last.End != nil {
			floor = *last.End
		}
	}
	if at.Before(floor) {
		return floor
	}
	return at
}

// closePause sets the end of the last interval, never before its start.
func closePause(pauses []timecalc.PauseInterval, at time.Time) {
	last := &pauses[len(pauses)-1]
	if at.Before(last.Start) {
		at = last.Start
	}
	last.End = &at
}

// Edit changes label, tags or note. It reports false when nothing changed.
func (t *Tracker) Edit(id int64, patch store.EntryPatch) (bool, error) {
	if patch.Activity != nil {
		a := strings.TrimSpace(*patch.Activity)
		if a == "" {
			return false, apperr.Validationf("activity must not be empty")
		}
		patch.Activity = &a
	}
	if patch.Empty() {
		return false, nil
	}
	ok, err := t.store.UpdateEntry(id, patch)
	if err != nil {
		return false, apperr.StorageErr("edit entry", err)
	}
	return ok, nil
}

func (t *Tracker) Delete(id int64) (bool, error) {
	ok, err := t.store.DeleteEntry(id)
	if err != nil {
		return false, apperr.StorageErr("delete entry", err)
	}
	return ok, nil
}

// Active returns the unfinished entry, or nil when idle.
func (t *Tracker) Active() (*store.Entry, error) {
	e, err := t.store.GetActiveEntry()
	if err != nil {
		return nil, apperr.StorageErr("load active entry", err)
	}
	return e, nil
}

// Elapsed is the live worked time of e at the tracker's clock. Stopped
// entries return their recorded minutes.
func (t *Tracker) Elapsed(e *store.Entry) time.Duration {
	if e == nil {
		return 0
	}
	if e.End != nil {
		return time.Duration(e.WorkedMinutes()) * time.Minute
	}
	return timecalc.ElapsedWorked(e.Start, t.clock(), e.Pauses)
}

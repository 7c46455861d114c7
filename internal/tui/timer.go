package tui

import (
	"time"

	"github.com/sadopc/worktrack/internal/service"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/tracker"
)

// timerModel mirrors the active entry held by the service. The database is
// the source of truth; the model only interpolates elapsed time between
// syncs and watches for idleness.
type timerModel struct {
	svc *service.Service
	now func() time.Time

	state    tracker.State
	entry    *store.Entry
	elapsed  time.Duration
	syncedAt time.Time

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	idleAction   string
	isIdle       bool
}

func newTimerModel(svc *service.Service) timerModel {
	t := timerModel{
		svc: svc,
		now: time.Now,
	}
	t.loadIdleConfig()
	t.lastActivity = t.now()
	t.sync()
	return t
}

func (t *timerModel) loadIdleConfig() {
	t.idleTimeout, t.idleAction = t.svc.IdleConfig()
}

// sync reloads the active entry from the service.
func (t *timerModel) sync() error {
	res := t.svc.Current()
	if err := res.Err(); err != nil {
		return err
	}
	t.state = res.Data.State
	t.entry = res.Data.Entry
	t.elapsed = res.Data.Elapsed
	t.syncedAt = t.now()
	if t.state != tracker.Paused {
		t.isIdle = false
	}
	return nil
}

func (t *timerModel) start(req tracker.StartRequest) (*store.Entry, error) {
	res := t.svc.Start(req)
	if err := res.Err(); err != nil {
		return nil, err
	}
	t.lastActivity = t.now()
	t.isIdle = false
	return res.Data, t.sync()
}

// stop returns the stopped entry, or nil when nothing was tracked.
func (t *timerModel) stop() (*store.Entry, error) {
	if !t.running() {
		return nil, nil
	}
	id := t.entry.ID
	if err := t.svc.Stop(id).Err(); err != nil {
		return nil, err
	}
	res := t.svc.Entry(id)
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Data, t.sync()
}

func (t *timerModel) pause() error {
	if t.state != tracker.Running {
		return nil
	}
	if err := t.svc.Pause(t.entry.ID).Err(); err != nil {
		return err
	}
	return t.sync()
}

func (t *timerModel) resume() error {
	if t.state != tracker.Paused {
		return nil
	}
	if err := t.svc.Resume(t.entry.ID).Err(); err != nil {
		return err
	}
	t.isIdle = false
	t.lastActivity = t.now()
	return t.sync()
}

func (t *timerModel) toggle() error {
	switch t.state {
	case tracker.Running:
		return t.pause()
	case tracker.Paused:
		return t.resume()
	}
	return nil
}

// tick applies the idle policy. It returns the entry when idleness stopped it.
func (t *timerModel) tick() (*store.Entry, error) {
	if t.state != tracker.Running || t.idleTimeout <= 0 || t.isIdle {
		return nil, nil
	}
	if t.now().Sub(t.lastActivity) <= t.idleTimeout {
		return nil, nil
	}
	if t.idleAction == "stop" {
		return t.stop()
	}
	if err := t.pause(); err != nil {
		return nil, err
	}
	t.isIdle = true
	return nil, nil
}

// recordActivity resumes an entry that idleness paused.
func (t *timerModel) recordActivity() error {
	t.lastActivity = t.now()
	if t.isIdle && t.state == tracker.Paused {
		return t.resume()
	}
	return nil
}

func (t timerModel) running() bool {
	return t.state == tracker.Running || t.state == tracker.Paused
}

func (t timerModel) paused() bool {
	return t.state == tracker.Paused
}

func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case tracker.Running:
		return t.elapsed + t.now().Sub(t.syncedAt)
	case tracker.Paused:
		return t.elapsed
	}
	return 0
}

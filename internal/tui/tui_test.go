package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/worktrack/internal/service"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
	"github.com/sadopc/worktrack/internal/tracker"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*service.Service, *store.Store, *testClock) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	// Monday 2024-03-04 09:00 UTC.
	clock := &testClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	svc := service.New(s, service.Options{Location: time.UTC, Clock: clock.now})
	return svc, s, clock
}

func newTestTimer(t *testing.T) (timerModel, *service.Service, *testClock) {
	t.Helper()
	svc, _, clock := newTestService(t)
	tm := newTimerModel(svc)
	tm.now = clock.now
	tm.lastActivity = clock.now()
	if err := tm.sync(); err != nil {
		t.Fatal(err)
	}
	return tm, svc, clock
}

func startReq(activity string) tracker.StartRequest {
	return tracker.StartRequest{Activity: activity}
}

// ============================================================
// Timer model
// ============================================================

func TestTimerStartStop(t *testing.T) {
	tm, _, clock := newTestTimer(t)
	if tm.running() {
		t.Fatal("timer should start idle")
	}

	entry, err := tm.start(startReq("Dev"))
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.ID == 0 {
		t.Fatal("start should return the new entry")
	}
	if !tm.running() || tm.paused() {
		t.Fatal("timer should be running after start")
	}
	if tm.entry.Activity != "Dev" {
		t.Fatalf("activity = %q", tm.entry.Activity)
	}

	clock.advance(45 * time.Minute)
	stopped, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if stopped == nil || stopped.WorkedMinutes() != 45 {
		t.Fatalf("stopped entry = %+v", stopped)
	}
	if tm.running() {
		t.Fatal("timer should be idle after stop")
	}
}

func TestTimerStopWhenIdle(t *testing.T) {
	tm, _, _ := newTestTimer(t)
	entry, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if entry != nil {
		t.Fatal("stop on idle timer should return nil")
	}
}

func TestTimerStartConflict(t *testing.T) {
	tm, _, _ := newTestTimer(t)
	if _, err := tm.start(startReq("Dev")); err != nil {
		t.Fatal(err)
	}
	if _, err := tm.start(startReq("Other")); err == nil {
		t.Fatal("second start should fail")
	}
}

func TestTimerPauseResume(t *testing.T) {
	tm, _, _ := newTestTimer(t)
	tm.start(startReq("Dev"))

	if err := tm.pause(); err != nil {
		t.Fatal(err)
	}
	if !tm.paused() || !tm.running() {
		t.Fatal("paused timer should be paused and still running")
	}

	if err := tm.resume(); err != nil {
		t.Fatal(err)
	}
	if tm.paused() {
		t.Fatal("timer should not be paused after resume")
	}
}

func TestTimerToggle(t *testing.T) {
	tm, _, _ := newTestTimer(t)
	if err := tm.toggle(); err != nil {
		t.Fatal(err)
	}
	if tm.running() {
		t.Fatal("toggle on idle timer should be a no-op")
	}

	tm.start(startReq("Dev"))
	tm.toggle()
	if !tm.paused() {
		t.Fatal("toggle should pause")
	}
	tm.toggle()
	if tm.paused() {
		t.Fatal("toggle should resume")
	}
}

func TestTimerElapsedExcludesPauses(t *testing.T) {
	tm, _, clock := newTestTimer(t)
	if tm.currentElapsed() != 0 {
		t.Fatal("idle timer should have 0 elapsed")
	}

	tm.start(startReq("Dev"))
	clock.advance(20 * time.Minute)
	if got := tm.currentElapsed(); got != 20*time.Minute {
		t.Fatalf("elapsed = %v, want 20m", got)
	}

	tm.pause()
	clock.advance(10 * time.Minute)
	if got := tm.currentElapsed(); got != 20*time.Minute {
		t.Fatalf("elapsed while paused = %v, want 20m", got)
	}

	tm.resume()
	clock.advance(5 * time.Minute)
	if got := tm.currentElapsed(); got != 25*time.Minute {
		t.Fatalf("elapsed after resume = %v, want 25m", got)
	}
}

func TestTimerSyncPicksUpExistingEntry(t *testing.T) {
	svc, _, clock := newTestService(t)
	if r := svc.Start(startReq("Earlier")); !r.Success {
		t.Fatalf("start: %+v", r.Error)
	}
	clock.advance(time.Hour)

	tm := newTimerModel(svc)
	tm.now = clock.now
	tm.sync()
	if !tm.running() || tm.entry.Activity != "Earlier" {
		t.Fatal("timer should show the entry started elsewhere")
	}
	if tm.currentElapsed() != time.Hour {
		t.Fatalf("elapsed = %v, want 1h", tm.currentElapsed())
	}
}

func TestTimerIdlePause(t *testing.T) {
	tm, _, clock := newTestTimer(t)
	tm.idleTimeout = 5 * time.Minute
	tm.idleAction = "pause"
	tm.start(startReq("Dev"))

	clock.advance(4 * time.Minute)
	tm.tick()
	if tm.isIdle {
		t.Fatal("should not be idle before the timeout")
	}

	clock.advance(2 * time.Minute)
	stopped, err := tm.tick()
	if err != nil {
		t.Fatal(err)
	}
	if stopped != nil {
		t.Fatal("pause action should not stop the entry")
	}
	if !tm.isIdle || !tm.paused() {
		t.Fatal("timer should pause when idle")
	}

	// Activity resumes the entry.
	clock.advance(time.Minute)
	if err := tm.recordActivity(); err != nil {
		t.Fatal(err)
	}
	if tm.isIdle || tm.paused() {
		t.Fatal("activity should resume an idle-paused entry")
	}
}

func TestTimerIdleStop(t *testing.T) {
	tm, _, clock := newTestTimer(t)
	tm.idleTimeout = time.Minute
	tm.idleAction = "stop"
	tm.start(startReq("Dev"))

	clock.advance(2 * time.Minute)
	stopped, err := tm.tick()
	if err != nil {
		t.Fatal(err)
	}
	if stopped == nil {
		t.Fatal("stop action should stop the entry")
	}
	if tm.running() {
		t.Fatal("timer should be idle after idle stop")
	}
}

func TestTimerIdleDisabled(t *testing.T) {
	tm, _, clock := newTestTimer(t)
	tm.idleTimeout = 0
	tm.start(startReq("Dev"))

	clock.advance(24 * time.Hour)
	tm.tick()
	if tm.paused() {
		t.Fatal("a zero timeout disables idle detection")
	}
}

func TestTimerManualPauseIsNotIdle(t *testing.T) {
	tm, _, clock := newTestTimer(t)
	tm.idleTimeout = time.Minute
	tm.start(startReq("Dev"))
	tm.pause()

	clock.advance(10 * time.Minute)
	tm.recordActivity()
	if !tm.paused() {
		t.Fatal("activity must not resume a manual pause")
	}
}

func TestTimerLoadsIdleSettings(t *testing.T) {
	svc, _, _ := newTestService(t)
	if r := svc.SetSetting(service.SettingIdleTimeout, "60"); !r.Success {
		t.Fatal(r.Error)
	}
	if r := svc.SetSetting(service.SettingIdleAction, "stop"); !r.Success {
		t.Fatal(r.Error)
	}
	tm := newTimerModel(svc)
	if tm.idleTimeout != time.Minute || tm.idleAction != "stop" {
		t.Fatalf("idle config = %v %q", tm.idleTimeout, tm.idleAction)
	}
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{90 * time.Second, "00:01:30"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{-time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	if got := formatHours(90); got != "1.5h" {
		t.Fatalf("formatHours(90) = %q", got)
	}
}

func TestHoursConversion(t *testing.T) {
	tests := []struct {
		hours   string
		minutes int
	}{
		{"8", 480},
		{"7.5", 450},
		{" 0 ", 0},
		{"junk", 0},
	}
	for _, tt := range tests {
		if got := hoursToMinutes(tt.hours); got != tt.minutes {
			t.Errorf("hoursToMinutes(%q) = %d, want %d", tt.hours, got, tt.minutes)
		}
	}
	if got := minutesToHours(450); got != "7.5" {
		t.Errorf("minutesToHours(450) = %q", got)
	}
	if got := minutesToHours(480); got != "8" {
		t.Errorf("minutesToHours(480) = %q", got)
	}
}

func TestValidateHours(t *testing.T) {
	for _, ok := range []string{"0", "8", "7.5", "24"} {
		if err := validateHours(ok); err != nil {
			t.Errorf("validateHours(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "-1", "24.5", "eight"} {
		if err := validateHours(bad); err == nil {
			t.Errorf("validateHours(%q) should fail", bad)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a longer activity", 8); got != "a longe…" {
		t.Fatalf("got %q", got)
	}
}

func TestMergeTimeOff(t *testing.T) {
	days := []timecalc.Date{timecalc.MustParseDate("2024-01-05"), timecalc.MustParseDate("2024-03-01")}
	vacations := []store.Vacation{
		{ID: 1, Start: timecalc.MustParseDate("2024-02-10"), End: timecalc.MustParseDate("2024-02-14")},
	}
	items := mergeTimeOff(days, vacations)
	if len(items) != 3 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].vacation != nil || items[1].vacation == nil || items[2].vacation != nil {
		t.Fatalf("items not ordered by date: %+v", items)
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 view names, got %d", len(viewNames))
	}
	if viewNames[viewTimeOff] != "Time Off" {
		t.Fatalf("viewNames[viewTimeOff] = %q", viewNames[viewTimeOff])
	}
}

// ============================================================
// Dashboard model
// ============================================================

func TestDashboardInit(t *testing.T) {
	svc, _, _ := newTestService(t)
	d := newDashboardModel(svc)

	if d.isRunning() || d.isPaused() {
		t.Fatal("dashboard timer should be idle initially")
	}
	if d.elapsed() != 0 {
		t.Fatal("dashboard should have 0 elapsed initially")
	}
}

func TestDashboardStartStop(t *testing.T) {
	svc, _, clock := newTestService(t)
	d := newDashboardModel(svc)
	d.timer.now = clock.now

	d, _ = d.startTimer(startReq("Dev"))
	if !d.isRunning() {
		t.Fatal("timer should be running")
	}

	clock.advance(30 * time.Minute)
	d, _ = d.stopTimer()
	if d.isRunning() {
		t.Fatal("timer should be stopped")
	}
}

func TestDashboardStartKeyOpensForm(t *testing.T) {
	svc, _, _ := newTestService(t)
	d := newDashboardModel(svc)

	d, _ = d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if !d.formActive || d.form == nil {
		t.Fatal("s should open the start form")
	}

	d, _ = d.update(tea.KeyMsg{Type: tea.KeyEsc})
	if d.formActive {
		t.Fatal("esc should close the form")
	}
}

func TestDashboardLoadData(t *testing.T) {
	svc, _, clock := newTestService(t)
	svc.Start(startReq("Dev"))
	clock.advance(2 * time.Hour)
	svc.Stop(1)

	d := newDashboardModel(svc)
	msg := d.loadData()()
	data, ok := msg.(dashboardDataMsg)
	if !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	if data.today == nil || data.today.TotalWorkedMinutes != 120 {
		t.Fatalf("today = %+v", data.today)
	}
	if data.week == nil || data.week.TotalTargetMinutes != 2400 {
		t.Fatalf("week = %+v", data.week)
	}
	if len(data.recentEntries) != 1 {
		t.Fatalf("recent = %d", len(data.recentEntries))
	}

	d, _ = d.update(data)
	d.setSize(100, 40)
	if out := d.view(); !strings.Contains(out, "Recent Entries") || !strings.Contains(out, "Dev") {
		t.Fatalf("dashboard view missing data:\n%s", out)
	}
}

// ============================================================
// Entries, reports and time off
// ============================================================

func TestEntriesRefreshAndNavigate(t *testing.T) {
	svc, _, clock := newTestService(t)
	svc.Start(startReq("Dev"))
	clock.advance(time.Hour)
	svc.Stop(1)

	m := newEntriesModel(svc)
	m, _ = m.update(m.refresh()())
	if len(m.entries) != 1 {
		t.Fatalf("entries = %d", len(m.entries))
	}

	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.month != time.February || m.year != 2024 {
		t.Fatalf("month = %s %d", m.month, m.year)
	}
	m, _ = m.update(cmd())
	if len(m.entries) != 0 {
		t.Fatalf("February should be empty, got %d", len(m.entries))
	}
}

func TestEntriesDeleteAndEdit(t *testing.T) {
	svc, _, clock := newTestService(t)
	svc.Start(startReq("Dev"))
	clock.advance(time.Hour)
	svc.Stop(1)

	m := newEntriesModel(svc)
	m, _ = m.update(m.refresh()())

	m.editingID = 1
	*m.formActivity = "Review"
	*m.formTags = "code"
	*m.formNote = ""
	m.saveEdit()
	e := svc.Entry(1).Data
	if e.Activity != "Review" || e.Tags != "code" {
		t.Fatalf("entry not edited: %+v", e)
	}

	m.deleteEntry()
	if r := svc.Entry(1); r.Success {
		t.Fatal("entry should be deleted")
	}
}

func TestReportsRefresh(t *testing.T) {
	svc, _, clock := newTestService(t)
	svc.Start(startReq("Dev"))
	clock.advance(3 * time.Hour)
	svc.Stop(1)

	r := newReportsModel(svc)
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())
	if r.report == nil || r.report.TotalWorkedMinutes != 180 {
		t.Fatalf("report = %+v", r.report)
	}
	if len(r.report.Daily) != 31 {
		t.Fatalf("March should have 31 days, got %d", len(r.report.Daily))
	}
	if out := r.view(); !strings.Contains(out, "March 2024") {
		t.Fatalf("view missing title:\n%s", out)
	}

	r, cmd := r.update(tea.KeyMsg{Type: tea.KeyEnter})
	if r.mode != reportWeekly {
		t.Fatal("enter should switch to weekly mode")
	}
	r, _ = r.update(cmd())
	if len(r.report.Daily) != 7 || r.report.From != timecalc.MustParseDate("2024-03-04") {
		t.Fatalf("week report = %s..%s", r.report.From, r.report.To)
	}

	r, cmd = r.update(tea.KeyMsg{Type: tea.KeyLeft})
	r, _ = r.update(cmd())
	if r.report.From != timecalc.MustParseDate("2024-02-26") {
		t.Fatalf("previous week starts %s", r.report.From)
	}
}

func TestReportsIgnoresStaleData(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := newReportsModel(svc)
	stale := r.refresh()()
	r.offset = 1
	r, _ = r.update(stale)
	if r.report != nil {
		t.Fatal("data for another offset should be ignored")
	}
}

func TestTimeOffAddAndRemove(t *testing.T) {
	svc, _, _ := newTestService(t)
	m := newTimeOffModel(svc)

	m.formType = "dayoff"
	*m.formStart = "2024-03-29"
	m.save()

	m.formType = "vacation"
	*m.formStart = "2024-07-01"
	*m.formEnd = "2024-07-05"
	m.save()

	m, _ = m.update(m.refresh()())
	if len(m.items) != 2 {
		t.Fatalf("items = %d", len(m.items))
	}
	if m.items[1].vacation == nil || m.items[1].vacation.Range().Days() != 5 {
		t.Fatalf("vacation item = %+v", m.items[1])
	}

	m.remove(m.items[0])
	m, _ = m.update(m.refresh()())
	if len(m.items) != 1 || m.items[0].vacation == nil {
		t.Fatalf("items after remove = %+v", m.items)
	}

	m.formType = "vacation"
	*m.formStart = "2024-07-05"
	*m.formEnd = "2024-07-01"
	msg := m.save()()
	if st, ok := msg.(statusMsg); !ok || !st.isError {
		t.Fatalf("reversed vacation should report an error, got %#v", msg)
	}
}

func TestSettingsSave(t *testing.T) {
	svc, _, _ := newTestService(t)
	s := newSettingsModel(svc)
	s, _ = s.update(s.refresh()())

	for i := range weekOrder {
		*s.targetHours[i] = "7.5"
	}
	*s.idleTimeout = "10"
	*s.idleAction = "stop"
	*s.weekStart = "sunday"
	if err := s.saveSettings(); err != nil {
		t.Fatal(err)
	}

	targets := svc.Targets().Data
	if targets.For(time.Saturday) != 450 || targets.WeekTotal() != 7*450 {
		t.Fatalf("targets = %v", targets)
	}
	timeout, action := svc.IdleConfig()
	if timeout != 10*time.Minute || action != "stop" {
		t.Fatalf("idle = %v %q", timeout, action)
	}
	if svc.WeekStart() != time.Sunday {
		t.Fatal("week start not saved")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	svc, _, _ := newTestService(t)
	app := NewApp(svc)

	if app.activeView != viewDashboard {
		t.Fatal("default view should be dashboard")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("help and export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	svc, _, _ := newTestService(t)
	app := NewApp(svc)
	app.width = 120
	app.height = 40

	for v := range viewNames {
		app.activeView = viewState(v)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppTabSwitching(t *testing.T) {
	svc, _, _ := newTestService(t)
	var model tea.Model = NewApp(svc)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	if model.(App).activeView != viewReports {
		t.Fatal("3 should open reports")
	}
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.(App).activeView != viewTimeOff {
		t.Fatal("tab should move to the next view")
	}
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.(App).activeView != viewDashboard {
		t.Fatal("tab should wrap around")
	}
}

func TestAppExportPicker(t *testing.T) {
	svc, _, _ := newTestService(t)
	var model tea.Model = NewApp(svc)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	app := model.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	if year, month := app.exportMonth(); year != 2024 || month != time.March {
		t.Fatalf("export month = %s %d", month, year)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	if model.(App).exportCursor != 1 {
		t.Fatal("down should move the cursor")
	}
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(App).exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	svc, _, _ := newTestService(t)
	app := NewApp(svc)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	svc, _, _ := newTestService(t)
	app := NewApp(svc)
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	svc, _, _ := newTestService(t)
	var model tea.Model = NewApp(svc)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model, _ = model.Update(statusMsg{text: "test status"})

	if footer := model.(App).renderFooter(); !strings.Contains(footer, "test status") {
		t.Fatal("footer should contain status message")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := map[string]func() string{
		"activeTab":   func() string { return activeTabStyle.Render("test") },
		"panel":       func() string { return panelStyle.Render("test") },
		"timer":       func() string { return timerStyle.Render("test") },
		"timeOff":     func() string { return timeOffStyle.Render("test") },
		"balancePlus": func() string { return balanceStyle(10).Render("test") },
		"balanceMin":  func() string { return balanceStyle(-10).Render("test") },
	}
	for name, fn := range styles {
		if fn() == "" {
			t.Fatalf("style %q rendered empty", name)
		}
	}
}

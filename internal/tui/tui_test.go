package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/tminus/internal/config"
	"github.com/sadopc/tminus/internal/countdown"
	"github.com/sadopc/tminus/internal/cta"
	"github.com/sadopc/tminus/internal/layout"
	"github.com/sadopc/tminus/internal/store"
)

var testNow = time.Date(2025, 11, 5, 22, 58, 59, 0, time.UTC)

type testEnv struct {
	store *store.Store
	clock *countdown.ManualClock
	sched *countdown.ManualScheduler
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	return testEnv{
		store: newTestStore(t),
		clock: countdown.NewManualClock(testNow),
		sched: countdown.NewManualScheduler(),
	}
}

func (e testEnv) options(h cta.Handler) Options {
	return Options{
		Store:     e.store,
		Clock:     e.clock,
		Scheduler: e.sched,
		Handler:   h,
		ExportDir: os.TempDir(),
	}
}

// Target is 1d 1h 1m 1s after testNow.
func testCountdown(t *testing.T) config.Countdown {
	t.Helper()
	cd, err := config.Options{
		Target:      "2025-11-07T00:00:00Z",
		Title:       "Launch",
		ButtonText:  "Go",
		FormatAbove: "md",
	}.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	return cd
}

func savePreset(t *testing.T, s *store.Store, cd config.Countdown) *store.Countdown {
	t.Helper()
	c, err := s.CreateCountdown(PresetFromCountdown("launch", cd))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newTestApp(t *testing.T, e testEnv, preset *store.Countdown, h cta.Handler) App {
	t.Helper()
	a, err := NewApp(testCountdown(t), preset, e.options(h))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Close)
	return a
}

func send(a App, msg tea.Msg) (App, tea.Cmd) {
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

// drain runs cmd and feeds its message back, following one level of batches.
func drain(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	if cmd == nil {
		return a
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			a, _ = send(a, c())
		}
		return a
	}
	if msg == nil {
		return a
	}
	a, _ = send(a, msg)
	return a
}

func nextSnapshot(t *testing.T, a App) snapshotMsg {
	t.Helper()
	select {
	case m := <-a.env.updates:
		return m
	default:
		t.Fatal("no snapshot published")
	}
	return snapshotMsg{}
}

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

// ============================================================
// App lifecycle
// ============================================================

func TestNewAppRequiresStore(t *testing.T) {
	_, err := NewApp(testCountdown(t), nil, Options{})
	if err == nil {
		t.Fatal("expected error without store")
	}
}

func TestNewAppStartsEngine(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)

	if e.sched.Active() != 1 {
		t.Fatalf("active handles = %d, want 1", e.sched.Active())
	}
	if e.sched.Interval(1) != countdown.DefaultInterval {
		t.Fatalf("interval = %v", e.sched.Interval(1))
	}
	snap := nextSnapshot(t, a)
	if snap.b.Compact() != "1:01:01:01" {
		t.Fatalf("initial snapshot = %s", snap.b.Compact())
	}
	if a.countdown.snap.Days != 1 {
		t.Fatalf("model snapshot days = %d", a.countdown.snap.Days)
	}
}

func TestCloseReleasesResources(t *testing.T) {
	e := newTestEnv(t)
	a, err := NewApp(testCountdown(t), nil, e.options(nil))
	if err != nil {
		t.Fatal(err)
	}
	if a.env.cells.Listeners() != 1 {
		t.Fatalf("listeners = %d, want 1", a.env.cells.Listeners())
	}

	a.Close()
	if e.sched.Active() != 0 {
		t.Fatalf("active handles after close = %d", e.sched.Active())
	}
	if a.env.cells.Listeners() != 0 {
		t.Fatalf("listeners after close = %d", a.env.cells.Listeners())
	}
	a.Close()
}

func TestQuitClosesApp(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)

	_, cmd := send(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if e.sched.Active() != 0 {
		t.Fatal("quit should cancel the schedule")
	}
}

// ============================================================
// Ticking and layout
// ============================================================

func TestTickDeliversSnapshot(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)
	nextSnapshot(t, a)

	e.clock.Advance(time.Second)
	e.sched.Fire()

	msg := nextSnapshot(t, a)
	a, cmd := send(a, msg)
	if cmd == nil {
		t.Fatal("snapshot should re-arm the listener")
	}
	if a.countdown.snap.Compact() != "1:01:01:00" {
		t.Fatalf("snapshot = %s", a.countdown.snap.Compact())
	}
}

func TestStaleSnapshotIgnored(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)

	stale := snapshotMsg{gen: a.countdown.gen - 1, b: countdown.Breakdown{}}
	a, _ = send(a, stale)
	if a.countdown.snap.Done() {
		t.Fatal("stale snapshot should be dropped")
	}
}

func TestCompletionEmitsStatus(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)
	nextSnapshot(t, a)

	e.clock.Advance(48 * time.Hour)
	e.sched.Fire()

	c, cmd := a.countdown.update(nextSnapshot(t, a))
	if !c.done() || !c.snap.Done() {
		t.Fatal("countdown should be done")
	}
	if cmd == nil {
		t.Fatal("completion should emit a status")
	}
	a, _ = send(a, cmd())
	if !strings.Contains(a.status, cta.DoneLabel) {
		t.Fatalf("status = %q", a.status)
	}
}

func TestWindowResizeSwitchesMode(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)

	a, _ = send(a, tea.WindowSizeMsg{Width: 150, Height: 40})
	if a.countdown.mode() != layout.Full {
		t.Fatalf("150 cols (1200px) should be full, got %s", a.countdown.mode())
	}
	if !strings.Contains(a.View(), "DAYS") {
		t.Fatal("full layout should label the days block")
	}

	a, _ = send(a, tea.WindowSizeMsg{Width: 80, Height: 40})
	if a.countdown.mode() != layout.Compact {
		t.Fatalf("80 cols (640px) should be compact, got %s", a.countdown.mode())
	}
	if !strings.Contains(a.View(), "1:01:01:01") {
		t.Fatal("compact layout should show D:HH:MM:SS")
	}
}

func TestSettingsSavedChangesCellWidth(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)

	a, _ = send(a, tea.WindowSizeMsg{Width: 100, Height: 40})
	if a.countdown.mode() != layout.Compact {
		t.Fatal("100 cols at 8px should be compact")
	}

	a, _ = send(a, settingsSavedMsg{cellWidth: 10})
	if a.countdown.mode() != layout.Full {
		t.Fatal("100 cols at 10px should be full")
	}
}

// ============================================================
// Button
// ============================================================

func TestEarlyPressShowsNotice(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)
	a, _ = send(a, tea.WindowSizeMsg{Width: 120, Height: 40})

	a, cmd := send(a, enterKey)
	a = drain(t, a, cmd)
	if a.notice == nil {
		t.Fatal("early press should show a notice")
	}
	if !strings.Contains(a.notice.Text, "Wednesday, November 5, 2025") {
		t.Fatalf("notice should mention today: %q", a.notice.Text)
	}
	if !strings.Contains(a.View(), "Not yet") {
		t.Fatal("notice should be rendered")
	}

	a, _ = send(a, enterKey)
	if a.notice != nil {
		t.Fatal("enter should dismiss the notice")
	}
}

func TestPressAfterCompletionIsNoop(t *testing.T) {
	e := newTestEnv(t)
	e.clock.Set(testNow.Add(72 * time.Hour))
	a := newTestApp(t, e, nil, nil)

	a, cmd := send(a, enterKey)
	a = drain(t, a, cmd)
	if a.notice != nil {
		t.Fatal("press after completion should not show a notice")
	}
}

func TestPressUsesHandler(t *testing.T) {
	e := newTestEnv(t)
	calls := 0
	a := newTestApp(t, e, nil, func(context.Context) error {
		calls++
		return nil
	})

	a, cmd := send(a, enterKey)
	a = drain(t, a, cmd)
	if calls != 1 {
		t.Fatalf("handler calls = %d", calls)
	}
	if a.notice != nil {
		t.Fatal("handler should replace the notice")
	}
}

func TestPressHandlerErrorShowsStatus(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, func(context.Context) error {
		return errors.New("boom")
	})

	a, cmd := send(a, enterKey)
	a = drain(t, a, cmd)
	if !a.statusErr || !strings.Contains(a.status, "boom") {
		t.Fatalf("status = %q (err %v)", a.status, a.statusErr)
	}
}

func TestPressRecordedForPreset(t *testing.T) {
	e := newTestEnv(t)
	preset := savePreset(t, e.store, testCountdown(t))
	a := newTestApp(t, e, preset, nil)

	_, cmd := send(a, enterKey)
	drain(t, a, cmd)

	total, early, err := e.store.CountPresses(preset.ID)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || early != 1 {
		t.Fatalf("presses = %d/%d, want 1/1", total, early)
	}
}

func TestPressNotRecordedWhenDisabled(t *testing.T) {
	e := newTestEnv(t)
	preset := savePreset(t, e.store, testCountdown(t))
	e.store.SetSetting("log_presses", "false")
	a := newTestApp(t, e, preset, nil)

	_, cmd := send(a, enterKey)
	drain(t, a, cmd)

	total, _, _ := e.store.CountPresses(preset.ID)
	if total != 0 {
		t.Fatalf("presses = %d, want 0", total)
	}
}

// ============================================================
// Presets
// ============================================================

func TestPresetSelectedReplacesCountdown(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)
	oldGen := a.countdown.gen

	cd := testCountdown(t)
	cd.Target = testNow.Add(2 * time.Hour)
	cd.Title = "Soon"
	preset := savePreset(t, e.store, cd)

	a, _ = send(a, presetSelectedMsg{preset: *preset})
	if a.countdown.gen == oldGen {
		t.Fatal("generation should advance")
	}
	if e.sched.Active() != 1 {
		t.Fatalf("active handles = %d, want 1", e.sched.Active())
	}
	if a.countdown.widget.Title != "Soon" {
		t.Fatalf("title = %q", a.countdown.widget.Title)
	}
	if a.countdown.snap.Hours != 2 {
		t.Fatalf("hours = %d", a.countdown.snap.Hours)
	}
	if a.activeView != viewCountdown {
		t.Fatal("selecting a preset should show the countdown")
	}
}

func TestPresetSelectedInvalid(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)

	bad := store.Countdown{Name: "bad", Target: testNow, FormatAbove: "huge"}
	a, _ = send(a, presetSelectedMsg{preset: bad})
	if !a.statusErr {
		t.Fatal("invalid preset should report an error")
	}
	if a.countdown.widget.Title != "Launch" {
		t.Fatal("invalid preset should keep the current countdown")
	}
}

func TestPresetsRefreshLoadsList(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)
	preset := savePreset(t, e.store, testCountdown(t))
	e.store.RecordPress(preset.ID, testNow, false)

	a, _ = send(a, tea.WindowSizeMsg{Width: 120, Height: 40})
	a, cmd := send(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	a = drain(t, a, cmd)

	if len(a.presets.presets) != 1 {
		t.Fatalf("presets = %d", len(a.presets.presets))
	}
	if a.presets.presses[preset.ID][0] != 1 {
		t.Fatal("press count not loaded")
	}
	if !strings.Contains(a.View(), "launch") {
		t.Fatal("preset list should show the preset name")
	}

	_, cmd = send(a, enterKey)
	if cmd == nil {
		t.Fatal("enter should select the preset")
	}
	if _, ok := cmd().(presetSelectedMsg); !ok {
		t.Fatal("expected presetSelectedMsg")
	}
}

func TestPresetOptionsResolve(t *testing.T) {
	cd := testCountdown(t)
	cd.Accent = "#FF6B6B"
	p := PresetFromCountdown("x", cd)

	got, err := PresetOptions(p).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Target.Equal(cd.Target) {
		t.Fatalf("target = %v, want %v", got.Target, cd.Target)
	}
	if got.Threshold.Pixels() != 900 || got.Accent != "#FF6B6B" || got.Title != "Launch" {
		t.Fatalf("resolved = %+v", got)
	}
}

func TestPresetTargetRendersLocalTime(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("EST", -5*3600)
	t.Cleanup(func() { time.Local = orig })

	s := newTestStore(t)
	cd, err := config.Options{Target: "2025-11-07T00:00:00", Title: "Launch", FormatAbove: "md"}.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	savePreset(t, s, cd)

	p, err := s.GetCountdownByName("launch")
	if err != nil {
		t.Fatal(err)
	}
	got, err := PresetOptions(*p).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	out := Render(NewWidget(got), countdown.Derive(got.Target, testNow), layout.Full, 120)
	if !strings.Contains(out, "Friday, November 7, 2025 at 12:00 AM") {
		t.Fatalf("target line should use local time:\n%s", out)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		target time.Time
		want   string
	}{
		{testNow.Add(25*time.Hour + time.Minute), "1d 1h"},
		{testNow.Add(3*time.Hour + 5*time.Minute), "3h 5m"},
		{testNow.Add(500 * time.Microsecond), "done"},
		{testNow.Add(-time.Hour), "done"},
	}
	for _, tc := range cases {
		if got := formatRemaining(countdown.Derive(tc.target, testNow)); got != tc.want {
			t.Errorf("formatRemaining(%v) = %q, want %q", tc.target.Sub(testNow), got, tc.want)
		}
	}
}

// ============================================================
// Presses and export
// ============================================================

func TestPressesDateRange(t *testing.T) {
	e := newTestEnv(t)
	env := &environment{store: e.store, clock: e.clock}
	r := newPressesModel(env)

	from, to := r.dateRange()
	if !to.Equal(time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("to = %v", to)
	}
	if to.Sub(from) != 7*24*time.Hour {
		t.Fatalf("range = %v", to.Sub(from))
	}

	r.offset = 1
	from2, to2 := r.dateRange()
	if !to2.Equal(from) || to2.Sub(from2) != 7*24*time.Hour {
		t.Fatal("offset should move back one window")
	}
}

func TestPressesViewShowsSummary(t *testing.T) {
	e := newTestEnv(t)
	a := newTestApp(t, e, nil, nil)
	preset := savePreset(t, e.store, testCountdown(t))
	e.store.RecordPress(preset.ID, testNow.Add(-time.Hour), false)
	e.store.RecordPress(preset.ID, testNow.Add(-2*time.Hour), false)

	a, _ = send(a, tea.WindowSizeMsg{Width: 120, Height: 50})
	a, cmd := send(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	a = drain(t, a, cmd)

	if len(a.presses.summaries) != 1 || a.presses.summaries[0].Presses != 2 {
		t.Fatalf("summaries = %+v", a.presses.summaries)
	}
	if len(a.presses.recent) != 2 {
		t.Fatalf("recent = %d", len(a.presses.recent))
	}
	if !strings.Contains(a.View(), "Button Presses") {
		t.Fatal("presses view not rendered")
	}
}

func TestExportPresses(t *testing.T) {
	e := newTestEnv(t)
	preset := savePreset(t, e.store, testCountdown(t))
	e.store.RecordPress(preset.ID, testNow, false)
	dir := t.TempDir()

	path, err := ExportPresses(e.store, dir, false, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "tminus-presses-2025-11-05.csv" {
		t.Fatalf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "launch") {
		t.Fatalf("csv missing countdown name:\n%s", data)
	}

	path, err = ExportPresses(e.store, dir, true, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(path) != ".json" {
		t.Fatalf("path = %s", path)
	}
}

// ============================================================
// Rendering
// ============================================================

func TestRenderFullAndCompact(t *testing.T) {
	w := Widget{Title: "Launch", ButtonText: "Go", Target: time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)}
	b := countdown.Derive(w.Target, testNow)

	full := Render(w, b, layout.Full, 120)
	for _, want := range []string{"LAUNCH", "DAYS", "HOURS", "MINUTES", "SECONDS", "01", "Go", "Upcoming"} {
		if !strings.Contains(full, want) {
			t.Errorf("full render missing %q", want)
		}
	}

	compact := Render(w, b, layout.Compact, 60)
	for _, want := range []string{"Launch", "1:01:01:01", "Days:Hours:Min:Sec"} {
		if !strings.Contains(compact, want) {
			t.Errorf("compact render missing %q", want)
		}
	}
	if strings.Contains(compact, "MINUTES") {
		t.Error("compact render should not draw blocks")
	}
}

func TestRenderDone(t *testing.T) {
	w := Widget{Title: "Launch", ButtonText: "Go", Target: testNow}
	out := Render(w, countdown.Breakdown{}, layout.Compact, 0)
	if !strings.Contains(out, cta.DoneLabel) {
		t.Fatal("done render should show the done label")
	}
	if !strings.Contains(out, "Available") {
		t.Fatal("done render should mark the countdown available")
	}
	if !strings.Contains(out, "0:00:00:00") {
		t.Fatal("done render should show zeros")
	}
}

func TestPublishReplacesPending(t *testing.T) {
	ch := make(chan snapshotMsg, 1)
	publish(ch, snapshotMsg{gen: 1})
	publish(ch, snapshotMsg{gen: 2})

	got := <-ch
	if got.gen != 2 {
		t.Fatalf("gen = %d, want latest", got.gen)
	}
	select {
	case <-ch:
		t.Fatal("channel should hold one value")
	default:
	}
}

package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"glas/internal/config"
	"glas/internal/notify"
	"glas/internal/tray"
	"glas/internal/voice"
)

type fakeDictation struct {
	recording atomic.Bool
	toggles   atomic.Int32
	starts    atomic.Int32
	stops     atomic.Int32
	startErr  error

	mu       sync.Mutex
	onResult voice.ResultFunc
}

func (d *fakeDictation) Start() error {
	if d.startErr != nil {
		return d.startErr
	}
	d.starts.Add(1)
	d.recording.Store(true)
	return nil
}

func (d *fakeDictation) Stop() error {
	d.stops.Add(1)
	d.recording.Store(false)
	return nil
}

func (d *fakeDictation) Toggle() error {
	d.toggles.Add(1)
	if d.recording.Load() {
		return d.Stop()
	}
	return d.Start()
}

func (d *fakeDictation) IsRecording() bool { return d.recording.Load() }

func (d *fakeDictation) Status() voice.Status {
	return voice.Status{Recording: d.recording.Load(), Volume: 7}
}

func (d *fakeDictation) OnResult(fn voice.ResultFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onResult = fn
}

func (d *fakeDictation) emit(text string, isFinal bool) {
	d.mu.Lock()
	fn := d.onResult
	d.mu.Unlock()
	fn(text, isFinal)
}

type fakeHotkeys struct {
	mu      sync.Mutex
	current config.HotkeyConfig
	applied []config.HotkeyConfig
	reject  map[string]bool
	trigger func()
	stops   int
}

func (h *fakeHotkeys) OnTrigger(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trigger = fn
}

func (h *fakeHotkeys) UpdateConfig(cfg config.HotkeyConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.applied = append(h.applied, cfg)
	if h.reject[cfg.ComboKey] {
		return errors.New("register failed")
	}
	h.current = cfg
	return nil
}

func (h *fakeHotkeys) Current() config.HotkeyConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (h *fakeHotkeys) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
}

type fakeIndicator struct {
	mu       sync.Mutex
	states   []tray.State
	hotkey   string
	refreshs int
}

func (f *fakeIndicator) SetState(state tray.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, state)
}

func (f *fakeIndicator) SetHotkey(label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hotkey = label
}

func (f *fakeIndicator) RefreshUI() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshs++
}

func (f *fakeIndicator) snapshot() ([]tray.State, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tray.State(nil), f.states...), f.hotkey
}

type fixture struct {
	app     *App
	voice   *fakeDictation
	hotkeys *fakeHotkeys
	ui      *fakeIndicator
	cfg     *config.Config
	path    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := config.NewWithPath(path)

	f := &fixture{
		voice:   &fakeDictation{},
		hotkeys: &fakeHotkeys{current: cfg.Hotkey(), reject: map[string]bool{}},
		ui:      &fakeIndicator{},
		cfg:     cfg,
		path:    path,
	}
	f.app = newApp(cfg, config.Env{}, f.voice, f.hotkeys, notify.New(false))
	f.app.setIndicator(f.ui)
	t.Cleanup(f.app.Close)
	return f
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOnTriggerNeverBlocks(t *testing.T) {
	f := newFixture(t)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			f.app.onTrigger()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onTrigger blocked without dispatcher")
	}
	if got := len(f.app.triggers); got != triggerQueueSize {
		t.Errorf("queued = %d, want %d", got, triggerQueueSize)
	}
}

func TestHotkeyTriggerTogglesDictation(t *testing.T) {
	f := newFixture(t)
	f.app.start()

	f.hotkeys.trigger()
	waitUntil(t, "first toggle", func() bool { return f.voice.toggles.Load() == 1 })
	if !f.voice.IsRecording() {
		t.Fatal("not recording after trigger")
	}

	f.hotkeys.trigger()
	waitUntil(t, "second toggle", func() bool { return f.voice.toggles.Load() == 2 })
	if f.voice.IsRecording() {
		t.Fatal("still recording after second trigger")
	}
}

func TestMonitorReportsTransitions(t *testing.T) {
	f := newFixture(t)
	f.app.start()

	_ = f.voice.Start()
	waitUntil(t, "recording state", func() bool {
		states, _ := f.ui.snapshot()
		return len(states) == 1
	})

	// Сессия завершилась сама (например, сервисом)
	f.voice.recording.Store(false)
	waitUntil(t, "idle state", func() bool {
		states, _ := f.ui.snapshot()
		return len(states) == 2
	})

	states, _ := f.ui.snapshot()
	if states[0] != tray.StateRecording || states[1] != tray.StateIdle {
		t.Errorf("states = %v", states)
	}
}

func TestAutoStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"auto_start":true}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.NewWithPath(path)
	d := &fakeDictation{}
	a := newApp(cfg, config.Env{}, d, nil, notify.New(false))
	defer a.Close()

	a.start()
	if d.starts.Load() != 1 {
		t.Errorf("starts = %d, want 1", d.starts.Load())
	}
}

func TestApplyHotkeyPersistsOnSuccess(t *testing.T) {
	f := newFixture(t)

	next := config.DefaultHotkey()
	next.ComboKey = "Ctrl+Alt+D"
	if err := f.app.ApplyHotkey(next); err != nil {
		t.Fatalf("ApplyHotkey() error = %v", err)
	}

	if got := f.cfg.Hotkey(); got != next {
		t.Errorf("config hotkey = %+v, want %+v", got, next)
	}
	if got := config.NewWithPath(f.path).Hotkey(); got != next {
		t.Errorf("persisted hotkey = %+v, want %+v", got, next)
	}
	if _, label := f.ui.snapshot(); label != "Ctrl+Alt+D" {
		t.Errorf("tray label = %q", label)
	}
}

func TestApplyHotkeyFailureKeepsPrevious(t *testing.T) {
	f := newFixture(t)
	previous := f.cfg.Hotkey()

	bad := config.DefaultHotkey()
	bad.ComboKey = "Ctrl+Busy"
	f.hotkeys.reject["Ctrl+Busy"] = true

	if err := f.app.ApplyHotkey(bad); err == nil {
		t.Fatal("ApplyHotkey() should fail")
	}
	if got := f.cfg.Hotkey(); got != previous {
		t.Errorf("config hotkey changed to %+v", got)
	}
	if _, err := os.Stat(f.path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("config file written on failure: %v", err)
	}

	applied := f.hotkeys.applied
	if len(applied) != 2 || applied[1] != previous {
		t.Errorf("applied = %+v, want restore of previous", applied)
	}
	if f.hotkeys.Current() != previous {
		t.Errorf("provider hotkey = %+v, want previous", f.hotkeys.Current())
	}
}

func TestReloadAppliesEditedHotkey(t *testing.T) {
	f := newFixture(t)

	edited := `{"language":"ru-RU","notifications":false,"hotkey":{"mode":"double_tap","double_tap_key":"Shift","double_tap_interval_ms":250}}`
	if err := os.WriteFile(f.path, []byte(edited), 0644); err != nil {
		t.Fatal(err)
	}

	if err := f.app.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	got := f.hotkeys.Current()
	if got.Mode != config.ModeDoubleTap || got.DoubleTapKey != "Shift" || got.DoubleTapIntervalMs != 250 {
		t.Errorf("applied hotkey = %+v", got)
	}
	if f.cfg.NotificationsEnabled() {
		t.Error("notifications should be disabled after reload")
	}
	if f.ui.refreshs != 1 {
		t.Errorf("RefreshUI calls = %d, want 1", f.ui.refreshs)
	}
}

func TestReloadUnchangedHotkeySkipsUpdate(t *testing.T) {
	f := newFixture(t)
	if err := f.app.Reload(); err != nil {
		t.Fatal(err)
	}
	if len(f.hotkeys.applied) != 0 {
		t.Errorf("UpdateConfig called %d times", len(f.hotkeys.applied))
	}
}

func TestFragmentsForwarded(t *testing.T) {
	f := newFixture(t)

	var got []string
	f.app.OnFragment(func(text string, isFinal bool) {
		got = append(got, text)
	})
	f.voice.emit("при", false)
	f.voice.emit("привет", true)

	if len(got) != 2 || got[1] != "привет" {
		t.Errorf("fragments = %v", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	f := newFixture(t)
	f.app.start()
	_ = f.voice.Start()

	f.app.Close()
	f.app.Close()

	if f.voice.IsRecording() {
		t.Error("recording after Close")
	}
	if f.hotkeys.stops != 1 {
		t.Errorf("hotkey stops = %d, want 1", f.hotkeys.stops)
	}
}

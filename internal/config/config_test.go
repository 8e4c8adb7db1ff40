package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHotkeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     HotkeyConfig
		wantErr error
	}{
		{"default", DefaultHotkey(), nil},
		{"double tap", HotkeyConfig{Mode: ModeDoubleTap, DoubleTapKey: "Shift", DoubleTapIntervalMs: 250}, nil},
		{"unknown mode", HotkeyConfig{Mode: "triple", ComboKey: "Ctrl+A"}, ErrUnknownMode},
		{"empty combo", HotkeyConfig{Mode: ModeCombo, ComboKey: "  "}, ErrEmptyKey},
		{"empty tap key", HotkeyConfig{Mode: ModeDoubleTap, DoubleTapIntervalMs: 300}, ErrEmptyKey},
		{"zero interval", HotkeyConfig{Mode: ModeDoubleTap, DoubleTapKey: "Ctrl"}, ErrInvalidInterval},
		{"negative interval", HotkeyConfig{Mode: ModeDoubleTap, DoubleTapKey: "Ctrl", DoubleTapIntervalMs: -5}, ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHotkeyInterval(t *testing.T) {
	if got := DefaultHotkey().Interval(); got != 300*time.Millisecond {
		t.Errorf("Interval() = %v, want 300ms", got)
	}
}

func TestNewWithMissingFileUsesDefaults(t *testing.T) {
	c := NewWithPath(filepath.Join(t.TempDir(), "config.json"))

	if got := c.Hotkey(); got != DefaultHotkey() {
		t.Errorf("Hotkey() = %+v, want defaults", got)
	}
	if c.Language() != "ru-RU" || c.UILanguage() != "ru" {
		t.Errorf("languages = %q/%q", c.Language(), c.UILanguage())
	}
	if !c.NotificationsEnabled() || !c.VADEnabled() || c.AutoStart() {
		t.Error("unexpected boolean defaults")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	c := NewWithPath(path)

	hk := HotkeyConfig{Mode: ModeDoubleTap, ComboKey: "Alt+F9", DoubleTapKey: "Shift", DoubleTapIntervalMs: 400}
	c.SetHotkey(hk)
	c.SetLanguage("en-US")
	c.SetNotifications(false)

	loaded := NewWithPath(path)
	if got := loaded.Hotkey(); got != hk {
		t.Errorf("Hotkey() = %+v, want %+v", got, hk)
	}
	if loaded.Language() != "en-US" {
		t.Errorf("Language() = %q", loaded.Language())
	}
	if loaded.NotificationsEnabled() {
		t.Error("notifications should stay disabled")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"hotkey":{"mode":"double_tap"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewWithPath(path)
	want := DefaultHotkey()
	want.Mode = ModeDoubleTap
	if got := c.Hotkey(); got != want {
		t.Errorf("Hotkey() = %+v, want %+v", got, want)
	}
	if c.Language() != "ru-RU" || !c.NotificationsEnabled() {
		t.Error("missing fields should keep defaults")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewWithPath(path)
	if got := c.Hotkey(); got != DefaultHotkey() {
		t.Errorf("Hotkey() = %+v, want defaults", got)
	}
	if _, err := c.Reload(); err == nil {
		t.Error("Reload() on corrupt file should fail")
	}
}

func TestReloadDoesNotApplyHotkey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	c := NewWithPath(path)

	edited := `{"language":"en-US","notifications":true,"hotkey":{"mode":"combo","combo_key":"Ctrl+Alt+D"}}`
	if err := os.WriteFile(path, []byte(edited), 0644); err != nil {
		t.Fatal(err)
	}

	requested, err := c.Reload()
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if requested.ComboKey != "Ctrl+Alt+D" || requested.DoubleTapIntervalMs != DefaultDoubleTapInterval {
		t.Errorf("requested = %+v", requested)
	}
	if got := c.Hotkey(); got != DefaultHotkey() {
		t.Errorf("Hotkey() after Reload = %+v, want unchanged", got)
	}
	if c.Language() != "en-US" {
		t.Errorf("Language() = %q, want en-US", c.Language())
	}
}

func TestOnHotkeyChange(t *testing.T) {
	c := NewWithPath("")

	var got HotkeyConfig
	calls := 0
	c.OnHotkeyChange(func(hk HotkeyConfig) {
		got = hk
		calls++
	})

	hk := DefaultHotkey()
	hk.ComboKey = "Ctrl+F12"
	c.SetHotkey(hk)

	if calls != 1 || got != hk {
		t.Errorf("callback calls=%d got=%+v", calls, got)
	}
}

func TestToggleNotifications(t *testing.T) {
	c := NewWithPath("")
	if c.ToggleNotifications() {
		t.Error("first toggle should disable")
	}
	if !c.ToggleNotifications() {
		t.Error("second toggle should enable")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("GLAS_LOG_LEVEL", "debug")
	t.Setenv("GLAS_ASR_URL", "wss://asr.example/v1/stream")
	t.Setenv("GLAS_RETRY_INITIAL_BACKOFF", "100")
	t.Setenv("GLAS_METRICS_ADDR", ":9464")

	env, err := loadEnv()
	if err != nil {
		t.Fatalf("loadEnv() error = %v", err)
	}
	if env.LogLevel != "debug" || env.ASRURL != "wss://asr.example/v1/stream" || env.MetricsAddr != ":9464" {
		t.Errorf("env = %+v", env)
	}
	if env.InitialBackoff() != 100*time.Millisecond {
		t.Errorf("InitialBackoff() = %v", env.InitialBackoff())
	}
	if env.RetryMaxAttempts != 3 || !env.LogPretty {
		t.Errorf("defaults not applied: %+v", env)
	}
}

func TestLoadEnvRejectsNegativeRetries(t *testing.T) {
	t.Setenv("GLAS_RETRY_MAX_ATTEMPTS", "-1")
	if _, err := loadEnv(); err == nil {
		t.Error("loadEnv() should reject negative retries")
	}
}

func TestLoadEnvBadValue(t *testing.T) {
	t.Setenv("GLAS_LOG_PRETTY", "sometimes")
	if _, err := loadEnv(); err == nil {
		t.Error("loadEnv() should reject non-boolean")
	}
}

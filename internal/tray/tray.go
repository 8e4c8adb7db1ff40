// Package tray предоставляет системный трей с меню.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"glas/embedded"
	"glas/internal/i18n"
)

// State представляет состояние приложения для отображения в трее.
type State int

const (
	StateIdle State = iota
	StateRecording
)

// Callbacks содержит обработчики событий меню.
type Callbacks struct {
	OnToggle              func()
	OnHotkeyClick         func()
	OnNotificationsToggle func() bool
	OnQuit                func()
}

// Tray управляет иконкой в системном трее.
type Tray struct {
	callbacks Callbacks

	mu            sync.Mutex
	state         State
	hotkey        string
	notifications bool

	status    *systray.MenuItem
	hotkeyBtn *systray.MenuItem
	toggleBtn *systray.MenuItem
	notifyOn  *systray.MenuItem
	quitBtn   *systray.MenuItem
}

// New создаёт новый Tray.
func New(callbacks Callbacks, hotkey string, notifications bool) *Tray {
	return &Tray{
		callbacks:     callbacks,
		hotkey:        hotkey,
		notifications: notifications,
	}
}

// Run запускает системный трей. Блокирующая функция.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(embedded.IconIdle)
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	t.mu.Lock()
	hotkey, notifications := t.hotkey, t.notifications
	t.mu.Unlock()

	// Статус и текущая горячая клавиша
	t.status = systray.AddMenuItem(i18n.T("tray_ready"), "")
	t.status.Disable()
	t.hotkeyBtn = systray.AddMenuItem(i18n.Tf("tray_hotkey", hotkey), i18n.T("tray_hotkey_hint"))

	systray.AddSeparator()

	t.toggleBtn = systray.AddMenuItem(i18n.T("tray_start"), i18n.T("tray_start_hint"))
	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), notifications)

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.toggleBtn.ClickedCh:
			if t.callbacks.OnToggle != nil {
				t.callbacks.OnToggle()
			}

		case <-t.hotkeyBtn.ClickedCh:
			if t.callbacks.OnHotkeyClick != nil {
				t.callbacks.OnHotkeyClick()
			}

		case <-t.notifyOn.ClickedCh:
			if t.callbacks.OnNotificationsToggle != nil {
				if t.callbacks.OnNotificationsToggle() {
					t.notifyOn.Check()
				} else {
					t.notifyOn.Uncheck()
				}
			}

		case <-t.quitBtn.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

// SetState устанавливает состояние приложения и обновляет иконку.
func (t *Tray) SetState(state State) {
	t.mu.Lock()
	if t.state == state {
		t.mu.Unlock()
		return
	}
	t.state = state
	t.mu.Unlock()

	t.render(state)
}

func (t *Tray) render(state State) {
	status, toggle, hint := "tray_ready", "tray_start", "tray_start_hint"
	icon := embedded.IconIdle
	if state == StateRecording {
		status, toggle, hint = "tray_recording", "tray_stop", "tray_stop_hint"
		icon = embedded.IconRecording
	}

	systray.SetIcon(icon)
	systray.SetTooltip(i18n.T("app_name") + " - " + i18n.T(status))
	if t.status != nil {
		t.status.SetTitle(i18n.T(status))
	}
	if t.toggleBtn != nil {
		t.toggleBtn.SetTitle(i18n.T(toggle))
		t.toggleBtn.SetTooltip(i18n.T(hint))
	}
}

// SetHotkey обновляет подпись горячей клавиши.
func (t *Tray) SetHotkey(label string) {
	t.mu.Lock()
	t.hotkey = label
	t.mu.Unlock()

	if t.hotkeyBtn != nil {
		t.hotkeyBtn.SetTitle(i18n.Tf("tray_hotkey", label))
	}
}

func (t *Tray) onExit() {}

// Quit закрывает системный трей.
func (t *Tray) Quit() {
	systray.Quit()
}

// RefreshUI обновляет все тексты меню на текущем языке.
func (t *Tray) RefreshUI() {
	t.mu.Lock()
	state, hotkey := t.state, t.hotkey
	t.mu.Unlock()

	t.render(state)
	if t.hotkeyBtn != nil {
		t.hotkeyBtn.SetTitle(i18n.Tf("tray_hotkey", hotkey))
		t.hotkeyBtn.SetTooltip(i18n.T("tray_hotkey_hint"))
	}
	if t.notifyOn != nil {
		t.notifyOn.SetTitle(i18n.T("tray_notifications"))
		t.notifyOn.SetTooltip(i18n.T("tray_notifications_hint"))
	}
	if t.quitBtn != nil {
		t.quitBtn.SetTitle(i18n.T("tray_quit"))
		t.quitBtn.SetTooltip(i18n.T("tray_quit_hint"))
	}
}

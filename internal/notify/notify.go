// Package notify предоставляет системные уведомления.
package notify

import (
	"sync/atomic"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"

	"glas/internal/i18n"
)

const (
	appName = "Glas"
	// maxMessageRunes - длинный текст в уведомлении обрезается.
	maxMessageRunes = 100
)

// Notifier отправляет системные уведомления.
type Notifier struct {
	enabled atomic.Bool
	send    func(title, message, icon string) error
}

// New создаёт новый Notifier.
func New(enabled bool) *Notifier {
	n := &Notifier{send: func(title, message, icon string) error {
		return beeep.Notify(title, message, icon)
	}}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled включает/выключает уведомления.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// Ready показывает уведомление о запуске.
func (n *Notifier) Ready(hotkey string) {
	n.notify(i18n.T("notify_ready"), i18n.Tf("tray_hotkey", hotkey))
}

// Recording показывает уведомление о начале записи.
func (n *Notifier) Recording() {
	n.notify(i18n.T("notify_recording"), i18n.T("notify_recording_hint"))
}

// Stopped показывает уведомление об окончании записи.
func (n *Notifier) Stopped() {
	n.notify(i18n.T("notify_stopped"), i18n.T("notify_stopped_hint"))
}

// HotkeyChanged сообщает о новой горячей клавише.
func (n *Notifier) HotkeyChanged(hotkey string) {
	n.notify(i18n.T("notify_hotkey"), hotkey)
}

// Error показывает уведомление об ошибке.
func (n *Notifier) Error(msg string) {
	n.notify(i18n.T("notify_error"), msg)
}

// Info показывает информационное уведомление.
func (n *Notifier) Info(msg string) {
	n.notify("", msg)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageRunes {
		return s
	}
	return string(r[:maxMessageRunes]) + "..."
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled.Load() {
		return
	}

	full := appName
	if title != "" {
		full = appName + ": " + title
	}
	// Ошибки уведомлений не критичны
	if err := n.send(full, truncate(message), ""); err != nil {
		log.Debug().Err(err).Msg("Уведомление не отправлено")
	}
}

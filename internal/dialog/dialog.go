// Package dialog предоставляет GUI диалоги для настройки приложения.
package dialog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/zenity"

	"glas/internal/config"
	"glas/internal/i18n"
)

// ErrCanceled возвращается, если пользователь закрыл диалог.
var ErrCanceled = zenity.ErrCanceled

// tapKeys - варианты клавиши для двойного нажатия.
var tapKeys = []string{"Ctrl", "Shift", "Alt", "Super"}

// SelectHotkey спрашивает режим и клавишу. Интервал двойного нажатия
// берётся из текущих настроек.
func SelectHotkey(current config.HotkeyConfig) (config.HotkeyConfig, error) {
	modes := []string{i18n.T("dialog_mode_combo"), i18n.T("dialog_mode_double_tap")}
	defaultMode := modes[0]
	if current.Mode == config.ModeDoubleTap {
		defaultMode = modes[1]
	}

	mode, err := zenity.List(
		i18n.T("dialog_mode_prompt"),
		modes,
		zenity.Title(i18n.T("dialog_title")),
		zenity.DefaultItems(defaultMode),
	)
	if err != nil {
		return current, err
	}

	if mode == modes[1] {
		key, err := zenity.List(
			i18n.T("dialog_tap_prompt"),
			tapKeys,
			zenity.Title(i18n.T("dialog_title")),
			zenity.DefaultItems(current.DoubleTapKey),
		)
		if err != nil {
			return current, err
		}
		return build(current, config.ModeDoubleTap, key)
	}

	combo, err := zenity.Entry(
		i18n.T("dialog_combo_prompt"),
		zenity.Title(i18n.T("dialog_title")),
		zenity.EntryText(current.ComboKey),
	)
	if err != nil {
		return current, err
	}
	return build(current, config.ModeCombo, combo)
}

// build собирает настройки из ответа диалога. Разбор аккорда выполняет
// hotkey.Manager при регистрации.
func build(current config.HotkeyConfig, mode config.Mode, value string) (config.HotkeyConfig, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return current, fmt.Errorf("dialog: %w", config.ErrEmptyKey)
	}

	next := current
	next.Mode = mode
	if mode == config.ModeDoubleTap {
		next.DoubleTapKey = value
	} else {
		next.ComboKey = value
	}
	return next, next.Validate()
}

// IsCanceled сообщает, что пользователь отменил диалог.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// ShowError показывает сообщение об ошибке.
func ShowError(title, message string) {
	_ = zenity.Error(message, zenity.Title(title))
}

// Package hotkey предоставляет глобальные горячие клавиши: аккорды
// (golang.design/x/hotkey) и двойное нажатие клавиши (robotn/gohook).
package hotkey

import (
	"fmt"

	"glas/internal/config"
)

// Provider - активная регистрация горячей клавиши.
type Provider interface {
	// OnTrigger задаёт функцию, вызываемую при срабатывании.
	OnTrigger(fn func())
	// Stop снимает регистрацию. Повторный вызов ничего не делает.
	Stop()
}

// Factory создаёт провайдера по настройкам.
type Factory func(cfg config.HotkeyConfig) (Provider, error)

// NewProvider выбирает реализацию по режиму.
func NewProvider(cfg config.HotkeyConfig) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case config.ModeCombo:
		combo, err := ParseCombo(cfg.ComboKey)
		if err != nil {
			return nil, err
		}
		return newComboProvider(combo)
	case config.ModeDoubleTap:
		codes, err := tapKeycodes(cfg.DoubleTapKey)
		if err != nil {
			return nil, err
		}
		return newDoubleTapProvider(cfg.DoubleTapKey, codes, cfg.Interval()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
}

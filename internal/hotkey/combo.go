package hotkey

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.design/x/hotkey"
)

const (
	// repeatGuard - повторные keydown от автоповтора внутри окна игнорируются.
	repeatGuard = 300 * time.Millisecond
	// unregisterTimeout ограничивает Unregister, который на X11 может зависнуть.
	unregisterTimeout = 500 * time.Millisecond
)

// comboProvider - аккорд, зарегистрированный через golang.design/x/hotkey.
type comboProvider struct {
	mu        sync.Mutex
	hk        *hotkey.Hotkey
	combo     Combo
	onTrigger func()
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func newComboProvider(combo Combo) (*comboProvider, error) {
	mods := make([]hotkey.Modifier, 0, len(combo.Modifiers))
	for _, m := range combo.Modifiers {
		mod, ok := modifiers[m]
		if !ok {
			return nil, fmt.Errorf("%w: modifier %q", ErrUnknownKey, m)
		}
		mods = append(mods, mod.chord)
	}

	key, ok := keyMap[combo.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, combo.Key)
	}

	log.Info().Str("combo", combo.String()).Msg("Регистрация горячей клавиши")

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("register %s: %w", combo, err)
	}

	p := &comboProvider{
		hk:     hk,
		combo:  combo,
		stopCh: make(chan struct{}),
	}
	go p.listen()

	log.Info().Str("combo", combo.String()).Msg("Горячая клавиша успешно зарегистрирована")
	return p, nil
}

func (p *comboProvider) OnTrigger(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onTrigger = fn
}

func (p *comboProvider) fire() {
	p.mu.Lock()
	fn := p.onTrigger
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *comboProvider) listen() {
	var lastKeydown time.Time

	for {
		select {
		case <-p.stopCh:
			return
		case _, ok := <-p.hk.Keydown():
			if !ok {
				return
			}
			now := time.Now()
			if now.Sub(lastKeydown) < repeatGuard {
				continue
			}
			lastKeydown = now
			p.fire()
		case _, ok := <-p.hk.Keyup():
			if !ok {
				return
			}
		}
	}
}

func (p *comboProvider) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)

		done := make(chan struct{})
		go func() {
			if err := p.hk.Unregister(); err != nil {
				log.Warn().Err(err).Str("combo", p.combo.String()).Msg("Ошибка отмены регистрации")
			}
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(unregisterTimeout):
			log.Warn().Str("combo", p.combo.String()).Msg("Таймаут отмены регистрации горячей клавиши")
		}
	})
}

package hotkey

import (
	"fmt"
	"strings"
	"sync"
	"time"

	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog/log"
)

// tapDetector распознаёт двойное отпускание клавиши. Срабатывание
// сбрасывает состояние, поэтому три быстрых нажатия дают одно срабатывание.
type tapDetector struct {
	interval time.Duration
	last     time.Time
	armed    bool
}

// Release регистрирует отпускание клавиши в момент t.
func (d *tapDetector) Release(t time.Time) bool {
	if d.armed && t.Sub(d.last) <= d.interval {
		d.armed = false
		return true
	}
	d.armed = true
	d.last = t
	return false
}

// tapKeycodes возвращает коды клавиш для хука. Модификатор даёт и левую,
// и правую клавишу; прочие имена ищутся в таблице gohook.
func tapKeycodes(name string) (map[uint16]bool, error) {
	codes := make(map[uint16]bool)

	if m, ok := parseModifier(name); ok {
		for _, tap := range modifiers[m].taps {
			if code, ok := hook.Keycode[tap]; ok {
				codes[code] = true
			}
		}
	} else if code, ok := hook.Keycode[strings.ToLower(strings.TrimSpace(name))]; ok {
		codes[code] = true
	}

	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: double tap key %q", ErrUnknownKey, name)
	}
	return codes, nil
}

// doubleTapProvider слушает отпускания клавиш через глобальный хук gohook.
// Хук в процессе один, поэтому одновременно живёт не больше одного провайдера.
type doubleTapProvider struct {
	key   string
	codes map[uint16]bool

	mu        sync.Mutex
	detector  tapDetector
	onTrigger func()

	events   chan hook.Event
	done     chan struct{}
	stopOnce sync.Once
}

func newDoubleTapProvider(key string, codes map[uint16]bool, interval time.Duration) *doubleTapProvider {
	p := &doubleTapProvider{
		key:      key,
		codes:    codes,
		detector: tapDetector{interval: interval},
		events:   hook.Start(),
		done:     make(chan struct{}),
	}
	go p.listen()

	log.Info().Str("key", key).Dur("interval", interval).Msg("Хук двойного нажатия запущен")
	return p
}

func (p *doubleTapProvider) OnTrigger(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onTrigger = fn
}

func (p *doubleTapProvider) listen() {
	defer close(p.done)

	for ev := range p.events {
		if ev.Kind != hook.KeyUp || !p.codes[ev.Keycode] {
			continue
		}
		if fn := p.release(time.Now()); fn != nil {
			log.Debug().Str("key", p.key).Msg("Двойное нажатие")
			fn()
		}
	}
}

// release возвращает callback, если отпускание завершило двойное нажатие.
func (p *doubleTapProvider) release(t time.Time) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.detector.Release(t) {
		return nil
	}
	return p.onTrigger
}

func (p *doubleTapProvider) Stop() {
	p.stopOnce.Do(func() {
		hook.End()
		select {
		case <-p.done:
		case <-time.After(unregisterTimeout):
			log.Warn().Str("key", p.key).Msg("Таймаут остановки хука")
		}
	})
}

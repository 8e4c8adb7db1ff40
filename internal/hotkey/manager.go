package hotkey

import (
	"sync"

	"github.com/rs/zerolog/log"

	"glas/internal/config"
	"glas/internal/metrics"
)

// Manager владеет текущим провайдером и callback'ом. Callback хранится
// отдельно от провайдера и переживает смену настроек.
type Manager struct {
	providerMu sync.Mutex
	provider   Provider
	current    config.HotkeyConfig
	factory    Factory
	stopped    bool

	callbackMu sync.RWMutex
	callback   func()
}

// NewManager регистрирует горячую клавишу. factory == nil - NewProvider.
func NewManager(cfg config.HotkeyConfig, factory Factory) (*Manager, error) {
	if factory == nil {
		factory = NewProvider
	}
	m := &Manager{factory: factory}

	p, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	m.bind(p, cfg)
	return m, nil
}

// OnTrigger устанавливает callback. Действует и для будущих провайдеров.
func (m *Manager) OnTrigger(fn func()) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	m.callback = fn
}

// UpdateConfig заменяет провайдера. При ошибке старый провайдер
// остаётся остановленным, а ошибка возвращается.
func (m *Manager) UpdateConfig(cfg config.HotkeyConfig) error {
	m.providerMu.Lock()
	defer m.providerMu.Unlock()

	if m.provider != nil {
		m.provider.Stop()
		m.provider = nil
	}

	p, err := m.factory(cfg)
	if err != nil {
		log.Error().Err(err).Str("hotkey", cfg.String()).Msg("Ошибка регистрации горячей клавиши")
		return err
	}

	m.bind(p, cfg)
	m.stopped = false
	log.Info().Str("hotkey", cfg.String()).Msg("Горячая клавиша обновлена")
	return nil
}

// bind вызывается под providerMu (или до публикации Manager).
func (m *Manager) bind(p Provider, cfg config.HotkeyConfig) {
	mode := string(cfg.Mode)
	p.OnTrigger(func() { m.fire(mode) })
	m.provider = p
	m.current = cfg
}

func (m *Manager) fire(mode string) {
	metrics.HotkeyTriggered(mode)

	m.callbackMu.RLock()
	fn := m.callback
	m.callbackMu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Current возвращает последние успешно применённые настройки.
func (m *Manager) Current() config.HotkeyConfig {
	m.providerMu.Lock()
	defer m.providerMu.Unlock()
	return m.current
}

// Active возвращает true, если горячая клавиша зарегистрирована.
func (m *Manager) Active() bool {
	m.providerMu.Lock()
	defer m.providerMu.Unlock()
	return m.provider != nil
}

// Stop снимает регистрацию. Повторный вызов ничего не делает.
func (m *Manager) Stop() {
	m.providerMu.Lock()
	defer m.providerMu.Unlock()

	if m.stopped {
		return
	}
	m.stopped = true
	if m.provider != nil {
		m.provider.Stop()
		m.provider = nil
	}
}

// Package app содержит основную логику приложения.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"glas/internal/audio"
	"glas/internal/config"
	"glas/internal/hotkey"
	"glas/internal/i18n"
	"glas/internal/input"
	"glas/internal/metrics"
	"glas/internal/notify"
	"glas/internal/resilience"
	"glas/internal/speech"
	"glas/internal/tray"
	"glas/internal/voice"
)

const (
	// MonitorInterval - период опроса состояния записи.
	MonitorInterval = 100 * time.Millisecond
	// triggerQueueSize - лишние срабатывания горячей клавиши отбрасываются.
	triggerQueueSize = 4
	shutdownTimeout  = 2 * time.Second
)

// dictation - то, что App требует от voice.Controller.
type dictation interface {
	Start() error
	Stop() error
	Toggle() error
	IsRecording() bool
	Status() voice.Status
	OnResult(fn voice.ResultFunc)
}

// hotkeys - то, что App требует от hotkey.Manager.
type hotkeys interface {
	OnTrigger(fn func())
	UpdateConfig(cfg config.HotkeyConfig) error
	Current() config.HotkeyConfig
	Stop()
}

// indicator отображает состояние (трей). В консольном режиме отсутствует.
type indicator interface {
	SetState(state tray.State)
	SetHotkey(label string)
	RefreshUI()
}

// App представляет главное приложение.
type App struct {
	config   *config.Config
	env      config.Env
	voice    dictation
	notifier *notify.Notifier
	speech   *speech.Client
	inserter input.TextAction

	hkMu    sync.Mutex
	hotkeys hotkeys

	uiMu sync.Mutex
	ui   indicator

	fragmentMu sync.RWMutex
	onFragment voice.ResultFunc

	triggers chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	closers    []func() error
	metricsSrv *http.Server
	closeOnce  sync.Once
}

// New создаёт приложение и все его компоненты.
func New(cfg *config.Config, env config.Env) (*App, error) {
	// Инициализируем язык интерфейса из конфига
	if uiLang := cfg.UILanguage(); uiLang != "" {
		i18n.SetLanguage(i18n.Parse(uiLang))
	}

	device, err := audio.NewPortAudioDevice()
	if err != nil {
		return nil, fmt.Errorf("init audio: %w", err)
	}

	inserter, err := input.New()
	if err != nil {
		device.Close()
		return nil, fmt.Errorf("init text input: %w", err)
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxRetries = env.RetryMaxAttempts
	if d := env.InitialBackoff(); d > 0 {
		retry.BaseDelay = d
	}

	client := speech.NewClient(speech.Config{
		URL:      env.ASRURL,
		Token:    env.ASRToken,
		Language: cfg.Language(),
		VAD:      cfg.VADEnabled(),
		Retry:    retry,
	})

	controller := voice.New(audio.New(device, audio.NewOpusEncoder), client, inserter)

	manager, err := hotkey.NewManager(cfg.Hotkey(), nil)
	if err != nil {
		// Приложение работает и без горячей клавиши: трей и CLI остаются
		log.Error().Err(err).Str("hotkey", cfg.Hotkey().String()).Msg("Ошибка регистрации горячей клавиши")
	}

	var hk hotkeys
	if manager != nil {
		hk = manager
	}

	a := newApp(cfg, env, controller, hk, notify.New(cfg.NotificationsEnabled()))
	a.speech = client
	a.inserter = inserter
	a.closers = append(a.closers, device.Close)
	if hk == nil {
		a.notifier.Error(i18n.T("error_hotkey"))
	}

	return a, nil
}

// newApp собирает App из готовых компонентов.
func newApp(cfg *config.Config, env config.Env, d dictation, hk hotkeys, n *notify.Notifier) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		config:   cfg,
		env:      env,
		voice:    d,
		hotkeys:  hk,
		notifier: n,
		triggers: make(chan struct{}, triggerQueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	d.OnResult(a.fragment)
	if hk != nil {
		hk.OnTrigger(a.onTrigger)
	}
	cfg.OnHotkeyChange(func(h config.HotkeyConfig) {
		if ui := a.indicator(); ui != nil {
			ui.SetHotkey(h.String())
		}
		a.notifier.HotkeyChanged(h.String())
	})
	return a
}

// start запускает фоновые циклы. Вызывается один раз из Run*.
func (a *App) start() {
	a.wg.Add(2)
	go a.dispatch()
	go a.monitor()

	if a.env.MetricsAddr != "" {
		a.serveMetrics(a.env.MetricsAddr)
	}

	if a.config.AutoStart() {
		if err := a.voice.Start(); err != nil {
			a.reportError("Ошибка автозапуска записи", err)
		}
	}
}

func (a *App) setIndicator(ui indicator) {
	a.uiMu.Lock()
	defer a.uiMu.Unlock()
	a.ui = ui
}

func (a *App) indicator() indicator {
	a.uiMu.Lock()
	defer a.uiMu.Unlock()
	return a.ui
}

// OnFragment задаёт обработчик фрагментов распознавания (для CLI).
func (a *App) OnFragment(fn voice.ResultFunc) {
	a.fragmentMu.Lock()
	defer a.fragmentMu.Unlock()
	a.onFragment = fn
}

func (a *App) fragment(text string, isFinal bool) {
	a.fragmentMu.RLock()
	fn := a.onFragment
	a.fragmentMu.RUnlock()

	if fn != nil {
		fn(text, isFinal)
		return
	}
	log.Debug().Str("text", text).Bool("final", isFinal).Msg("Фрагмент")
}

// onTrigger вызывается из listener'а горячей клавиши и никогда не блокирует.
func (a *App) onTrigger() {
	select {
	case a.triggers <- struct{}{}:
	default:
		log.Debug().Msg("Срабатывание горячей клавиши отброшено: очередь занята")
	}
}

func (a *App) dispatch() {
	defer a.wg.Done()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.triggers:
			a.toggle()
		}
	}
}

func (a *App) toggle() {
	if err := a.voice.Toggle(); err != nil {
		a.reportError("Ошибка переключения записи", err)
	}
}

// monitor отслеживает смену состояния (в том числе завершение сессии
// сервисом) и экспортирует громкость.
func (a *App) monitor() {
	defer a.wg.Done()

	ticker := time.NewTicker(MonitorInterval)
	defer ticker.Stop()

	recording := false
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
		}

		st := a.voice.Status()
		metrics.SetVolume(st.Volume)

		if now := a.voice.IsRecording(); now != recording {
			recording = now
			a.stateChanged(recording)
		}
	}
}

func (a *App) stateChanged(recording bool) {
	state := tray.StateIdle
	if recording {
		state = tray.StateRecording
		a.notifier.Recording()
	} else {
		a.notifier.Stopped()
	}
	if ui := a.indicator(); ui != nil {
		ui.SetState(state)
	}
}

func (a *App) reportError(msg string, err error) {
	log.Error().Err(err).Msg(msg)

	switch {
	case errors.Is(err, audio.ErrNoDevice):
		a.notifier.Error(i18n.T("error_no_microphone"))
	case errors.Is(err, speech.ErrNotConfigured), errors.Is(err, speech.ErrUnauthorized):
		a.notifier.Error(i18n.T("error_recognition") + ": " + err.Error())
	default:
		a.notifier.Error(err.Error())
	}
}

// ApplyHotkey регистрирует новую горячую клавишу и сохраняет её только
// при успехе. При ошибке восстанавливается прежняя регистрация.
func (a *App) ApplyHotkey(cfg config.HotkeyConfig) error {
	a.hkMu.Lock()
	defer a.hkMu.Unlock()

	if a.hotkeys == nil {
		manager, err := hotkey.NewManager(cfg, nil)
		if err != nil {
			a.notifier.Error(i18n.T("error_hotkey"))
			return err
		}
		manager.OnTrigger(a.onTrigger)
		a.hotkeys = manager
		a.config.SetHotkey(cfg)
		return nil
	}

	previous := a.hotkeys.Current()
	if err := a.hotkeys.UpdateConfig(cfg); err != nil {
		a.notifier.Error(i18n.T("error_hotkey"))
		if rerr := a.hotkeys.UpdateConfig(previous); rerr != nil {
			log.Error().Err(rerr).Str("hotkey", previous.String()).Msg("Не удалось восстановить прежнюю горячую клавишу")
		}
		return err
	}

	a.config.SetHotkey(cfg)
	return nil
}

// Reload перечитывает config.json (SIGHUP) и применяет изменения.
func (a *App) Reload() error {
	requested, err := a.config.Reload()
	if err != nil {
		return err
	}

	i18n.SetLanguage(i18n.Parse(a.config.UILanguage()))
	a.notifier.SetEnabled(a.config.NotificationsEnabled())
	if ui := a.indicator(); ui != nil {
		ui.RefreshUI()
	}

	if current, ok := a.currentHotkey(); ok && current == requested {
		return nil
	}
	return a.ApplyHotkey(requested)
}

func (a *App) currentHotkey() (config.HotkeyConfig, bool) {
	a.hkMu.Lock()
	defer a.hkMu.Unlock()
	if a.hotkeys == nil {
		return config.HotkeyConfig{}, false
	}
	return a.hotkeys.Current(), true
}

func (a *App) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	a.metricsSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Метрики доступны на /metrics")
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("Сервер метрик остановлен")
		}
	}()
}

// Close освобождает ресурсы приложения. Повторный вызов ничего не делает.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if err := a.voice.Stop(); err != nil {
			log.Warn().Err(err).Msg("Ошибка остановки записи")
		}
		a.hkMu.Lock()
		if a.hotkeys != nil {
			a.hotkeys.Stop()
		}
		a.hkMu.Unlock()

		a.cancel()
		a.wg.Wait()

		if a.metricsSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := a.metricsSrv.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("Ошибка остановки сервера метрик")
			}
			cancel()
		}

		for _, closeFn := range a.closers {
			if err := closeFn(); err != nil {
				log.Warn().Err(err).Msg("Ошибка освобождения ресурса")
			}
		}
		log.Info().Msg("Приложение остановлено")
	})
}

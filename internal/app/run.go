package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"glas/internal/dialog"
	"glas/internal/i18n"
	"glas/internal/tray"
)

// Run запускает приложение в системном трее. Блокирует до выхода.
func (a *App) Run() {
	t := tray.New(tray.Callbacks{
		OnToggle:      a.onTrigger,
		OnHotkeyClick: func() { go a.changeHotkey() },
		OnNotificationsToggle: func() bool {
			enabled := a.config.ToggleNotifications()
			a.notifier.SetEnabled(enabled)
			return enabled
		},
		OnQuit: a.Close,
	}, a.config.Hotkey().String(), a.config.NotificationsEnabled())

	a.setIndicator(t)

	t.Run(func() {
		a.start()
		a.handleSignals(t.Quit)
		a.notifier.Ready(a.config.Hotkey().String())
		log.Info().Str("hotkey", a.config.Hotkey().String()).Msg("Приложение запущено")
	})
}

// changeHotkey показывает диалог выбора горячей клавиши и применяет результат.
func (a *App) changeHotkey() {
	current := a.config.Hotkey()
	next, err := dialog.SelectHotkey(current)
	if dialog.IsCanceled(err) {
		return
	}
	if err == nil {
		err = a.ApplyHotkey(next)
	}
	if err != nil {
		log.Error().Err(err).Str("hotkey", next.String()).Msg("Горячая клавиша не изменена")
		dialog.ShowError(i18n.T("error_hotkey"), err.Error())
	}
}

// handleSignals: SIGHUP перечитывает конфигурацию, SIGINT/SIGTERM завершают работу.
func (a *App) handleSignals(quit func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-a.ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					log.Info().Msg("Перечитываю конфигурацию")
					if err := a.Reload(); err != nil {
						log.Error().Err(err).Msg("Ошибка применения конфигурации")
					}
					continue
				}
				log.Info().Str("signal", sig.String()).Msg("Завершение работы")
				a.Close()
				quit()
				return
			}
		}
	}()
}

package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"glas/internal/i18n"
	"glas/internal/input"
)

const (
	testInsertDelay = 3 * time.Second
	checkTimeout    = 10 * time.Second
)

// checker проверяет доступность сервиса распознавания.
type checker interface {
	Check(ctx context.Context) error
}

// cli - интерактивный режим для проверки без трея.
type cli struct {
	voice      dictation
	text       input.TextAction
	service    checker
	insertWait time.Duration

	mu  sync.Mutex
	out io.Writer
}

// RunCLI запускает интерактивный режим. Возвращается по "q" или концу ввода.
func (a *App) RunCLI(in io.Reader, out io.Writer) error {
	c := &cli{
		voice:      a.voice,
		text:       a.inserter,
		service:    a.speech,
		insertWait: testInsertDelay,
		out:        out,
	}
	a.OnFragment(c.fragment)

	a.start()
	a.handleSignals(func() {})
	defer a.Close()

	return c.run(a.ctx, in)
}

func (c *cli) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *cli) fragment(text string, isFinal bool) {
	if isFinal {
		c.println(i18n.Tf("cli_final", text))
		return
	}
	c.println(i18n.Tf("cli_interim", text))
}

func (c *cli) run(ctx context.Context, in io.Reader) error {
	c.println(i18n.T("cli_help"))

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case line := <-lines:
			if quit := c.handle(ctx, strings.ToLower(strings.TrimSpace(line))); quit {
				c.println(i18n.T("cli_bye"))
				return nil
			}
		}
	}
}

// handle выполняет одну команду. true - выход.
func (c *cli) handle(ctx context.Context, cmd string) bool {
	switch cmd {
	case "s", "start":
		if c.voice.IsRecording() {
			c.println(i18n.T("cli_already"))
			return false
		}
		if err := c.voice.Start(); err != nil {
			log.Error().Err(err).Msg("Ошибка начала записи")
			c.println(i18n.T("notify_error") + ": " + err.Error())
			return false
		}
		c.println(i18n.T("cli_started"))

	case "e", "end", "stop":
		if !c.voice.IsRecording() {
			c.println(i18n.T("cli_not_recording"))
			return false
		}
		if err := c.voice.Stop(); err != nil {
			c.println(i18n.T("notify_error") + ": " + err.Error())
			return false
		}
		c.println(i18n.T("cli_stopped"))

	case "t", "test":
		c.println(i18n.T("cli_test_wait"))
		select {
		case <-time.After(c.insertWait):
		case <-ctx.Done():
			return true
		}
		if err := c.text.Insert(i18n.T("cli_test_text")); err != nil {
			log.Error().Err(err).Msg("Ошибка тестовой вставки")
			c.println(i18n.T("notify_error") + ": " + err.Error())
			return false
		}
		c.println(i18n.T("cli_test_done"))

	case "a", "asr":
		c.println(i18n.T("cli_check"))
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.service.Check(checkCtx)
		cancel()
		if err != nil {
			c.println(i18n.T("error_recognition") + ": " + err.Error())
			return false
		}
		c.println(i18n.T("cli_check_ok"))

	case "q", "quit", "exit":
		if c.voice.IsRecording() {
			_ = c.voice.Stop()
		}
		return true

	case "":

	default:
		c.println(i18n.Tf("cli_unknown", cmd))
		c.println(i18n.T("cli_help"))
	}
	return false
}

// Package voice управляет сессией диктовки: захват аудио, поток
// распознавания и инкрементальный ввод текста в активное поле.
package voice

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"glas/internal/audio"
	"glas/internal/input"
	"glas/internal/logging"
	"glas/internal/metrics"
	"glas/internal/speech"
)

const (
	// PollInterval - максимальное ожидание ответа до проверки флага остановки.
	PollInterval = 100 * time.Millisecond
	// StopGrace - сколько Stop ждёт завершения обработчика ответов.
	StopGrace = 200 * time.Millisecond
)

// State - состояние записи.
type State int

const (
	StateIdle State = iota
	StateRecording
)

func (s State) String() string {
	if s == StateRecording {
		return "recording"
	}
	return "idle"
}

// FrameSource - источник закодированных кадров (audio.Capture).
type FrameSource interface {
	Start() (<-chan audio.Frame, error)
	Stop()
	Volume() int
}

// Recognizer открывает сессию потокового распознавания.
type Recognizer interface {
	StartRealtime(ctx context.Context, frames <-chan audio.Frame) (<-chan speech.Response, error)
}

// ResultFunc получает каждый обработанный фрагмент.
type ResultFunc func(text string, isFinal bool)

// Status - снимок состояния для циклов мониторинга.
type Status struct {
	Recording bool
	Volume    int
	SessionID string
}

type session struct {
	id       string
	cancel   context.CancelFunc
	stop     atomic.Bool
	loopDone chan struct{}
	started  time.Time
	log      zerolog.Logger
}

// Controller - оркестратор диктовки. Поддерживает одну сессию за раз.
type Controller struct {
	mu        sync.Mutex
	recording atomic.Bool
	sess      *session

	capture    FrameSource
	recognizer Recognizer
	text       input.TextAction

	resultMu sync.RWMutex
	onResult ResultFunc

	pollInterval time.Duration
	stopGrace    time.Duration
}

// New создаёт контроллер.
func New(capture FrameSource, recognizer Recognizer, text input.TextAction) *Controller {
	return &Controller{
		capture:      capture,
		recognizer:   recognizer,
		text:         text,
		pollInterval: PollInterval,
		stopGrace:    StopGrace,
	}
}

// OnResult устанавливает callback для фрагментов распознавания.
func (c *Controller) OnResult(fn ResultFunc) {
	c.resultMu.Lock()
	defer c.resultMu.Unlock()
	c.onResult = fn
}

// IsRecording возвращает true если идёт запись. Без блокировок.
func (c *Controller) IsRecording() bool {
	return c.recording.Load()
}

// State возвращает текущее состояние.
func (c *Controller) State() State {
	if c.recording.Load() {
		return StateRecording
	}
	return StateIdle
}

// Status возвращает снимок состояния. Если блокировка занята
// (идёт start/stop), сообщает "не записывает", не дожидаясь.
func (c *Controller) Status() Status {
	if !c.mu.TryLock() {
		return Status{}
	}
	defer c.mu.Unlock()

	if c.sess == nil || !c.recording.Load() {
		return Status{}
	}
	return Status{
		Recording: true,
		Volume:    c.capture.Volume(),
		SessionID: c.sess.id,
	}
}

// Start начинает сессию диктовки. Повторный вызов во время записи ничего не делает.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked()
}

// Stop завершает сессию. Повторный вызов ничего не делает.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

// Toggle переключает запись.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recording.Load() {
		return c.stopLocked()
	}
	return c.startLocked()
}

func (c *Controller) startLocked() error {
	if c.recording.Load() {
		return nil
	}

	frames, err := c.capture.Start()
	if err != nil {
		return fmt.Errorf("start capture: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	responses, err := c.recognizer.StartRealtime(ctx, frames)
	if err != nil {
		cancel()
		c.capture.Stop()
		return fmt.Errorf("start recognition: %w", err)
	}

	id := logging.NewSessionID()
	s := &session{
		id:       id,
		cancel:   cancel,
		loopDone: make(chan struct{}),
		started:  time.Now(),
		log:      logging.WithSession(id),
	}
	c.sess = s
	c.recording.Store(true)
	metrics.SetRecording(true)

	s.log.Info().Msg("Сессия диктовки начата")
	go c.consume(s, responses)

	return nil
}

func (c *Controller) stopLocked() error {
	s := c.sess
	if s == nil {
		c.recording.Store(false)
		return nil
	}

	s.stop.Store(true)
	s.cancel()
	c.capture.Stop()

	select {
	case <-s.loopDone:
	case <-time.After(c.stopGrace):
		s.log.Debug().Msg("Обработчик ответов не завершился за grace-период")
	}

	c.endLocked(s, "stopped")
	return nil
}

// consume - единственный читатель потока ответов сессии.
func (c *Controller) consume(s *session, responses <-chan speech.Response) {
	result := "finished"
	defer func() {
		if r := recover(); r != nil {
			result = "panic"
			s.log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Сбой обработки ответов")
		}
		close(s.loopDone)
		c.finish(s, result)
	}()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var baseline string
	for {
		if s.stop.Load() {
			result = "stopped"
			return
		}

		select {
		case resp, ok := <-responses:
			if !ok {
				s.log.Debug().Msg("Поток ответов закрыт")
				return
			}
			if !c.handle(s, resp, &baseline) {
				if resp.Kind == speech.KindError {
					result = "error"
				}
				return
			}
		case <-ticker.C:
		}
	}
}

// handle обрабатывает один ответ. false - конец сессии.
func (c *Controller) handle(s *session, resp speech.Response, baseline *string) bool {
	metrics.Fragment(resp.Kind.String())

	switch resp.Kind {
	case speech.KindInterim:
		c.emit(resp.Text, false)
		if resp.Text != "" {
			applyEdit(c.text, Diff(*baseline, resp.Text), s.log)
			*baseline = resp.Text
		}
	case speech.KindFinal:
		c.emit(resp.Text, true)
		if resp.Text != "" {
			applyEdit(c.text, Diff(*baseline, resp.Text), s.log)
			// Следующая фраза не должна стирать подтверждённый текст
			*baseline = ""
		}
		s.log.Info().Str("text", resp.Text).Msg("Фраза распознана")
	case speech.KindFinished:
		s.log.Info().Msg("Сессия распознавания завершена")
		return false
	case speech.KindError:
		s.log.Error().Str("message", resp.Message).Msg("Ошибка распознавания")
		return false
	}
	return true
}

func (c *Controller) emit(text string, isFinal bool) {
	c.resultMu.RLock()
	fn := c.onResult
	c.resultMu.RUnlock()
	if fn != nil {
		fn(text, isFinal)
	}
}

// finish вызывается при выходе обработчика по любой причине.
func (c *Controller) finish(s *session, result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != s {
		return
	}
	s.cancel()
	c.capture.Stop()
	c.endLocked(s, result)
}

func (c *Controller) endLocked(s *session, result string) {
	if c.sess != s {
		return
	}
	c.sess = nil
	c.recording.Store(false)
	metrics.SetRecording(false)
	metrics.SessionEnded(result, time.Since(s.started))
	s.log.Info().Str("result", result).Dur("duration", time.Since(s.started)).Msg("Сессия диктовки завершена")
}

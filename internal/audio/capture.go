// Package audio захватывает звук с микрофона и превращает его в поток
// закодированных кадров по 20 мс (16 кГц, mono).
package audio

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"glas/internal/metrics"
)

const (
	// FrameQueueSize - ёмкость канала кадров.
	FrameQueueSize = 100
	// stopWait - сколько Stop ждёт завершения цикла захвата.
	stopWait = 100 * time.Millisecond
)

// ErrAlreadyRecording возвращается при повторном Start.
var ErrAlreadyRecording = errors.New("audio: already recording")

// Frame - один закодированный кадр 20 мс.
type Frame []byte

type session struct {
	done chan struct{}
}

// Capture управляет записью: отдельный поток ОС на каждую сессию.
type Capture struct {
	device     Device
	newEncoder EncoderFactory

	recording atomic.Bool
	volume    atomic.Uint32
	current   atomic.Pointer[session]
}

// New создаёт Capture. Если newEncoder nil, используется Opus.
func New(device Device, newEncoder EncoderFactory) *Capture {
	if newEncoder == nil {
		newEncoder = NewOpusEncoder
	}
	return &Capture{device: device, newEncoder: newEncoder}
}

// Start открывает устройство и запускает цикл захвата.
// Ошибки открытия устройства и кодека возвращаются сразу.
func (c *Capture) Start() (<-chan Frame, error) {
	if !c.recording.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRecording
	}

	stream, err := c.device.Open()
	if err != nil {
		c.recording.Store(false)
		return nil, fmt.Errorf("open device: %w", err)
	}

	enc, err := c.newEncoder()
	if err != nil {
		stream.Close()
		c.recording.Store(false)
		return nil, fmt.Errorf("create encoder: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		c.recording.Store(false)
		return nil, fmt.Errorf("start stream: %w", err)
	}

	s := &session{done: make(chan struct{})}
	c.current.Store(s)

	frames := make(chan Frame, FrameQueueSize)
	go c.run(s, stream, enc, frames)

	return frames, nil
}

// Stop сбрасывает флаг записи и ждёт завершения цикла (не дольше stopWait).
func (c *Capture) Stop() {
	s := c.current.Swap(nil)
	c.recording.Store(false)
	if s == nil {
		return
	}

	select {
	case <-s.done:
	case <-time.After(stopWait):
		log.Debug().Msg("Цикл захвата не завершился вовремя")
	}
}

// IsRecording возвращает true если идёт запись.
func (c *Capture) IsRecording() bool {
	return c.recording.Load()
}

// Volume возвращает последний уровень громкости 0-100.
func (c *Capture) Volume() int {
	return int(c.volume.Load())
}

func (c *Capture) active(s *session) bool {
	return c.current.Load() == s
}

func (c *Capture) run(s *session, stream Stream, enc Encoder, frames chan<- Frame) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	defer close(s.done)
	defer close(frames)
	defer func() {
		if err := stream.Close(); err != nil {
			log.Debug().Err(err).Msg("Ошибка закрытия потока")
		}
		c.volume.Store(0)
		// Сбой без Stop: сессия всё ещё текущая, снимаем флаг сами
		if c.current.CompareAndSwap(s, nil) {
			c.recording.Store(false)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			metrics.CaptureFault()
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Сбой цикла захвата")
		}
	}()

	if err := c.loop(s, stream, enc, frames); err != nil {
		metrics.CaptureFault()
		log.Error().Err(err).Msg("Захват аудио остановлен")
	}
}

func (c *Capture) loop(s *session, stream Stream, enc Encoder, frames chan<- Frame) error {
	format := stream.Format()
	frameSamples := format.FrameSamples()
	if frameSamples <= 0 {
		return fmt.Errorf("invalid format %+v", format)
	}

	buf := newSampleBuffer(frameSamples * 4)
	raw := make([]int16, frameSamples)
	var count uint64

	for c.active(s) {
		samples, err := stream.Read()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		buf.Write(samples)

		for buf.Drain(raw) {
			packet, err := c.encodeFrame(raw, format.Channels, enc)
			if err != nil {
				log.Debug().Err(err).Msg("Ошибка кодирования кадра")
				continue
			}

			select {
			case frames <- packet:
				metrics.FrameEncoded()
			default:
				metrics.FrameDropped()
				log.Debug().Msg("Канал кадров заполнен, кадр отброшен")
			}

			count++
			if count == 1 {
				log.Debug().Msg("Первый кадр закодирован")
			} else if count%250 == 0 {
				log.Debug().Uint64("frames", count).Msg("Захват идёт")
			}
		}
	}
	return nil
}

// encodeFrame: mono, громкость, 16 кГц, кодек.
func (c *Capture) encodeFrame(raw []int16, channels int, enc Encoder) (Frame, error) {
	mono := downmix(raw, channels)
	c.volume.Store(uint32(volumeLevel(mono)))

	pcm := resample(mono, TargetFrameSamples)
	packet, err := enc.Encode(pcm)
	if err != nil {
		return nil, err
	}
	return Frame(packet), nil
}

package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog/log"
)

// maxChannels ограничивает число каналов: ALSA "default" сообщает о десятках.
const maxChannels = 2

// PortAudioDevice - устройство ввода по умолчанию через PortAudio.
type PortAudioDevice struct{}

// NewPortAudioDevice инициализирует PortAudio.
func NewPortAudioDevice() (*PortAudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	return &PortAudioDevice{}, nil
}

// Close освобождает PortAudio.
func (d *PortAudioDevice) Close() error {
	return portaudio.Terminate()
}

// Open открывает устройство ввода по умолчанию в его родном формате.
func (d *PortAudioDevice) Open() (Stream, error) {
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	if dev == nil || dev.MaxInputChannels < 1 {
		return nil, ErrNoDevice
	}

	format := Format{
		SampleRate: int(dev.DefaultSampleRate),
		Channels:   min(dev.MaxInputChannels, maxChannels),
	}

	// Блок 10 мс: цикл проверяет флаг остановки не реже раза в кадр
	framesPerBuffer := format.SampleRate / 100
	buf := make([]int16, framesPerBuffer*format.Channels)

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = format.Channels
	params.SampleRate = dev.DefaultSampleRate
	params.FramesPerBuffer = framesPerBuffer

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("open stream %s (%d Hz, %d ch): %w", dev.Name, format.SampleRate, format.Channels, err)
	}

	log.Info().
		Str("device", dev.Name).
		Int("rate", format.SampleRate).
		Int("channels", format.Channels).
		Msg("Устройство ввода открыто")

	return &portaudioStream{stream: stream, buf: buf, format: format}, nil
}

type portaudioStream struct {
	stream *portaudio.Stream
	buf    []int16
	format Format
}

func (s *portaudioStream) Format() Format { return s.format }

func (s *portaudioStream) Start() error { return s.stream.Start() }

func (s *portaudioStream) Read() ([]int16, error) {
	if err := s.stream.Read(); err != nil {
		// Переполнение не фатально: данные в буфере валидны
		if errors.Is(err, portaudio.InputOverflowed) {
			log.Debug().Msg("Переполнение буфера ввода")
			return s.buf, nil
		}
		return nil, err
	}
	return s.buf, nil
}

func (s *portaudioStream) Close() error {
	_ = s.stream.Stop()
	return s.stream.Close()
}

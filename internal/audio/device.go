package audio

import "errors"

var (
	// ErrNoDevice возвращается, если в системе нет устройства ввода.
	ErrNoDevice = errors.New("audio: no input device")
)

// Format описывает родной формат потока устройства.
type Format struct {
	SampleRate int
	Channels   int
}

// FrameSamples возвращает количество interleaved-сэмплов в кадре 20 мс.
func (f Format) FrameSamples() int {
	return f.SampleRate * FrameDurationMs / 1000 * f.Channels
}

// Device открывает поток с устройства ввода.
type Device interface {
	Open() (Stream, error)
}

// Stream - открытый поток ввода в родном формате устройства.
type Stream interface {
	Format() Format
	Start() error
	// Read блокируется до следующего блока interleaved-сэмплов.
	// Срез действителен до следующего вызова Read.
	Read() ([]int16, error)
	Close() error
}

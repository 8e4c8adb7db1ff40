package audio

import (
	"fmt"

	"github.com/jj11hh/opus"
)

const (
	// TargetSampleRate - частота кадров для распознавания.
	TargetSampleRate = 16000
	// FrameDurationMs - длительность одного кадра.
	FrameDurationMs = 20
	// TargetFrameSamples - сэмплов в кадре 16 кГц mono.
	TargetFrameSamples = TargetSampleRate * FrameDurationMs / 1000
	// Bitrate - фиксированный битрейт кодека для речи.
	Bitrate = 32000

	maxPacketSize = 1275
)

// Encoder кодирует кадр 16 кГц mono PCM.
type Encoder interface {
	Encode(pcm []int16) ([]byte, error)
}

// EncoderFactory создаёт кодек для новой сессии записи.
type EncoderFactory func() (Encoder, error)

type opusEncoder struct {
	enc *opus.Encoder
	buf []byte
}

// NewOpusEncoder создаёт Opus-кодек 16 кГц mono, настроенный на речь.
func NewOpusEncoder() (Encoder, error) {
	enc, err := opus.NewEncoder(TargetSampleRate, 1, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}
	if err := enc.SetBitrate(Bitrate); err != nil {
		return nil, fmt.Errorf("opus bitrate: %w", err)
	}
	return &opusEncoder{enc: enc, buf: make([]byte, maxPacketSize)}, nil
}

func (e *opusEncoder) Encode(pcm []int16) ([]byte, error) {
	n, err := e.enc.Encode(pcm, e.buf)
	if err != nil {
		return nil, err
	}
	packet := make([]byte, n)
	copy(packet, e.buf[:n])
	return packet, nil
}

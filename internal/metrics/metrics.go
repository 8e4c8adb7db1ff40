// Package metrics содержит Prometheus-метрики конвейера диктовки.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	framesEncoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glas_audio_frames_encoded_total",
		Help: "Total number of encoded audio frames",
	})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glas_audio_frames_dropped_total",
		Help: "Frames dropped because the frame channel was full",
	})

	captureFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glas_audio_capture_faults_total",
		Help: "Capture loops terminated by a device or codec fault",
	})

	volume = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "glas_audio_volume",
		Help: "Latest microphone volume level (0-100)",
	})

	recording = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "glas_recording",
		Help: "1 while a dictation session is active",
	})

	sessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glas_sessions_total",
		Help: "Dictation sessions by outcome",
	}, []string{"result"})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "glas_session_duration_seconds",
		Help:    "Duration of dictation sessions in seconds",
		Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
	})

	fragments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glas_transcript_fragments_total",
		Help: "Transcript fragments received from recognition",
	}, []string{"kind"})

	textActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glas_text_actions_total",
		Help: "Text insert/delete calls by outcome",
	}, []string{"op", "status"})

	hotkeyTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glas_hotkey_triggers_total",
		Help: "Hotkey trigger events by mode",
	}, []string{"mode"})
)

// FrameEncoded учитывает закодированный кадр.
func FrameEncoded() { framesEncoded.Inc() }

// FrameDropped учитывает отброшенный кадр.
func FrameDropped() { framesDropped.Inc() }

// CaptureFault учитывает аварийное завершение цикла захвата.
func CaptureFault() { captureFaults.Inc() }

// SetVolume обновляет уровень громкости.
func SetVolume(level int) { volume.Set(float64(level)) }

// SetRecording отмечает активность сессии.
func SetRecording(active bool) {
	if active {
		recording.Set(1)
		return
	}
	recording.Set(0)
}

// SessionEnded учитывает завершённую сессию.
func SessionEnded(result string, d time.Duration) {
	sessions.WithLabelValues(result).Inc()
	sessionDuration.Observe(d.Seconds())
}

// Fragment учитывает фрагмент распознавания.
func Fragment(kind string) { fragments.WithLabelValues(kind).Inc() }

// TextAction учитывает вызов вставки или удаления текста.
func TextAction(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	textActions.WithLabelValues(op, status).Inc()
}

// HotkeyTriggered учитывает срабатывание горячей клавиши.
func HotkeyTriggered(mode string) { hotkeyTriggers.WithLabelValues(mode).Inc() }

// Handler возвращает HTTP-обработчик для /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

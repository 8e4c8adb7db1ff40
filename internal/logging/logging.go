// Package logging настраивает структурированное логирование (zerolog).
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var once sync.Once

// Init настраивает глобальный логгер. Повторные вызовы игнорируются.
func Init(level string, pretty bool) {
	once.Do(func() {
		setup(os.Stderr, level, pretty)
	})
}

func setup(out io.Writer, level string, pretty bool) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()
}

// ParseLevel возвращает уровень логирования, info для неизвестных значений.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewSessionID генерирует идентификатор сессии записи.
func NewSessionID() string {
	return uuid.NewString()
}

// WithSession возвращает логгер с идентификатором сессии.
func WithSession(id string) zerolog.Logger {
	return log.With().Str("session", id).Logger()
}

// WithComponent возвращает логгер с именем компонента.
func WithComponent(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Env - настройки процесса из переменных окружения (префикс GLAS_).
type Env struct {
	// Логирование
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"true"`

	// Сервис распознавания
	ASRURL   string `envconfig:"ASR_URL" default:""`
	ASRToken string `envconfig:"ASR_TOKEN" default:""`

	// Повторы подключения
	RetryMaxAttempts    int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialBackoff int `envconfig:"RETRY_INITIAL_BACKOFF" default:"250"` // мс

	// Адрес для /metrics; пусто - сервер метрик не запускается
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`

	// Путь к config.json; пусто - рядом с бинарником
	ConfigPath string `envconfig:"CONFIG_PATH" default:""`
}

// InitialBackoff возвращает начальную задержку повтора.
func (e Env) InitialBackoff() time.Duration {
	return time.Duration(e.RetryInitialBackoff) * time.Millisecond
}

// LoadEnv читает окружение. Файл .env в рабочем каталоге подхватывается, если есть.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()
	return loadEnv()
}

func loadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("glas", &env); err != nil {
		return Env{}, fmt.Errorf("failed to load env: %w", err)
	}
	if env.RetryMaxAttempts < 0 {
		return Env{}, fmt.Errorf("GLAS_RETRY_MAX_ATTEMPTS must be >= 0, got %d", env.RetryMaxAttempts)
	}
	return env, nil
}

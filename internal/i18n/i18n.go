// Package i18n provides internationalization support.
package i18n

import (
	"fmt"
	"strings"
	"sync"
)

// Language represents a UI language.
type Language string

const (
	RU Language = "ru"
	EN Language = "en"
)

var (
	mu      sync.RWMutex
	current = RU // Default language
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	RU: {
		// App
		"app_name":    "Glas",
		"app_tooltip": "Glas - голосовой ввод",

		// Tray menu
		"tray_ready":              "Готов к работе",
		"tray_recording":          "Запись...",
		"tray_hotkey":             "Горячая клавиша: %s",
		"tray_start":              "Начать диктовку",
		"tray_start_hint":         "Включить микрофон и распознавание",
		"tray_stop":               "Остановить диктовку",
		"tray_stop_hint":          "Выключить микрофон",
		"tray_notifications":      "Уведомления",
		"tray_notifications_hint": "Показывать уведомления",
		"tray_quit":               "Выход",
		"tray_quit_hint":          "Закрыть приложение",

		// Notifications
		"notify_recording":      "Запись...",
		"notify_recording_hint": "Говорите в микрофон",
		"notify_stopped":        "Запись остановлена",
		"notify_stopped_hint":   "Текст вставлен в активное поле",
		"notify_error":          "Ошибка",
		"notify_ready":          "Glas готов к работе",
		"notify_hotkey":         "Горячая клавиша изменена",

		// CLI
		"cli_help":          "Команды: s - начать, e - остановить, t - тестовая вставка через 3 с, a - проверить сервис, q - выход",
		"cli_started":       "Запись начата, говорите...",
		"cli_stopped":       "Запись остановлена",
		"cli_already":       "Запись уже идёт",
		"cli_not_recording": "Запись не идёт",
		"cli_test_wait":     "Переключитесь в текстовое поле, вставка через 3 секунды...",
		"cli_test_text":     "Привет из Glas! 你好",
		"cli_test_done":     "Тестовый текст вставлен",
		"cli_check":         "Проверка сервиса распознавания...",
		"cli_check_ok":      "Сервис распознавания доступен",
		"cli_unknown":       "Неизвестная команда: %s",
		"cli_interim":       "[...] %s",
		"cli_final":         "[ok] %s",
		"cli_bye":           "До свидания",

		// Hotkey dialog
		"dialog_title":           "Горячая клавиша",
		"dialog_mode_prompt":     "Способ включения записи:",
		"dialog_mode_combo":      "Сочетание клавиш",
		"dialog_mode_double_tap": "Двойное нажатие",
		"dialog_combo_prompt":    "Сочетание, например Ctrl+Shift+V:",
		"dialog_tap_prompt":      "Клавиша для двойного нажатия:",
		"tray_hotkey_hint":       "Изменить горячую клавишу",

		// Errors
		"error_no_microphone": "Микрофон не найден",
		"error_recognition":   "Сервис распознавания недоступен",
		"error_hotkey":        "Не удалось зарегистрировать горячую клавишу",
	},

	EN: {
		// App
		"app_name":    "Glas",
		"app_tooltip": "Glas - voice input",

		// Tray menu
		"tray_ready":              "Ready",
		"tray_recording":          "Recording...",
		"tray_hotkey":             "Hotkey: %s",
		"tray_start":              "Start dictation",
		"tray_start_hint":         "Turn on the microphone and recognition",
		"tray_stop":               "Stop dictation",
		"tray_stop_hint":          "Turn off the microphone",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show notifications",
		"tray_quit":               "Quit",
		"tray_quit_hint":          "Close the application",

		// Notifications
		"notify_recording":      "Recording...",
		"notify_recording_hint": "Speak into the microphone",
		"notify_stopped":        "Recording stopped",
		"notify_stopped_hint":   "Text inserted into the focused field",
		"notify_error":          "Error",
		"notify_ready":          "Glas is ready",
		"notify_hotkey":         "Hotkey changed",

		// CLI
		"cli_help":          "Commands: s - start, e - stop, t - test insert in 3 s, a - check service, q - quit",
		"cli_started":       "Recording started, speak...",
		"cli_stopped":       "Recording stopped",
		"cli_already":       "Already recording",
		"cli_not_recording": "Not recording",
		"cli_test_wait":     "Switch to a text field, inserting in 3 seconds...",
		"cli_test_text":     "Hello from Glas! 你好",
		"cli_test_done":     "Test text inserted",
		"cli_check":         "Checking the recognition service...",
		"cli_check_ok":      "Recognition service is reachable",
		"cli_unknown":       "Unknown command: %s",
		"cli_interim":       "[...] %s",
		"cli_final":         "[ok] %s",
		"cli_bye":           "Bye",

		// Hotkey dialog
		"dialog_title":           "Hotkey",
		"dialog_mode_prompt":     "How to toggle recording:",
		"dialog_mode_combo":      "Key combination",
		"dialog_mode_double_tap": "Double tap",
		"dialog_combo_prompt":    "Combination, e.g. Ctrl+Shift+V:",
		"dialog_tap_prompt":      "Key to double tap:",
		"tray_hotkey_hint":       "Change the hotkey",

		// Errors
		"error_no_microphone": "No microphone found",
		"error_recognition":   "Recognition service is unavailable",
		"error_hotkey":        "Failed to register the hotkey",
	},
}

// T returns the translation for the given key.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	// Fallback to key itself
	return key
}

// Tf formats the translation for the given key.
func Tf(key string, args ...any) string {
	return fmt.Sprintf(T(key), args...)
}

// SetLanguage sets the current UI language. Unknown languages fall back to RU.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := translations[lang]; !ok {
		lang = RU
	}
	current = lang
}

// Parse converts a config value such as "en" or "en-US" to a Language.
func Parse(s string) Language {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	return Language(s)
}

// GetLanguage returns the current UI language.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// AvailableLanguages returns list of supported languages.
func AvailableLanguages() []Language {
	return []Language{RU, EN}
}

// LanguageName returns display name for a language.
func LanguageName(lang Language) string {
	switch lang {
	case RU:
		return "Русский"
	case EN:
		return "English"
	default:
		return string(lang)
	}
}

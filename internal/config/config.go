// Package config предоставляет конфигурацию приложения с сохранением в файл.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownMode     = errors.New("config: unknown hotkey mode")
	ErrEmptyKey        = errors.New("config: hotkey key is empty")
	ErrInvalidInterval = errors.New("config: double tap interval must be positive")
)

// Mode - способ активации записи.
type Mode string

const (
	ModeCombo     Mode = "combo"      // аккорд вида Ctrl+Shift+V
	ModeDoubleTap Mode = "double_tap" // двойное нажатие модификатора
)

// Modifier представляет модификатор клавиши.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super" // Win/Cmd
)

// Key представляет клавишу аккорда.
type Key string

const (
	KeySpace  Key = "space"
	KeyReturn Key = "return"
	KeyTab    Key = "tab"
	KeyEscape Key = "escape"
	KeyA      Key = "a"
	KeyB      Key = "b"
	KeyC      Key = "c"
	KeyD      Key = "d"
	KeyE      Key = "e"
	KeyF      Key = "f"
	KeyG      Key = "g"
	KeyH      Key = "h"
	KeyI      Key = "i"
	KeyJ      Key = "j"
	KeyK      Key = "k"
	KeyL      Key = "l"
	KeyM      Key = "m"
	KeyN      Key = "n"
	KeyO      Key = "o"
	KeyP      Key = "p"
	KeyQ      Key = "q"
	KeyR      Key = "r"
	KeyS      Key = "s"
	KeyT      Key = "t"
	KeyU      Key = "u"
	KeyV      Key = "v"
	KeyW      Key = "w"
	KeyX      Key = "x"
	KeyY      Key = "y"
	KeyZ      Key = "z"
	Key0      Key = "0"
	Key1      Key = "1"
	Key2      Key = "2"
	Key3      Key = "3"
	Key4      Key = "4"
	Key5      Key = "5"
	Key6      Key = "6"
	Key7      Key = "7"
	Key8      Key = "8"
	Key9      Key = "9"
	KeyF1     Key = "f1"
	KeyF2     Key = "f2"
	KeyF3     Key = "f3"
	KeyF4     Key = "f4"
	KeyF5     Key = "f5"
	KeyF6     Key = "f6"
	KeyF7     Key = "f7"
	KeyF8     Key = "f8"
	KeyF9     Key = "f9"
	KeyF10    Key = "f10"
	KeyF11    Key = "f11"
	KeyF12    Key = "f12"
)

// Значения по умолчанию.
const (
	DefaultComboKey          = "Ctrl+Shift+V"
	DefaultDoubleTapKey      = "Ctrl"
	DefaultDoubleTapInterval = 300 // мс
)

// HotkeyConfig хранит настройки горячей клавиши. Меняется только целиком.
type HotkeyConfig struct {
	Mode                Mode   `json:"mode"`
	ComboKey            string `json:"combo_key"`
	DoubleTapKey        string `json:"double_tap_key"`
	DoubleTapIntervalMs int    `json:"double_tap_interval_ms"`
}

// DefaultHotkey возвращает настройки по умолчанию.
func DefaultHotkey() HotkeyConfig {
	return HotkeyConfig{
		Mode:                ModeCombo,
		ComboKey:            DefaultComboKey,
		DoubleTapKey:        DefaultDoubleTapKey,
		DoubleTapIntervalMs: DefaultDoubleTapInterval,
	}
}

// Interval возвращает окно двойного нажатия.
func (h HotkeyConfig) Interval() time.Duration {
	return time.Duration(h.DoubleTapIntervalMs) * time.Millisecond
}

// Validate проверяет структуру настроек. Разбор самих клавиш - в пакете hotkey.
func (h HotkeyConfig) Validate() error {
	switch h.Mode {
	case ModeCombo:
		if strings.TrimSpace(h.ComboKey) == "" {
			return fmt.Errorf("combo: %w", ErrEmptyKey)
		}
	case ModeDoubleTap:
		if strings.TrimSpace(h.DoubleTapKey) == "" {
			return fmt.Errorf("double tap: %w", ErrEmptyKey)
		}
		if h.DoubleTapIntervalMs <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidInterval, h.DoubleTapIntervalMs)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, h.Mode)
	}
	return nil
}

// String возвращает строковое представление горячей клавиши.
func (h HotkeyConfig) String() string {
	if h.Mode == ModeDoubleTap {
		return fmt.Sprintf("%s x2 (%d ms)", h.DoubleTapKey, h.DoubleTapIntervalMs)
	}
	return h.ComboKey
}

// withDefaults дополняет пустые поля, сохранённые старыми версиями.
func (h HotkeyConfig) withDefaults() HotkeyConfig {
	def := DefaultHotkey()
	if h.Mode == "" {
		h.Mode = def.Mode
	}
	if h.ComboKey == "" {
		h.ComboKey = def.ComboKey
	}
	if h.DoubleTapKey == "" {
		h.DoubleTapKey = def.DoubleTapKey
	}
	if h.DoubleTapIntervalMs == 0 {
		h.DoubleTapIntervalMs = def.DoubleTapIntervalMs
	}
	return h
}

// configData структура для сериализации.
type configData struct {
	Language      string       `json:"language"`
	UILanguage    string       `json:"ui_language,omitempty"`
	Notifications bool         `json:"notifications"`
	AutoStart     bool         `json:"auto_start"`
	VADEnabled    bool         `json:"vad_enabled"`
	Hotkey        HotkeyConfig `json:"hotkey"`
}

// Config хранит настройки приложения.
type Config struct {
	mu             sync.RWMutex
	language       string
	uiLanguage     string
	notifications  bool
	autoStart      bool
	vadEnabled     bool
	hotkey         HotkeyConfig
	configPath     string
	onHotkeyChange func(HotkeyConfig)
}

// New создаёт конфигурацию из config.json рядом с бинарником.
func New() *Config {
	path := ""
	// Резолвим симлинки, чтобы найти настоящий каталог бинарника
	if execPath, err := os.Executable(); err == nil {
		if execPath, err = filepath.EvalSymlinks(execPath); err == nil {
			path = filepath.Join(filepath.Dir(execPath), "config.json")
		}
	}
	return NewWithPath(path)
}

// NewWithPath создаёт конфигурацию из указанного файла. Пустой путь - только в памяти.
func NewWithPath(path string) *Config {
	c := &Config{configPath: path}
	c.applyData(defaultData())

	if err := c.load(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Не удалось загрузить конфигурацию, используются значения по умолчанию")
	}
	return c
}

func defaultData() configData {
	return configData{
		Language:      "ru-RU",
		UILanguage:    "ru",
		Notifications: true,
		AutoStart:     false,
		VADEnabled:    true,
		Hotkey:        DefaultHotkey(),
	}
}

func (c *Config) applyData(d configData) {
	c.language = d.Language
	if d.UILanguage != "" {
		c.uiLanguage = d.UILanguage
	}
	c.notifications = d.Notifications
	c.autoStart = d.AutoStart
	c.vadEnabled = d.VADEnabled
	c.hotkey = d.Hotkey.withDefaults()
}

// read читает файл поверх значений по умолчанию. Отсутствие файла - не ошибка.
func (c *Config) read() (configData, bool, error) {
	data := defaultData()
	if c.configPath == "" {
		return data, false, nil
	}

	raw, err := os.ReadFile(c.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return data, false, nil
	}
	if err != nil {
		return data, false, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return defaultData(), false, fmt.Errorf("parse config %s: %w", c.configPath, err)
	}
	if data.Language == "" {
		data.Language = defaultData().Language
	}
	return data, true, nil
}

// load загружает конфигурацию из файла.
func (c *Config) load() error {
	data, found, err := c.read()
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyData(data)
	return nil
}

// Reload перечитывает файл. Горячая клавиша из файла не применяется,
// а возвращается вызывающему: сохранится она только после успешной
// перерегистрации (SetHotkey).
func (c *Config) Reload() (HotkeyConfig, error) {
	data, _, err := c.read()
	if err != nil {
		return c.Hotkey(), err
	}

	c.mu.Lock()
	current := c.hotkey
	c.applyData(data)
	requested := c.hotkey
	c.hotkey = current
	c.mu.Unlock()

	return requested, nil
}

// save сохраняет конфигурацию в файл. Вызывается под c.mu.
func (c *Config) save() {
	if c.configPath == "" {
		return
	}

	cfg := configData{
		Language:      c.language,
		UILanguage:    c.uiLanguage,
		Notifications: c.notifications,
		AutoStart:     c.autoStart,
		VADEnabled:    c.vadEnabled,
		Hotkey:        c.hotkey,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Ошибка сериализации конфигурации")
		return
	}

	if err := os.WriteFile(c.configPath, data, 0644); err != nil {
		log.Error().Err(err).Str("path", c.configPath).Msg("Ошибка сохранения конфигурации")
	}
}

// Path возвращает путь к файлу конфигурации.
func (c *Config) Path() string {
	return c.configPath
}

// SetLanguage устанавливает язык распознавания.
func (c *Config) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = lang
	c.save()
}

// Language возвращает текущий язык распознавания.
func (c *Config) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

// SetNotifications включает/выключает уведомления.
func (c *Config) SetNotifications(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = enabled
	c.save()
}

// ToggleNotifications переключает состояние уведомлений.
func (c *Config) ToggleNotifications() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = !c.notifications
	c.save()
	return c.notifications
}

// NotificationsEnabled возвращает true если уведомления включены.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifications
}

// AutoStart - начинать ли запись сразу после запуска.
func (c *Config) AutoStart() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.autoStart
}

// VADEnabled - просить ли сервис отсекать тишину.
func (c *Config) VADEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vadEnabled
}

// Hotkey возвращает текущую горячую клавишу.
func (c *Config) Hotkey() HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hotkey
}

// SetHotkey сохраняет горячую клавишу и уведомляет подписчика.
func (c *Config) SetHotkey(hk HotkeyConfig) {
	c.mu.Lock()
	c.hotkey = hk
	callback := c.onHotkeyChange
	c.save()
	c.mu.Unlock()

	if callback != nil {
		callback(hk)
	}
}

// OnHotkeyChange устанавливает callback для изменения горячей клавиши.
func (c *Config) OnHotkeyChange(fn func(HotkeyConfig)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHotkeyChange = fn
}

// UILanguage возвращает язык интерфейса.
func (c *Config) UILanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uiLanguage
}

// SetUILanguage устанавливает язык интерфейса.
func (c *Config) SetUILanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uiLanguage = lang
	c.save()
}

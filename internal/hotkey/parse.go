package hotkey

import (
	"errors"
	"fmt"
	"strings"

	"glas/internal/config"
)

var (
	ErrUnknownKey = errors.New("hotkey: unknown key")
	ErrNoKey      = errors.New("hotkey: combo has no key")
	// ErrUnknownMode возвращается для режима, отличного от combo и double_tap.
	ErrUnknownMode = config.ErrUnknownMode
)

// Combo - разобранный аккорд.
type Combo struct {
	Modifiers []config.Modifier
	Key       config.Key
}

// String возвращает аккорд в подписях текущей платформы, например "Ctrl+Shift+V".
func (c Combo) String() string {
	parts := make([]string, 0, len(c.Modifiers)+1)
	for _, m := range c.Modifiers {
		parts = append(parts, modifierLabel(m))
	}
	parts = append(parts, strings.ToUpper(string(c.Key)))
	return strings.Join(parts, "+")
}

func modifierLabel(m config.Modifier) string {
	if mod, ok := modifiers[m]; ok {
		return mod.label
	}
	return string(m)
}

var modifierAliases = map[string]config.Modifier{
	"ctrl":    config.ModCtrl,
	"control": config.ModCtrl,
	"shift":   config.ModShift,
	"alt":     config.ModAlt,
	"option":  config.ModAlt,
	"super":   config.ModSuper,
	"win":     config.ModSuper,
	"meta":    config.ModSuper,
	"cmd":     config.ModSuper,
}

var keyAliases = map[string]config.Key{
	"space":  config.KeySpace,
	"enter":  config.KeyReturn,
	"return": config.KeyReturn,
	"tab":    config.KeyTab,
	"esc":    config.KeyEscape,
	"escape": config.KeyEscape,
}

// parseModifier распознаёт имя модификатора без учёта регистра.
func parseModifier(name string) (config.Modifier, bool) {
	m, ok := modifierAliases[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

func parseKey(name string) (config.Key, bool) {
	if k, ok := keyAliases[name]; ok {
		return k, true
	}
	k := config.Key(name)
	_, ok := keyMap[k]
	return k, ok
}

// ParseCombo разбирает строку вида "Ctrl+Shift+V". Регистр не важен,
// модификаторы идут в любом порядке, клавиша ровно одна.
func ParseCombo(s string) (Combo, error) {
	var combo Combo
	seen := make(map[config.Modifier]bool)

	for _, raw := range strings.Split(s, "+") {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			return Combo{}, fmt.Errorf("%w: empty token in %q", ErrUnknownKey, s)
		}

		if m, ok := modifierAliases[token]; ok {
			if !seen[m] {
				seen[m] = true
				combo.Modifiers = append(combo.Modifiers, m)
			}
			continue
		}

		key, ok := parseKey(token)
		if !ok {
			return Combo{}, fmt.Errorf("%w: %q in %q", ErrUnknownKey, raw, s)
		}
		if combo.Key != "" {
			return Combo{}, fmt.Errorf("%w: second key %q in %q", ErrUnknownKey, raw, s)
		}
		combo.Key = key
	}

	if combo.Key == "" {
		return Combo{}, fmt.Errorf("%w: %q", ErrNoKey, s)
	}
	return combo, nil
}

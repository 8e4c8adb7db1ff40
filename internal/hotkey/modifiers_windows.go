//go:build windows

package hotkey

import (
	"golang.design/x/hotkey"

	"glas/internal/config"
)

// modifiers для Windows
var modifiers = map[config.Modifier]modifierSpec{
	config.ModCtrl:  {chord: hotkey.ModCtrl, taps: []string{"ctrl", "rctrl"}, label: "Ctrl"},
	config.ModShift: {chord: hotkey.ModShift, taps: []string{"shift", "rshift"}, label: "Shift"},
	config.ModAlt:   {chord: hotkey.ModAlt, taps: []string{"alt", "ralt"}, label: "Alt"},
	config.ModSuper: {chord: hotkey.ModWin, taps: []string{"cmd", "rcmd"}, label: "Win"},
}

//go:build darwin

package hotkey

import (
	"golang.design/x/hotkey"

	"glas/internal/config"
)

// modifiers для macOS: Alt - это Option, Super - Cmd
var modifiers = map[config.Modifier]modifierSpec{
	config.ModCtrl:  {chord: hotkey.ModCtrl, taps: []string{"ctrl", "rctrl"}, label: "Ctrl"},
	config.ModShift: {chord: hotkey.ModShift, taps: []string{"shift", "rshift"}, label: "Shift"},
	config.ModAlt:   {chord: hotkey.ModOption, taps: []string{"alt", "ralt"}, label: "Option"},
	config.ModSuper: {chord: hotkey.ModCmd, taps: []string{"cmd", "rcmd"}, label: "Cmd"},
}

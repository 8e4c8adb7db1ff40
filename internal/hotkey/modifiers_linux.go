//go:build linux

package hotkey

import (
	"golang.design/x/hotkey"

	"glas/internal/config"
)

// modifiers для X11
var modifiers = map[config.Modifier]modifierSpec{
	config.ModCtrl:  {chord: hotkey.ModCtrl, taps: []string{"ctrl", "rctrl"}, label: "Ctrl"},
	config.ModShift: {chord: hotkey.ModShift, taps: []string{"shift", "rshift"}, label: "Shift"},
	config.ModAlt:   {chord: hotkey.Mod1, taps: []string{"alt", "ralt"}, label: "Alt"},     // Alt = Mod1
	config.ModSuper: {chord: hotkey.Mod4, taps: []string{"cmd", "rcmd"}, label: "Super"}, // Super = Mod4
}

//go:build linux

package input

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

type linuxAction struct {
	useWayland bool
}

func newTextAction() (TextAction, error) {
	a := &linuxAction{
		useWayland: os.Getenv("WAYLAND_DISPLAY") != "",
	}
	return a, nil
}

func (a *linuxAction) Insert(text string) error {
	if a.useWayland {
		return run("wtype", "--", text)
	}
	return run("xdotool", "type", "--clearmodifiers", "--", text)
}

func (a *linuxAction) DeleteChars(count int) error {
	if a.useWayland {
		args := make([]string, 0, count*2)
		for i := 0; i < count; i++ {
			args = append(args, "-k", "BackSpace")
		}
		return run("wtype", args...)
	}
	return run("xdotool", "key", "--clearmodifiers", "--repeat", strconv.Itoa(count), "BackSpace")
}

func run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

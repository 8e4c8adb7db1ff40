//go:build windows

package input

import (
	"fmt"
	"syscall"
	"unicode/utf16"
	"unsafe"
)

var (
	user32        = syscall.NewLazyDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputKeyboard    = 1
	keyEventFKeyUp   = 0x0002
	keyEventFUnicode = 0x0004
	vkBack           = 0x08
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   uint64
}

type windowsAction struct{}

func newTextAction() (TextAction, error) {
	return &windowsAction{}, nil
}

func (a *windowsAction) Insert(text string) error {
	units := utf16.Encode([]rune(text))
	inputs := make([]input, 0, len(units)*2)

	for _, u := range units {
		inputs = append(inputs,
			input{inputType: inputKeyboard, ki: keyboardInput{wScan: u, dwFlags: keyEventFUnicode}},
			input{inputType: inputKeyboard, ki: keyboardInput{wScan: u, dwFlags: keyEventFUnicode | keyEventFKeyUp}},
		)
	}
	return sendInput(inputs)
}

func (a *windowsAction) DeleteChars(count int) error {
	inputs := make([]input, 0, count*2)
	for i := 0; i < count; i++ {
		inputs = append(inputs,
			input{inputType: inputKeyboard, ki: keyboardInput{wVk: vkBack}},
			input{inputType: inputKeyboard, ki: keyboardInput{wVk: vkBack, dwFlags: keyEventFKeyUp}},
		)
	}
	return sendInput(inputs)
}

func sendInput(inputs []input) error {
	if len(inputs) == 0 {
		return nil
	}

	sent, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		uintptr(unsafe.Sizeof(inputs[0])),
	)
	// SendInput возвращает число вставленных событий; меньше - блокировка UIPI
	if int(sent) != len(inputs) {
		return fmt.Errorf("SendInput: sent %d of %d: %v", sent, len(inputs), err)
	}
	return nil
}

//go:build darwin

package input

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation
#import <ApplicationServices/ApplicationServices.h>
#import <Foundation/Foundation.h>
#include <stdlib.h>

static const CGKeyCode kBackspace = 51;

int insertText(const char* text) {
    NSString *str = [NSString stringWithUTF8String:text];
    if (str == nil) {
        return -1;
    }

    for (NSUInteger i = 0; i < [str length]; i++) {
        unichar c = [str characterAtIndex:i];

        CGEventRef keyDown = CGEventCreateKeyboardEvent(NULL, 0, true);
        CGEventRef keyUp = CGEventCreateKeyboardEvent(NULL, 0, false);
        if (keyDown == NULL || keyUp == NULL) {
            if (keyDown) CFRelease(keyDown);
            if (keyUp) CFRelease(keyUp);
            return -2;
        }

        CGEventKeyboardSetUnicodeString(keyDown, 1, &c);
        CGEventKeyboardSetUnicodeString(keyUp, 1, &c);

        CGEventPost(kCGHIDEventTap, keyDown);
        CGEventPost(kCGHIDEventTap, keyUp);

        CFRelease(keyDown);
        CFRelease(keyUp);
    }
    return 0;
}

int deleteChars(int count) {
    for (int i = 0; i < count; i++) {
        CGEventRef keyDown = CGEventCreateKeyboardEvent(NULL, kBackspace, true);
        CGEventRef keyUp = CGEventCreateKeyboardEvent(NULL, kBackspace, false);
        if (keyDown == NULL || keyUp == NULL) {
            if (keyDown) CFRelease(keyDown);
            if (keyUp) CFRelease(keyUp);
            return -2;
        }

        CGEventPost(kCGHIDEventTap, keyDown);
        CGEventPost(kCGHIDEventTap, keyUp);

        CFRelease(keyDown);
        CFRelease(keyUp);
    }
    return 0;
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

type darwinAction struct{}

func newTextAction() (TextAction, error) {
	return &darwinAction{}, nil
}

func (a *darwinAction) Insert(text string) error {
	cstr := C.CString(text)
	defer C.free(unsafe.Pointer(cstr))
	if rc := C.insertText(cstr); rc != 0 {
		return fmt.Errorf("CGEvent insert: code %d", int(rc))
	}
	return nil
}

func (a *darwinAction) DeleteChars(count int) error {
	if rc := C.deleteChars(C.int(count)); rc != 0 {
		return fmt.Errorf("CGEvent backspace: code %d", int(rc))
	}
	return nil
}

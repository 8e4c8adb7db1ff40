//go:build !linux && !darwin && !windows

package input

func newTextAction() (TextAction, error) {
	return nil, ErrUnsupported
}

//go:build !linux

package notify

import "errors"

// ErrUnsupported is returned by New where no freedesktop notification
// service exists.
var ErrUnsupported = errors.New("desktop notifications need a freedesktop session bus")

// New reports ErrUnsupported; callers run without notifications.
func New() (Notifier, error) {
	return nil, ErrUnsupported
}

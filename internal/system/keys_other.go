//go:build !linux

package system

import "context"

// StartKeyHandlers is a no-op off Linux: there are no evdev devices to watch.
func StartKeyHandlers(ctx context.Context, l logger, handlers map[KeyCode]func()) {
	if l != nil && len(handlers) > 0 {
		l.Infof("input", "evdev key handlers are only available on linux")
	}
}

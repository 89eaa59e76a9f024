//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const evdevGlob = "/dev/input/event*"

// StartKeyHandlers watches Linux evdev devices under /dev/input/event* and calls
// the handler registered for each pressed key. Keys without a handler are ignored.
// Handlers run on the reader goroutines and must not block.
//
// It is best-effort: if no input devices are available, it logs and returns.
func StartKeyHandlers(ctx context.Context, l logger, handlers map[KeyCode]func()) {
	if len(handlers) == 0 {
		return
	}

	tvSize := binary.Size(unix.Timeval{})
	if tvSize <= 0 {
		tvSize = 16
	}

	paths, err := filepath.Glob(evdevGlob)
	if err != nil || len(paths) == 0 {
		if l != nil {
			l.Infof("input", "no evdev devices found for key handlers")
		}
		return
	}

	for _, path := range paths {
		go watchDevice(ctx, l, path, tvSize, handlers)
	}
}

func watchDevice(ctx context.Context, l logger, path string, tvSize int, handlers map[KeyCode]func()) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 4096)
	pressed := func(code KeyCode) {
		h, ok := handlers[code]
		if !ok {
			return
		}
		if l != nil {
			l.Infof("input", "key %d pressed on %s", code, path)
		}
		h()
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		parseKeyPresses(buf[:n], tvSize, pressed)
	}
}

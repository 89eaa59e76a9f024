//go:build !linux

package system

import "errors"

var errNoVT = errors.New("virtual terminal control is only available on linux")

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

func SetGraphicsMode() error { return errNoVT }
func RestoreTextMode() error { return errNoVT }
func HideCursor() error      { return errNoVT }
func ShowCursor() error      { return errNoVT }

func TakeConsole(l logger) (restore func()) {
	if l != nil {
		l.Infof("tty", "%v", errNoVT)
	}
	return func() {}
}

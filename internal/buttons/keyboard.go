package buttons

import (
	"context"
	"sync"

	"github.com/rook-computer/gridart/internal/system"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// KeyWatcher starts delivering key presses to handlers until ctx is done.
type KeyWatcher func(ctx context.Context, logger Logger, handlers map[system.KeyCode]func())

// DefaultKeymap maps S to Export and F4 to Exit.
var DefaultKeymap = map[system.KeyCode]Event{
	system.KeyS:  Export,
	system.KeyF4: Exit,
}

// KeyboardButtons turns evdev key presses into button events.
type KeyboardButtons struct {
	Keymap map[system.KeyCode]Event
	Logger Logger

	// Watch defaults to system.StartKeyHandlers.
	Watch KeyWatcher

	mu      sync.Mutex
	ch      chan Event
	cancel  context.CancelFunc
	stopped bool
}

func NewKeyboardButtons(logger Logger) *KeyboardButtons {
	return &KeyboardButtons{Keymap: DefaultKeymap, Logger: logger, ch: make(chan Event, 8)}
}

func (k *KeyboardButtons) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.cancel != nil || k.stopped {
		return nil
	}
	if k.ch == nil {
		k.ch = make(chan Event, 8)
	}

	watch := k.Watch
	if watch == nil {
		watch = func(ctx context.Context, l Logger, h map[system.KeyCode]func()) {
			system.StartKeyHandlers(ctx, l, h)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	k.cancel = cancel

	handlers := make(map[system.KeyCode]func(), len(k.Keymap))
	for code, ev := range k.Keymap {
		ev := ev
		handlers[code] = func() { k.emit(ev) }
	}
	watch(ctx, k.Logger, handlers)
	return nil
}

func (k *KeyboardButtons) Stop() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped {
		return nil
	}
	k.stopped = true
	if k.cancel != nil {
		k.cancel()
	}
	if k.ch != nil {
		close(k.ch)
	}
	return nil
}

func (k *KeyboardButtons) Events() <-chan Event {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.ch == nil {
		k.ch = make(chan Event, 8)
	}
	return k.ch
}

// emit drops the event when nobody keeps up; a held key is not a queue.
func (k *KeyboardButtons) emit(ev Event) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped {
		return
	}
	select {
	case k.ch <- ev:
	default:
		if k.Logger != nil {
			k.Logger.Errorf("buttons", "dropped %s event", ev)
		}
	}
}

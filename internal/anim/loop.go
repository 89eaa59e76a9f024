package anim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rook-computer/gridart/internal/state"
)

// DefaultFPS is the redraw cadence of the ticker-driven host.
const DefaultFPS = 30

// Scheduler defers a callback to the next frame.
type Scheduler interface {
	Schedule(next func())
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Stepper is the part of state.Store the loop drives.
type Stepper interface {
	Step()
	Snapshot() state.State
}

// Loop advances the points and redraws once per frame, forever.
type Loop struct {
	Store     Stepper
	Redraw    func(snap state.State)
	Scheduler Scheduler
	Logger    Logger

	mu     sync.Mutex
	frames uint64
}

func NewLoop(store Stepper, scheduler Scheduler, redraw func(state.State)) *Loop {
	return &Loop{Store: store, Scheduler: scheduler, Redraw: redraw}
}

// Start requests the first frame. Every frame requests the next one.
func (l *Loop) Start() error {
	if l.Store == nil {
		return errors.New("animation loop: no state store")
	}
	if l.Scheduler == nil {
		return errors.New("animation loop: no scheduler")
	}
	if l.Logger != nil {
		l.Logger.Infof("anim", "animation loop started")
	}
	l.Scheduler.Schedule(l.frame)
	return nil
}

// Frames reports how many frames have run.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

func (l *Loop) frame() {
	l.Store.Step()
	if l.Redraw != nil {
		l.Redraw(l.Store.Snapshot())
	}
	l.mu.Lock()
	l.frames++
	l.mu.Unlock()
	l.Scheduler.Schedule(l.frame)
}

// Queue holds at most one pending frame callback until a host runs it.
type Queue struct {
	mu      sync.Mutex
	pending func()
}

func (q *Queue) Schedule(next func()) {
	q.mu.Lock()
	q.pending = next
	q.mu.Unlock()
}

// RunPending runs the pending callback, if any. Callbacks scheduled while it
// runs wait for the next call.
func (q *Queue) RunPending() bool {
	q.mu.Lock()
	next := q.pending
	q.pending = nil
	q.mu.Unlock()
	if next == nil {
		return false
	}
	next()
	return true
}

// TickerScheduler runs queued frames on a fixed-rate ticker.
type TickerScheduler struct {
	Queue
	FPS int
}

func NewTickerScheduler(fps int) *TickerScheduler {
	return &TickerScheduler{FPS: fps}
}

// Run drives frames until ctx is done.
func (s *TickerScheduler) Run(ctx context.Context) error {
	fps := s.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	d := time.Second / time.Duration(fps)
	if d <= 0 {
		return fmt.Errorf("invalid frame rate: %d", fps)
	}
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunPending()
		}
	}
}

// Package desktop holds the window-independent half of the desktop host:
// input handling, export and frame production. The ebiten window only
// forwards its events here.
package desktop

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/rook-computer/gridart/internal/anim"
	"github.com/rook-computer/gridart/internal/app/screens"
	"github.com/rook-computer/gridart/internal/export"
	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/render"
	"github.com/rook-computer/gridart/internal/render/layout"
	"github.com/rook-computer/gridart/internal/state"
)

const (
	buttonMarginPx = 12
	buttonWidthPx  = 96
	buttonHeightPx = 28
	statusTTL      = 3 * time.Second
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type Exporter interface {
	Export(sink export.Sink) error
}

// Session is one running desktop window.
type Session struct {
	Store     *state.Store
	Exporter  Exporter
	ExportDir string
	Logger    Logger

	screen   *screens.GridScreen
	renderer *render.ImageRenderer
	queue    anim.Queue
	loop     *anim.Loop

	mu          sync.Mutex
	status      string
	statusUntil time.Time
	now         func() time.Time
}

func NewSession(g grid.Grid, store *state.Store, exportDir string, logger Logger) (*Session, error) {
	if store == nil {
		return nil, errors.New("desktop: no state store")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	screen := screens.NewGridScreen(g, screens.HUD{}, logger)
	s := &Session{
		Store:     store,
		Exporter:  export.NewService(g, store, logger),
		ExportDir: exportDir,
		Logger:    logger,
		screen:    screen,
		renderer:  render.NewImageRenderer(),
		now:       time.Now,
	}
	s.renderer.SetScreen(screen)
	s.loop = anim.NewLoop(store, &s.queue, s.renderer.RedrawWithState)
	s.loop.Logger = logger
	if err := s.loop.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// Tick runs the pending animation frame. Hosts call it once per display frame.
func (s *Session) Tick() bool { return s.queue.RunPending() }

// Screen is the screen the window draws, for hosts that render elsewhere too.
func (s *Session) Screen() render.Screen { return s.screen }

// Frame returns the most recently drawn frame.
func (s *Session) Frame() *image.RGBA { return s.renderer.Frame() }

// Resize records the window size as the viewport. Degenerate sizes are ignored.
func (s *Session) Resize(width, height int) {
	vp := state.Viewport{Width: width, Height: height}
	if vp.Empty() || vp == s.Store.Viewport() {
		return
	}
	s.Store.SetViewport(vp)
}

// ButtonRect is where the export button sits for the current viewport.
func (s *Session) ButtonRect() image.Rectangle {
	vp := s.Store.Viewport()
	area := layout.Inset(image.Rect(0, 0, vp.Width, vp.Height), buttonMarginPx)
	return layout.AnchorTopRight(area, buttonWidthPx, buttonHeightPx)
}

// StatusRect is where the last export outcome is shown.
func (s *Session) StatusRect() image.Rectangle {
	vp := s.Store.Viewport()
	area := layout.Inset(image.Rect(0, 0, vp.Width, vp.Height), buttonMarginPx)
	return layout.AnchorTopLeft(area, area.Dx()-buttonWidthPx-buttonMarginPx, buttonHeightPx)
}

// Click handles a primary-button press at window coordinates. A press on the
// export button exports; anywhere else adds a point.
func (s *Session) Click(x, y int) {
	if image.Pt(x, y).In(s.ButtonRect()) {
		_ = s.Export()
		return
	}
	p := s.Store.AddPoint(float64(x), float64(y))
	if s.Logger != nil {
		s.Logger.Infof("desktop", "point %s added at (%d,%d)", p.ID, x, y)
	}
}

// Export writes grid_art.svg into ExportDir. The key binding and the button
// both end up here.
func (s *Session) Export() error {
	if s.Exporter == nil {
		return errors.New("desktop: no exporter")
	}
	err := s.Exporter.Export(export.DirSink{Dir: s.ExportDir})
	if err != nil {
		s.setStatus(fmt.Sprintf("export failed: %v", err))
		return err
	}
	s.setStatus("saved " + export.Filename)
	return nil
}

// Status returns the message to show, or "" once it has expired.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == "" || s.now().After(s.statusUntil) {
		return ""
	}
	return s.status
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.statusUntil = s.now().Add(statusTTL)
	s.mu.Unlock()
}

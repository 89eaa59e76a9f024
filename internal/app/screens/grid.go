package screens

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/render"
	"github.com/rook-computer/gridart/internal/render/layout"
	"github.com/rook-computer/gridart/internal/state"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// HUD is the optional device overlay: a point counter and a QR code linking
// to the web UI. It never appears in exports.
type HUD struct {
	Enabled bool
	URL     string
}

const (
	hudMarginPx = 24
	hudQRSizePx = 160
	hudTextSize = 20
)

// GridScreen draws the line lattice for the current state.
type GridScreen struct {
	Grid   grid.Grid
	HUD    HUD
	Logger Logger

	qrOnce sync.Once
	qr     image.Image
}

func NewGridScreen(g grid.Grid, hud HUD, logger Logger) *GridScreen {
	return &GridScreen{Grid: g, HUD: hud, Logger: logger}
}

func (s *GridScreen) Start(ctx context.Context) error {
	if err := s.Grid.Validate(); err != nil {
		return err
	}
	if s.HUD.Enabled {
		s.loadQR()
	}
	return nil
}

func (s *GridScreen) Stop() error { return nil }

func (s *GridScreen) Draw(r render.Drawer, st state.State) {
	r.FillBackground()
	for _, line := range s.Grid.Lines(st) {
		r.StrokeLine(line, s.Grid.LineLength)
	}
	if s.HUD.Enabled {
		s.drawHUD(r, st)
	}
}

func (s *GridScreen) drawHUD(r render.Drawer, st state.State) {
	width, height := r.Size()
	area := layout.Inset(image.Rect(0, 0, width, height), hudMarginPx)

	caption := fmt.Sprintf("%d points", len(st.Points))
	if len(st.Points) == 1 {
		caption = "1 point"
	}
	r.DrawText(caption, area.Min.X, area.Min.Y, render.TextStyle{Size: hudTextSize})

	if qr := s.loadQR(); qr != nil {
		r.DrawImageInRect(qr, layout.AnchorBottomRight(area, hudQRSizePx, hudQRSizePx), render.ScaleModeFit)
	}
}

func (s *GridScreen) loadQR() image.Image {
	s.qrOnce.Do(func() {
		img, err := render.GenerateQRCodeImage(s.HUD.URL, hudQRSizePx)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Errorf("hud", "qr code generation failed: %v", err)
			}
			return
		}
		s.qr = img
	})
	return s.qr
}

package render

import (
	"context"
	"image"
	"image/color"

	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/state"
)

type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
	SetScreen(screen Screen)
	RedrawWithState(snap state.State)
}

type Screen interface {
	Start(ctx context.Context) error
	Stop() error
	Draw(r Drawer, s state.State)
}

// Stub implementations
type NoopRenderer struct{}

func (n *NoopRenderer) Start(ctx context.Context) error  { return nil }
func (n *NoopRenderer) Stop() error                      { return nil }
func (n *NoopRenderer) SetScreen(screen Screen)          {}
func (n *NoopRenderer) RedrawWithState(snap state.State) {}

// Drawer is an abstraction the renderer provides to screens to draw primitives
// without exposing the backing surface.
type Drawer interface {
	// Size returns the canvas size (in pixels) that screens draw into.
	Size() (width int, height int)

	FillBackground()

	// StrokeLine paints a segment of the given length centred on the line's
	// cell and rotated to its angle.
	StrokeLine(line grid.Line, length float64)

	MeasureText(text string, style TextStyle) TextMetrics
	DrawText(text string, x, y int, style TextStyle) TextMetrics

	DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode)
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextStyle describes how to render text.
// Coordinates for DrawText use a top-left anchor for Y.
// For X, Align controls how x is interpreted.
type TextStyle struct {
	Color color.Color
	Size  int // font size in points; 0 means renderer default
	Align TextAlign
}

type TextMetrics struct {
	Width      int
	Height     int
	Ascent     int
	Descent    int
	LineHeight int
}

type ScaleMode int

const (
	ScaleModeFit ScaleMode = iota
	ScaleModeFill
	ScaleModeStretch
)

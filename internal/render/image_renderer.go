package render

import (
	"context"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/rook-computer/gridart/internal/state"
)

// ImageRenderer renders frames into memory. It backs the web frame endpoint
// and the desktop window.
type ImageRenderer struct {
	mu      sync.Mutex
	canvas  *Canvas
	current Screen
}

func NewImageRenderer() *ImageRenderer { return &ImageRenderer{canvas: NewCanvas(0, 0)} }

func (r *ImageRenderer) Start(ctx context.Context) error { return nil }
func (r *ImageRenderer) Stop() error                     { return nil }

func (r *ImageRenderer) SetScreen(screen Screen) {
	r.mu.Lock()
	r.current = screen
	r.mu.Unlock()
}

func (r *ImageRenderer) RedrawWithState(snap state.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return
	}
	r.canvas.Resize(snap.Viewport.Width, snap.Viewport.Height)
	r.current.Draw(r.canvas, snap)
}

// Frame returns a copy of the last drawn frame.
func (r *ImageRenderer) Frame() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.canvas.Image()
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

// RenderFrame draws screen for snap on a fresh canvas without touching the
// renderer's own frame.
func RenderFrame(screen Screen, snap state.State) *image.RGBA {
	c := NewCanvas(snap.Viewport.Width, snap.Viewport.Height)
	screen.Draw(c, snap)
	return c.Image()
}

func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

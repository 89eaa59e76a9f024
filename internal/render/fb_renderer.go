package render

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	fb "github.com/gonutz/framebuffer"
	"github.com/rook-computer/gridart/internal/state"
)

// FBRenderer renders to the Linux framebuffer using an offscreen logical canvas
// sized to the current viewport.
type FBRenderer struct {
	Device string

	mu      sync.Mutex
	fbDev   *fb.Device
	canvas  *Canvas
	running atomic.Bool
	current Screen
	frames  uint64
	Logger  interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
	Debug bool
}

func NewFBRenderer() *FBRenderer { return &FBRenderer{Device: "/dev/fb0"} }

func (r *FBRenderer) Start(ctx context.Context) error {
	dev, err := fb.Open(r.Device)
	if err != nil {
		return err
	}
	r.fbDev = dev
	if r.Logger != nil {
		bounds := dev.Bounds()
		r.Logger.Infof("fb", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())
	}
	r.canvas = NewCanvas(CanvasWidth, CanvasHeight)
	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fbDev != nil {
		r.fbDev.Close()
		r.fbDev = nil
	}
	return nil
}

// Bounds reports the device resolution, or an empty rectangle before Start.
func (r *FBRenderer) Bounds() image.Rectangle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fbDev == nil {
		return image.Rectangle{}
	}
	return r.fbDev.Bounds()
}

// SetScreen sets the current logical screen to be drawn.
func (r *FBRenderer) SetScreen(screen Screen) {
	r.mu.Lock()
	r.current = screen
	r.mu.Unlock()
}

// RedrawWithState draws the current screen for snap and pushes it to the device.
func (r *FBRenderer) RedrawWithState(snap state.State) {
	if !r.running.Load() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.fbDev == nil {
		return
	}
	r.canvas.Resize(snap.Viewport.Width, snap.Viewport.Height)
	r.current.Draw(r.canvas, snap)
	blitToFB(r.fbDev, r.canvas.Image())
	r.frames++
	if r.Debug && r.Logger != nil && r.frames%300 == 0 {
		r.Logger.Infof("fb", "frame %d, points=%d viewport=%dx%d", r.frames, len(snap.Points), snap.Viewport.Width, snap.Viewport.Height)
	}
}

// Helper: blit canvas to framebuffer via nearest-neighbor scaling.
func blitToFB(dev *fb.Device, canvas *image.RGBA) {
	if dev == nil || canvas.Bounds().Empty() {
		return
	}
	scaleNearest(dev, dev.Bounds(), canvas)
}

type pixelSetter interface {
	Set(x, y int, c color.Color)
}

// scaleNearest writes src into dst's rect, forcing opaque pixels.
func scaleNearest(dst pixelSetter, rect image.Rectangle, src *image.RGBA) {
	srcWidth := src.Bounds().Dx()
	srcHeight := src.Bounds().Dy()
	dstWidth := rect.Dx()
	dstHeight := rect.Dy()
	for y := 0; y < dstHeight; y++ {
		sy := src.Bounds().Min.Y + (y*srcHeight)/dstHeight
		for x := 0; x < dstWidth; x++ {
			sx := src.Bounds().Min.X + (x*srcWidth)/dstWidth
			pixel := src.RGBAAt(sx, sy)
			dst.Set(rect.Min.X+x, rect.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}

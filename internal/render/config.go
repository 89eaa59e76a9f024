package render

import "image/color"

// Global render configuration for colors and the default logical canvas.
var (
	// Strokes are white at the line's opacity over a black surface.
	Foreground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Background = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}

	// Logical canvas size used until a client reports its viewport.
	CanvasWidth  = 1920
	CanvasHeight = 1080

	// DefaultTextSize is used when TextStyle.Size is 0.
	DefaultTextSize = 24
)

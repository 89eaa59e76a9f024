package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/gridart/internal/assets"
	"github.com/rook-computer/gridart/internal/grid"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Canvas is the raster surface frames are drawn into. It implements Drawer.
type Canvas struct {
	img *image.RGBA
	ras *vector.Rasterizer
}

func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize reallocates the backing image when the size changes.
func (c *Canvas) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if c.img != nil && c.img.Bounds().Dx() == width && c.img.Bounds().Dy() == height {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) FillBackground() {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
}

// StrokeLine fills the length×weight rectangle of the line with butt caps,
// in the foreground color at the line's opacity.
func (c *Canvas) StrokeLine(line grid.Line, length float64) {
	if length <= 0 || line.Opacity <= 0 {
		return
	}
	dx, dy := math.Cos(line.Angle), math.Sin(line.Angle)
	hx, hy := dx*length/2, dy*length/2
	nx, ny := -dy*line.Weight/2, dx*line.Weight/2
	corners := [4][2]float64{
		{line.X - hx + nx, line.Y - hy + ny},
		{line.X + hx + nx, line.Y + hy + ny},
		{line.X + hx - nx, line.Y + hy - ny},
		{line.X - hx - nx, line.Y - hy - ny},
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range corners {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	bounds := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	bounds = bounds.Intersect(c.img.Bounds())
	if bounds.Empty() {
		return
	}

	// The rasterizer mask covers only the clipped bounds; its origin maps to bounds.Min.
	if c.ras == nil {
		c.ras = vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	} else {
		c.ras.Reset(bounds.Dx(), bounds.Dy())
	}
	c.ras.DrawOp = draw.Over
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	c.ras.MoveTo(float32(corners[0][0]-ox), float32(corners[0][1]-oy))
	for _, p := range corners[1:] {
		c.ras.LineTo(float32(p[0]-ox), float32(p[1]-oy))
	}
	c.ras.ClosePath()

	stroke := color.NRGBA{R: Foreground.R, G: Foreground.G, B: Foreground.B, A: opacityAlpha(line.Opacity)}
	c.ras.Draw(c.img, bounds, image.NewUniform(stroke), image.Point{})
}

func opacityAlpha(opacity float64) uint8 {
	return uint8(math.Round(math.Min(1, math.Max(0, opacity)) * 0xFF))
}

func (c *Canvas) MeasureText(text string, style TextStyle) TextMetrics {
	return measure(faceForSize(style.Size), text)
}

func measure(face font.Face, text string) TextMetrics {
	metrics := face.Metrics()
	return TextMetrics{
		Width:      font.MeasureString(face, text).Ceil(),
		Height:     (metrics.Ascent + metrics.Descent).Ceil(),
		Ascent:     metrics.Ascent.Ceil(),
		Descent:    metrics.Descent.Ceil(),
		LineHeight: metrics.Height.Ceil(),
	}
}

func (c *Canvas) DrawText(text string, x, y int, style TextStyle) TextMetrics {
	face := faceForSize(style.Size)
	m := measure(face, text)
	switch style.Align {
	case TextAlignCenter:
		x -= m.Width / 2
	case TextAlignRight:
		x -= m.Width
	}
	fg := style.Color
	if fg == nil {
		fg = Foreground
	}
	drawer := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+m.Ascent),
	}
	drawer.DrawString(text)
	return m
}

func (c *Canvas) DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode) {
	if img == nil || rect.Empty() {
		return
	}
	dst := rect
	srcRect := img.Bounds()
	switch mode {
	case ScaleModeFit:
		dst = fitRect(srcRect, rect, false)
	case ScaleModeFill:
		dst = fitRect(srcRect, rect, true)
	}
	clip := c.img.SubImage(rect).(*image.RGBA)
	xdraw.NearestNeighbor.Scale(clip, dst, img, srcRect, xdraw.Over, nil)
}

// fitRect scales src to fit (or fill) rect, preserving aspect and centring.
func fitRect(src, rect image.Rectangle, fill bool) image.Rectangle {
	if src.Dx() == 0 || src.Dy() == 0 {
		return rect
	}
	sx := float64(rect.Dx()) / float64(src.Dx())
	sy := float64(rect.Dy()) / float64(src.Dy())
	scale := math.Min(sx, sy)
	if fill {
		scale = math.Max(sx, sy)
	}
	w := int(math.Round(float64(src.Dx()) * scale))
	h := int(math.Round(float64(src.Dy()) * scale))
	x0 := rect.Min.X + (rect.Dx()-w)/2
	y0 := rect.Min.Y + (rect.Dy()-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}

var (
	fontOnce sync.Once
	ttFont   *truetype.Font
)

// faceForSize returns a TrueType face for size, falling back to basicfont
// when the embedded font cannot be parsed. Faces are not safe for concurrent
// use, so every call gets its own.
func faceForSize(size int) font.Face {
	if size <= 0 {
		size = DefaultTextSize
	}
	fontOnce.Do(func() {
		if f, err := truetype.Parse(assets.FontTTF); err == nil {
			ttFont = f
		}
	})
	if ttFont == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(ttFont, &truetype.Options{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
}

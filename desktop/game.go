package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/rook-computer/gridart/internal/desktop"
)

var (
	buttonFill   = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xE0}
	buttonBorder = color.White
)

type game struct {
	session *desktop.Session
	frame   *ebiten.Image
}

func newGame(s *desktop.Session) *game { return &game{session: s} }

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.session.Click(ebiten.CursorPosition())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		_ = g.session.Export()
	}
	g.session.Tick()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	frame := g.session.Frame()
	b := frame.Bounds()
	if b.Empty() {
		return
	}
	if g.frame == nil || g.frame.Bounds().Dx() != b.Dx() || g.frame.Bounds().Dy() != b.Dy() {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.frame.WritePixels(frame.Pix)
	screen.DrawImage(g.frame, nil)

	btn := g.session.ButtonRect()
	x, y := float32(btn.Min.X), float32(btn.Min.Y)
	w, h := float32(btn.Dx()), float32(btn.Dy())
	vector.DrawFilledRect(screen, x, y, w, h, buttonFill, false)
	vector.StrokeRect(screen, x, y, w, h, 1, buttonBorder, false)
	ebitenutil.DebugPrintAt(screen, "export (s)", btn.Min.X+14, btn.Min.Y+6)

	if msg := g.session.Status(); msg != "" {
		st := g.session.StatusRect()
		ebitenutil.DebugPrintAt(screen, msg, st.Min.X, st.Min.Y+6)
	}
}

// Layout keeps one logical pixel per window pixel so the viewport tracks the
// window exactly.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.session.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

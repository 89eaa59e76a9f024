package screens

import (
	"context"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/render"
	"github.com/rook-computer/gridart/internal/state"
)

type strokeCall struct {
	Line   grid.Line
	Length float64
}

type textCall struct {
	Text string
	X, Y int
}

type recordingDrawer struct {
	width, height int
	calls         []string
	strokes       []strokeCall
	texts         []textCall
	images        []image.Rectangle
}

func (d *recordingDrawer) Size() (int, int) { return d.width, d.height }
func (d *recordingDrawer) FillBackground()   { d.calls = append(d.calls, "background") }
func (d *recordingDrawer) StrokeLine(l grid.Line, length float64) {
	d.calls = append(d.calls, "stroke")
	d.strokes = append(d.strokes, strokeCall{Line: l, Length: length})
}
func (d *recordingDrawer) MeasureText(text string, style render.TextStyle) render.TextMetrics {
	return render.TextMetrics{Width: 8 * len(text), Height: style.Size}
}
func (d *recordingDrawer) DrawText(text string, x, y int, style render.TextStyle) render.TextMetrics {
	d.calls = append(d.calls, "text")
	d.texts = append(d.texts, textCall{Text: text, X: x, Y: y})
	return d.MeasureText(text, style)
}
func (d *recordingDrawer) DrawImageInRect(img image.Image, rect image.Rectangle, mode render.ScaleMode) {
	d.calls = append(d.calls, "image")
	d.images = append(d.images, rect)
}

func snapshot(vp state.Viewport, coords ...[2]float64) state.State {
	s := state.State{Viewport: vp}
	for _, c := range coords {
		s.Points = append(s.Points, state.NewPoint(c[0], c[1]))
	}
	return s
}

func TestGridScreen_EmptyStateIsBackgroundOnly(t *testing.T) {
	screen := NewGridScreen(grid.DefaultGrid, HUD{}, nil)
	require.NoError(t, screen.Start(context.Background()))
	d := &recordingDrawer{width: 800, height: 600}
	screen.Draw(d, snapshot(state.Viewport{Width: 800, Height: 600}))
	assert.Equal(t, []string{"background"}, d.calls)
}

func TestGridScreen_StrokesEveryLineInOrder(t *testing.T) {
	screen := NewGridScreen(grid.DefaultGrid, HUD{}, nil)
	snap := snapshot(state.Viewport{Width: 400, Height: 300}, [2]float64{200, 150}, [2]float64{20, 280})
	d := &recordingDrawer{width: 400, height: 300}
	screen.Draw(d, snap)

	var want []strokeCall
	for _, l := range grid.DefaultGrid.Lines(snap) {
		want = append(want, strokeCall{Line: l, Length: grid.DefaultGrid.LineLength})
	}
	if diff := cmp.Diff(want, d.strokes); diff != "" {
		t.Errorf("strokes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "background", d.calls[0], "background is painted first")
	assert.Empty(t, d.texts, "no HUD unless enabled")
}

func TestGridScreen_HUD(t *testing.T) {
	screen := NewGridScreen(grid.DefaultGrid, HUD{Enabled: true, URL: "http://10.0.0.2/"}, nil)
	require.NoError(t, screen.Start(context.Background()))

	d := &recordingDrawer{width: 800, height: 600}
	screen.Draw(d, snapshot(state.Viewport{Width: 800, Height: 600}, [2]float64{1, 1}))
	require.Len(t, d.texts, 1)
	assert.Equal(t, textCall{Text: "1 point", X: hudMarginPx, Y: hudMarginPx}, d.texts[0])
	require.Len(t, d.images, 1)
	assert.Equal(t, image.Rect(800-hudMarginPx-hudQRSizePx, 600-hudMarginPx-hudQRSizePx, 800-hudMarginPx, 600-hudMarginPx), d.images[0])
	assert.Equal(t, "image", d.calls[len(d.calls)-1], "HUD draws over the lines")

	d = &recordingDrawer{width: 800, height: 600}
	screen.Draw(d, snapshot(state.Viewport{Width: 800, Height: 600}, [2]float64{1, 1}, [2]float64{2, 2}))
	assert.Equal(t, "2 points", d.texts[0].Text)
}

func TestGridScreen_HUDWithoutURLSkipsQR(t *testing.T) {
	screen := NewGridScreen(grid.DefaultGrid, HUD{Enabled: true}, nil)
	d := &recordingDrawer{width: 800, height: 600}
	screen.Draw(d, snapshot(state.Viewport{Width: 800, Height: 600}))
	assert.Len(t, d.texts, 1)
	assert.Empty(t, d.images)
}

func TestGridScreen_StartRejectsInvalidGrid(t *testing.T) {
	screen := NewGridScreen(grid.Grid{Spacing: 0, LineLength: 10}, HUD{}, nil)
	assert.Error(t, screen.Start(context.Background()))
}

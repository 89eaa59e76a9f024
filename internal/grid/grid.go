package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/rook-computer/gridart/internal/state"
)

// Grid is the lattice configuration. It is not changed after startup.
type Grid struct {
	Spacing    float64
	LineLength float64
}

// DefaultGrid matches the classic 40px lattice of 30px strokes.
var DefaultGrid = Grid{Spacing: 40, LineLength: 30}

// Cell is one lattice coordinate.
type Cell struct {
	X, Y float64
}

func (g Grid) Validate() error {
	if math.IsNaN(g.Spacing) || math.IsInf(g.Spacing, 0) || g.Spacing <= 0 {
		return fmt.Errorf("grid spacing must be a positive number (got %v)", g.Spacing)
	}
	if math.IsNaN(g.LineLength) || math.IsInf(g.LineLength, 0) {
		return errors.New("grid line length must be finite")
	}
	if g.LineLength < 0 {
		return fmt.Errorf("grid line length must not be negative (got %v)", g.LineLength)
	}
	return nil
}

// Walk calls fn for every cell strictly inside vp, column by column.
// The first cell sits one spacing in from the top-left corner and the last
// partial row and column are dropped.
func (g Grid) Walk(vp state.Viewport, fn func(x, y float64)) {
	if !(g.Spacing > 0) || math.IsInf(g.Spacing, 0) {
		return
	}
	w, h := float64(vp.Width), float64(vp.Height)
	for x := g.Spacing; x < w; x += g.Spacing {
		for y := g.Spacing; y < h; y += g.Spacing {
			fn(x, y)
		}
	}
}

func (g Grid) Cells(vp state.Viewport) []Cell {
	var cells []Cell
	g.Walk(vp, func(x, y float64) {
		cells = append(cells, Cell{X: x, Y: y})
	})
	return cells
}

// Lines computes one Line per cell that has a nearest point, in walk order.
// Both the raster and the vector backend draw from this slice.
func (g Grid) Lines(s state.State) []Line {
	if len(s.Points) == 0 {
		return nil
	}
	var lines []Line
	g.Walk(s.Viewport, func(x, y float64) {
		if l, ok := ComputeLine(x, y, s.Points, s.Viewport); ok {
			lines = append(lines, l)
		}
	})
	return lines
}

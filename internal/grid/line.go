package grid

import (
	"math"

	"github.com/rook-computer/gridart/internal/state"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	maxWeight = 10
	minWeight = 1
)

// Line is the geometry of one rendered cell.
type Line struct {
	X, Y    float64
	Angle   float64 // radians, from the cell toward the nearest point
	Weight  float64
	Opacity float64
	Nearest int // index of the nearest point
}

func (l Line) AngleDegrees() float64 {
	return l.Angle * (180 / math.Pi)
}

// Nearest returns the index of the point closest to (x, y) and its distance.
// Ties keep the earliest point.
func Nearest(x, y float64, points []state.Point) (index int, dist float64, ok bool) {
	index = -1
	dist = math.Inf(1)
	cell := r2.Vec{X: x, Y: y}
	for i, p := range points {
		d := r2.Norm(r2.Sub(p.Pos, cell))
		if d < dist {
			index, dist = i, d
		}
	}
	return index, dist, index >= 0
}

// ComputeLine derives angle, weight and opacity for the cell at (x, y).
// It reports false when there is no point to orient toward.
func ComputeLine(x, y float64, points []state.Point, vp state.Viewport) (Line, bool) {
	idx, d, ok := Nearest(x, y, points)
	if !ok {
		return Line{}, false
	}
	p := points[idx].Pos

	ratio := 1.0
	if maxD := vp.Diagonal(); maxD > 0 {
		ratio = d / maxD
	}
	return Line{
		X:       x,
		Y:       y,
		Angle:   math.Atan2(p.Y-y, p.X-x),
		Weight:  math.Max(minWeight, maxWeight*(1-ratio)),
		Opacity: clamp01(1 - ratio),
		Nearest: idx,
	}, true
}

// Points outside a shrunk viewport can sit farther than the diagonal.
func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

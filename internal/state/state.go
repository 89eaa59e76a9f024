package state

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// smoothing is the fraction of the remaining distance a point covers per step.
const smoothing = 0.1

// Point is a user-placed attractor.
type Point struct {
	ID  string
	Pos r2.Vec
}

// NewPoint returns a point at (x, y) with a fresh ID.
func NewPoint(x, y float64) Point {
	return Point{ID: uuid.NewString(), Pos: r2.Vec{X: x, Y: y}}
}

// UpdatePosition moves the point a fixed fraction of the way toward target.
func (p *Point) UpdatePosition(target r2.Vec) {
	p.Pos = r2.Add(p.Pos, r2.Scale(smoothing, r2.Sub(target, p.Pos)))
}

// Viewport is the drawable area in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Diagonal returns the length of the viewport diagonal.
func (vp Viewport) Diagonal() float64 {
	return math.Hypot(float64(vp.Width), float64(vp.Height))
}

func (vp Viewport) Empty() bool { return vp.Width <= 0 || vp.Height <= 0 }

// State is an immutable copy of everything one draw or export needs.
type State struct {
	Points   []Point
	Viewport Viewport
}

// Store owns the point collection and the current viewport.
type Store struct {
	mu     sync.RWMutex
	points []Point
	vp     Viewport
}

func NewStore(vp Viewport) *Store {
	return &Store{vp: vp}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return State{Points: store.copyPoints(), Viewport: store.vp}
}

// AddPoint appends a point at (x, y). Points are never removed.
func (store *Store) AddPoint(x, y float64) Point {
	p := NewPoint(x, y)
	store.mu.Lock()
	store.points = append(store.points, p)
	store.mu.Unlock()
	return p
}

func (store *Store) Points() []Point {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.copyPoints()
}

func (store *Store) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.points)
}

func (store *Store) SetViewport(vp Viewport) {
	store.mu.Lock()
	store.vp = vp
	store.mu.Unlock()
}

func (store *Store) Viewport() Viewport {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.vp
}

// Step advances every point by one animation step. Each point is smoothed
// toward its own current position, so a placed point stays where it is.
func (store *Store) Step() {
	store.mu.Lock()
	defer store.mu.Unlock()
	for i := range store.points {
		p := &store.points[i]
		p.UpdatePosition(p.Pos)
	}
}

func (store *Store) copyPoints() []Point {
	if len(store.points) == 0 {
		return nil
	}
	out := make([]Point, len(store.points))
	copy(out, store.points)
	return out
}

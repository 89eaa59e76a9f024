package grid

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/gridart/internal/state"
)

func pointsAt(coords ...[2]float64) []state.Point {
	out := make([]state.Point, len(coords))
	for i, c := range coords {
		out[i] = state.NewPoint(c[0], c[1])
	}
	return out
}

func TestWalk_ExclusiveBounds(t *testing.T) {
	g := Grid{Spacing: 40, LineLength: 30}
	cells := g.Cells(state.Viewport{Width: 800, Height: 600})

	// x: 40..760, y: 40..560
	require.Len(t, cells, 19*14)
	assert.Equal(t, Cell{X: 40, Y: 40}, cells[0])
	assert.Equal(t, Cell{X: 40, Y: 80}, cells[1])
	assert.Equal(t, Cell{X: 760, Y: 560}, cells[len(cells)-1])
	for _, c := range cells {
		assert.Less(t, c.X, 800.0)
		assert.Less(t, c.Y, 600.0)
	}
}

func TestWalk_PartialCellsDropped(t *testing.T) {
	g := Grid{Spacing: 40}
	cases := []struct {
		name string
		vp   state.Viewport
		want int
	}{
		{"exact multiple", state.Viewport{Width: 120, Height: 80}, 2 * 1},
		{"one past", state.Viewport{Width: 121, Height: 81}, 3 * 2},
		{"smaller than spacing", state.Viewport{Width: 40, Height: 40}, 0},
		{"empty", state.Viewport{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, g.Cells(tc.vp), tc.want)
		})
	}
}

func TestWalk_NonPositiveSpacingVisitsNothing(t *testing.T) {
	for _, s := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		assert.Empty(t, Grid{Spacing: s}.Cells(state.Viewport{Width: 100, Height: 100}))
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultGrid.Validate())
	assert.NoError(t, Grid{Spacing: 1, LineLength: 0}.Validate())
	assert.Error(t, Grid{Spacing: 0, LineLength: 30}.Validate())
	assert.Error(t, Grid{Spacing: -1, LineLength: 30}.Validate())
	assert.Error(t, Grid{Spacing: math.NaN(), LineLength: 30}.Validate())
	assert.Error(t, Grid{Spacing: 40, LineLength: -1}.Validate())
	assert.Error(t, Grid{Spacing: 40, LineLength: math.Inf(1)}.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvSpacing, "25")
	t.Setenv(EnvLineLength, "12.5")
	g, err := ConfigFromEnv(DefaultGrid)
	require.NoError(t, err)
	assert.Equal(t, Grid{Spacing: 25, LineLength: 12.5}, g)
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvSpacing, "")
	t.Setenv(EnvLineLength, "")
	g, err := ConfigFromEnv(DefaultGrid)
	require.NoError(t, err)
	assert.Equal(t, DefaultGrid, g)
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	t.Setenv(EnvSpacing, "wide")
	_, err := ConfigFromEnv(DefaultGrid)
	assert.ErrorContains(t, err, EnvSpacing)

	t.Setenv(EnvSpacing, "0")
	_, err = ConfigFromEnv(DefaultGrid)
	assert.Error(t, err)
}

func TestLines_EmptyPointSet(t *testing.T) {
	s := state.State{Viewport: state.Viewport{Width: 800, Height: 600}}
	assert.Empty(t, DefaultGrid.Lines(s))
}

func TestLines_CenterScenario(t *testing.T) {
	vp := state.Viewport{Width: 800, Height: 600}
	s := state.State{Points: pointsAt([2]float64{400, 300}), Viewport: vp}
	lines := DefaultGrid.Lines(s)
	require.Len(t, lines, len(DefaultGrid.Cells(vp)))

	// 300 is not on the 40px lattice; the closest cells are 20px away.
	byCell := map[Cell]Line{}
	for _, l := range lines {
		byCell[Cell{X: l.X, Y: l.Y}] = l
	}
	near := byCell[Cell{X: 400, Y: 280}]
	assert.InDelta(t, 10*(1-20.0/1000), near.Weight, 1e-9)
	assert.InDelta(t, 1-20.0/1000, near.Opacity, 1e-9)
	assert.InDelta(t, math.Pi/2, near.Angle, 1e-12)

	// Corner cells sit about half the diagonal away.
	corner := byCell[Cell{X: 40, Y: 40}]
	assert.InDelta(t, 1-math.Hypot(360, 260)/1000, corner.Opacity, 1e-9)
}

func TestLines_PointOnLattice(t *testing.T) {
	vp := state.Viewport{Width: 800, Height: 600}
	s := state.State{Points: pointsAt([2]float64{400, 320}), Viewport: vp}
	for _, l := range DefaultGrid.Lines(s) {
		if l.X == 400 && l.Y == 320 {
			assert.Equal(t, 10.0, l.Weight)
			assert.Equal(t, 1.0, l.Opacity)
			return
		}
	}
	t.Fatal("cell (400,320) not rendered")
}

func TestLines_FarCornerOpacityNearZero(t *testing.T) {
	vp := state.Viewport{Width: 800, Height: 600}
	s := state.State{Points: pointsAt([2]float64{0, 0}), Viewport: vp}
	lines := DefaultGrid.Lines(s)
	last := lines[len(lines)-1]
	assert.Equal(t, 760.0, last.X)
	assert.Equal(t, 560.0, last.Y)
	assert.InDelta(t, 0.056, last.Opacity, 0.001)
	assert.Equal(t, 1.0, last.Weight)
}

func TestLines_TwoPointsEachCellUsesNearer(t *testing.T) {
	vp := state.Viewport{Width: 400, Height: 200}
	pts := pointsAt([2]float64{50, 100}, [2]float64{350, 100})
	lines := DefaultGrid.Lines(state.State{Points: pts, Viewport: vp})
	require.Len(t, lines, len(DefaultGrid.Cells(vp)))
	for _, l := range lines {
		want := 0
		if math.Abs(l.X-350) < math.Abs(l.X-50) {
			want = 1
		}
		assert.Equal(t, want, l.Nearest, "cell (%v,%v)", l.X, l.Y)
	}
}

func TestLines_Deterministic(t *testing.T) {
	vp := state.Viewport{Width: 640, Height: 480}
	s := state.State{Points: pointsAt([2]float64{12, 400}, [2]float64{600, 33}), Viewport: vp}
	first := DefaultGrid.Lines(s)
	second := DefaultGrid.Lines(s)
	if diff := cmp.Diff(first, second, cmpopts.EquateApprox(0, 0)); diff != "" {
		t.Fatalf("lines differ (-first +second):\n%s", diff)
	}
}

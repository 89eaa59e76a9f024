package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/state"
)

const (
	// Filename is the name the exported document is offered under.
	Filename    = "grid_art.svg"
	ContentType = "image/svg+xml"
)

// WriteDocument writes the vector form of the current frame: a root sized to
// the viewport on a black background, then one translated and rotated group
// per rendered cell. The output depends only on g and s.
func WriteDocument(w io.Writer, g grid.Grid, s state.State) error {
	bw := bufio.NewWriter(w)
	width, height := s.Viewport.Width, s.Viewport.Height

	canvas := svg.New(bw)
	canvas.Start(width, height,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height),
		`style="background-color:black"`)
	canvas.Rect(0, 0, width, height, `fill="black"`)

	half := num(g.LineLength / 2)
	negHalf := num(-g.LineLength / 2)
	for _, line := range g.Lines(s) {
		canvas.Gtransform(fmt.Sprintf("translate(%s %s) rotate(%s)", num(line.X), num(line.Y), num(line.AngleDegrees())))
		// svgo's Line takes integer coordinates; half a line length need not be one.
		fmt.Fprintf(canvas.Writer, `<line x1="%s" y1="0" x2="%s" y2="0" stroke="rgb(255,255,255)" stroke-opacity="%s" stroke-width="%s"/>`+"\n",
			negHalf, half, num(line.Opacity), num(line.Weight))
		canvas.Gend()
	}
	canvas.End()
	return bw.Flush()
}

// Document returns the vector document for s.
func Document(g grid.Grid, s state.State) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(&buf, g, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// num formats v with the fewest digits that round-trip.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

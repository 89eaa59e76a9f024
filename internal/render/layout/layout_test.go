package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInset(t *testing.T) {
	r := image.Rect(0, 0, 100, 50)
	assert.Equal(t, image.Rect(10, 10, 90, 40), Inset(r, 10))
	assert.Equal(t, r, Inset(r, 0))
	// Over-inset flips and is normalized.
	assert.Equal(t, image.Rect(30, 20, 70, 30), Inset(r, 30))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, image.Rectangle{Min: image.Pt(1, 2), Max: image.Pt(5, 6)},
		Normalize(image.Rectangle{Min: image.Pt(5, 6), Max: image.Pt(1, 2)}))
}

func TestAnchors(t *testing.T) {
	r := image.Rect(0, 0, 800, 600)
	assert.Equal(t, image.Rect(0, 0, 100, 40), AnchorTopLeft(r, 100, 40))
	assert.Equal(t, image.Rect(700, 0, 800, 40), AnchorTopRight(r, 100, 40))
	assert.Equal(t, image.Rect(700, 560, 800, 600), AnchorBottomRight(r, 100, 40))
}

func TestAnchors_ClampToRect(t *testing.T) {
	r := image.Rect(10, 10, 60, 30)
	assert.Equal(t, r, AnchorTopLeft(r, 500, 500))
	assert.Equal(t, r, AnchorBottomRight(r, 500, 500))
	assert.Equal(t, image.Rect(60, 10, 60, 10), AnchorTopRight(r, -1, -1))
}

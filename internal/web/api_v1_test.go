package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/gridart/internal/app/screens"
	"github.com/rook-computer/gridart/internal/export"
	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/state"
)

func newTestDeps(vp state.Viewport) (APIV1Deps, *state.Store) {
	store := state.NewStore(vp)
	return APIV1Deps{
		Store:    store,
		Grid:     grid.DefaultGrid,
		Frame:    screens.NewGridScreen(grid.DefaultGrid, screens.HUD{}, nil),
		Exporter: export.NewService(grid.DefaultGrid, store, nil),
	}, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var out apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestPoints_RoundTrip(t *testing.T) {
	deps, store := newTestDeps(state.Viewport{Width: 800, Height: 600})
	h := NewDefaultMux("", deps)

	rec := do(t, h, http.MethodGet, "/api/v1/points", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/points", `{"x":400,"y":300}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created pointResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 400.0, created.X)
	assert.Equal(t, 300.0, created.Y)

	do(t, h, http.MethodPost, "/api/v1/points", `{"x":0,"y":0.5}`)

	rec = do(t, h, http.MethodGet, "/api/v1/points", "")
	var listed []pointResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, created, listed[0])
	assert.Equal(t, 0.5, listed[1].Y)
	assert.Equal(t, 2, store.Len())
}

func TestPoints_Rejects(t *testing.T) {
	deps, store := newTestDeps(state.Viewport{Width: 100, Height: 100})
	h := NewDefaultMux("", deps)

	tests := []struct {
		name   string
		method string
		body   string
		status int
		code   string
	}{
		{"malformed", http.MethodPost, `{"x":`, http.StatusBadRequest, "invalid_json"},
		{"empty body", http.MethodPost, "", http.StatusBadRequest, "invalid_json"},
		{"missing y", http.MethodPost, `{"x":1}`, http.StatusBadRequest, "invalid_point"},
		{"wrong type", http.MethodPost, `{"x":"a","y":1}`, http.StatusBadRequest, "invalid_json"},
		{"delete", http.MethodDelete, "", http.StatusMethodNotAllowed, "method_not_allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, "/api/v1/points", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeAPIError(t, rec).Error)
		})
	}
	assert.Zero(t, store.Len())
}

func TestViewport_GetAndResize(t *testing.T) {
	deps, store := newTestDeps(state.Viewport{Width: 800, Height: 600})
	h := NewDefaultMux("", deps)

	rec := do(t, h, http.MethodGet, "/api/v1/viewport", "")
	assert.JSONEq(t, `{"width":800,"height":600}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/v1/viewport", `{"width":1024,"height":768}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, state.Viewport{Width: 1024, Height: 768}, store.Viewport())

	for _, body := range []string{`{"width":0,"height":768}`, `{"width":10,"height":-1}`} {
		rec = do(t, h, http.MethodPut, "/api/v1/viewport", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "invalid_viewport", decodeAPIError(t, rec).Error)
	}
	assert.Equal(t, state.Viewport{Width: 1024, Height: 768}, store.Viewport(), "rejected resizes leave the viewport alone")
}

func TestLines_MatchGeometry(t *testing.T) {
	deps, store := newTestDeps(state.Viewport{Width: 200, Height: 120})
	store.AddPoint(100, 60)
	h := NewDefaultMux("", deps)

	rec := do(t, h, http.MethodGet, "/api/v1/lines", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got linesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	want := linesResponse{Viewport: viewportBody{Width: 200, Height: 120}, Points: 1}
	for _, l := range grid.DefaultGrid.Lines(store.Snapshot()) {
		want.Lines = append(want.Lines, lineResponse{X: l.X, Y: l.Y, Angle: l.Angle, Weight: l.Weight, Opacity: l.Opacity})
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestLines_NoPoints(t *testing.T) {
	deps, _ := newTestDeps(state.Viewport{Width: 200, Height: 120})
	rec := do(t, NewDefaultMux("", deps), http.MethodGet, "/api/v1/lines", "")
	assert.JSONEq(t, `{"viewport":{"width":200,"height":120},"points":0,"lines":[]}`, rec.Body.String())
}

func TestFrame_IsViewportSizedPNG(t *testing.T) {
	deps, store := newTestDeps(state.Viewport{Width: 160, Height: 90})
	store.AddPoint(80, 40)
	rec := do(t, NewDefaultMux("", deps), http.MethodGet, "/api/v1/frame.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 160, 90), img.Bounds())
	r, _, _, _ := img.At(80, 40).RGBA()
	assert.Greater(t, r, uint32(0xF000), "the attractor's own cell is lit")
}

func TestFrame_EmptyViewport(t *testing.T) {
	deps, _ := newTestDeps(state.Viewport{})
	rec := do(t, NewDefaultMux("", deps), http.MethodGet, "/api/v1/frame.png", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_viewport", decodeAPIError(t, rec).Error)
}

func TestExport_Download(t *testing.T) {
	deps, store := newTestDeps(state.Viewport{Width: 320, Height: 200})
	store.AddPoint(10, 10)
	h := NewDefaultMux("", deps)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := do(t, h, method, "/api/v1/export", "")
		require.Equal(t, http.StatusOK, rec.Code, method)
		assert.Equal(t, "attachment; filename=grid_art.svg", rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

		want, err := export.Document(grid.DefaultGrid, store.Snapshot())
		require.NoError(t, err)
		assert.Equal(t, string(want), rec.Body.String())
	}
}

type failingExporter struct{ err error }

func (f failingExporter) Export(export.Sink) error { return f.err }

func TestExport_Failure(t *testing.T) {
	deps, _ := newTestDeps(state.Viewport{Width: 10, Height: 10})
	deps.Exporter = failingExporter{err: errors.New("boom")}
	rec := do(t, NewDefaultMux("", deps), http.MethodGet, "/api/v1/export", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "export_failed", decodeAPIError(t, rec).Error)

	deps.Exporter = nil
	rec = do(t, NewDefaultMux("", deps), http.MethodGet, "/api/v1/export", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestAPI_NotConfigured(t *testing.T) {
	h := NewDefaultMux("", APIV1Deps{})
	for _, path := range []string{"/api/v1/points", "/api/v1/viewport", "/api/v1/lines", "/api/v1/frame.png"} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotImplemented, rec.Code, path)
	}
}

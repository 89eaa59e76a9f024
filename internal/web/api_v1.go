package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/rook-computer/gridart/internal/export"
	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/render"
	"github.com/rook-computer/gridart/internal/state"
)

const maxRequestBody = 64 << 10

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Store is the part of state.Store the API reads and mutates.
type Store interface {
	Snapshot() state.State
	Points() []state.Point
	AddPoint(x, y float64) state.Point
	Viewport() state.Viewport
	SetViewport(vp state.Viewport)
}

type Exporter interface {
	Export(sink export.Sink) error
}

// APIV1Deps wires the API to the running application.
type APIV1Deps struct {
	Store Store
	Grid  grid.Grid

	// Frame draws the live frame served at /frame.png.
	Frame render.Screen

	Exporter Exporter
	Logger   Logger
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type pointResponse struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type pointRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type viewportBody struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type lineResponse struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
	Weight  float64 `json:"weight"`
	Opacity float64 `json:"opacity"`
}

type linesResponse struct {
	Viewport viewportBody   `json:"viewport"`
	Points   int            `json:"points"`
	Lines    []lineResponse `json:"lines"`
}

func apiV1Router(deps APIV1Deps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/points", func(w http.ResponseWriter, r *http.Request) { handlePoints(w, r, deps) })
	mux.HandleFunc("/viewport", func(w http.ResponseWriter, r *http.Request) { handleViewport(w, r, deps) })
	mux.HandleFunc("/lines", func(w http.ResponseWriter, r *http.Request) { handleLines(w, r, deps) })
	mux.HandleFunc("/frame.png", func(w http.ResponseWriter, r *http.Request) { handleFrame(w, r, deps) })
	mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) { handleExport(w, r, deps) })
	return mux
}

func handlePoints(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if deps.Store == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "state store not configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		points := deps.Store.Points()
		out := make([]pointResponse, 0, len(points))
		for _, p := range points {
			out = append(out, toPointResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var req pointRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		if req.X == nil || req.Y == nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_point", "x and y are required")
			return
		}
		if !finite(*req.X) || !finite(*req.Y) {
			writeAPIError(w, http.StatusBadRequest, "invalid_point", "x and y must be finite")
			return
		}
		p := deps.Store.AddPoint(*req.X, *req.Y)
		if deps.Logger != nil {
			deps.Logger.Infof("web", "point %s added at (%g,%g)", p.ID, p.Pos.X, p.Pos.Y)
		}
		writeJSON(w, http.StatusCreated, toPointResponse(p))
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleViewport(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if deps.Store == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "state store not configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		vp := deps.Store.Viewport()
		writeJSON(w, http.StatusOK, viewportBody{Width: vp.Width, Height: vp.Height})
	case http.MethodPut:
		var req viewportBody
		if err := decodeJSON(w, r, &req); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		if req.Width <= 0 || req.Height <= 0 {
			writeAPIError(w, http.StatusBadRequest, "invalid_viewport",
				fmt.Sprintf("width and height must be positive (got %dx%d)", req.Width, req.Height))
			return
		}
		deps.Store.SetViewport(state.Viewport{Width: req.Width, Height: req.Height})
		writeJSON(w, http.StatusOK, req)
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleLines(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Store == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "state store not configured")
		return
	}
	snap := deps.Store.Snapshot()
	lines := deps.Grid.Lines(snap)
	out := linesResponse{
		Viewport: viewportBody{Width: snap.Viewport.Width, Height: snap.Viewport.Height},
		Points:   len(snap.Points),
		Lines:    make([]lineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, lineResponse{X: l.X, Y: l.Y, Angle: l.Angle, Weight: l.Weight, Opacity: l.Opacity})
	}
	writeJSON(w, http.StatusOK, out)
}

func handleFrame(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Store == nil || deps.Frame == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "frame rendering not configured")
		return
	}
	snap := deps.Store.Snapshot()
	if snap.Viewport.Empty() {
		writeAPIError(w, http.StatusConflict, "empty_viewport", "viewport has no area")
		return
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, render.RenderFrame(deps.Frame, snap)); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func handleExport(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Exporter == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "export not configured")
		return
	}

	sink := &trackingSink{ResponseSink: export.ResponseSink{W: w}}
	if err := deps.Exporter.Export(sink); err != nil {
		if sink.delivered {
			// Headers are gone; the client sees a truncated body.
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "export_failed", err.Error())
	}
}

// trackingSink records whether the response has been started.
type trackingSink struct {
	export.ResponseSink
	delivered bool
}

func (t *trackingSink) Deliver(filename, contentType string, doc []byte) error {
	t.delivered = true
	return t.ResponseSink.Deliver(filename, contentType, doc)
}

func toPointResponse(p state.Point) pointResponse {
	return pointResponse{ID: p.ID, X: p.Pos.X, Y: p.Pos.Y}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}

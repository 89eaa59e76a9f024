package export

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/state"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Sink receives a finished document. Implementations must release any handle
// they open before returning.
type Sink interface {
	Deliver(filename, contentType string, doc []byte) error
}

// Snapshotter is the part of state.Store the exporter reads.
type Snapshotter interface {
	Snapshot() state.State
}

// Service renders the current frame as a vector document and hands it to a sink.
type Service struct {
	Grid   grid.Grid
	Store  Snapshotter
	Logger Logger
}

func NewService(g grid.Grid, store Snapshotter, logger Logger) *Service {
	return &Service{Grid: g, Store: store, Logger: logger}
}

// Export delivers the document for the current snapshot to sink.
func (s *Service) Export(sink Sink) error {
	if s.Store == nil {
		return errors.New("export: no state store configured")
	}
	if sink == nil {
		return errors.New("export: no sink configured")
	}
	snap := s.Store.Snapshot()
	doc, err := Document(s.Grid, snap)
	if err != nil {
		return fmt.Errorf("export: render document: %w", err)
	}
	if err := sink.Deliver(Filename, ContentType, doc); err != nil {
		if s.Logger != nil {
			s.Logger.Errorf("export", "deliver %s failed: %v", Filename, err)
		}
		return fmt.Errorf("export: deliver: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Infof("export", "exported %s (%d bytes, %d points, viewport=%dx%d)",
			Filename, len(doc), len(snap.Points), snap.Viewport.Width, snap.Viewport.Height)
	}
	return nil
}

// DirSink writes the document into Dir, replacing any previous export atomically.
type DirSink struct {
	Dir string
}

func (d DirSink) Deliver(filename, contentType string, doc []byte) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filename+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(doc); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, filename)); err != nil {
		return err
	}
	committed = true
	return nil
}

// ResponseSink offers the document to an HTTP client as an attachment.
type ResponseSink struct {
	W http.ResponseWriter
}

func (r ResponseSink) Deliver(filename, contentType string, doc []byte) error {
	h := r.W.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	h.Set("Content-Length", strconv.Itoa(len(doc)))
	h.Set("Cache-Control", "no-store")
	r.W.WriteHeader(http.StatusOK)
	_, err := r.W.Write(doc)
	return err
}

package web

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/rook-computer/gridart/internal/assets"
)

// RegisterAPIV1 registers the public API routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, deps APIV1Deps) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(deps)))
}

// RegisterUI serves either embedded UI assets or a directory.
func RegisterUI(mux *http.ServeMux, staticDir string) {
	mux.Handle("/", StaticUIHandler(staticDir))
}

// NewDefaultMux builds the standard mux:
// - /api/v1/* for the API
// - / for the web UI
func NewDefaultMux(staticDir string, deps APIV1Deps) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, deps)
	RegisterUI(mux, staticDir)
	return mux
}

// StaticUIHandler serves the embedded UI, or dir when it names an existing
// directory. A dir that does not exist answers 404 for everything.
func StaticUIHandler(dir string) http.Handler {
	var fileServer http.Handler
	switch {
	case dir == "":
		fileServer = http.FileServer(http.FS(assets.WebUI))
	default:
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			return http.HandlerFunc(http.NotFound)
		}
		fileServer = http.FileServer(http.Dir(dir))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Clean path to avoid parent traversal.
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		fileServer.ServeHTTP(w, r)
	})
}

// Command desktop runs the grid in a resizable window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/rook-computer/gridart/internal/app"
	"github.com/rook-computer/gridart/internal/desktop"
	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/state"
	"github.com/rook-computer/gridart/internal/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	g, err := grid.ConfigFromEnv(grid.DefaultGrid)
	if err != nil {
		fmt.Println("grid config error:", err)
		return 2
	}
	defaults, err := web.DefaultServerConfigFromEnv("")
	if err != nil {
		fmt.Println("server config error:", err)
		return 2
	}

	width := flag.Int("width", 1280, "initial window width")
	height := flag.Int("height", 720, "initial window height")
	out := flag.String("out", ".", "directory grid_art.svg is written into")
	spacing := flag.Float64("spacing", g.Spacing, "grid spacing in pixels; also configurable via "+grid.EnvSpacing)
	lineLength := flag.Float64("line-length", g.LineLength, "line length in pixels; also configurable via "+grid.EnvLineLength)
	listenAddr := flag.String("listen", defaults.ListenAddr, "also serve the web UI on this address (off when empty); also configurable via "+web.EnvListenAddr)
	debug := flag.Bool("debug", false, "log to stdout")
	flag.Parse()

	g = grid.Grid{Spacing: *spacing, LineLength: *lineLength}
	if err := g.Validate(); err != nil {
		fmt.Println("grid config error:", err)
		return 2
	}
	if *width <= 0 || *height <= 0 {
		fmt.Println("window size must be positive")
		return 2
	}

	var logger app.Logger = app.NoopLogger{}
	if *debug {
		logger = app.NewFileLogger(os.Stdout)
	}

	store := state.NewStore(state.Viewport{Width: *width, Height: *height})
	session, err := desktop.NewSession(g, store, *out, logger)
	if err != nil {
		fmt.Println("desktop error:", err)
		return 2
	}

	if *listenAddr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		srv := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: defaults.DevMode}, web.APIV1Deps{
			Store:    store,
			Grid:     g,
			Frame:    session.Screen(),
			Exporter: session.Exporter,
			Logger:   logger,
		})
		if err := srv.Start(ctx); err != nil {
			fmt.Println("web server error:", err)
			return 1
		}
		defer srv.Stop()
	}

	ebiten.SetWindowTitle("Grid Art")
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(newGame(session)); err != nil {
		fmt.Println("window error:", err)
		return 1
	}
	return 0
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rook-computer/gridart/internal/anim"
	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/web"
)

const (
	envStdioLog  = "GRIDART_STDIO_LOG"
	debugLogPath = "./gridart-debug.log"
)

type config struct {
	Grid   grid.Grid
	Server web.ServerConfig

	FPS       int
	Width     int
	Height    int
	ExportDir string
	StaticDir string
	HUD       bool
	NoFB      bool
	NoWeb     bool
	Debug     bool
	StdioLog  string
}

// parseConfig reads env first, then lets flags override it.
func parseConfig(args []string, output io.Writer) (config, error) {
	g, err := grid.ConfigFromEnv(grid.DefaultGrid)
	if err != nil {
		return config{}, err
	}
	server, err := web.DefaultServerConfigFromEnv(":80")
	if err != nil {
		return config{}, err
	}

	cfg := config{Grid: g, Server: server}
	fs := flag.NewFlagSet("gridart", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Float64Var(&cfg.Grid.Spacing, "spacing", g.Spacing, "grid spacing in pixels (env "+grid.EnvSpacing+")")
	fs.Float64Var(&cfg.Grid.LineLength, "line-length", g.LineLength, "line length in pixels (env "+grid.EnvLineLength+")")
	fs.StringVar(&cfg.Server.ListenAddr, "listen", server.ListenAddr, "web UI listen address (env "+web.EnvListenAddr+")")
	fs.BoolVar(&cfg.Server.DevMode, "dev", server.DevMode, "enable permissive CORS for UI development (env "+web.EnvDevMode+")")
	fs.BoolVar(&cfg.NoWeb, "no-web", false, "do not start the web UI")
	fs.StringVar(&cfg.StaticDir, "static-dir", "", "serve the web UI from this directory instead of the embedded one")
	fs.IntVar(&cfg.FPS, "fps", anim.DefaultFPS, "animation frames per second")
	fs.IntVar(&cfg.Width, "width", 0, "initial viewport width (default: framebuffer width)")
	fs.IntVar(&cfg.Height, "height", 0, "initial viewport height (default: framebuffer height)")
	fs.StringVar(&cfg.ExportDir, "export-dir", ".", "directory the export button writes grid_art.svg into")
	fs.BoolVar(&cfg.HUD, "hud", false, "draw the point counter and web UI QR code on the device")
	fs.BoolVar(&cfg.NoFB, "no-fb", false, "render off-screen instead of to the framebuffer")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging to "+debugLogPath)
	fs.StringVar(&cfg.StdioLog, "stdio-log", "", "redirect stdout+stderr (including panics) to this file (env "+envStdioLog+")")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if cfg.StdioLog == "" {
		cfg.StdioLog = os.Getenv(envStdioLog)
	}

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	var errs []error
	if err := c.Grid.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("-fps must be in 1..240 (got %d)", c.FPS))
	}
	if c.Width < 0 || c.Height < 0 {
		errs = append(errs, fmt.Errorf("-width and -height must not be negative (got %dx%d)", c.Width, c.Height))
	}
	if (c.Width == 0) != (c.Height == 0) {
		errs = append(errs, errors.New("-width and -height must be set together"))
	}
	return errors.Join(errs...)
}

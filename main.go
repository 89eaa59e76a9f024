package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/gridart/internal/app"
	"github.com/rook-computer/gridart/internal/app/screens"
	"github.com/rook-computer/gridart/internal/buttons"
	"github.com/rook-computer/gridart/internal/export"
	"github.com/rook-computer/gridart/internal/render"
	"github.com/rook-computer/gridart/internal/state"
	"github.com/rook-computer/gridart/internal/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "gridart:", err)
		return 2
	}

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	if cfg.StdioLog != "" {
		if err := redirectStdIO(cfg.StdioLog); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var logger app.Logger = app.NoopLogger{}
	if cfg.Debug {
		f, err := os.OpenFile(debugLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer, console, vp := openRenderer(ctx, cfg, logger)
	store := state.NewStore(vp)
	exporter := export.NewService(cfg.Grid, store, logger)

	var server web.Server = &web.NoopServer{}
	if !cfg.NoWeb {
		httpServer := web.NewHTTPServer(cfg.Server, web.APIV1Deps{
			Store:    store,
			Grid:     cfg.Grid,
			Frame:    screens.NewGridScreen(cfg.Grid, screens.HUD{}, logger),
			Exporter: exporter,
			Logger:   logger,
		})
		httpServer.StaticDir = cfg.StaticDir
		server = httpServer
	}

	a := app.New(store, cfg.Grid, renderer, server, buttons.NewKeyboardButtons(logger))
	a.Exporter = exporter
	a.Logger = logger
	a.ExportDir = cfg.ExportDir
	a.FPS = cfg.FPS
	a.Debug = cfg.Debug
	a.Console = console
	a.HUD = screens.HUD{Enabled: cfg.HUD && !cfg.NoWeb, URL: uiURL(cfg.Server.ListenAddr)}

	fmt.Printf("gridart: %dx%d viewport, %d fps, web=%v\n", vp.Width, vp.Height, cfg.FPS, !cfg.NoWeb)
	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("app error:", err)
		logger.Errorf("main", "app stopped: %v", err)
		return 1
	}
	return 0
}

// openRenderer prefers the framebuffer and falls back to an off-screen image
// renderer. The fallback still serves frames to the web UI.
func openRenderer(ctx context.Context, cfg config, logger app.Logger) (render.Renderer, bool, state.Viewport) {
	vp := state.Viewport{Width: cfg.Width, Height: cfg.Height}
	if !cfg.NoFB {
		fb := render.NewFBRenderer()
		fb.Logger = logger
		fb.Debug = cfg.Debug
		// Probe once to learn the device resolution; App starts it again.
		err := fb.Start(ctx)
		if err == nil {
			bounds := fb.Bounds()
			_ = fb.Stop()
			if vp.Empty() {
				vp = state.Viewport{Width: bounds.Dx(), Height: bounds.Dy()}
			}
			return fb, true, vp
		}
		fmt.Println("framebuffer unavailable, rendering off-screen:", err)
		logger.Errorf("main", "framebuffer open failed: %v", err)
	}
	if vp.Empty() {
		vp = state.Viewport{Width: render.CanvasWidth, Height: render.CanvasHeight}
	}
	return render.NewImageRenderer(), false, vp
}

// uiURL guesses the address a phone on the same network would use.
func uiURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = outboundIP()
	}
	if host == "" {
		return ""
	}
	if port == "80" {
		return "http://" + host + "/"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func outboundIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() || ipNet.IP.To4() == nil {
			continue
		}
		return ipNet.IP.String()
	}
	return ""
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/gridart/internal/anim"
	"github.com/rook-computer/gridart/internal/app/screens"
	"github.com/rook-computer/gridart/internal/buttons"
	"github.com/rook-computer/gridart/internal/export"
	"github.com/rook-computer/gridart/internal/grid"
	"github.com/rook-computer/gridart/internal/render"
	"github.com/rook-computer/gridart/internal/state"
	"github.com/rook-computer/gridart/internal/system"
	"github.com/rook-computer/gridart/internal/web"
)

type Exporter interface {
	Export(sink export.Sink) error
}

type App struct {
	Store    *state.Store
	Grid     grid.Grid
	Render   render.Renderer
	Web      web.Server
	Buttons  buttons.Buttons
	Exporter Exporter
	Logger   Logger

	HUD       screens.HUD
	ExportDir string
	FPS       int
	Debug     bool

	// Console switches the VT to graphics mode while running.
	Console bool

	// Loop is set by Start.
	Loop *anim.Loop

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, g grid.Grid, renderer render.Renderer, webServer web.Server, buttonDriver buttons.Buttons) *App {
	return &App{
		Store:    store,
		Grid:     g,
		Render:   renderer,
		Web:      webServer,
		Buttons:  buttonDriver,
		Exporter: export.NewService(g, store, nil),
		Logger:   NoopLogger{},
		FPS:      anim.DefaultFPS,
		exitCh:   make(chan error, 1),
	}
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// ExportToDir writes the current frame as grid_art.svg into ExportDir.
func (app *App) ExportToDir() error {
	if app.Exporter == nil {
		return errors.New("no exporter configured")
	}
	err := app.Exporter.Export(export.DirSink{Dir: app.ExportDir})
	if err != nil {
		app.Logger.Errorf("app", "export to %q failed: %v", app.ExportDir, err)
		return err
	}
	app.Logger.Infof("app", "exported %s to %q", export.Filename, app.ExportDir)
	return nil
}

func (app *App) Start(ctx context.Context) error {
	if app.Store == nil {
		return errors.New("app: no state store")
	}
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Render == nil {
		app.Render = &render.NoopRenderer{}
	}
	if app.Web == nil {
		app.Web = &web.NoopServer{}
	}
	if app.Buttons == nil {
		app.Buttons = buttons.NewNoopButtons()
	}
	if fb, ok := app.Render.(*render.FBRenderer); ok {
		fb.Logger = app.Logger
		fb.Debug = app.Debug
	}
	if svc, ok := app.Exporter.(*export.Service); ok && svc.Logger == nil {
		svc.Logger = app.Logger
	}

	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return err
	}
	defer app.Render.Stop()

	if app.Console {
		defer system.TakeConsole(app.Logger)()
	}

	screen := screens.NewGridScreen(app.Grid, app.HUD, app.Logger)
	if err := screen.Start(ctx); err != nil {
		return fmt.Errorf("grid screen: %w", err)
	}
	defer screen.Stop()
	app.Render.SetScreen(screen)
	app.Render.RedrawWithState(app.Store.Snapshot())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := app.Web.Start(runCtx); err != nil {
		app.Logger.Errorf("app", "web start error: %v", err)
		return err
	}
	defer app.Web.Stop()

	if err := app.Buttons.Start(runCtx); err != nil {
		app.Logger.Errorf("app", "buttons start error: %v", err)
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.handleButtons(runCtx)
	}()

	sched := anim.NewTickerScheduler(app.FPS)
	app.Loop = anim.NewLoop(app.Store, sched, app.Render.RedrawWithState)
	app.Loop.Logger = app.Logger
	if err := app.Loop.Start(); err != nil {
		cancel()
		_ = app.Buttons.Stop()
		wg.Wait()
		return err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = sched.Run(runCtx)
	}()
	app.Logger.Infof("app", "running at %d fps, viewport=%dx%d", sched.FPS, app.Store.Viewport().Width, app.Store.Viewport().Height)

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	cancel()
	_ = app.Buttons.Stop()
	wg.Wait()
	return err
}

func (app *App) handleButtons(ctx context.Context) {
	events := app.Buttons.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev {
			case buttons.Export:
				_ = app.ExportToDir()
			case buttons.Exit:
				app.Logger.Infof("app", "exit requested")
				app.Exit(nil)
			}
		}
	}
}

// Logger interface and implementations
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// FileLogger writes one line per entry. It is safe for concurrent use.
type FileLogger struct {
	mu *sync.Mutex
	w  io.Writer
}

func NewFileLogger(w io.Writer) FileLogger { return FileLogger{mu: &sync.Mutex{}, w: w} }
func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	l.write("INFO", component, format, args...)
}
func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	l.write("ERROR", component, format, args...)
}

func (l FileLogger) write(level, component, format string, args ...interface{}) {
	if l.mu != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
	}
	writeLog(l.w, level, component, format, args...)
}

func writeLog(w io.Writer, level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
}

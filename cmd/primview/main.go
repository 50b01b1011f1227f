// primview - primitive batch viewer
// Draws molecules, palette-mapped patches, sphere clouds and glTF meshes
// with the batch renderers, in an OpenGL window, in the terminal or to a
// PNG file.
//
// Controls (window and terminal):
//
//	Mouse drag  - Orbit
//	Scroll      - Zoom in/out
//	W/S/A/D     - Orbit with the keyboard
//	Space       - Random spin
//	R           - Reset motion
//	P           - Next palette
//	]/[         - More/fewer posterization levels
//	+/-         - Finer/coarser patch subdivision
//	L           - Toggle lighting
//	Esc         - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/taigrr/glprim/pkg/batch"
	"github.com/taigrr/glprim/pkg/gpu"
	"github.com/taigrr/glprim/pkg/render"
)

func init() {
	// GLFW calls must come from the main thread.
	runtime.LockOSThread()
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	batch.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	switch cfg.Mode {
	case "window":
		return runWindow(ctx, cfg, logger)
	case "terminal":
		// Log lines would tear the alternate screen.
		batch.SetLogger(nil)
		return runTerminal(ctx, cfg)
	case "png":
		return renderPNG(cfg, logger)
	}
	return fmt.Errorf("unknown mode %q", cfg.Mode)
}

// renderPNG draws one frame with the software renderer and saves it.
func renderPNG(cfg Config, logger *slog.Logger) error {
	s, err := buildScene(&gpu.Headless{}, cfg)
	if err != nil {
		return err
	}
	defer s.Release()

	fb := render.NewFramebuffer(cfg.Window.Width, cfg.Window.Height)
	fb.Clear(cfg.Background)
	cam := render.NewCamera()
	cam.SetViewport(fb.Width, fb.Height)
	setupCamera(cam, s, cfg)

	r := render.NewRasterizer(fb)
	s.Rasterize(r, cam)
	if err := fb.SavePNG(cfg.Output); err != nil {
		return err
	}
	logger.Info("saved frame", "path", cfg.Output, "scene", s.status(),
		"drawn", r.Stats.Drawn, "culled", r.Stats.Culled)
	return nil
}

package main

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/taigrr/glprim/pkg/shell"
)

// Keyboard orbit step in radians per key repeat.
const keyOrbit = 0.02

var windowControls = map[glfw.Key]control{
	glfw.KeyP:            nextPalette,
	glfw.KeyRightBracket: morePosterize,
	glfw.KeyLeftBracket:  lessPosterize,
	glfw.KeyEqual:        finer,
	glfw.KeyKPAdd:        finer,
	glfw.KeyMinus:        coarser,
	glfw.KeyKPSubtract:   coarser,
	glfw.KeyL:            toggleLight,
}

func runWindow(ctx context.Context, cfg Config, logger *slog.Logger) error {
	win, err := shell.Open(shell.Options{
		Title:      "primview",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Samples:    cfg.Window.Samples,
		VSync:      cfg.Window.VSync,
		FPS:        cfg.FPS,
		Background: cfg.Background,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	s, err := buildScene(win.Device(), cfg)
	if err != nil {
		return err
	}
	// Batches must go before the context does.
	defer s.Release()

	setupCamera(win.Camera(), s, cfg)
	win.SetTitle("primview - " + s.status())

	orbit := win.Orbit()
	win.OnKey(func(key glfw.Key, _ glfw.ModifierKey) {
		switch key {
		case glfw.KeyW, glfw.KeyUp:
			orbit.Impulse(0, keyOrbit)
		case glfw.KeyS, glfw.KeyDown:
			orbit.Impulse(0, -keyOrbit)
		case glfw.KeyA, glfw.KeyLeft:
			orbit.Impulse(-keyOrbit, 0)
		case glfw.KeyD, glfw.KeyRight:
			orbit.Impulse(keyOrbit, 0)
		case glfw.KeySpace:
			orbit.Impulse((rand.Float64()-0.5)*0.2, (rand.Float64()-0.5)*0.1)
		default:
			if c, ok := windowControls[key]; ok {
				s.adjust(c)
				win.SetTitle("primview - " + s.status())
			}
		}
	})

	return win.Run(ctx, func(shell.Frame) error {
		return s.Draw(win.Camera())
	})
}

package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/gpu"
	"github.com/taigrr/glprim/pkg/render"
	"github.com/taigrr/glprim/pkg/shell"
)

var terminalControls = map[string]control{
	"p": nextPalette,
	"]": morePosterize,
	"[": lessPosterize,
	"+": finer,
	"=": finer,
	"-": coarser,
	"l": toggleLight,
}

// terminalView renders a scene into the terminal, two pixels per cell.
type terminalView struct {
	term  *uv.Terminal
	scene *scene
	fb    *render.Framebuffer
	r     *render.Rasterizer
	cam   *render.Camera
	orbit *shell.Orbit
	bg    colors.Color

	mouseDown    bool
	lastX, lastY int
	fps          float64
	frames       int
	fpsTime      time.Time
}

func runTerminal(ctx context.Context, cfg Config) error {
	s, err := buildScene(&gpu.Headless{}, cfg)
	if err != nil {
		return err
	}
	defer s.Release()

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR mouse mode
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	fb := render.NewFramebuffer(width, height*2)
	v := &terminalView{
		term:    term,
		scene:   s,
		fb:      fb,
		r:       render.NewRasterizer(fb),
		cam:     render.NewCamera(),
		orbit:   shell.NewOrbit(cfg.FPS),
		bg:      cfg.Background,
		fpsTime: time.Now(),
	}
	v.resize(width, height)
	setupCamera(v.cam, s, cfg)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-term.Events():
			if quit := v.handle(ev); quit {
				return nil
			}
		case <-ticker.C:
			if err := v.frame(); err != nil {
				return err
			}
		}
	}
}

func (v *terminalView) resize(width, height int) {
	v.term.Erase()
	v.term.Resize(width, height)
	v.fb.Resize(width, height*2)
	v.cam.SetViewport(v.fb.Width, v.fb.Height)
}

// handle applies one input event and reports whether to quit.
func (v *terminalView) handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c", "q"):
			return true
		case ev.MatchString("r"):
			v.orbit.Reset()
		case ev.MatchString("w", "up"):
			v.orbit.Impulse(0, keyOrbit)
		case ev.MatchString("s", "down"):
			v.orbit.Impulse(0, -keyOrbit)
		case ev.MatchString("a", "left"):
			v.orbit.Impulse(-keyOrbit, 0)
		case ev.MatchString("d", "right"):
			v.orbit.Impulse(keyOrbit, 0)
		case ev.MatchString("space"):
			v.orbit.Impulse((rand.Float64()-0.5)*0.2, (rand.Float64()-0.5)*0.1)
		default:
			if c, ok := terminalControls[ev.String()]; ok {
				v.scene.adjust(c)
			}
		}

	case uv.MouseClickEvent:
		v.mouseDown = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		if v.mouseDown {
			dx, dy := ev.X-v.lastX, ev.Y-v.lastY
			v.orbit.Impulse(-float64(dx)*0.03, float64(dy)*0.03)
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.orbit.ZoomImpulse(-0.05)
		case uv.MouseWheelDown:
			v.orbit.ZoomImpulse(0.05)
		}
	}
	return false
}

func (v *terminalView) frame() error {
	v.orbit.Apply(v.cam)
	v.fb.Clear(v.bg)
	v.r.ResetStats()
	v.scene.Rasterize(v.r, v.cam)

	area := v.term.Bounds()
	v.fb.Draw(v.term, area)
	v.drawStatus(area)
	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	v.frames++
	if elapsed := time.Since(v.fpsTime); elapsed >= time.Second {
		v.fps = float64(v.frames) / elapsed.Seconds()
		v.frames = 0
		v.fpsTime = time.Now()
	}
	return nil
}

// drawStatus writes the status line over the top row.
func (v *terminalView) drawStatus(area uv.Rectangle) {
	line := fmt.Sprintf(" %.0f FPS | %s | %d drawn, %d culled ",
		v.fps, v.scene.status(), v.r.Stats.Drawn, v.r.Stats.Culled)
	style := uv.Style{Fg: colors.White.Std(), Bg: colors.Black.Std()}
	x := area.Min.X
	for _, r := range line {
		if x >= area.Max.X {
			break
		}
		v.term.SetCell(x, area.Min.Y, &uv.Cell{Content: string(r), Width: 1, Style: style})
		x++
	}
}

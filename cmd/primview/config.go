package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/patch"
)

// Scenes and output modes.
var (
	sceneNames = []string{"molecule", "palette", "patches", "spheres", "mesh"}
	modeNames  = []string{"window", "terminal", "png"}
)

// Config is the demo configuration. Values come from DefaultConfig, then an
// optional YAML file, then command-line flags.
type Config struct {
	Scene   string `yaml:"scene"`
	Input   string `yaml:"input"`
	Mode    string `yaml:"mode"`
	Output  string `yaml:"output"`
	Verbose bool   `yaml:"verbose"`

	Window struct {
		Width   int  `yaml:"width"`
		Height  int  `yaml:"height"`
		Samples int  `yaml:"samples"`
		VSync   bool `yaml:"vsync"`
	} `yaml:"window"`
	FPS int `yaml:"fps"`

	FOV        float64      `yaml:"fov"`
	Background colors.Color `yaml:"background"`
	Light      struct {
		Direction [3]float64 `yaml:"direction"`
		Intensity float64    `yaml:"intensity"`
	} `yaml:"light"`

	Palette     string     `yaml:"palette"`
	ValueBounds [2]float64 `yaml:"value_bounds"`
	Posterize   int        `yaml:"posterize"`
	Subdivision int        `yaml:"subdivision"`
	Icosphere   int        `yaml:"icosphere"`
	Count       int        `yaml:"count"`
}

// DefaultConfig returns the built-in defaults: the palette sphere in a
// window.
func DefaultConfig() Config {
	var c Config
	c.Scene = "palette"
	c.Mode = "window"
	c.Output = "primview.png"
	c.Window.Width = 1024
	c.Window.Height = 768
	c.Window.Samples = 4
	c.Window.VSync = true
	c.FPS = 60
	c.FOV = 57.3
	c.Background = colors.RGB(77, 77, 77)
	c.Light.Direction = [3]float64{0.721995, 0.618853, 0.309426}
	c.Light.Intensity = 0.6
	c.Palette = "blue_to_red"
	c.ValueBounds = [2]float64{-1, 1}
	c.Subdivision = 4
	c.Icosphere = 1
	c.Count = 1000
	return c
}

// LoadConfig reads a YAML file over the defaults. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks values that have no sensible clamp.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(sceneNames, c.Scene) {
		errs = append(errs, fmt.Errorf("unknown scene %q (want one of %s)", c.Scene, strings.Join(sceneNames, ", ")))
	}
	if !slices.Contains(modeNames, c.Mode) {
		errs = append(errs, fmt.Errorf("unknown mode %q (want one of %s)", c.Mode, strings.Join(modeNames, ", ")))
	}
	if (c.Scene == "molecule" || c.Scene == "mesh") && c.Input == "" {
		errs = append(errs, fmt.Errorf("scene %s needs an input file", c.Scene))
	}
	if _, ok := colors.ByName(c.Palette); !ok {
		errs = append(errs, fmt.Errorf("unknown palette %q (want one of %s)", c.Palette, strings.Join(colors.Names(), ", ")))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height))
	}
	if !(c.FOV > 0 && c.FOV < 180) {
		errs = append(errs, fmt.Errorf("fov %v outside (0, 180) degrees", c.FOV))
	}
	switch lo, hi := c.ValueBounds[0], c.ValueBounds[1]; {
	case !isFinite(lo) || !isFinite(hi):
		errs = append(errs, fmt.Errorf("value bounds %v must be finite", c.ValueBounds))
	case lo >= hi:
		errs = append(errs, fmt.Errorf("value bounds %v are empty", c.ValueBounds))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	return errors.Join(errs...)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// SubdivisionLevel returns the configured level clamped to the supported
// range.
func (c Config) SubdivisionLevel() int {
	return patch.ClampLevel(c.Subdivision)
}

// vec3Value is a flag.Value for "x,y,z".
type vec3Value struct{ v *[3]float64 }

func (f vec3Value) String() string {
	if f.v == nil {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g", f.v[0], f.v[1], f.v[2])
}

func (f vec3Value) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("parse %q: %w", p, err)
		}
		v[i] = x
	}
	*f.v = v
	return nil
}

// newFlagSet binds flags to c, using the current values of c as defaults.
func newFlagSet(c *Config, configPath *string) *flag.FlagSet {
	fs := flag.NewFlagSet("primview", flag.ContinueOnError)
	fs.StringVar(configPath, "config", *configPath, "YAML scene file")
	fs.StringVar(&c.Scene, "scene", c.Scene, "scene: "+strings.Join(sceneNames, ", "))
	fs.StringVar(&c.Mode, "mode", c.Mode, "output: "+strings.Join(modeNames, ", "))
	fs.StringVar(&c.Output, "o", c.Output, "PNG path for -mode png")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "debug logging")
	fs.IntVar(&c.Window.Width, "width", c.Window.Width, "window or image width")
	fs.IntVar(&c.Window.Height, "height", c.Window.Height, "window or image height")
	fs.IntVar(&c.FPS, "fps", c.FPS, "target FPS")
	fs.Float64Var(&c.FOV, "fov", c.FOV, "vertical field of view (degrees)")
	fs.TextVar(&c.Background, "bg", c.Background, "background colour (RRGGBB)")
	fs.Var(vec3Value{&c.Light.Direction}, "light", "light direction x,y,z")
	fs.Float64Var(&c.Light.Intensity, "intensity", c.Light.Intensity, "light intensity 0..1")
	fs.StringVar(&c.Palette, "palette", c.Palette, "palette: "+strings.Join(colors.Names(), ", "))
	fs.Float64Var(&c.ValueBounds[0], "min", c.ValueBounds[0], "value mapped to the first palette colour")
	fs.Float64Var(&c.ValueBounds[1], "max", c.ValueBounds[1], "value mapped to the last palette colour")
	fs.IntVar(&c.Posterize, "posterize", c.Posterize, "posterization levels, 0 for smooth")
	fs.IntVar(&c.Subdivision, "subdivision", c.Subdivision, "patch subdivision level")
	fs.IntVar(&c.Icosphere, "icosphere", c.Icosphere, "icosphere subdivisions for the palette scene")
	fs.IntVar(&c.Count, "count", c.Count, "instances in the spheres scene")
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "primview - primitive batch viewer\n\n")
		fmt.Fprintf(out, "Usage: primview [options] [molecule.json|model.glb]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nControls:\n")
		fmt.Fprintf(out, "  Mouse drag  - Orbit\n")
		fmt.Fprintf(out, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(out, "  W/S/A/D     - Orbit with the keyboard\n")
		fmt.Fprintf(out, "  Space       - Random spin\n")
		fmt.Fprintf(out, "  R           - Reset motion\n")
		fmt.Fprintf(out, "  P           - Next palette\n")
		fmt.Fprintf(out, "  ]/[         - More/fewer posterization levels\n")
		fmt.Fprintf(out, "  +/-         - Finer/coarser subdivision\n")
		fmt.Fprintf(out, "  L           - Toggle lighting\n")
		fmt.Fprintf(out, "  Esc         - Quit\n")
	}
	return fs
}

// parseArgs builds the configuration from args. Flags are parsed twice when
// -config is given so that explicit flags override the file.
func parseArgs(args []string) (Config, error) {
	c := DefaultConfig()
	var configPath string
	fs := newFlagSet(&c, &configPath)
	if err := fs.Parse(args); err != nil {
		return c, err
	}

	if configPath != "" {
		fileCfg, err := LoadConfig(configPath)
		if err != nil {
			return c, err
		}
		c = fileCfg
		fs = newFlagSet(&c, &configPath)
		if err := fs.Parse(args); err != nil {
			return c, err
		}
	}

	if fs.NArg() > 0 {
		c.Input = fs.Arg(0)
	}
	return c, c.Validate()
}

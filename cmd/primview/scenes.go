package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/taigrr/glprim/pkg/batch"
	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/gpu"
	"github.com/taigrr/glprim/pkg/math3d"
	"github.com/taigrr/glprim/pkg/models"
	"github.com/taigrr/glprim/pkg/patch"
	"github.com/taigrr/glprim/pkg/render"
)

// scene is a set of batches plus the bounding sphere the camera frames.
// Batches a scene does not use stay nil.
type scene struct {
	name      string
	triangles *batch.Triangles
	spheres   *batch.Spheres
	cylinders *batch.Cylinders
	patches   *batch.Patches

	center math3d.Vec3
	radius float64

	// Interactive state.
	palette   int
	posterize int
	level     int
	intensity float64
	lightOn   bool
	light     math3d.Vec3
}

// control is an interactive adjustment shared by the window and terminal
// front ends.
type control int

const (
	nextPalette control = iota
	morePosterize
	lessPosterize
	finer
	coarser
	toggleLight
)

func buildScene(dev gpu.Device, c Config) (*scene, error) {
	s := &scene{
		name:      c.Scene,
		posterize: c.Posterize,
		level:     c.SubdivisionLevel(),
		intensity: c.Light.Intensity,
		lightOn:   true,
		light:     math3d.V3(c.Light.Direction[0], c.Light.Direction[1], c.Light.Direction[2]),
		palette:   paletteIndex(c.Palette),
	}

	var err error
	switch c.Scene {
	case "molecule":
		err = s.buildMolecule(dev, c.Input)
	case "palette":
		err = s.buildPaletteSphere(dev, c.Icosphere)
	case "patches":
		err = s.buildPatchSampler(dev)
	case "spheres":
		err = s.buildSpheres(dev, c.Count)
	case "mesh":
		err = s.buildMesh(dev, c.Input)
	default:
		err = fmt.Errorf("unknown scene %q", c.Scene)
	}
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("build %s scene: %w", c.Scene, err)
	}

	if s.patches != nil {
		s.patches.SetValueBounds(c.ValueBounds[0], c.ValueBounds[1])
	}
	s.apply()
	return s, nil
}

// paletteIndex finds a built-in palette in colors.Names, accepting the same
// spellings as colors.ByName.
func paletteIndex(name string) int {
	key := strings.ReplaceAll(strings.ToLower(name), "-", "_")
	return max(slices.Index(colors.Names(), key), 0)
}

// buildMolecule draws atoms as spheres and bonds as split cylinders.
func (s *scene) buildMolecule(dev gpu.Device, path string) error {
	m, err := models.LoadMolecule(path)
	if err != nil {
		return err
	}
	if s.spheres, err = batch.NewSpheres(dev); err != nil {
		return err
	}
	if s.cylinders, err = batch.NewCylinders(dev); err != nil {
		return err
	}
	spheres, sc := m.Spheres()
	if err := s.spheres.AppendColored(spheres, sc); err != nil {
		return err
	}
	cyls, cc := m.Cylinders()
	if err := s.cylinders.AppendColored(cyls, cc); err != nil {
		return err
	}
	s.center, s.radius = math3d.Zero3(), m.Radius()
	return nil
}

// buildPaletteSphere maps height through the palette on a unit icosphere
// of Tri6 patches.
func (s *scene) buildPaletteSphere(dev gpu.Device, subdivisions int) error {
	var err error
	if s.patches, err = batch.NewPatches(dev); err != nil {
		return err
	}
	patches, values := models.SpherePatches(models.NewIcosphere(subdivisions), 1)
	if err := s.patches.AppendManyValues(patches, values); err != nil {
		return err
	}
	s.center, s.radius = math3d.Zero3(), 1
	return nil
}

var tri6Colors = []colors.Color{colors.Red, colors.Green, colors.Blue, colors.Yellow, colors.Purple, colors.Orange}

// buildPatchSampler lays out one patch per topology: the quads in palette
// mode coloured by height and the triangle with vertex colours.
func (s *scene) buildPatchSampler(dev gpu.Device) error {
	var err error
	if s.patches, err = batch.NewPatches(dev); err != nil {
		return err
	}
	offsets := map[patch.Topology]math3d.Vec3{
		patch.Quad4: math3d.V3(-1.2, 0.1, -1.2),
		patch.Quad8: math3d.V3(0.2, 0.1, -1.2),
		patch.Quad9: math3d.V3(-1.2, 0.1, 0.2),
		patch.Tri6:  math3d.V3(0.2, 0.1, 0.2),
	}
	for _, t := range patch.Topologies {
		nodes := t.Nodes()
		pts := make([]math3d.Vec3, len(nodes))
		values := make([]float64, len(nodes))
		for i, n := range nodes {
			// A saddle over the unit square, flattened for the bilinear quad.
			h := 0.8 * (n.X - 0.5) * (n.Y - 0.5) * 4
			if t == patch.Quad4 {
				h = 0
			}
			// ξ runs along z and η along x so the surface faces +y.
			pts[i] = offsets[t].Add(math3d.V3(n.Y, h, n.X))
			values[i] = h
		}
		p := geom.Patch{Topology: t, Points: pts}
		if t.IsTriangle() {
			err = s.patches.AppendColored(p, tri6Colors)
		} else {
			err = s.patches.AppendValues(p, values)
		}
		if err != nil {
			return err
		}
	}
	s.center, s.radius = math3d.V3(0, 0.1, 0), 1.8
	return nil
}

// buildSpheres scatters n spheres in a cube and threads a helix of
// cylinders through it.
func (s *scene) buildSpheres(dev gpu.Device, n int) error {
	var err error
	if s.spheres, err = batch.NewSpheres(dev); err != nil {
		return err
	}
	if s.cylinders, err = batch.NewCylinders(dev); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(1, 2))
	pal := colors.BlueToRed.Normalize()
	spheres := make([]geom.Sphere, n)
	cs := make([]colors.Color, n)
	for i := range spheres {
		c := math3d.V3(rng.Float64()*10-5, rng.Float64()*10-5, rng.Float64()*10-5)
		spheres[i] = geom.Sphere{Center: c, Radius: 0.1 + 0.3*rng.Float64()}
		cs[i] = pal.Map(c.Y, -5, 5, 0)
	}
	if err := s.spheres.AppendColored(spheres, cs); err != nil {
		return err
	}

	const turns, steps = 4, 96
	prev := helix(0, turns, steps)
	for i := 1; i <= steps; i++ {
		next := helix(i, turns, steps)
		s.cylinders.Append(geom.Cylinder{A: prev, B: next})
		prev = next
	}
	s.cylinders.SetColor(colors.OffWhite)

	s.center, s.radius = math3d.Zero3(), 5*math.Sqrt(3)
	return nil
}

// helix returns step i of a tapering helix along the y axis.
func helix(i, turns, steps int) geom.Sphere {
	t := float64(i) / float64(steps)
	a := 2 * math.Pi * float64(turns) * t
	return geom.Sphere{
		Center: math3d.V3(3*math.Cos(a), 8*t-4, 3*math.Sin(a)),
		Radius: 0.2 - 0.15*t,
	}
}

// buildMesh loads a glTF file as flat-coloured triangles.
func (s *scene) buildMesh(dev gpu.Device, path string) error {
	m, err := models.LoadGLTF(path)
	if err != nil {
		return err
	}
	if m.TriangleCount() == 0 {
		return fmt.Errorf("%s has no triangles", path)
	}
	if s.triangles, err = batch.NewTriangles(dev); err != nil {
		return err
	}
	m.FitTo(2)
	tris, cs := m.Triangles(colors.OffWhite)
	if err := s.triangles.AppendColored(tris, cs); err != nil {
		return err
	}
	s.center, s.radius = math3d.Zero3(), 2
	return nil
}

// apply pushes the interactive state into the batches.
func (s *scene) apply() {
	intensity := s.intensity
	if !s.lightOn {
		intensity = 0
	}
	if s.triangles != nil {
		s.triangles.SetLight(s.light, intensity)
	}
	if s.spheres != nil {
		s.spheres.SetLight(s.light, intensity)
	}
	if s.cylinders != nil {
		s.cylinders.SetLight(s.light, intensity)
	}
	if s.patches != nil {
		s.patches.SetLight(s.light, intensity)
		pal, _ := colors.ByName(colors.Names()[s.palette])
		s.patches.SetPalette(pal)
		s.patches.Posterization(s.posterize)
		for _, t := range patch.Topologies {
			s.patches.SetSubdivision(t, s.level)
		}
	}
}

// adjust applies an interactive control.
func (s *scene) adjust(c control) {
	switch c {
	case nextPalette:
		s.palette = (s.palette + 1) % len(colors.Names())
	case morePosterize:
		s.posterize = min(s.posterize+1, colors.MaxPosterize)
	case lessPosterize:
		s.posterize = max(s.posterize-1, 0)
	case finer:
		s.level = patch.ClampLevel(s.level + 1)
	case coarser:
		s.level = patch.ClampLevel(s.level - 1)
	case toggleLight:
		s.lightOn = !s.lightOn
	}
	s.apply()
}

// status is a one-line summary for title bars and the terminal HUD.
func (s *scene) status() string {
	str := s.name
	if s.patches != nil {
		str += fmt.Sprintf(" | %s | posterize %d | subdivision %d", colors.Names()[s.palette], s.posterize, s.level)
	}
	if !s.lightOn {
		str += " | unlit"
	}
	return str
}

// Draw draws every batch on the GPU.
func (s *scene) Draw(cam batch.Camera) error {
	var errs []error
	if s.triangles != nil {
		errs = append(errs, s.triangles.Draw(cam))
	}
	if s.spheres != nil {
		errs = append(errs, s.spheres.Draw(cam))
	}
	if s.cylinders != nil {
		errs = append(errs, s.cylinders.Draw(cam))
	}
	if s.patches != nil {
		errs = append(errs, s.patches.Draw(cam))
	}
	return errors.Join(errs...)
}

// Rasterize draws every batch with the software renderer.
func (s *scene) Rasterize(r *render.Rasterizer, cam *render.Camera) {
	if s.triangles != nil {
		r.DrawTriangles(cam, s.triangles)
	}
	if s.spheres != nil {
		r.DrawSpheres(cam, s.spheres)
	}
	if s.cylinders != nil {
		r.DrawCylinders(cam, s.cylinders)
	}
	if s.patches != nil {
		r.DrawPatches(cam, s.patches)
	}
}

// Release frees the GPU resources of every batch.
func (s *scene) Release() {
	if s.triangles != nil {
		s.triangles.Release()
	}
	if s.spheres != nil {
		s.spheres.Release()
	}
	if s.cylinders != nil {
		s.cylinders.Release()
	}
	if s.patches != nil {
		s.patches.Release()
	}
}

// setupCamera frames the scene from the (1,1,1) diagonal.
func setupCamera(cam *render.Camera, s *scene, c Config) {
	cam.SetFOV(c.FOV * math.Pi / 180)
	cam.SetRotation(math.Pi/4, math.Asin(1/math.Sqrt(3)))
	cam.Frame(s.center, s.radius)
}

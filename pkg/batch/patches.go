package batch

import (
	"fmt"
	"strings"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/gpu"
	"github.com/taigrr/glprim/pkg/math3d"
	"github.com/taigrr/glprim/pkg/patch"
)

const (
	// DefaultSubdivision is the tessellation level groups start with.
	DefaultSubdivision = 4
	// PaletteTexels is the width of the palette lookup texture.
	PaletteTexels = 256
)

// groupData is the CPU side of one topology group. A group either carries
// a colour per control point or a palette value per control point, fixed
// by the first append after a Clear.
type groupData interface {
	mode() string
	points() []math3d.Vec3
	// attribs returns the number of per-point colours or values.
	attribs() int
}

type colorGroup struct {
	pts    []math3d.Vec3
	colors []colors.Color
}

func (g *colorGroup) mode() string          { return "vertex color" }
func (g *colorGroup) points() []math3d.Vec3 { return g.pts }
func (g *colorGroup) attribs() int          { return len(g.colors) }

type valueGroup struct {
	pts    []math3d.Vec3
	values []float64
}

func (g *valueGroup) mode() string          { return "palette" }
func (g *valueGroup) points() []math3d.Vec3 { return g.pts }
func (g *valueGroup) attribs() int          { return len(g.values) }

// patchGroup is one topology: its data, subdivision level and the two
// programs (vertex colour and palette) with their vertex arrays.
type patchGroup struct {
	topology patch.Topology
	level    int
	data     groupData
	dirty    bool

	colorProg, valueProg *gpu.Program
	colorVAO, valueVAO   gpu.VertexArray
	positions            gpu.Buffer
	colorBuf, valueBuf   gpu.Buffer

	packed []patchVertex
	values []float32
}

// PatchView is one patch as stored in a Patches batch, with exactly one of
// Colors and Values set.
type PatchView struct {
	Patch  geom.Patch
	Colors []colors.Color
	Values []float64
}

// Patches draws tessellated curved patches. Patches are grouped by
// topology; each non-empty group is one draw.
type Patches struct {
	res    resources
	groups [len(patch.Topologies)]*patchGroup

	color   colors.Color
	light   geom.Light
	palette colors.Palette
	lo, hi  float64
	levels  int

	paletteTex   gpu.Texture
	paletteDirty bool
}

// patchSources builds the four stages for topology t, in palette mode when
// palette is set.
func patchSources(t patch.Topology, palette bool) []gpu.Source {
	defines := []string{
		strings.ToUpper(t.String()),
		fmt.Sprintf("NODES %d", t.NodeCount()),
	}
	if palette {
		defines = append(defines, "PALETTE")
	}
	return []gpu.Source{
		{Stage: gpu.VertexStage, Code: shaderSource(defines, "patch.vert")},
		{Stage: gpu.TessControlStage, Code: shaderSource(defines, "patch.tesc")},
		{Stage: gpu.TessEvalStage, Code: shaderSource(defines, "patch.tese")},
		{Stage: gpu.FragmentStage, Code: shaderSource(defines, "lighting.glsl", "patch.frag")},
	}
}

// NewPatches compiles a vertex-colour and a palette program per topology
// and allocates the buffers and the palette texture.
func NewPatches(dev gpu.Device) (*Patches, error) {
	p := &Patches{
		res:          resources{dev: dev, kind: "patches"},
		color:        colors.White,
		light:        geom.DefaultLight(),
		palette:      colors.BlueToRed.Normalize(),
		lo:           0,
		hi:           1,
		paletteDirty: true,
	}
	for i, t := range patch.Topologies {
		g, err := p.newGroup(t)
		if err != nil {
			p.res.release()
			return nil, err
		}
		p.groups[i] = g
	}
	p.paletteTex = p.res.texture()
	Logger().Debug("created batch", "batch", "patches")
	return p, nil
}

func (p *Patches) newGroup(t patch.Topology) (*patchGroup, error) {
	dev := p.res.dev
	g := &patchGroup{topology: t, level: DefaultSubdivision}

	var err error
	if g.colorProg, err = p.res.program(patchSources(t, false)...); err != nil {
		return nil, err
	}
	if g.valueProg, err = p.res.program(patchSources(t, true)...); err != nil {
		return nil, err
	}

	g.positions = p.res.buffer()
	g.colorBuf = p.res.buffer()
	g.valueBuf = p.res.buffer()

	g.colorVAO = p.res.vertexArray()
	dev.BindVertexArray(g.colorVAO)
	dev.BindBuffer(gpu.ArrayBuffer, g.positions)
	patchStream.bind(g.colorProg)
	dev.BindBuffer(gpu.ArrayBuffer, g.colorBuf)
	vertexColorStream.bind(g.colorProg)

	g.valueVAO = p.res.vertexArray()
	dev.BindVertexArray(g.valueVAO)
	dev.BindBuffer(gpu.ArrayBuffer, g.positions)
	patchStream.bind(g.valueProg)
	dev.BindBuffer(gpu.ArrayBuffer, g.valueBuf)
	patchValueStream.bind(g.valueProg)

	dev.BindVertexArray(0)
	return g, nil
}

func (p *Patches) group(t patch.Topology) *patchGroup {
	for _, g := range p.groups {
		if g.topology == t {
			return g
		}
	}
	return nil
}

// Clear removes every patch from every group. GPU storage is kept.
func (p *Patches) Clear() {
	for _, g := range p.groups {
		g.data = nil
		g.dirty = true
	}
}

// Append adds a patch whose control points all take the current default
// colour.
func (p *Patches) Append(pt geom.Patch) error {
	if err := pt.Validate(); err != nil {
		return err
	}
	cs := make([]colors.Color, len(pt.Points))
	for i := range cs {
		cs[i] = p.color
	}
	return p.AppendColored(pt, cs)
}

// AppendMany adds patches with the current default colour. Nothing is
// appended unless every patch is valid and its group accepts vertex
// colours.
func (p *Patches) AppendMany(pts []geom.Patch) error {
	for _, pt := range pts {
		if err := p.checkAppend(pt, len(pt.Points), false); err != nil {
			return err
		}
	}
	for _, pt := range pts {
		if err := p.Append(pt); err != nil {
			return err
		}
	}
	return nil
}

// AppendColored adds a patch in vertex-colour mode with one colour per
// control point.
func (p *Patches) AppendColored(pt geom.Patch, nodeColors []colors.Color) error {
	if err := pt.Validate(); err != nil {
		return err
	}
	if len(nodeColors) != len(pt.Points) {
		return fmt.Errorf("append %v patch: %d colors for %d points: %w",
			pt.Topology, len(nodeColors), len(pt.Points), ErrLengthMismatch)
	}
	g := p.group(pt.Topology)
	if g.data == nil {
		g.data = &colorGroup{}
	}
	cg, ok := g.data.(*colorGroup)
	if !ok {
		return fmt.Errorf("append %v patch: %w", pt.Topology, ErrModeMismatch)
	}
	cg.pts = append(cg.pts, pt.Points...)
	cg.colors = append(cg.colors, nodeColors...)
	g.dirty = true
	return nil
}

// AppendValues adds a patch in palette mode with one scalar per control
// point. Values are mapped through the palette when drawn.
func (p *Patches) AppendValues(pt geom.Patch, values []float64) error {
	if err := pt.Validate(); err != nil {
		return err
	}
	if len(values) != len(pt.Points) {
		return fmt.Errorf("append %v patch: %d values for %d points: %w",
			pt.Topology, len(values), len(pt.Points), ErrLengthMismatch)
	}
	g := p.group(pt.Topology)
	if g.data == nil {
		g.data = &valueGroup{}
	}
	vg, ok := g.data.(*valueGroup)
	if !ok {
		return fmt.Errorf("append %v patch: %w", pt.Topology, ErrModeMismatch)
	}
	vg.pts = append(vg.pts, pt.Points...)
	vg.values = append(vg.values, values...)
	g.dirty = true
	return nil
}

// AppendManyColored adds patches in vertex-colour mode, nodeColors[i]
// holding the control point colours of pts[i]. Every patch is checked
// before any is appended, so an error leaves the batch untouched.
func (p *Patches) AppendManyColored(pts []geom.Patch, nodeColors [][]colors.Color) error {
	if len(pts) != len(nodeColors) {
		return fmt.Errorf("append patches: %d color sets for %d patches: %w",
			len(nodeColors), len(pts), ErrLengthMismatch)
	}
	for i, pt := range pts {
		if err := p.checkAppend(pt, len(nodeColors[i]), false); err != nil {
			return err
		}
	}
	for i, pt := range pts {
		if err := p.AppendColored(pt, nodeColors[i]); err != nil {
			return err
		}
	}
	return nil
}

// AppendManyValues adds patches in palette mode, values[i] holding the
// control point scalars of pts[i]. Like AppendManyColored it appends all
// or nothing.
func (p *Patches) AppendManyValues(pts []geom.Patch, values [][]float64) error {
	if len(pts) != len(values) {
		return fmt.Errorf("append patches: %d value sets for %d patches: %w",
			len(values), len(pts), ErrLengthMismatch)
	}
	for i, pt := range pts {
		if err := p.checkAppend(pt, len(values[i]), true); err != nil {
			return err
		}
	}
	for i, pt := range pts {
		if err := p.AppendValues(pt, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// checkAppend reports the error AppendColored or AppendValues would return
// for pt with n per-node entries, without appending.
func (p *Patches) checkAppend(pt geom.Patch, n int, palette bool) error {
	if err := pt.Validate(); err != nil {
		return err
	}
	if n != len(pt.Points) {
		return fmt.Errorf("append %v patch: %d entries for %d points: %w",
			pt.Topology, n, len(pt.Points), ErrLengthMismatch)
	}
	switch p.group(pt.Topology).data.(type) {
	case *colorGroup:
		if palette {
			return fmt.Errorf("append %v patch: %w", pt.Topology, ErrModeMismatch)
		}
	case *valueGroup:
		if !palette {
			return fmt.Errorf("append %v patch: %w", pt.Topology, ErrModeMismatch)
		}
	}
	return nil
}

// SetColor sets the colour used by later Append calls.
func (p *Patches) SetColor(c colors.Color) {
	p.color = c
}

// SetLight normalizes direction and clamps intensity to [0,1].
func (p *Patches) SetLight(direction math3d.Vec3, intensity float64) {
	p.light = geom.NewLight(direction, intensity)
}

// Light returns the batch light.
func (p *Patches) Light() geom.Light {
	return p.light
}

// SetSubdivision sets the tessellation level of one topology, clamped to
// [patch.MinLevel, patch.MaxLevel].
func (p *Patches) SetSubdivision(t patch.Topology, level int) {
	g := p.group(t)
	if g == nil {
		Logger().Warn("unknown patch topology", "topology", t)
		return
	}
	clamped := patch.ClampLevel(level)
	if clamped != level {
		Logger().Warn("subdivision level clamped", "topology", t, "level", level, "clamped", clamped)
	}
	g.level = clamped
}

// Subdivision returns the tessellation level of one topology.
func (p *Patches) Subdivision(t patch.Topology) int {
	if g := p.group(t); g != nil {
		return g.level
	}
	return 0
}

// SetPalette replaces the palette used by palette-mode groups. Fewer than
// two colours are padded.
func (p *Patches) SetPalette(cs []colors.Color) {
	if len(cs) < 2 {
		Logger().Warn("palette padded to two entries", "colors", len(cs))
	}
	p.palette = colors.Palette(cs).Normalize()
	p.paletteDirty = true
}

// Palette returns the active palette.
func (p *Patches) Palette() colors.Palette {
	return p.palette
}

// SetValueBounds sets the value range mapped onto the palette.
func (p *Patches) SetValueBounds(lo, hi float64) {
	p.lo, p.hi = lo, hi
}

// ValueBounds returns the value range mapped onto the palette.
func (p *Patches) ValueBounds() (lo, hi float64) {
	return p.lo, p.hi
}

// Posterization quantizes palette lookups to levels steps; 0 disables it.
// levels is clamped to [0, colors.MaxPosterize].
func (p *Patches) Posterization(levels int) {
	clamped := max(0, min(colors.MaxPosterize, levels))
	if clamped != levels {
		Logger().Warn("posterization clamped", "levels", levels, "clamped", clamped)
	}
	p.levels = clamped
}

// PosterizeLevels returns the active posterization.
func (p *Patches) PosterizeLevels() int {
	return p.levels
}

// MapValue resolves a scalar the way palette groups are shaded.
func (p *Patches) MapValue(v float64) colors.Color {
	return p.palette.Map(v, p.lo, p.hi, p.levels)
}

// Size returns the total number of patches.
func (p *Patches) Size() int {
	n := 0
	for _, g := range p.groups {
		n += g.size()
	}
	return n
}

// SizeOf returns the number of patches of one topology.
func (p *Patches) SizeOf(t patch.Topology) int {
	if g := p.group(t); g != nil {
		return g.size()
	}
	return 0
}

// Dirty reports whether any group differs from what was last uploaded.
func (p *Patches) Dirty() bool {
	for _, g := range p.groups {
		if g.dirty {
			return true
		}
	}
	return false
}

// Each calls fn for every patch, grouped by topology in append order.
func (p *Patches) Each(fn func(PatchView)) {
	for _, g := range p.groups {
		if g.data == nil || !g.consistent(false) {
			continue
		}
		n := g.topology.NodeCount()
		pts := g.data.points()
		for i := 0; i+n <= len(pts); i += n {
			v := PatchView{Patch: geom.Patch{Topology: g.topology, Points: pts[i : i+n]}}
			switch d := g.data.(type) {
			case *colorGroup:
				v.Colors = d.colors[i : i+n]
			case *valueGroup:
				v.Values = d.values[i : i+n]
			}
			fn(v)
		}
	}
}

func (g *patchGroup) size() int {
	if g.data == nil {
		return 0
	}
	return len(g.data.points()) / g.topology.NodeCount()
}

// consistent checks that every control point has a colour or value and
// that the points form whole patches.
func (g *patchGroup) consistent(warn bool) bool {
	if g.data == nil {
		return true
	}
	pts, n := len(g.data.points()), g.topology.NodeCount()
	if pts == g.data.attribs() && pts%n == 0 {
		return true
	}
	if warn {
		Logger().Warn("patch group is inconsistent, skipping draw",
			"topology", g.topology, "mode", g.data.mode(), "points", pts, "attributes", g.data.attribs())
	}
	return false
}

func (g *patchGroup) upload(res *resources) error {
	var pts []math3d.Vec3
	if g.data != nil {
		pts = g.data.points()
	}
	g.packed = g.packed[:0]
	for _, pt := range pts {
		g.packed = append(g.packed, patchVertex{Position: pt.F32()})
	}
	if err := res.upload(g.positions, gpu.ArrayBuffer, gpu.Bytes(g.packed)); err != nil {
		return err
	}

	switch d := g.data.(type) {
	case *colorGroup:
		return res.upload(g.colorBuf, gpu.ArrayBuffer, gpu.Bytes(d.colors))
	case *valueGroup:
		g.values = g.values[:0]
		for _, v := range d.values {
			g.values = append(g.values, float32(v))
		}
		return res.upload(g.valueBuf, gpu.ArrayBuffer, gpu.Bytes(g.values))
	}
	return nil
}

// Draw uploads changed groups and the palette, then issues one patch draw
// per non-empty topology group.
func (p *Patches) Draw(cam Camera) error {
	if p.res.released {
		return ErrReleased
	}
	dev := p.res.dev

	if p.paletteDirty {
		texels := p.palette.Texels(PaletteTexels)
		if err := dev.TexImage1D(p.paletteTex, gpu.Bytes(texels)); err != nil {
			return fmt.Errorf("upload palette: %w", err)
		}
		Logger().Debug("uploaded palette", "batch", "patches", "texels", len(texels))
		p.paletteDirty = false
	}

	for _, g := range p.groups {
		ok := g.consistent(true)
		if g.dirty && ok {
			if err := g.upload(&p.res); err != nil {
				return fmt.Errorf("upload %v patches: %w", g.topology, err)
			}
			g.dirty = false
		}
		if !ok || g.size() == 0 {
			continue
		}
		if err := p.drawGroup(g, cam); err != nil {
			return err
		}
	}
	return nil
}

func (p *Patches) drawGroup(g *patchGroup, cam Camera) error {
	dev := p.res.dev
	prog, vao := g.colorProg, g.colorVAO
	_, palette := g.data.(*valueGroup)
	if palette {
		prog, vao = g.valueProg, g.valueVAO
	}

	prog.Use()
	if err := setCamera(prog, cam); err != nil {
		return err
	}
	uniforms := []struct {
		name  string
		value any
	}{
		{"light", p.light.Vec4()},
		{"level", float32(g.level)},
	}
	if palette {
		dev.BindTexture1D(0, p.paletteTex)
		uniforms = append(uniforms, []struct {
			name  string
			value any
		}{
			{"palette", 0},
			{"value_bounds", [2]float32{float32(p.lo), float32(p.hi)}},
			{"posterize", p.levels},
		}...)
	}
	for _, u := range uniforms {
		if err := prog.SetUniform(u.name, u.value); err != nil {
			return err
		}
	}

	n := g.topology.NodeCount()
	dev.BindVertexArray(vao)
	dev.PatchVertices(n)
	dev.DrawArrays(gpu.Patches, 0, g.size()*n)
	dev.BindVertexArray(0)
	return nil
}

// Release frees the GPU resources. It is safe to call more than once.
func (p *Patches) Release() {
	p.res.release()
}

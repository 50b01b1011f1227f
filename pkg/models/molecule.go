package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/math3d"
)

// Ball-and-stick radii.
const (
	AtomRadius      = 0.3
	BondRadius      = 0.1
	DoubleBondScale = 1.7
)

// ErrUnknownElement is returned for atomic numbers without a colour.
var ErrUnknownElement = errors.New("unknown element")

var elementColors = map[int]colors.Color{
	1:  colors.RGB(230, 230, 230),
	6:  colors.RGB(170, 170, 170),
	7:  colors.RGB(30, 30, 200),
	8:  colors.RGB(230, 30, 30),
	15: colors.RGB(240, 140, 0),
	16: colors.RGB(240, 220, 0),
	30: colors.RGB(170, 20, 170),
}

// AtomColor returns the display colour for an atomic number.
func AtomColor(number int) (colors.Color, error) {
	c, ok := elementColors[number]
	if !ok {
		return colors.Color{}, fmt.Errorf("%w: atomic number %d", ErrUnknownElement, number)
	}
	return c, nil
}

// Atom is one atom of a molecule.
type Atom struct {
	Position math3d.Vec3
	Number   int
}

// Bond joins atoms A and B with the given bond order.
type Bond struct {
	A, B  int
	Order int
}

// Molecule is a ball-and-stick model.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond
}

type moleculeJSON struct {
	Atoms []struct {
		Coordinates  [3]float64 `json:"coordinates"`
		AtomicNumber int        `json:"atomic_number"`
	} `json:"atoms"`
	Bonds [][3]int `json:"bonds"`
}

// ParseMolecule decodes a molecule of the form
//
//	{"atoms": [{"coordinates": [x, y, z], "atomic_number": n}, ...],
//	 "bonds": [[i, j, order], ...]}
//
// and recentres it on the centroid of its atoms.
func ParseMolecule(r io.Reader) (*Molecule, error) {
	var raw moleculeJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode molecule: %w", err)
	}

	m := &Molecule{
		Atoms: make([]Atom, len(raw.Atoms)),
		Bonds: make([]Bond, len(raw.Bonds)),
	}
	for i, a := range raw.Atoms {
		if _, err := AtomColor(a.AtomicNumber); err != nil {
			return nil, fmt.Errorf("atom %d: %w", i, err)
		}
		m.Atoms[i] = Atom{
			Position: math3d.V3(a.Coordinates[0], a.Coordinates[1], a.Coordinates[2]),
			Number:   a.AtomicNumber,
		}
	}
	for i, b := range raw.Bonds {
		bond := Bond{A: b[0], B: b[1], Order: b[2]}
		if bond.A < 0 || bond.A >= len(m.Atoms) || bond.B < 0 || bond.B >= len(m.Atoms) {
			return nil, fmt.Errorf("bond %d: atom index out of range (%d atoms)", i, len(m.Atoms))
		}
		if bond.A == bond.B {
			return nil, fmt.Errorf("bond %d: atom %d bonded to itself", i, bond.A)
		}
		m.Bonds[i] = bond
	}
	m.Recenter()
	return m, nil
}

// LoadMolecule reads a molecule JSON file.
func LoadMolecule(path string) (*Molecule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open molecule: %w", err)
	}
	defer f.Close()
	return ParseMolecule(f)
}

// Centroid returns the mean atom position.
func (m *Molecule) Centroid() math3d.Vec3 {
	if len(m.Atoms) == 0 {
		return math3d.Zero3()
	}
	sum := math3d.Zero3()
	for _, a := range m.Atoms {
		sum = sum.Add(a.Position)
	}
	return sum.Scale(1 / float64(len(m.Atoms)))
}

// Recenter moves the centroid to the origin.
func (m *Molecule) Recenter() {
	c := m.Centroid()
	for i := range m.Atoms {
		m.Atoms[i].Position = m.Atoms[i].Position.Sub(c)
	}
}

// Radius returns the bounding radius around the origin, atom spheres
// included.
func (m *Molecule) Radius() float64 {
	r := 0.0
	for _, a := range m.Atoms {
		r = max(r, a.Position.Len()+AtomRadius)
	}
	return r
}

// Spheres returns one sphere per atom with its element colour.
func (m *Molecule) Spheres() ([]geom.Sphere, []colors.Color) {
	spheres := make([]geom.Sphere, len(m.Atoms))
	cols := make([]colors.Color, len(m.Atoms))
	for i, a := range m.Atoms {
		spheres[i] = geom.Sphere{Center: a.Position, Radius: AtomRadius}
		cols[i] = elementColors[a.Number]
	}
	return spheres, cols
}

// Cylinders returns two cylinders per bond, split at the midpoint so each
// half takes the colour of the atom it touches. Double bonds are drawn
// thicker.
func (m *Molecule) Cylinders() ([]geom.Cylinder, []colors.Color) {
	cyls := make([]geom.Cylinder, 0, 2*len(m.Bonds))
	cols := make([]colors.Color, 0, 2*len(m.Bonds))
	for _, b := range m.Bonds {
		r := BondRadius
		if b.Order == 2 {
			r *= DoubleBondScale
		}
		a0, a1 := m.Atoms[b.A], m.Atoms[b.B]
		start := geom.Sphere{Center: a0.Position, Radius: r}
		mid := geom.Sphere{Center: a0.Position.Lerp(a1.Position, 0.5), Radius: r}
		end := geom.Sphere{Center: a1.Position, Radius: r}
		cyls = append(cyls, geom.Cylinder{A: start, B: mid}, geom.Cylinder{A: mid, B: end})
		cols = append(cols, elementColors[a0.Number], elementColors[a1.Number])
	}
	return cyls, cols
}

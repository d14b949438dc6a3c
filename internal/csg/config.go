package csg

import (
	"fmt"
	"math"
	"strings"

	"github.com/lukaszgryglicki/mmgrid/internal/mmgrid"
	"gonum.org/v1/gonum/spatial/r3"
)

// BoxCfg is an axis-aligned box in a config file.
type BoxCfg struct {
	Min [3]float64 `json:"min" toml:"min"`
	Max [3]float64 `json:"max" toml:"max"`
}

// BodyCfg describes one body. Kind selects which fields are used:
//
//	box:      min, max
//	sphere:   center, radius
//	cylinder: center (base cap centre), axis, radius, height
type BodyCfg struct {
	Name     string     `json:"name,omitempty" toml:"name"`
	Kind     string     `json:"kind" toml:"kind"`
	Min      [3]float64 `json:"min,omitempty" toml:"min"`
	Max      [3]float64 `json:"max,omitempty" toml:"max"`
	Center   [3]float64 `json:"center,omitempty" toml:"center"`
	Radius   float64    `json:"radius,omitempty" toml:"radius"`
	Axis     string     `json:"axis,omitempty" toml:"axis"`
	Height   float64    `json:"height,omitempty" toml:"height"`
	Material int        `json:"material" toml:"material"`
	Density  float64    `json:"density" toml:"density"`
}

// ModelCfg is the geometry section of a config file.
type ModelCfg struct {
	World       BoxCfg    `json:"world" toml:"world"`
	FillID      int       `json:"fillMaterial,omitempty" toml:"fill_material"`
	FillDensity float64   `json:"fillDensity,omitempty" toml:"fill_density"`
	Bodies      []BodyCfg `json:"bodies" toml:"bodies"`
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// ParseAxis accepts "x", "y" or "z" in any case.
func ParseAxis(s string) (mmgrid.Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return mmgrid.AxisX, nil
	case "y":
		return mmgrid.AxisY, nil
	case "z", "":
		return mmgrid.AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

func materialKey(id int, density float64) (mmgrid.MaterialKey, error) {
	if id < 0 {
		return mmgrid.MaterialKey{}, fmt.Errorf("material id must be >= 0, got %d", id)
	}
	if density < 0 || math.IsNaN(density) || math.IsInf(density, 0) {
		return mmgrid.MaterialKey{}, fmt.Errorf("density must be finite and >= 0, got %g", density)
	}
	if id == mmgrid.VoidID {
		return mmgrid.VoidKey, nil
	}
	return mmgrid.MaterialKey{ID: id, Density: density}, nil
}

// Build validates the body and its material.
func (c BodyCfg) Build() (Body, mmgrid.MaterialKey, error) {
	mat, err := materialKey(c.Material, c.Density)
	if err != nil {
		return nil, mat, err
	}
	var b Body
	switch strings.ToLower(c.Kind) {
	case "box":
		b, err = NewBox(vec(c.Min), vec(c.Max))
	case "sphere":
		b, err = NewSphere(vec(c.Center), c.Radius)
	case "cylinder":
		var a mmgrid.Axis
		if a, err = ParseAxis(c.Axis); err == nil {
			b, err = NewCylinder(vec(c.Center), a, c.Radius, c.Height)
		}
	default:
		err = fmt.Errorf("unknown body kind %q", c.Kind)
	}
	return b, mat, err
}

// Build constructs the model. Bodies keep their config order, so later
// bodies take priority.
func (c ModelCfg) Build() (*Model, error) {
	world, err := NewBox(vec(c.World.Min), vec(c.World.Max))
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	fill, err := materialKey(c.FillID, c.FillDensity)
	if err != nil {
		return nil, fmt.Errorf("fill: %w", err)
	}
	m := NewModel(world, fill)
	for i, bc := range c.Bodies {
		b, mat, err := bc.Build()
		if err != nil {
			return nil, fmt.Errorf("body #%d (%s): %w", i, bc.Name, err)
		}
		name := bc.Name
		if name == "" {
			name = fmt.Sprintf("%s%d", strings.ToLower(bc.Kind), i)
		}
		m.Add(name, b, mat)
	}
	mmgrid.DebugLog("Built model with %d bodies", len(c.Bodies))
	return m, nil
}

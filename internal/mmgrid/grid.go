package mmgrid

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis names one of the three mesh directions.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists the firing directions in the order Generate uses them.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// others returns the two remaining axes in increasing order.
func (a Axis) others() (Axis, Axis) {
	switch a {
	case AxisX:
		return AxisY, AxisZ
	case AxisY:
		return AxisX, AxisZ
	}
	return AxisX, AxisY
}

// Unit returns the +axis unit vector.
func (a Axis) Unit() r3.Vec {
	switch a {
	case AxisX:
		return r3.Vec{X: 1}
	case AxisY:
		return r3.Vec{Y: 1}
	}
	return r3.Vec{Z: 1}
}

// Grid is a structured Cartesian mesh given by its boundaries on each axis.
// Voxel (i,j,k) spans [x[i],x[i+1]] x [y[j],y[j+1]] x [z[k],z[k+1]].
type Grid struct {
	bounds     [3][]float64
	Nx, Ny, Nz int
	StrideX    int // i*StrideX + j*StrideY + k
	StrideY    int
}

// NewGrid copies the boundaries and validates them. Every axis needs at
// least two strictly increasing values.
func NewGrid(x, y, z []float64) (*Grid, error) {
	g := &Grid{}
	for a, b := range [3][]float64{x, y, z} {
		if len(b) < 2 {
			return nil, fmt.Errorf("mmgrid: %s axis needs at least 2 boundaries, got %d: %w", Axis(a), len(b), ErrBadBounds)
		}
		for n := 1; n < len(b); n++ {
			if !(b[n] > b[n-1]) {
				return nil, fmt.Errorf("mmgrid: %s boundary %d (%g) does not exceed %g: %w", Axis(a), n, b[n], b[n-1], ErrBadBounds)
			}
		}
		g.bounds[a] = append([]float64(nil), b...)
	}
	g.Nx, g.Ny, g.Nz = len(x)-1, len(y)-1, len(z)-1
	g.StrideY = g.Nz
	g.StrideX = g.Ny * g.StrideY
	DebugLog("Created grid %s, x=[%g,%g] y=[%g,%g] z=[%g,%g]", g, x[0], x[g.Nx], y[0], y[g.Ny], z[0], z[g.Nz])
	return g, nil
}

// UniformBounds returns n+1 evenly spaced boundaries from min to max.
func UniformBounds(min, max float64, n int) []float64 {
	if n < 1 {
		return []float64{min}
	}
	out := make([]float64, n+1)
	d := (max - min) / float64(n)
	for i := range out {
		out[i] = min + float64(i)*d
	}
	out[n] = max
	return out
}

// Bounds returns the boundaries along a. The slice is shared; do not modify it.
func (g *Grid) Bounds(a Axis) []float64 { return g.bounds[a] }

// Divisions is the number of voxels along a.
func (g *Grid) Divisions(a Axis) int { return len(g.bounds[a]) - 1 }

func (g *Grid) Dims() (nx, ny, nz int) { return g.Nx, g.Ny, g.Nz }

// Len is the total number of voxels.
func (g *Grid) Len() int { return g.Nx * g.Ny * g.Nz }

func (g *Grid) String() string { return fmt.Sprintf("%dx%dx%d", g.Nx, g.Ny, g.Nz) }

// Flat voxel index, z fastest.
func (g *Grid) idx(i, j, k int) int {
	return i*g.StrideX + j*g.StrideY + k
}

func (g *Grid) coords(v int) (i, j, k int) {
	return v / g.StrideX, (v % g.StrideX) / g.StrideY, v % g.StrideY
}

// VoxelIndexOf maps a point to voxel indices. Points on the far boundary of
// an axis are outside the grid.
func (g *Grid) VoxelIndexOf(p r3.Vec) (ok bool, i, j, k int) {
	var ok1, ok2, ok3 bool
	i, ok1 = division(g.bounds[AxisX], p.X)
	j, ok2 = division(g.bounds[AxisY], p.Y)
	k, ok3 = division(g.bounds[AxisZ], p.Z)
	if !ok1 || !ok2 || !ok3 {
		return false, 0, 0, 0
	}
	return true, i, j, k
}

// VoxelVolume returns the volume of voxel (i,j,k).
func (g *Grid) VoxelVolume(i, j, k int) float64 {
	x, y, z := g.bounds[AxisX], g.bounds[AxisY], g.bounds[AxisZ]
	return (x[i+1] - x[i]) * (y[j+1] - y[j]) * (z[k+1] - z[k])
}

func division(b []float64, v float64) (int, bool) {
	if v < b[0] || v >= b[len(b)-1] {
		return 0, false
	}
	n := sort.Search(len(b), func(i int) bool { return b[i] > v })
	return n - 1, true
}

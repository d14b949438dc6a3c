// Package meshstore holds a structured Cartesian mesh with named per-voxel
// and per-mesh numeric tags, and persists it as NetCDF.
package meshstore

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"sort"

	"github.com/ctessum/sparse"
)

var (
	ErrBadBounds = errors.New("meshstore: boundaries must be strictly increasing")
	ErrTagName   = errors.New("meshstore: invalid tag name")
)

var tagName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// Mesh is a structured mesh. Voxel tags have shape (nx, ny, nz) and are
// stored with the z index varying fastest. A Mesh is not safe for
// concurrent use.
type Mesh struct {
	bounds     [3][]float64
	nx, ny, nz int
	tags       map[string]*sparse.DenseArray
	meshTags   map[string][]float64
}

// Voxel is a voxel address.
type Voxel struct{ I, J, K int }

func New(x, y, z []float64) (*Mesh, error) {
	m := &Mesh{
		tags:     make(map[string]*sparse.DenseArray),
		meshTags: make(map[string][]float64),
	}
	for a, b := range [3][]float64{x, y, z} {
		if len(b) < 2 {
			return nil, fmt.Errorf("axis %d has %d boundaries: %w", a, len(b), ErrBadBounds)
		}
		for n := 1; n < len(b); n++ {
			if !(b[n] > b[n-1]) {
				return nil, fmt.Errorf("axis %d boundary %d: %w", a, n, ErrBadBounds)
			}
		}
		m.bounds[a] = append([]float64(nil), b...)
	}
	m.nx, m.ny, m.nz = len(x)-1, len(y)-1, len(z)-1
	return m, nil
}

func (m *Mesh) Dims() (nx, ny, nz int) { return m.nx, m.ny, m.nz }

func (m *Mesh) Len() int { return m.nx * m.ny * m.nz }

// Bounds returns a copy of the boundaries along axis a (0, 1, 2).
func (m *Mesh) Bounds(a int) []float64 { return append([]float64(nil), m.bounds[a]...) }

// Index is the position of voxel (i,j,k) in a tag's Elements.
func (m *Mesh) Index(i, j, k int) int { return (i*m.ny+j)*m.nz + k }

// Voxels iterates in canonical order, k fastest.
func (m *Mesh) Voxels() iter.Seq[Voxel] {
	return func(yield func(Voxel) bool) {
		for i := 0; i < m.nx; i++ {
			for j := 0; j < m.ny; j++ {
				for k := 0; k < m.nz; k++ {
					if !yield(Voxel{i, j, k}) {
						return
					}
				}
			}
		}
	}
}

func (m *Mesh) VoxelVolume(i, j, k int) float64 {
	x, y, z := m.bounds[0], m.bounds[1], m.bounds[2]
	return (x[i+1] - x[i]) * (y[j+1] - y[j]) * (z[k+1] - z[k])
}

// VoxelTag returns the tag called name, creating a zeroed one if needed.
// The returned array is the stored one.
func (m *Mesh) VoxelTag(name string) (*sparse.DenseArray, error) {
	if !tagName.MatchString(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrTagName)
	}
	if t, ok := m.tags[name]; ok {
		return t, nil
	}
	t := sparse.ZerosDense(m.nx, m.ny, m.nz)
	m.tags[name] = t
	return t, nil
}

// Tag returns an existing voxel tag.
func (m *Mesh) Tag(name string) (*sparse.DenseArray, bool) {
	t, ok := m.tags[name]
	return t, ok
}

// TagNames lists voxel tags in sorted order.
func (m *Mesh) TagNames() []string { return sortedKeys(m.tags) }

// SetMeshTag stores a copy of values under name, replacing any old value.
func (m *Mesh) SetMeshTag(name string, values []float64) error {
	if !tagName.MatchString(name) {
		return fmt.Errorf("%q: %w", name, ErrTagName)
	}
	m.meshTags[name] = append([]float64(nil), values...)
	return nil
}

func (m *Mesh) MeshTag(name string) ([]float64, bool) {
	v, ok := m.meshTags[name]
	return v, ok
}

func (m *Mesh) MeshTagNames() []string { return sortedKeys(m.meshTags) }

func sortedKeys[V any](mp map[string]V) []string {
	out := make([]string, 0, len(mp))
	for k := range mp {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

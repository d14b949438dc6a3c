package mmgrid

import (
	"errors"
	"testing"

	"github.com/ctessum/sparse"
)

type fakeMesh struct {
	nx, ny, nz int
	tags       map[string]*sparse.DenseArray
	meshTags   map[string][]float64
}

func newFakeMesh(nx, ny, nz int) *fakeMesh {
	return &fakeMesh{nx: nx, ny: ny, nz: nz,
		tags: map[string]*sparse.DenseArray{}, meshTags: map[string][]float64{}}
}

func (f *fakeMesh) Dims() (int, int, int) { return f.nx, f.ny, f.nz }

func (f *fakeMesh) VoxelTag(name string) (*sparse.DenseArray, error) {
	if t, ok := f.tags[name]; ok {
		return t, nil
	}
	t := sparse.ZerosDense(f.nx, f.ny, f.nz)
	f.tags[name] = t
	return t, nil
}

func (f *fakeMesh) SetMeshTag(name string, v []float64) error {
	f.meshTags[name] = append([]float64(nil), v...)
	return nil
}

func TestExport(t *testing.T) {
	grid, err := NewGrid([]float64{-1, 0, 1}, []float64{-1, 1}, []float64{-1, 1})
	if err != nil {
		t.Fatal(err)
	}
	gen, _ := mustGenerate(t, grid, newSlabs(-1, 1, []float64{-1, 0, 1}, matA, matB), 2)
	mesh := newFakeMesh(2, 1, 1)

	if err := Export(gen.Store(), gen.Registry(), newFakeMesh(1, 1, 1)); !errors.Is(err, ErrDimsMismatch) {
		t.Fatalf("want ErrDimsMismatch, got %v", err)
	}
	for pass := 0; pass < 2; pass++ {
		if err := Export(gen.Store(), gen.Registry(), mesh); err != nil {
			t.Fatal(err)
		}
		if len(mesh.tags) != 2*gen.Registry().Len() {
			t.Fatalf("pass %d: %d tags", pass, len(mesh.tags))
		}
	}

	a, _ := gen.Registry().Lookup(matA)
	frac := mesh.tags[FractionTag(a)]
	if frac == nil || frac.Get(0, 0, 0) != 1 || frac.Get(1, 0, 0) != 0 {
		t.Fatalf("fraction tag wrong: %v", frac)
	}
	if _, ok := mesh.tags[ErrorTag(a)]; !ok {
		t.Fatalf("missing %s", ErrorTag(a))
	}
	ids := mesh.meshTags[MaterialIDsTag]
	dens := mesh.meshTags[MaterialDensitiesTag]
	if len(ids) != 3 || ids[a] != 1 || dens[a] != 1 || ids[gen.Registry().Void()] != VoidID {
		t.Fatalf("mesh tags wrong: %v %v", ids, dens)
	}
	if FractionTag(3) != "mat003_frac" || ErrorTag(12) != "mat012_err" {
		t.Fatalf("tag names: %s %s", FractionTag(3), ErrorTag(12))
	}
}

func TestExportNeedsNormalizedStore(t *testing.T) {
	grid, _ := NewGrid([]float64{0, 1}, []float64{0, 1}, []float64{0, 1})
	s := NewStore(grid, 1)
	if err := Export(s, NewRegistry(), newFakeMesh(1, 1, 1)); !errors.Is(err, ErrNotNormalized) {
		t.Fatalf("want ErrNotNormalized, got %v", err)
	}
}

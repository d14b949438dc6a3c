package mmgrid

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Store holds the per-voxel, per-material accumulators of a grid.
// All four arrays have shape (nx, ny, nz, materials).
type Store struct {
	grid *Grid
	nMat int

	sum *sparse.DenseArray // Σ per-ray occupancy
	sq  *sparse.DenseArray // Σ (per-ray occupancy)²

	frac *sparse.DenseArray
	err  *sparse.DenseArray

	normalized bool
}

// NewStore allocates zeroed accumulators for nMaterials materials.
func NewStore(g *Grid, nMaterials int) *Store {
	if nMaterials <= 0 {
		panic("material count must be positive")
	}
	nx, ny, nz := g.Dims()
	return &Store{
		grid: g,
		nMat: nMaterials,
		sum:  sparse.ZerosDense(nx, ny, nz, nMaterials),
		sq:   sparse.ZerosDense(nx, ny, nz, nMaterials),
		frac: sparse.ZerosDense(nx, ny, nz, nMaterials),
		err:  sparse.ZerosDense(nx, ny, nz, nMaterials),
	}
}

func (s *Store) Grid() *Grid { return s.grid }

// Materials is the number of materials per voxel.
func (s *Store) Materials() int { return s.nMat }

func (s *Store) offset(i, j, k, m int) int { return s.grid.idx(i, j, k)*s.nMat + m }

// Accumulate adds score and score² to voxel (i,j,k), material m.
func (s *Store) Accumulate(i, j, k, m int, score float64) {
	o := s.offset(i, j, k, m)
	s.sum.Elements[o] += score
	s.sq.Elements[o] += score * score
}

// Row is a view of the voxels along one axis at fixed indices on the other
// two. It aliases the store: writes through a Row are writes to the store.
type Row struct {
	sum, sq      []float64
	base, stride int
	n, nMat      int
}

// Row returns the row along a. p and q index the two other axes in
// increasing axis order, e.g. (j,k) for AxisX and (i,k) for AxisY.
func (s *Store) Row(a Axis, p, q int) Row {
	var base, stride int
	switch a {
	case AxisX:
		base, stride = s.grid.idx(0, p, q), s.grid.StrideX
	case AxisY:
		base, stride = s.grid.idx(p, 0, q), s.grid.StrideY
	default:
		base, stride = s.grid.idx(p, q, 0), 1
	}
	return Row{
		sum:    s.sum.Elements,
		sq:     s.sq.Elements,
		base:   base * s.nMat,
		stride: stride * s.nMat,
		n:      s.grid.Divisions(a),
		nMat:   s.nMat,
	}
}

// Len is the number of voxels in the row.
func (r Row) Len() int { return r.n }

func (r Row) Accumulate(pos, m int, score float64) {
	o := r.base + pos*r.stride + m
	r.sum[o] += score
	r.sq[o] += score * score
}

func (r Row) Sum(pos, m int) float64 { return r.sum[r.base+pos*r.stride+m] }

func (r Row) SqSum(pos, m int) float64 { return r.sq[r.base+pos*r.stride+m] }

// reset zeroes every accumulator and derived value.
func (s *Store) reset() {
	for _, a := range []*sparse.DenseArray{s.sum, s.sq, s.frac, s.err} {
		clear(a.Elements)
	}
	s.normalized = false
}

// Normalize turns the raw sums into mean fractions and standard errors over
// total samples per voxel and returns the largest standard error. Negative
// variances from cancellation are clamped to zero.
func (s *Store) Normalize(total int) (float64, error) {
	if total <= 0 {
		return 0, fmt.Errorf("mmgrid: normalizing %s grid with %d materials over %d samples: %w",
			s.grid, s.nMat, total, ErrZeroSamples)
	}
	n := float64(total)
	for o, sc := range s.sum.Elements {
		f := sc / n
		v := s.sq.Elements[o]/n - f*f
		if v < 0 {
			v = 0
		}
		s.frac.Elements[o] = f
		s.err.Elements[o] = math.Sqrt(v / n)
	}
	s.normalized = true
	return floats.Max(s.err.Elements), nil
}

// Normalized reports whether Normalize has run since the last reset.
func (s *Store) Normalized() bool { return s.normalized }

func (s *Store) Fraction(i, j, k, m int) float64 { return s.frac.Elements[s.offset(i, j, k, m)] }

func (s *Store) StdError(i, j, k, m int) float64 { return s.err.Elements[s.offset(i, j, k, m)] }

// FractionArray copies material m's fractions into an (nx, ny, nz) array.
func (s *Store) FractionArray(m int) *sparse.DenseArray { return s.extract(s.frac, m) }

// ErrorArray copies material m's standard errors into an (nx, ny, nz) array.
func (s *Store) ErrorArray(m int) *sparse.DenseArray { return s.extract(s.err, m) }

func (s *Store) extract(src *sparse.DenseArray, m int) *sparse.DenseArray {
	nx, ny, nz := s.grid.Dims()
	out := sparse.ZerosDense(nx, ny, nz)
	copyMaterial(out.Elements, src.Elements, m, s.nMat)
	return out
}

func copyMaterial(dst, src []float64, m, nMat int) {
	for v := range dst {
		dst[v] = src[v*nMat+m]
	}
}

// Conservation checks that the fractions of every voxel sum to one within tol.
func (s *Store) Conservation(tol float64) error {
	if !s.normalized {
		return ErrNotNormalized
	}
	for v := 0; v < s.grid.Len(); v++ {
		sum := floats.Sum(s.frac.Elements[v*s.nMat : (v+1)*s.nMat])
		if math.Abs(sum-1) > tol {
			i, j, k := s.grid.coords(v)
			return fmt.Errorf("mmgrid: voxel (%d,%d,%d) fractions sum to %.12g", i, j, k, sum)
		}
	}
	return nil
}

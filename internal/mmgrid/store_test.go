package mmgrid

import (
	"errors"
	"math"
	"testing"
)

func smallStore(t *testing.T, nMat int) *Store {
	t.Helper()
	g, err := NewGrid([]float64{0, 1, 2}, []float64{0, 1, 2, 3}, []float64{0, 1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(g, nMat)
}

func TestRowAliasesStore(t *testing.T) {
	s := smallStore(t, 2)
	for _, tc := range []struct {
		axis    Axis
		p, q    int
		pos     int
		i, j, k int
	}{
		{AxisX, 2, 3, 1, 1, 2, 3},
		{AxisY, 1, 0, 2, 1, 2, 0},
		{AxisZ, 0, 1, 3, 0, 1, 3},
	} {
		r := s.Row(tc.axis, tc.p, tc.q)
		if r.Len() != s.grid.Divisions(tc.axis) {
			t.Fatalf("%s row has %d voxels", tc.axis, r.Len())
		}
		before := s.sum.Elements[s.offset(tc.i, tc.j, tc.k, 1)]
		r.Accumulate(tc.pos, 1, 0.5)
		if got := s.sum.Elements[s.offset(tc.i, tc.j, tc.k, 1)]; got != before+0.5 {
			t.Fatalf("%s row write not visible in store: %g", tc.axis, got)
		}
		if r.Sum(tc.pos, 1) != before+0.5 {
			t.Fatalf("%s row read mismatch", tc.axis)
		}
	}
}

func TestNormalize(t *testing.T) {
	s := smallStore(t, 2)
	if _, err := s.Normalize(0); !errors.Is(err, ErrZeroSamples) {
		t.Fatalf("want ErrZeroSamples, got %v", err)
	}
	if err := s.Conservation(1e-9); !errors.Is(err, ErrNotNormalized) {
		t.Fatalf("want ErrNotNormalized, got %v", err)
	}

	// Two samples in voxel (0,0,0): one fully material 0, one fully material 1.
	s.Accumulate(0, 0, 0, 0, 1)
	s.Accumulate(0, 0, 0, 1, 1)
	maxErr, err := s.Normalize(2)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Sqrt(0.25 / 2)
	if s.Fraction(0, 0, 0, 0) != 0.5 || !approxEqual(s.StdError(0, 0, 0, 1), want, 1e-15) {
		t.Fatalf("fraction %g err %g", s.Fraction(0, 0, 0, 0), s.StdError(0, 0, 0, 1))
	}
	if !approxEqual(maxErr, want, 1e-15) {
		t.Fatalf("max err %g, want %g", maxErr, want)
	}
	if a := s.FractionArray(1); a.Get(0, 0, 0) != 0.5 || a.Get(1, 2, 3) != 0 {
		t.Fatalf("FractionArray wrong: %v", a.Elements[:4])
	}
	// Only voxel (0,0,0) was sampled.
	if err := s.Conservation(1e-9); err == nil {
		t.Fatalf("empty voxels must fail conservation")
	}
}

func TestNormalizeClampsVariance(t *testing.T) {
	s := smallStore(t, 1)
	v := 0.1
	for n := 0; n < 3; n++ {
		s.Accumulate(1, 1, 1, 0, v)
	}
	if _, err := s.Normalize(3); err != nil {
		t.Fatal(err)
	}
	if e := s.StdError(1, 1, 1, 0); e < 0 || math.IsNaN(e) || e > 1e-9 {
		t.Fatalf("constant samples must give ~0 error, got %g", e)
	}
}

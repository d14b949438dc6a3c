package mmgrid

import (
	"math"
	"slices"
	"testing"
)

func collect(bounds []float64, start int, loc, length float64) []RaySegment {
	return slices.Collect(Segments(bounds, start, loc, length))
}

func TestSegmentsAcrossDivisions(t *testing.T) {
	b := []float64{0, 1, 3, 4}
	got := collect(b, 0, 0.5, 3)
	want := []RaySegment{
		{Division: 0, Length: 0.5, Ratio: 0.5, More: true},
		{Division: 1, Length: 2, Ratio: 1, More: true},
		{Division: 2, Length: 0.5, Ratio: 0.5},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	total := 0.0
	for _, s := range got {
		total += s.Length
	}
	if total != 3 {
		t.Fatalf("lengths sum to %g", total)
	}
}

func TestSegmentsZeroLength(t *testing.T) {
	got := collect([]float64{0, 1, 2}, 1, 1.5, 0)
	if len(got) != 1 || got[0].Length != 0 || got[0].More || got[0].Division != 1 {
		t.Fatalf("zero length: %+v", got)
	}
}

func TestSegmentsTruncatedAtLastDivision(t *testing.T) {
	got := collect([]float64{0, 1, 2}, 0, 0, 10)
	if len(got) != 2 || got[1].Length != 1 || got[1].More {
		t.Fatalf("truncation: %+v", got)
	}
}

func TestSegmentsLengthsSum(t *testing.T) {
	b := []float64{-2, -1.5, 0, 0.25, 1, 3}
	for _, tc := range []struct {
		start       int
		loc, length float64
	}{
		{0, -2, 1.75},
		{1, -1, 2},
		{2, 0.1, 2.9},
		{0, -1.9, 4.9},
		{3, 0.5, 2.5},
		{1, -1.2, 10},
		{4, 2, 7},
	} {
		sum := 0.0
		for s := range Segments(b, tc.start, tc.loc, tc.length) {
			if s.Ratio < 0 || s.Ratio > 1 {
				t.Fatalf("%+v: ratio %g", tc, s.Ratio)
			}
			sum += s.Length
		}
		if want := math.Min(tc.length, b[len(b)-1]-tc.loc); !approxEqual(sum, want, 1e-12) {
			t.Fatalf("%+v: lengths sum to %g, want %g", tc, sum, want)
		}
	}
}

func TestSegmentsRestartableAndStoppable(t *testing.T) {
	seq := Segments([]float64{0, 1, 2, 3}, 0, 0, 3)
	a, b := slices.Collect(seq), slices.Collect(seq)
	if !slices.Equal(a, b) || len(a) != 3 {
		t.Fatalf("not restartable: %+v vs %+v", a, b)
	}
	n := 0
	for range seq {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("early stop yielded %d", n)
	}
	if len(collect([]float64{0, 1}, 3, 0, 1)) != 0 {
		t.Fatalf("out of range start must yield nothing")
	}
}

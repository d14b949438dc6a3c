package mmgrid

import (
	"iter"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

func approxEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// slabs is a world box cut by planes x = cuts[n]. Region n spans
// [cuts[n], cuts[n+1]) along x and the full box along y and z.
type slabs struct {
	cuts   []float64
	mats   []MaterialKey
	lo, hi float64 // y and z extent
	blind  func(p r3.Vec) bool

	finds atomic.Int64
}

func newSlabs(lo, hi float64, cuts []float64, mats ...MaterialKey) *slabs {
	return &slabs{cuts: cuts, mats: mats, lo: lo, hi: hi}
}

func (s *slabs) Regions() []Region {
	out := make([]Region, len(s.mats))
	for i := range out {
		out[i] = Region(i)
	}
	return out
}

func (s *slabs) RegionMaterial(r Region) (MaterialKey, bool) {
	if r < 0 || int(r) >= len(s.mats) {
		return MaterialKey{}, false
	}
	return s.mats[r], true
}

func (s *slabs) regionAt(p r3.Vec) (Region, bool) {
	if s.blind != nil && s.blind(p) {
		return NoRegion, false
	}
	if p.Y < s.lo || p.Y > s.hi || p.Z < s.lo || p.Z > s.hi {
		return NoRegion, false
	}
	for n := 0; n+1 < len(s.cuts); n++ {
		if p.X >= s.cuts[n] && p.X < s.cuts[n+1] {
			return Region(n), true
		}
	}
	return NoRegion, false
}

func (s *slabs) FindRegion(p, dir r3.Vec) (Region, bool) {
	s.finds.Add(1)
	return s.regionAt(r3.Add(p, r3.Scale(1e-9, dir)))
}

func (s *slabs) InRegion(r Region, p, dir r3.Vec) bool {
	got, ok := s.regionAt(r3.Add(p, r3.Scale(1e-9, dir)))
	return ok && got == r
}

func (s *slabs) RayCrossings(r Region, p, dir r3.Vec) iter.Seq[Crossing] {
	return func(yield func(Crossing) bool) {
		switch {
		case dir.X > 0:
			prev := p.X
			for n := int(r); n+1 < len(s.cuts); n++ {
				next := Region(n + 1)
				if n+2 >= len(s.cuts) {
					next = NoRegion
				}
				if !yield(Crossing{Next: next, Distance: s.cuts[n+1] - prev}) {
					return
				}
				prev = s.cuts[n+1]
			}
		case dir.Y > 0:
			yield(Crossing{Next: NoRegion, Distance: s.hi - p.Y})
		default:
			yield(Crossing{Next: NoRegion, Distance: s.hi - p.Z})
		}
	}
}

// plain hides InRegion so the sampler always asks FindRegion.
type plain struct{ Geometry }

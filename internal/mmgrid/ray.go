package mmgrid

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Ray starts on the near face of the mesh and travels along +Axis.
type Ray struct {
	Origin r3.Vec
	Axis   Axis
}

func (r Ray) Direction() r3.Vec { return r.Axis.Unit() }

// RegionHint remembers the start region of the previous ray. Adjacent rays
// usually start in the same region, so it is tried first. A hint belongs to
// one worker and only changes which oracle call answers, never the answer.
type RegionHint struct {
	region Region
	valid  bool
}

func (h *RegionHint) Reset() { *h = RegionHint{} }

// rayBuffer collects one ray's occupancy per division and material, so the
// store sees a single score per (voxel, material) for each ray.
type rayBuffer struct {
	score   []float64 // [division*nMat + m]
	touched []int
	nMat    int
}

func newRayBuffer(nDiv, nMat int) *rayBuffer {
	return &rayBuffer{score: make([]float64, nDiv*nMat), nMat: nMat}
}

func (b *rayBuffer) add(div, m int, v float64) {
	if v == 0 {
		return
	}
	o := div*b.nMat + m
	if b.score[o] == 0 {
		b.touched = append(b.touched, o)
	}
	b.score[o] += v
}

func (b *rayBuffer) flush(row Row) {
	for _, o := range b.touched {
		row.Accumulate(o/b.nMat, o%b.nMat, b.score[o])
		b.score[o] = 0
	}
	b.touched = b.touched[:0]
}

func (b *rayBuffer) reset() {
	for _, o := range b.touched {
		b.score[o] = 0
	}
	b.touched = b.touched[:0]
}

// sampler fires single rays. It is shared by all workers and holds no
// mutable state.
type sampler struct {
	grid   *Grid
	geom   Geometry
	reg    *Registry
	inside RegionContainer // nil when the geometry has no point-in-region test
}

func newSampler(g *Grid, geom Geometry, reg *Registry) *sampler {
	s := &sampler{grid: g, geom: geom, reg: reg}
	if c, ok := geom.(RegionContainer); ok {
		s.inside = c
	} else {
		DebugLogOnce("Geometry %T has no region test, region hints disabled", geom)
	}
	return s
}

func (s *sampler) locate(p, dir r3.Vec, hint *RegionHint) (Region, bool) {
	if hint != nil && hint.valid && s.inside != nil && s.inside.InRegion(hint.region, p, dir) {
		return hint.region, true
	}
	r, ok := s.geom.FindRegion(p, dir)
	if ok && hint != nil {
		hint.region, hint.valid = r, true
	}
	return r, ok
}

// fireRay marches ray through the geometry and records its per-division
// occupancy in buf. buf is left empty unless the outcome is usable.
func (s *sampler) fireRay(ray Ray, buf *rayBuffer, hint *RegionHint) rayOutcome {
	dir := ray.Direction()
	region, ok := s.locate(ray.Origin, dir, hint)
	if !ok {
		return rayDegenerate
	}

	bounds := s.grid.Bounds(ray.Axis)
	first := bounds[0]
	total := bounds[len(bounds)-1] - first

	div, travelled := 0, 0.0
	outcome := rayExited
	for c := range s.geom.RayCrossings(region, ray.Origin, dir) {
		key, ok := s.geom.RegionMaterial(region)
		if !ok {
			buf.reset()
			return rayUnknownMaterial
		}
		m, ok := s.reg.Lookup(key)
		if !ok {
			buf.reset()
			return rayUnknownMaterial
		}

		dist := c.Distance
		if dist < 0 {
			dist = 0
		}
		rest := total - travelled
		done := dist >= rest
		if done {
			dist = rest
		}
		for seg := range Segments(bounds, div, first+travelled, dist) {
			buf.add(seg.Division, m, seg.Ratio)
			div = seg.Division
		}
		if done {
			travelled, outcome = total, rayCompleted
			break
		}
		travelled += dist
		if c.Next == NoRegion {
			break
		}
		region = c.Next
	}

	// The geometry ended before the far face: the rest of the row is void.
	if rest := total - travelled; rest > epsDist {
		for seg := range Segments(bounds, div, first+travelled, rest) {
			buf.add(seg.Division, s.reg.Void(), seg.Ratio)
		}
	}
	return outcome
}

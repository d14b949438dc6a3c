package csg

import (
	"fmt"
	"iter"
	"math"
	"sort"
	"sync"

	"github.com/lukaszgryglicki/mmgrid/internal/mmgrid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Complement is the region of the world box not covered by any body.
const Complement mmgrid.Region = 0

// Compile time checks
var (
	_ mmgrid.Geometry        = (*Model)(nil)
	_ mmgrid.RegionContainer = (*Model)(nil)
)

type solid struct {
	name     string
	body     Body
	material mmgrid.MaterialKey
}

// Model is a list of bodies inside a world box. Body i is region i+1 and
// later bodies win where bodies overlap. Outside the world box nothing is
// classified. A Model is read-only once sampling starts: Add must not be
// called after the first query.
type Model struct {
	world  *Box
	fill   mmgrid.MaterialKey // material of the complement
	solids []solid
	nudge  float64

	once  sync.Once
	index *bvhNode // nil for small models
}

// NewModel creates an empty model. fill is the material of space not
// covered by any body, normally mmgrid.VoidKey.
func NewModel(world *Box, fill mmgrid.MaterialKey) *Model {
	diag := r3.Norm(r3.Sub(world.Max, world.Min))
	return &Model{world: world, fill: fill, nudge: 1e-9 * math.Max(1, diag)}
}

// Add appends a body and returns its region.
func (m *Model) Add(name string, b Body, mat mmgrid.MaterialKey) mmgrid.Region {
	m.solids = append(m.solids, solid{name: name, body: b, material: mat})
	return mmgrid.Region(len(m.solids))
}

// Name returns the name of region r.
func (m *Model) Name(r mmgrid.Region) string {
	if r == Complement {
		return "complement"
	}
	if r < 1 || int(r) > len(m.solids) {
		return fmt.Sprintf("region%d", r)
	}
	return m.solids[r-1].name
}

// Regions lists the complement and every body. A model without bodies is
// empty.
func (m *Model) Regions() []mmgrid.Region {
	if len(m.solids) == 0 {
		return nil
	}
	out := make([]mmgrid.Region, 0, len(m.solids)+1)
	for r := 0; r <= len(m.solids); r++ {
		out = append(out, mmgrid.Region(r))
	}
	return out
}

func (m *Model) RegionMaterial(r mmgrid.Region) (mmgrid.MaterialKey, bool) {
	if r == Complement {
		return m.fill, true
	}
	if r < 1 || int(r) > len(m.solids) {
		return mmgrid.MaterialKey{}, false
	}
	return m.solids[r-1].material, true
}

// bvh builds the body index on first use.
func (m *Model) bvh() *bvhNode {
	m.once.Do(func() {
		if len(m.solids) < bvhFromBodies {
			return
		}
		leaves := make([]bvhLeaf, len(m.solids))
		for i, s := range m.solids {
			lo, hi := s.body.Bounds()
			leaves[i] = bvhLeaf{box: Box{Min: lo, Max: hi}, id: i}
		}
		m.index = buildBVH(leaves)
		mmgrid.DebugLog("Built BVH over %d bodies", len(leaves))
	})
	return m.index
}

func (m *Model) regionAt(p r3.Vec) (mmgrid.Region, bool) {
	if !m.world.Contains(p) {
		return mmgrid.NoRegion, false
	}
	if idx := m.bvh(); idx != nil {
		best := -1
		idx.visitPoint(p, func(id int) {
			if id > best && m.solids[id].body.Contains(p) {
				best = id
			}
		})
		return mmgrid.Region(best + 1), true
	}
	for i := len(m.solids) - 1; i >= 0; i-- {
		if m.solids[i].body.Contains(p) {
			return mmgrid.Region(i + 1), true
		}
	}
	return Complement, true
}

func (m *Model) nudged(p, dir r3.Vec) r3.Vec { return r3.Add(p, r3.Scale(m.nudge, dir)) }

// FindRegion classifies p after a tiny step along dir, so a point on a
// surface belongs to the region the ray is entering.
func (m *Model) FindRegion(p, dir r3.Vec) (mmgrid.Region, bool) {
	return m.regionAt(m.nudged(p, dir))
}

// InRegion only checks region r and the bodies that take priority over it.
func (m *Model) InRegion(r mmgrid.Region, p, dir r3.Vec) bool {
	q := m.nudged(p, dir)
	if !m.world.Contains(q) || r < 0 || int(r) > len(m.solids) {
		return false
	}
	if r != Complement && !m.solids[r-1].body.Contains(q) {
		return false
	}
	if idx := m.bvh(); idx != nil {
		covered := false
		idx.visitPoint(q, func(id int) {
			if !covered && id >= int(r) && m.solids[id].body.Contains(q) {
				covered = true
			}
		})
		return !covered
	}
	for i := int(r); i < len(m.solids); i++ {
		if m.solids[i].body.Contains(q) {
			return false
		}
	}
	return true
}

// RayCrossings classifies the midpoints between consecutive surface hits
// and yields a crossing whenever the region changes. The last crossing is
// the exit from the world box.
func (m *Model) RayCrossings(r mmgrid.Region, p, dir r3.Vec) iter.Seq[mmgrid.Crossing] {
	return func(yield func(mmgrid.Crossing) bool) {
		ok, _, exit := m.world.slab(p, dir)
		if !ok || exit <= 0 {
			return
		}
		ts := m.candidates(p, dir, exit)
		cur, prev := r, 0.0
		for n, t := range ts {
			next := mmgrid.NoRegion
			if n+1 < len(ts) {
				mid := 0.5 * (t + ts[n+1])
				if reg, ok := m.regionAt(r3.Add(p, r3.Scale(mid, dir))); ok {
					next = reg
				}
			}
			if next == cur {
				continue
			}
			if !yield(mmgrid.Crossing{Next: next, Distance: t - prev}) || next == mmgrid.NoRegion {
				return
			}
			prev, cur = t, next
		}
	}
}

// candidates returns the sorted, distinct surface hits in (0, exit], with
// exit always last.
func (m *Model) candidates(p, dir r3.Vec, exit float64) []float64 {
	const eps = 1e-12
	var raw []float64
	if idx := m.bvh(); idx != nil {
		idx.visitRay(p, dir, exit, func(id int) {
			raw = m.solids[id].body.Intersect(p, dir, raw)
		})
	} else {
		for _, s := range m.solids {
			raw = s.body.Intersect(p, dir, raw)
		}
	}
	ts := make([]float64, 0, len(raw)+1)
	for _, t := range raw {
		if t > eps && t < exit && isFinite(t) {
			ts = append(ts, t)
		}
	}
	sort.Float64s(ts)
	out := ts[:0]
	for _, t := range ts {
		if len(out) > 0 && t-out[len(out)-1] <= eps {
			continue
		}
		out = append(out, t)
	}
	if len(out) > 0 && exit-out[len(out)-1] <= eps {
		out = out[:len(out)-1]
	}
	return append(out, exit)
}

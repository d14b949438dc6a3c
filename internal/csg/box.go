package csg

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned rectangular body.
type Box struct {
	Min, Max r3.Vec
}

func NewBox(min, max r3.Vec) (*Box, error) {
	if !finiteVec(min) || !finiteVec(max) {
		return nil, fmt.Errorf("box corners must be finite, got %+v %+v", min, max)
	}
	if !(min.X < max.X && min.Y < max.Y && min.Z < max.Z) {
		return nil, fmt.Errorf("box min must be below max on every axis, got %+v %+v", min, max)
	}
	return &Box{Min: min, Max: max}, nil
}

func (b *Box) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

func (b *Box) Bounds() (r3.Vec, r3.Vec) { return b.Min, b.Max }

func (b *Box) Intersect(p, dir r3.Vec, dst []float64) []float64 {
	ok, tmin, tmax := b.slab(p, dir)
	if !ok {
		return dst
	}
	return append(dst, tmin, tmax)
}

// slab returns the parameter interval of the line p + t*dir inside the box.
// Both ends may be negative.
func (b *Box) slab(p, dir r3.Vec) (bool, float64, float64) {
	tmin, tmax := -1e300, 1e300
	o, d := comps(p), comps(dir)
	lo, hi := comps(b.Min), comps(b.Max)
	for a := 0; a < 3; a++ {
		if d[a] == 0 {
			if o[a] < lo[a] || o[a] > hi[a] {
				return false, 0, 0
			}
			continue
		}
		inv := 1 / d[a]
		t1 := (lo[a] - o[a]) * inv
		t2 := (hi[a] - o[a]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}
	if tmin > tmax {
		return false, 0, 0
	}
	return true, tmin, tmax
}

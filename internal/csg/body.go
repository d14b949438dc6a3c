// Package csg is a small constructive solid geometry used as the geometry
// query service of the macromaterial sampler.
package csg

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a closed solid.
type Body interface {
	// Contains reports whether p is inside or on the surface.
	Contains(p r3.Vec) bool

	// Intersect appends to dst the ray parameters t at which p + t*dir may
	// cross the surface. Extra values are harmless; missing ones are not.
	Intersect(p, dir r3.Vec, dst []float64) []float64

	// Bounds is an axis-aligned box enclosing the body.
	Bounds() (min, max r3.Vec)
}

func comps(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func isFinite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func finiteVec(v r3.Vec) bool { return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z) }

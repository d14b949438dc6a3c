package mmgrid

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r3"
)

// Region is a geometry's identifier for a homogeneous solid subvolume.
type Region int

// NoRegion marks the outside of the modeled domain.
const NoRegion Region = -1

// Crossing is one boundary transition along a ray: after Distance from the
// previous crossing (or the ray origin) the ray enters Next.
type Crossing struct {
	Next     Region
	Distance float64
}

// Geometry is the solid geometry query service the sampler consults.
// Implementations must be safe for concurrent read-only use.
type Geometry interface {
	// Regions lists every region of the full geometry.
	Regions() []Region

	// FindRegion classifies p. dir breaks ties for points on a boundary.
	FindRegion(p, dir r3.Vec) (Region, bool)

	// RayCrossings yields the ordered crossings of the ray starting at p
	// inside region r. The last crossing has Next == NoRegion.
	RayCrossings(r Region, p, dir r3.Vec) iter.Seq[Crossing]

	RegionMaterial(r Region) (MaterialKey, bool)
}

// RegionContainer is implemented by geometries that can test a point
// against one region more cheaply than a full FindRegion.
type RegionContainer interface {
	InRegion(r Region, p, dir r3.Vec) bool
}

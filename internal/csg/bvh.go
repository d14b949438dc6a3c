package csg

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	bvhMaxLeafSize = 2
	bvhFromBodies  = 8 // models with fewer bodies just iterate them all
)

type bvhLeaf struct {
	box Box
	id  int // index into Model.solids
}

// bvhNode is a bounding volume hierarchy over body bounds.
type bvhNode struct {
	box         Box
	left, right *bvhNode
	leaves      []bvhLeaf // non-nil => leaf
}

func buildBVH(leaves []bvhLeaf) *bvhNode {
	n := len(leaves)
	if n == 0 {
		return nil
	}
	box := leaves[0].box
	for i := 1; i < n; i++ {
		box = union(box, leaves[i].box)
	}
	if n <= bvhMaxLeafSize {
		return &bvhNode{box: box, leaves: leaves}
	}

	// Split on the axis with the widest centroid spread.
	cmin, cmax := centroid(leaves[0].box), centroid(leaves[0].box)
	for i := 1; i < n; i++ {
		c := centroid(leaves[i].box)
		for a := 0; a < 3; a++ {
			cmin[a] = math.Min(cmin[a], c[a])
			cmax[a] = math.Max(cmax[a], c[a])
		}
	}
	axis := 0
	for a := 1; a < 3; a++ {
		if cmax[a]-cmin[a] > cmax[axis]-cmin[axis] {
			axis = a
		}
	}
	// If all centroids coincide (degenerate), fall back to longest box extent axis.
	if cmax[axis]-cmin[axis] <= 1e-18 {
		lo, hi := comps(box.Min), comps(box.Max)
		for a := 1; a < 3; a++ {
			if hi[a]-lo[a] > hi[axis]-lo[axis] {
				axis = a
			}
		}
	}

	sort.SliceStable(leaves, func(i, j int) bool {
		return centroid(leaves[i].box)[axis] < centroid(leaves[j].box)[axis]
	})
	mid := n / 2
	return &bvhNode{box: box, left: buildBVH(leaves[:mid]), right: buildBVH(leaves[mid:])}
}

func union(a, b Box) Box {
	return Box{
		Min: r3.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

func centroid(b Box) [3]float64 { return comps(r3.Scale(0.5, r3.Add(b.Min, b.Max))) }

// visitRay calls fn for every leaf whose bounds the segment p + t*dir,
// t in [0, tMax], touches.
func (root *bvhNode) visitRay(p, dir r3.Vec, tMax float64, fn func(id int)) {
	if root == nil {
		return
	}
	stack := []*bvhNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ok, t0, t1 := n.box.slab(p, dir); !ok || t1 < 0 || t0 > tMax {
			continue
		}
		if n.leaves != nil {
			for _, l := range n.leaves {
				fn(l.id)
			}
			continue
		}
		for _, c := range [2]*bvhNode{n.left, n.right} {
			if c != nil {
				stack = append(stack, c)
			}
		}
	}
}

// visitPoint calls fn for every leaf whose bounds contain p.
func (root *bvhNode) visitPoint(p r3.Vec, fn func(id int)) {
	if root == nil {
		return
	}
	stack := []*bvhNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !n.box.Contains(p) {
			continue
		}
		if n.leaves != nil {
			for _, l := range n.leaves {
				fn(l.id)
			}
			continue
		}
		for _, c := range [2]*bvhNode{n.left, n.right} {
			if c != nil {
				stack = append(stack, c)
			}
		}
	}
}

package csg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type Sphere struct {
	Center r3.Vec
	Radius float64
}

func NewSphere(center r3.Vec, radius float64) (*Sphere, error) {
	if !finiteVec(center) {
		return nil, fmt.Errorf("sphere center must be finite, got %+v", center)
	}
	if !(radius > 0) || !isFinite(radius) {
		return nil, fmt.Errorf("sphere radius must be > 0, got %g", radius)
	}
	return &Sphere{Center: center, Radius: radius}, nil
}

func (s *Sphere) Contains(p r3.Vec) bool {
	d := r3.Sub(p, s.Center)
	return r3.Dot(d, d) <= s.Radius*s.Radius
}

func (s *Sphere) Bounds() (r3.Vec, r3.Vec) {
	r := r3.Vec{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return r3.Sub(s.Center, r), r3.Add(s.Center, r)
}

func (s *Sphere) Intersect(p, dir r3.Vec, dst []float64) []float64 {
	oc := r3.Sub(p, s.Center)
	a := r3.Dot(dir, dir)
	if a == 0 {
		return dst
	}
	b := r3.Dot(oc, dir)
	c := r3.Dot(oc, oc) - s.Radius*s.Radius
	disc := b*b - a*c
	if disc < 0 {
		return dst
	}
	sq := math.Sqrt(disc)
	return append(dst, (-b-sq)/a, (-b+sq)/a)
}

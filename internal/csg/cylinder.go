package csg

import (
	"fmt"
	"math"

	"github.com/lukaszgryglicki/mmgrid/internal/mmgrid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cylinder is a finite right circular cylinder parallel to a mesh axis.
// Base is the centre of the lower cap; the body extends Height along +Axis.
type Cylinder struct {
	Base   r3.Vec
	Axis   mmgrid.Axis
	Radius float64
	Height float64
}

func NewCylinder(base r3.Vec, axis mmgrid.Axis, radius, height float64) (*Cylinder, error) {
	if !finiteVec(base) {
		return nil, fmt.Errorf("cylinder base must be finite, got %+v", base)
	}
	if axis < mmgrid.AxisX || axis > mmgrid.AxisZ {
		return nil, fmt.Errorf("invalid cylinder axis %d", axis)
	}
	if !(radius > 0) || !isFinite(radius) || !(height > 0) || !isFinite(height) {
		return nil, fmt.Errorf("cylinder radius and height must be > 0, got %g, %g", radius, height)
	}
	return &Cylinder{Base: base, Axis: axis, Radius: radius, Height: height}, nil
}

// split returns the axial coordinate and the two radial ones of v.
func (c *Cylinder) split(v r3.Vec) (h, u, w float64) {
	x := comps(v)
	switch c.Axis {
	case mmgrid.AxisX:
		return x[0], x[1], x[2]
	case mmgrid.AxisY:
		return x[1], x[0], x[2]
	}
	return x[2], x[0], x[1]
}

func (c *Cylinder) Contains(p r3.Vec) bool {
	h, u, w := c.split(r3.Sub(p, c.Base))
	return h >= 0 && h <= c.Height && u*u+w*w <= c.Radius*c.Radius
}

func (c *Cylinder) Bounds() (r3.Vec, r3.Vec) {
	lo := comps(c.Base)
	hi := lo
	for a := 0; a < 3; a++ {
		if mmgrid.Axis(a) == c.Axis {
			hi[a] += c.Height
			continue
		}
		lo[a] -= c.Radius
		hi[a] += c.Radius
	}
	return r3.Vec{X: lo[0], Y: lo[1], Z: lo[2]}, r3.Vec{X: hi[0], Y: hi[1], Z: hi[2]}
}

func (c *Cylinder) Intersect(p, dir r3.Vec, dst []float64) []float64 {
	oh, ou, ow := c.split(r3.Sub(p, c.Base))
	dh, du, dw := c.split(dir)
	// caps
	if dh != 0 {
		dst = append(dst, -oh/dh, (c.Height-oh)/dh)
	}
	// lateral surface
	a := du*du + dw*dw
	if a == 0 {
		return dst
	}
	b := ou*du + ow*dw
	cc := ou*ou + ow*ow - c.Radius*c.Radius
	disc := b*b - a*cc
	if disc < 0 {
		return dst
	}
	sq := math.Sqrt(disc)
	return append(dst, (-b-sq)/a, (-b+sq)/a)
}

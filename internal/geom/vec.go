// Package geom holds the small amount of planar math the simulation needs:
// positions, distances, segment and circle intersection for raycasts.
package geom

import "math"

// Vec is a point or direction on the ground plane.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec) Add(o Vec) Vec        { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec        { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(f float64) Vec  { return Vec{v.X * f, v.Y * f} }
func (v Vec) Dot(o Vec) float64    { return v.X*o.X + v.Y*o.Y }
func (v Vec) Cross(o Vec) float64  { return v.X*o.Y - v.Y*o.X }
func (v Vec) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64   { return v.Sub(o).Len() }
func (v Vec) DistSq(o Vec) float64 { d := v.Sub(o); return d.Dot(d) }

// Norm returns the unit vector in v's direction, or the zero vector.
func (v Vec) Norm() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// MoveTowards steps from v toward target by at most step and reports whether
// the target was reached.
func (v Vec) MoveTowards(target Vec, step float64) (Vec, bool) {
	d := target.Sub(v)
	l := d.Len()
	if l <= step || l == 0 {
		return target, true
	}
	return v.Add(d.Scale(step / l)), false
}

// Segment is a wall edge.
type Segment struct {
	A Vec `yaml:"a"`
	B Vec `yaml:"b"`
}

// DistTo returns the distance from p to the closest point of s.
func (s Segment) DistTo(p Vec) float64 {
	e := s.B.Sub(s.A)
	l := e.Dot(e)
	if l == 0 {
		return p.Dist(s.A)
	}
	t := math.Max(0, math.Min(1, p.Sub(s.A).Dot(e)/l))
	return p.Dist(s.A.Add(e.Scale(t)))
}

// RaySegment returns the distance along a unit ray at which it crosses s.
func RaySegment(origin, dir Vec, s Segment) (float64, bool) {
	e := s.B.Sub(s.A)
	denom := dir.Cross(e)
	if denom == 0 {
		return 0, false // parallel
	}
	w := s.A.Sub(origin)
	t := w.Cross(e) / denom
	u := w.Cross(dir) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// RayCircle returns the entry distance along a unit ray into a circle.
// A ray starting inside the circle hits it at distance 0.
func RayCircle(origin, dir, center Vec, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	c := oc.Dot(oc) - radius*radius
	if c <= 0 {
		return 0, true
	}
	b := oc.Dot(dir)
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		return 0, false
	}
	return t, true
}

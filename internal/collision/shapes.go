package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-12

// Shape is a static collidable that can be intersected by a ray.
// A ray starting inside a shape hits its far surface.
type Shape interface {
	Intersect(origin, direction mgl64.Vec3) (float64, bool)
}

// Sphere is a ball.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// Intersect returns the distance along dir to the sphere surface.
func (s Sphere) Intersect(origin, dir mgl64.Vec3) (float64, bool) {
	oc := origin.Sub(s.Center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	return nearestNonNegative(-b-sq, -b+sq)
}

// Box is an axis-aligned box.
type Box struct {
	Min, Max mgl64.Vec3
}

// Intersect returns the distance along dir to the box using the slab method.
func (b Box) Intersect(origin, dir mgl64.Vec3) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < epsilon {
			if origin[i] < b.Min[i] || origin[i] > b.Max[i] {
				return 0, false
			}
			continue
		}
		t1 := (b.Min[i] - origin[i]) / dir[i]
		t2 := (b.Max[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return nearestNonNegative(tmin, tmax)
}

// Cylinder is an upright cylinder standing on Base.
type Cylinder struct {
	Base   mgl64.Vec3
	Radius float64
	Height float64
}

// Intersect returns the distance along dir to the side wall or either cap.
func (c Cylinder) Intersect(origin, dir mgl64.Vec3) (float64, bool) {
	var hits []float64
	top := c.Base.Y() + c.Height
	inSlab := func(t float64) bool {
		y := origin.Y() + dir.Y()*t
		return y >= c.Base.Y() && y <= top
	}
	inDisk := func(t float64) bool {
		x := origin.X() + dir.X()*t - c.Base.X()
		z := origin.Z() + dir.Z()*t - c.Base.Z()
		return x*x+z*z <= c.Radius*c.Radius
	}

	ox, oz := origin.X()-c.Base.X(), origin.Z()-c.Base.Z()
	a := dir.X()*dir.X() + dir.Z()*dir.Z()
	if a > epsilon {
		b := ox*dir.X() + oz*dir.Z()
		cc := ox*ox + oz*oz - c.Radius*c.Radius
		if disc := b*b - a*cc; disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range []float64{(-b - sq) / a, (-b + sq) / a} {
				if inSlab(t) {
					hits = append(hits, t)
				}
			}
		}
	}
	if math.Abs(dir.Y()) > epsilon {
		for _, y := range []float64{c.Base.Y(), top} {
			t := (y - origin.Y()) / dir.Y()
			if inDisk(t) {
				hits = append(hits, t)
			}
		}
	}

	best, found := math.Inf(1), false
	for _, t := range hits {
		if t >= 0 && t < best {
			best, found = t, true
		}
	}
	return best, found
}

// Group is a shape made of descendant shapes.
type Group struct {
	Children []Shape
}

// Intersect returns the nearest hit among the children.
func (g Group) Intersect(origin, dir mgl64.Vec3) (float64, bool) {
	return nearest(g.Children, origin, dir)
}

// World is a static obstacle set.
type World struct {
	Shapes []Shape
}

// NewWorld creates a World from shapes.
func NewWorld(shapes ...Shape) *World {
	return &World{Shapes: shapes}
}

// Nearest implements Query. An empty world never hits.
func (w *World) Nearest(origin, direction mgl64.Vec3) (float64, bool) {
	if w == nil {
		return 0, false
	}
	return nearest(w.Shapes, origin, direction)
}

func nearest(shapes []Shape, origin, dir mgl64.Vec3) (float64, bool) {
	best, found := math.Inf(1), false
	for _, s := range shapes {
		if t, ok := s.Intersect(origin, dir); ok && t < best {
			best, found = t, true
		}
	}
	return best, found
}

func nearestNonNegative(t0, t1 float64) (float64, bool) {
	switch {
	case t0 >= 0:
		return t0, true
	case t1 >= 0:
		return t1, true
	default:
		return 0, false
	}
}

// Package collision implements the six-axis proximity probe and a static
// obstacle world it can query.
package collision

import "github.com/go-gl/mathgl/mgl64"

// Query finds the nearest obstacle intersection along a ray.
// direction is unit length; the result is the distance from origin.
type Query interface {
	Nearest(origin, direction mgl64.Vec3) (float64, bool)
}

// ProbeDirections are the world axes the probe casts along, in cast order.
var ProbeDirections = [6]mgl64.Vec3{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// Hit describes the outcome of a probe.
type Hit struct {
	Collided  bool
	Direction mgl64.Vec3
	Distance  float64
}

// Probe reports a collision when any axis ray hits an obstacle closer than the threshold.
//
// The response applied by the caller is a full inelastic stop: there is no
// push-out, restitution or glancing/head-on distinction.
type Probe struct {
	query     Query
	threshold float64
}

// NewProbe creates a Probe. A nil query never collides.
func NewProbe(q Query, threshold float64) *Probe {
	return &Probe{query: q, threshold: threshold}
}

// Check casts the six rays from position and returns the first hit within the threshold.
func (p *Probe) Check(position mgl64.Vec3) Hit {
	if p.query == nil {
		return Hit{}
	}
	for _, dir := range ProbeDirections {
		d, ok := p.query.Nearest(position, dir)
		if ok && d < p.threshold {
			return Hit{Collided: true, Direction: dir, Distance: d}
		}
	}
	return Hit{}
}

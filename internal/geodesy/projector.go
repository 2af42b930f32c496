// Package geodesy places the local simulation frame on the globe.
//
// The local frame is east-up-south: +X is east, +Y is up and -Z is north.
// Positions are offset from the origin in Web Mercator (EPSG:3857), scaled by
// the Mercator stretch at the origin latitude, and converted back to WGS 84.
package geodesy

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// maxLatitude is the Web Mercator latitude limit.
const maxLatitude = 85.05112878

// ErrInvalidOrigin is returned when the origin cannot be projected.
var ErrInvalidOrigin = errors.New("geodesy: invalid origin")

// Origin is the geodetic location of the local frame's (0, 0, 0).
type Origin struct {
	Longitude float64
	Latitude  float64
	Elevation float64
}

// Geodetic is a WGS 84 position.
type Geodetic struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}

// Projector converts local positions to geodetic and Mercator coordinates.
type Projector struct {
	origin  Origin
	x0, y0  float64
	stretch float64
	inverse func(x, y, z float64) (float64, float64, float64)
}

// NewProjector creates a Projector anchored at origin.
func NewProjector(origin Origin) (*Projector, error) {
	if math.IsNaN(origin.Latitude) || math.IsNaN(origin.Longitude) ||
		math.Abs(origin.Latitude) >= maxLatitude || math.Abs(origin.Longitude) > 180 {
		return nil, ErrInvalidOrigin
	}
	epsg := wgs84.EPSG()
	x0, y0, _ := epsg.Transform(4326, 3857)(origin.Longitude, origin.Latitude, 0)
	return &Projector{
		origin:  origin,
		x0:      x0,
		y0:      y0,
		stretch: 1 / math.Cos(mgl64.DegToRad(origin.Latitude)),
		inverse: epsg.Transform(3857, 4326),
	}, nil
}

// Origin returns the anchor of the local frame.
func (p *Projector) Origin() Origin { return p.origin }

// Mercator returns the EPSG:3857 coordinates of a local position.
func (p *Projector) Mercator(position mgl64.Vec3) (x, y float64) {
	east, north := position.X(), -position.Z()
	return p.x0 + east*p.stretch, p.y0 + north*p.stretch
}

// Project returns the WGS 84 position of a local position.
func (p *Projector) Project(position mgl64.Vec3) Geodetic {
	x, y := p.Mercator(position)
	lon, lat, _ := p.inverse(x, y, 0)
	return Geodetic{
		Longitude: lon,
		Latitude:  lat,
		Altitude:  p.origin.Elevation + position.Y(),
	}
}

// Point returns the local position as an EPSG:3857 point carrying altitude as Z.
func (p *Projector) Point(position mgl64.Vec3) (geom.Point, error) {
	x, y := p.Mercator(position)
	pt, err := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: x, Y: y},
		Z:    p.origin.Elevation + position.Y(),
		Type: geom.DimXYZ,
	})
	if err != nil {
		return geom.Point{}, fmt.Errorf("geodesy: build point: %w", err)
	}
	return pt, nil
}

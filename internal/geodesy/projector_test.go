package geodesy

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metersPerDegreeLat = 111_320.0

func TestNewProjectorRejectsPolarOrigin(t *testing.T) {
	_, err := NewProjector(Origin{Latitude: 89})
	require.ErrorIs(t, err, ErrInvalidOrigin)

	_, err = NewProjector(Origin{Longitude: 200})
	require.ErrorIs(t, err, ErrInvalidOrigin)
}

func TestProjectOrigin(t *testing.T) {
	o := Origin{Longitude: -122.3321, Latitude: 47.6062, Elevation: 120}
	p, err := NewProjector(o)
	require.NoError(t, err)

	g := p.Project(mgl64.Vec3{0, 0, 0})
	assert.InDelta(t, o.Longitude, g.Longitude, 1e-9)
	assert.InDelta(t, o.Latitude, g.Latitude, 1e-9)
	assert.Equal(t, 120.0, g.Altitude)
}

func TestProjectDirections(t *testing.T) {
	o := Origin{Longitude: 10, Latitude: 45}
	p, err := NewProjector(o)
	require.NoError(t, err)

	north := p.Project(mgl64.Vec3{0, 0, -1000})
	assert.InDelta(t, o.Longitude, north.Longitude, 1e-9)
	assert.InDelta(t, 1000/metersPerDegreeLat, north.Latitude-o.Latitude, 1e-4)

	east := p.Project(mgl64.Vec3{1000, 0, 0})
	assert.InDelta(t, o.Latitude, east.Latitude, 1e-9)
	want := 1000 / (metersPerDegreeLat * math.Cos(mgl64.DegToRad(o.Latitude)))
	assert.InDelta(t, want, east.Longitude-o.Longitude, 1e-4)

	up := p.Project(mgl64.Vec3{0, 250, 0})
	assert.Equal(t, 250.0, up.Altitude)
}

func TestPointCarriesAltitude(t *testing.T) {
	p, err := NewProjector(Origin{Elevation: 10})
	require.NoError(t, err)

	pt, err := p.Point(mgl64.Vec3{5, 20, -5})
	require.NoError(t, err)
	c, ok := pt.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 5, c.X, 1e-9)
	assert.InDelta(t, 5, c.Y, 1e-9)
	assert.Equal(t, 30.0, c.Z)
}

package collision

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuery reports a fixed distance along one direction only.
type fakeQuery struct {
	dir  mgl64.Vec3
	dist float64
}

func (f fakeQuery) Nearest(_, direction mgl64.Vec3) (float64, bool) {
	if direction == f.dir {
		return f.dist, true
	}
	return 0, false
}

func TestProbeReportsNearHit(t *testing.T) {
	p := NewProbe(fakeQuery{dir: mgl64.Vec3{0, 0, -1}, dist: 0.3}, 0.5)
	hit := p.Check(mgl64.Vec3{0, 10, 0})

	require.True(t, hit.Collided)
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, hit.Direction)
	assert.Equal(t, 0.3, hit.Distance)
}

func TestProbeIgnoresFarHit(t *testing.T) {
	p := NewProbe(fakeQuery{dir: mgl64.Vec3{1, 0, 0}, dist: 0.5}, 0.5)
	assert.False(t, p.Check(mgl64.Vec3{}).Collided, "threshold is exclusive")
}

func TestProbeWithoutObstacles(t *testing.T) {
	assert.False(t, NewProbe(nil, 5).Check(mgl64.Vec3{}).Collided)
	assert.False(t, NewProbe(NewWorld(), 5).Check(mgl64.Vec3{}).Collided)

	var w *World
	_, ok := w.Nearest(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	assert.False(t, ok)
}

func TestProbeAgainstWorld(t *testing.T) {
	w := NewWorld(Sphere{Center: mgl64.Vec3{0, 10, -4}, Radius: 1})
	p := NewProbe(w, 5)

	hit := p.Check(mgl64.Vec3{0, 10, 0})
	require.True(t, hit.Collided)
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, hit.Direction)
	assert.InDelta(t, 3, hit.Distance, 1e-12)

	assert.False(t, p.Check(mgl64.Vec3{0, 10, 20}).Collided)
}

func TestShapeIntersections(t *testing.T) {
	tests := []struct {
		name   string
		shape  Shape
		origin mgl64.Vec3
		dir    mgl64.Vec3
		want   float64
		hit    bool
	}{
		{"sphere ahead", Sphere{Center: mgl64.Vec3{10, 0, 0}, Radius: 2}, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 8, true},
		{"sphere behind", Sphere{Center: mgl64.Vec3{-10, 0, 0}, Radius: 2}, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 0, false},
		{"inside sphere hits far side", Sphere{Radius: 3}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, 3, true},
		{"box ahead", Box{Min: mgl64.Vec3{-1, 0, -6}, Max: mgl64.Vec3{1, 2, -4}}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, -1}, 4, true},
		{"box parallel miss", Box{Min: mgl64.Vec3{-1, 0, -6}, Max: mgl64.Vec3{1, 2, -4}}, mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, 0, -1}, 0, false},
		{"inside box", Box{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{}, mgl64.Vec3{-1, 0, 0}, 1, true},
		{"cylinder side", Cylinder{Base: mgl64.Vec3{0, 0, -10}, Radius: 1, Height: 5}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, -1}, 9, true},
		{"cylinder over the top", Cylinder{Base: mgl64.Vec3{0, 0, -10}, Radius: 1, Height: 5}, mgl64.Vec3{0, 6, 0}, mgl64.Vec3{0, 0, -1}, 0, false},
		{"cylinder cap", Cylinder{Base: mgl64.Vec3{0, 0, -10}, Radius: 1, Height: 5}, mgl64.Vec3{0, 10, -10}, mgl64.Vec3{0, -1, 0}, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.shape.Intersect(tt.origin, tt.dir)
			require.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestGroupSearchesDescendants(t *testing.T) {
	g := Group{Children: []Shape{
		Sphere{Center: mgl64.Vec3{20, 0, 0}, Radius: 1},
		Group{Children: []Shape{Sphere{Center: mgl64.Vec3{6, 0, 0}, Radius: 1}}},
	}}
	w := NewWorld(g)
	d, ok := w.Nearest(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, 5, d, 1e-12)
}

func TestScatterIsDeterministicAndGrounded(t *testing.T) {
	cfg := ScatterConfig{Count: 200, FieldSize: 2000, MaxSize: 100, ClearRadius: 50}
	a := Scatter(rand.New(rand.NewSource(42)), cfg)
	b := Scatter(rand.New(rand.NewSource(42)), cfg)

	require.Equal(t, a, b)
	assert.LessOrEqual(t, len(a), cfg.Count)
	assert.NotEmpty(t, a)

	for _, s := range a {
		switch v := s.(type) {
		case Box:
			assert.Equal(t, 0.0, v.Min.Y())
		case Sphere:
			assert.InDelta(t, v.Radius, v.Center.Y(), 1e-12)
		case Cylinder:
			assert.Equal(t, 0.0, v.Base.Y())
		default:
			t.Fatalf("unexpected shape %T", s)
		}
	}

	_, ok := NewWorld(a...).Nearest(mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{0, 1, 0})
	assert.False(t, ok, "nothing is generated over the spawn point")
}

package collision

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// ScatterConfig controls random obstacle field generation.
type ScatterConfig struct {
	Count     int
	FieldSize float64
	MaxSize   float64
	// ClearRadius keeps the area around the origin free of obstacles.
	ClearRadius float64
}

// Scatter places Count shapes of random size resting on the ground across a
// square field centered on the origin. Shapes whose footprint would reach into
// the clear radius are skipped, so fewer than Count shapes may be returned.
func Scatter(rng *rand.Rand, cfg ScatterConfig) []Shape {
	shapes := make([]Shape, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		kind := rng.Intn(3)
		size := rng.Float64() * cfg.MaxSize
		x := (rng.Float64() - 0.5) * cfg.FieldSize
		z := (rng.Float64() - 0.5) * cfg.FieldSize
		if math.Hypot(x, z)-size < cfg.ClearRadius {
			continue
		}
		half := size / 2

		switch kind {
		case 0:
			shapes = append(shapes, Box{
				Min: mgl64.Vec3{x - half, 0, z - half},
				Max: mgl64.Vec3{x + half, size, z + half},
			})
		case 1:
			shapes = append(shapes, Sphere{Center: mgl64.Vec3{x, half, z}, Radius: half})
		default:
			shapes = append(shapes, Cylinder{Base: mgl64.Vec3{x, 0, z}, Radius: half, Height: size})
		}
	}
	return shapes
}

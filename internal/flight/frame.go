package flight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/eytandecker/flightsim-dynamics/internal/collision"
)

// Pose is the vehicle placement published to renderers and cameras.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Telemetry holds the scalar readouts of the vehicle.
type Telemetry struct {
	Throttle float64
	Speed    float64
	Altitude float64
	Heading  float64
	Pitch    float64
	Bank     float64
	Boosted  bool
}

// ThrottlePercent returns the throttle as a rounded percentage for display.
func (t Telemetry) ThrottlePercent() int {
	return int(math.Round(t.Throttle * 100))
}

// Signals are host-level requests the core does not act on beyond physics.
type Signals struct {
	Help  bool
	Reset bool
}

// Frame is the outcome of one Update.
type Frame struct {
	Number    uint64
	DeltaTime float64
	Pose      Pose
	Telemetry Telemetry
	Signals   Signals
	Grounded  bool
	Collision collision.Hit
}

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SurfaceInput is the per-frame input of the control surface model.
type SurfaceInput struct {
	RollIntent    int
	PitchIntent   int
	YawIntent     int
	Airspeed      float64
	AngleOfAttack float64
	DeltaTime     float64
}

// SurfaceOutput holds the angular velocity impulse in body axes and the
// elevator's direct linear force in newtons.
type SurfaceOutput struct {
	Moment mgl64.Vec3
	Force  mgl64.Vec3
}

// Effectiveness returns the control authority scale: linear in airspeed,
// and in cos(AoA) saturated at zero.
func Effectiveness(airspeed, aoa float64, cfg VehicleConfig) float64 {
	return airspeed / cfg.ControlReferenceSpeed * math.Max(0, math.Cos(aoa))
}

// ControlSurfaces converts intents into angular moments about the body axes.
// Pitch intent also produces a small elevator force along world up.
func ControlSurfaces(in SurfaceInput, cfg VehicleConfig) SurfaceOutput {
	eff := Effectiveness(in.Airspeed, in.AngleOfAttack, cfg)
	if eff == 0 {
		return SurfaceOutput{}
	}
	k := eff * in.DeltaTime
	return SurfaceOutput{
		Moment: mgl64.Vec3{
			float64(in.PitchIntent) * cfg.PitchRate * k,
			float64(in.YawIntent) * cfg.YawRate * k,
			float64(in.RollIntent) * cfg.RollRate * k,
		},
		Force: worldUp.Mul(float64(in.PitchIntent) * cfg.ElevatorForce * eff),
	}
}

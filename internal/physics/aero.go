package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// minSpeed is the speed below which directions derived from velocity are undefined.
const minSpeed = 1e-9

// AeroInput is the per-frame input of the aerodynamics model.
type AeroInput struct {
	Velocity      mgl64.Vec3
	Forward       mgl64.Vec3
	Throttle      float64
	AngleOfAttack float64
}

// AeroForces are the linear forces produced by the airframe and engine, in newtons.
type AeroForces struct {
	Lift   mgl64.Vec3
	Drag   mgl64.Vec3
	Thrust mgl64.Vec3
}

// Total returns the sum of all aerodynamic forces.
func (f AeroForces) Total() mgl64.Vec3 {
	return f.Lift.Add(f.Drag).Add(f.Thrust)
}

// DynamicPressure returns 0.5*rho*v^2.
func DynamicPressure(speed float64, cfg VehicleConfig) float64 {
	return 0.5 * cfg.AirDensity * speed * speed
}

// EffectiveThrust returns the thrust after the speed taper:
// thrust*throttle*max(0, 1-speed/maxSpeed).
func EffectiveThrust(throttle, speed float64, cfg VehicleConfig) float64 {
	taper := math.Max(0, 1-speed/cfg.MaxSpeed)
	return cfg.Thrust * throttle * taper
}

// Aerodynamics computes lift, drag and thrust.
//
// Drag opposes velocity. Lift acts along world up and is not banked with roll;
// its coefficient is scaled by sin(AoA), floored at zero. Thrust acts along forward.
func Aerodynamics(in AeroInput, cfg VehicleConfig) AeroForces {
	speed := in.Velocity.Len()
	out := AeroForces{
		Thrust: in.Forward.Mul(EffectiveThrust(in.Throttle, speed, cfg)),
	}
	if speed < minSpeed {
		return out
	}

	q := DynamicPressure(speed, cfg) * cfg.WingArea
	out.Drag = in.Velocity.Mul(-q * cfg.DragCoefficient / speed)

	lift := q * cfg.LiftCoefficient * math.Max(0, math.Sin(in.AngleOfAttack))
	out.Lift = worldUp.Mul(lift)
	return out
}

// AngleOfAttack returns the angle between forward and the velocity direction.
// It is zero when the vehicle is (nearly) stationary.
func AngleOfAttack(forward, velocity mgl64.Vec3) float64 {
	speed := velocity.Len()
	fl := forward.Len()
	if speed < minSpeed || fl < minSpeed {
		return 0
	}
	cos := forward.Dot(velocity) / (speed * fl)
	return math.Acos(mgl64.Clamp(cos, -1, 1))
}

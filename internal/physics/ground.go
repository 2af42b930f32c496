package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ContactInput is the per-frame input of the ground contact model.
type ContactInput struct {
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	DeltaTime       float64
}

// ContactOutput is the summed response of all grounded wheels.
// Force is in newtons, world frame. Moment is an angular velocity impulse in body axes.
type ContactOutput struct {
	Force          mgl64.Vec3
	Moment         mgl64.Vec3
	GroundedWheels int
}

// Grounded reports whether any wheel touches the ground.
func (c ContactOutput) Grounded() bool { return c.GroundedWheels > 0 }

// WheelPositions returns the wheel contact points in world space.
func WheelPositions(position mgl64.Vec3, orientation mgl64.Quat, cfg VehicleConfig) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(cfg.Wheels))
	for i, w := range cfg.Wheels {
		out[i] = position.Add(orientation.Rotate(w))
	}
	return out
}

// GroundContact runs the spring/damper and friction model for every wheel at
// or below the ground clearance.
func GroundContact(in ContactInput, cfg VehicleConfig) ContactOutput {
	var (
		out      ContactOutput
		torque   mgl64.Vec3
		friction mgl64.Vec3
		contacts []wheelContact
		damping  float64
	)
	for _, wp := range WheelPositions(in.Position, in.Orientation, cfg) {
		if wp.Y() > cfg.GroundClearance {
			continue
		}
		c := wheelContact{
			position: wp,
			spring:   (cfg.GroundClearance - wp.Y()) * cfg.SpringConstant,
			damping:  -in.Velocity.Y() * cfg.DampingConstant,
		}
		damping += c.damping
		contacts = append(contacts, c)
	}
	out.GroundedWheels = len(contacts)
	if out.GroundedWheels == 0 {
		return out
	}

	// the damper may stop a sink within one step but never launch the body
	scale := 1.0
	if in.DeltaTime > 0 && damping > 0 {
		if limit := cfg.Mass * -in.Velocity.Y() / in.DeltaTime; damping > limit {
			scale = limit / damping
		}
	}

	horizontal := mgl64.Vec3{in.Velocity.X(), 0, in.Velocity.Z()}
	hspeed := horizontal.Len()
	weightShare := cfg.Mass * cfg.Gravity / float64(len(cfg.Wheels))
	for _, c := range contacts {
		// the ground never pulls
		vertical := math.Max(0, c.spring+c.damping*scale)
		f := mgl64.Vec3{0, vertical, 0}
		out.Force = out.Force.Add(f)
		torque = torque.Add(c.position.Sub(in.Position).Cross(f))

		if hspeed > minSpeed {
			normal := vertical + weightShare
			friction = friction.Add(horizontal.Mul(-cfg.FrictionCoefficient * normal / hspeed))
		}
	}

	// friction may stop the vehicle but never reverse it
	if in.DeltaTime > 0 {
		limit := cfg.Mass * hspeed / in.DeltaTime
		if fl := friction.Len(); fl > limit {
			friction = friction.Mul(limit / fl)
		}
	}
	out.Force = out.Force.Add(friction)

	bodyTorque := in.Orientation.Conjugate().Rotate(torque)
	out.Moment = bodyTorque.Mul(in.DeltaTime / cfg.AngularInertia)

	roll := in.AngularVelocity.Z()
	if math.Abs(roll) > cfg.RollStabilizationThreshold {
		corr := math.Min(cfg.RollStabilization*in.DeltaTime, math.Abs(roll))
		out.Moment[2] -= math.Copysign(corr, roll)
	}
	return out
}

type wheelContact struct {
	position mgl64.Vec3
	spring   float64
	damping  float64
}

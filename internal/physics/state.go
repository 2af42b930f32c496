package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Body axes. The vehicle looks down -Z, +Y is up and +X is the right wing.
var (
	axisPitch   = mgl64.Vec3{1, 0, 0}
	axisYaw     = mgl64.Vec3{0, 1, 0}
	axisRoll    = mgl64.Vec3{0, 0, 1}
	bodyForward = mgl64.Vec3{0, 0, -1}
	worldUp     = mgl64.Vec3{0, 1, 0}
)

// RigidBodyState is the physical state of the vehicle.
// AngularVelocity is expressed in body axes: X pitch, Y yaw, Z roll.
type RigidBodyState struct {
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// NewRigidBodyState returns the configured initial pose at rest.
func NewRigidBodyState(cfg VehicleConfig) RigidBodyState {
	return RigidBodyState{
		Position:    cfg.InitialPosition,
		Orientation: mgl64.QuatRotate(cfg.InitialHeading, axisYaw),
	}
}

// Forward returns the world-space direction the nose points at.
func (s RigidBodyState) Forward() mgl64.Vec3 { return s.Orientation.Rotate(bodyForward) }

// Up returns the world-space direction of the body's yaw axis.
func (s RigidBodyState) Up() mgl64.Vec3 { return s.Orientation.Rotate(axisYaw) }

// Right returns the world-space direction of the right wing.
func (s RigidBodyState) Right() mgl64.Vec3 { return s.Orientation.Rotate(axisPitch) }

// Speed returns the velocity magnitude.
func (s RigidBodyState) Speed() float64 { return s.Velocity.Len() }

// Attitude returns heading, pitch and bank in degrees. Heading is measured
// clockwise from -Z in [0, 360); bank is positive with the right wing down.
func (s RigidBodyState) Attitude() (heading, pitch, bank float64) {
	fwd := s.Forward()
	heading = mgl64.RadToDeg(math.Atan2(fwd.X(), -fwd.Z()))
	if heading < 0 {
		heading += 360
	}
	pitch = mgl64.RadToDeg(math.Asin(mgl64.Clamp(fwd.Y(), -1, 1)))
	bank = mgl64.RadToDeg(math.Atan2(-s.Right().Y(), s.Up().Y()))
	return heading, pitch, bank
}

// ControlState is derived from input every frame; only Throttle carries over.
type ControlState struct {
	Throttle float64

	// Intents are -1, 0 or 1. Positive pitch raises the nose, positive roll
	// lifts the right wing, positive yaw turns the nose left.
	RollIntent  int
	PitchIntent int
	YawIntent   int

	BrakeRequested bool
	ResetRequested bool
	BoostRequested bool
	HelpRequested  bool
}

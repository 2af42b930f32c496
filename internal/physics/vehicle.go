package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BoostConfig holds the coefficient overrides applied while the boost cheat is active.
type BoostConfig struct {
	Thrust          float64
	DragCoefficient float64
	LiftCoefficient float64
}

// VehicleConfig holds the immutable per-session tuning constants of the vehicle.
// Units are SI unless noted; angles are radians.
type VehicleConfig struct {
	Mass       float64
	WingArea   float64
	AirDensity float64
	Gravity    float64

	LiftCoefficient float64
	DragCoefficient float64
	Thrust          float64
	// MaxSpeed is the speed at which effective thrust tapers to zero.
	MaxSpeed float64

	RollRate  float64
	PitchRate float64
	YawRate   float64
	// ControlReferenceSpeed is the airspeed at which control surfaces reach unit effectiveness.
	ControlReferenceSpeed float64
	ElevatorForce         float64
	AoAOffset             float64
	GroundAoAOffset       float64

	// AngularDamping is the per-frame damping factor at DampingReferenceRate frames per second.
	AngularDamping       float64
	DampingReferenceRate float64
	MaxDeflection        float64

	GroundClearance            float64
	Wheels                     []mgl64.Vec3
	SpringConstant             float64
	DampingConstant            float64
	FrictionCoefficient        float64
	RollStabilization          float64
	RollStabilizationThreshold float64
	GroundRateLimit            float64
	AngularInertia             float64

	ThrottleRate          float64
	AirBrakeResistance    float64
	GroundBrakeResistance float64
	BrakeSnapSpeed        float64

	CollisionThreshold float64
	MaxDeltaTime       float64

	InitialPosition mgl64.Vec3
	InitialHeading  float64

	Boost BoostConfig
}

// DefaultVehicleConfig returns the tuning of the stock vehicle.
//
// Air density and wing area are chosen so that 0.5*rho*S == 1, which makes
// the dynamic-pressure forces equal to coefficient*speed^2.
func DefaultVehicleConfig() VehicleConfig {
	return VehicleConfig{
		Mass:       1,
		WingArea:   2,
		AirDensity: 1,
		Gravity:    9.81,

		LiftCoefficient: 0.005,
		DragCoefficient: 0.005,
		Thrust:          20,
		MaxSpeed:        120,

		RollRate:              1.5,
		PitchRate:             1.5,
		YawRate:               1.5,
		ControlReferenceSpeed: 30,
		ElevatorForce:         2,
		AoAOffset:             0.1,
		GroundAoAOffset:       0.2,

		AngularDamping:       0.99,
		DampingReferenceRate: 60,
		MaxDeflection:        math.Pi / 4,

		GroundClearance: 0.5,
		Wheels: []mgl64.Vec3{
			{0, 0, -2.5},
			{-1.2, 0, 0.8},
			{1.2, 0, 0.8},
		},
		SpringConstant:             50,
		DampingConstant:            5,
		FrictionCoefficient:        0.02,
		RollStabilization:          2,
		RollStabilizationThreshold: 0.05,
		GroundRateLimit:            0.1,
		AngularInertia:             10,

		ThrottleRate:          0.1,
		AirBrakeResistance:    2,
		GroundBrakeResistance: 10,
		BrakeSnapSpeed:        0.1,

		CollisionThreshold: 5,
		MaxDeltaTime:       0.1,

		InitialPosition: mgl64.Vec3{0, 0.5, 0},

		Boost: BoostConfig{
			Thrust:          1000,
			DragCoefficient: 0.001,
			LiftCoefficient: 0.000001,
		},
	}
}

// WithBoost returns a copy of the config with the boost overrides applied.
func (c VehicleConfig) WithBoost() VehicleConfig {
	c.Thrust = c.Boost.Thrust
	c.DragCoefficient = c.Boost.DragCoefficient
	c.LiftCoefficient = c.Boost.LiftCoefficient
	return c
}

// Validate reports the first tuning constant that would make the simulation ill-defined.
func (c VehicleConfig) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"mass", c.Mass > 0},
		{"wing area", c.WingArea >= 0},
		{"air density", c.AirDensity >= 0},
		{"gravity", c.Gravity >= 0},
		{"max speed", c.MaxSpeed > 0},
		{"control reference speed", c.ControlReferenceSpeed > 0},
		{"angular damping", c.AngularDamping > 0 && c.AngularDamping <= 1},
		{"damping reference rate", c.DampingReferenceRate > 0},
		{"max deflection", c.MaxDeflection > 0},
		{"ground rate limit", c.GroundRateLimit >= 0},
		{"angular inertia", c.AngularInertia > 0},
		{"throttle rate", c.ThrottleRate >= 0},
		{"brake resistance", c.AirBrakeResistance >= 0 && c.GroundBrakeResistance >= 0},
		{"collision threshold", c.CollisionThreshold >= 0},
		{"max delta time", c.MaxDeltaTime > 0},
		{"initial position", c.InitialPosition.Y() >= c.GroundClearance},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, chk.name)
		}
	}
	return nil
}

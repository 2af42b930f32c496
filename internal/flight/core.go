// Package flight sequences the vehicle's force models and integrator once per frame.
package flight

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/eytandecker/flightsim-dynamics/internal/collision"
	"github.com/eytandecker/flightsim-dynamics/internal/input"
	"github.com/eytandecker/flightsim-dynamics/internal/physics"
)

// Core owns the vehicle state and advances it one frame at a time.
// It is not safe for concurrent use; hosts call Update from a single loop.
type Core struct {
	cfg     physics.VehicleConfig
	mapper  *input.Mapper
	probe   *collision.Probe
	state   physics.RigidBodyState
	control physics.ControlState
	boosted bool
	frames  uint64
	last    Frame
}

// Option customizes a Core.
type Option func(*Core)

// WithBindings replaces the default key bindings.
func WithBindings(b input.Bindings) Option {
	return func(c *Core) { c.mapper = input.NewMapper(b) }
}

// New creates a Core at the configured initial pose. obstacles may be nil.
func New(cfg physics.VehicleConfig, obstacles collision.Query, opts ...Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{
		cfg:    cfg,
		mapper: input.NewMapper(nil),
		probe:  collision.NewProbe(obstacles, cfg.CollisionThreshold),
		state:  physics.NewRigidBodyState(cfg),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.last = c.frame(0, physics.ContactOutput{}, collision.Hit{})
	return c, nil
}

// Reset puts the vehicle back at the initial pose at rest and clears boost.
// Throttle is kept.
func (c *Core) Reset() {
	c.state = physics.NewRigidBodyState(c.cfg)
	c.boosted = false
	c.last = c.frame(0, physics.ContactOutput{}, collision.Hit{})
}

// Place overrides the rigid-body state, keeping the orientation unit length
// and the body above the ground.
func (c *Core) Place(s physics.RigidBodyState) {
	s.Orientation = physics.NormalizeQuat(s.Orientation)
	physics.ClampToGround(&s, c.cfg.GroundClearance)
	c.state = s
	c.last = c.frame(0, physics.ContactOutput{}, collision.Hit{})
}

// SetThrottle forces the throttle, clamped to [0, 1].
func (c *Core) SetThrottle(v float64) {
	c.control.Throttle = min(max(v, 0), 1)
	c.last.Telemetry.Throttle = c.control.Throttle
}

// State returns a copy of the rigid-body state.
func (c *Core) State() physics.RigidBodyState { return c.state }

// Control returns a copy of the last derived control state.
func (c *Core) Control() physics.ControlState { return c.control }

// Pose returns the last published pose.
func (c *Core) Pose() Pose { return c.last.Pose }

// Telemetry returns the last published telemetry.
func (c *Core) Telemetry() Telemetry { return c.last.Telemetry }

// Signals returns the last published host signals.
func (c *Core) Signals() Signals { return c.last.Signals }

// Update advances the simulation by dt seconds with the given held inputs.
func (c *Core) Update(dt float64, held input.KeySet) Frame {
	dt = physics.ClampDeltaTime(dt, c.cfg.MaxDeltaTime)
	cmd := c.mapper.Map(held)
	c.applyCommand(cmd, dt)
	c.frames++

	if cmd.Reset {
		c.Reset()
		c.last = c.frame(dt, physics.ContactOutput{}, collision.Hit{})
		return c.last
	}

	cfg := c.cfg
	if c.boosted {
		cfg = cfg.WithBoost()
	}
	s := &c.state

	// gravity
	s.Velocity = s.Velocity.Add(mgl64.Vec3{0, -cfg.Gravity * dt, 0})

	// aerodynamics, semi-implicit: velocity before position
	forward := s.Forward()
	aoa := physics.AngleOfAttack(forward, s.Velocity) + c.aoaOffset()
	aero := physics.Aerodynamics(physics.AeroInput{
		Velocity:      s.Velocity,
		Forward:       forward,
		Throttle:      c.control.Throttle,
		AngleOfAttack: aoa,
	}, cfg)
	s.Velocity = s.Velocity.Add(aero.Total().Mul(dt / cfg.Mass))

	// control surfaces
	surf := physics.ControlSurfaces(physics.SurfaceInput{
		RollIntent:    c.control.RollIntent,
		PitchIntent:   c.control.PitchIntent,
		YawIntent:     c.control.YawIntent,
		Airspeed:      s.Velocity.Len(),
		AngleOfAttack: aoa,
		DeltaTime:     dt,
	}, cfg)
	s.AngularVelocity = s.AngularVelocity.Add(surf.Moment)
	s.Velocity = s.Velocity.Add(surf.Force.Mul(dt / cfg.Mass))

	// ground contact
	contact := physics.GroundContact(physics.ContactInput{
		Position:        s.Position,
		Orientation:     s.Orientation,
		Velocity:        s.Velocity,
		AngularVelocity: s.AngularVelocity,
		DeltaTime:       dt,
	}, cfg)
	s.Velocity = s.Velocity.Add(contact.Force.Mul(dt / cfg.Mass))
	s.AngularVelocity = s.AngularVelocity.Add(contact.Moment)
	onGround := s.Position.Y() <= cfg.GroundClearance
	if contact.Grounded() && onGround {
		s.AngularVelocity = physics.ClampGroundRates(s.AngularVelocity, cfg.GroundRateLimit)
	}

	// brakes
	if c.control.BrakeRequested {
		if onGround {
			s.Velocity = physics.ApplyBrake(s.Velocity, cfg.GroundBrakeResistance, cfg.BrakeSnapSpeed, dt)
		} else {
			s.Velocity = physics.ApplyBrake(s.Velocity, cfg.AirBrakeResistance, 0, dt)
		}
	}

	// position
	s.Velocity = physics.SanitizeVec3(s.Velocity)
	s.Position = physics.SanitizeVec3(s.Position.Add(s.Velocity.Mul(dt)))
	physics.ClampToGround(s, cfg.GroundClearance)

	hit := c.probe.Check(s.Position)
	if hit.Collided {
		s.Velocity = mgl64.Vec3{}
		s.AngularVelocity = mgl64.Vec3{}
	}

	// orientation, damping, clamp
	s.AngularVelocity = physics.SanitizeVec3(s.AngularVelocity)
	s.Orientation = physics.IntegrateOrientation(s.Orientation, s.AngularVelocity, dt)
	s.AngularVelocity = physics.DampAngular(s.AngularVelocity, cfg.AngularDamping, cfg.DampingReferenceRate, dt)
	s.AngularVelocity = physics.ClampAngular(s.AngularVelocity, cfg.MaxDeflection)

	c.last = c.frame(dt, contact, hit)
	return c.last
}

func (c *Core) applyCommand(cmd input.ControlCommand, dt float64) {
	c.control = physics.ControlState{
		Throttle:       cmd.ApplyThrottle(c.control.Throttle, c.cfg.ThrottleRate, dt),
		RollIntent:     cmd.Roll,
		PitchIntent:    cmd.Pitch,
		YawIntent:      cmd.Yaw,
		BrakeRequested: cmd.Brake,
		ResetRequested: cmd.Reset,
		BoostRequested: cmd.Boost,
		HelpRequested:  cmd.Help,
	}
	if cmd.Boost {
		c.boosted = true
	}
}

// aoaOffset keeps AoA away from zero; it is larger while rotating for takeoff.
func (c *Core) aoaOffset() float64 {
	if c.state.Position.Y() <= c.cfg.GroundClearance && c.control.PitchIntent > 0 {
		return c.cfg.GroundAoAOffset
	}
	return c.cfg.AoAOffset
}

func (c *Core) frame(dt float64, contact physics.ContactOutput, hit collision.Hit) Frame {
	heading, pitch, bank := c.state.Attitude()
	return Frame{
		Number:    c.frames,
		DeltaTime: dt,
		Pose: Pose{
			Position:    c.state.Position,
			Orientation: c.state.Orientation,
		},
		Telemetry: Telemetry{
			Throttle: c.control.Throttle,
			Speed:    c.state.Speed(),
			Altitude: c.state.Position.Y(),
			Heading:  heading,
			Pitch:    pitch,
			Bank:     bank,
			Boosted:  c.boosted,
		},
		Signals: Signals{
			Help:  c.control.HelpRequested,
			Reset: c.control.ResetRequested,
		},
		Grounded:  contact.Grounded(),
		Collision: hit,
	}
}

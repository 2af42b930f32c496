package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVehicleConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultVehicleConfig().Validate())
}

func TestValidateRejectsBadTuning(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *VehicleConfig)
	}{
		{"zero mass", func(c *VehicleConfig) { c.Mass = 0 }},
		{"zero max speed", func(c *VehicleConfig) { c.MaxSpeed = 0 }},
		{"damping above one", func(c *VehicleConfig) { c.AngularDamping = 1.5 }},
		{"zero max delta time", func(c *VehicleConfig) { c.MaxDeltaTime = 0 }},
		{"start below ground", func(c *VehicleConfig) { c.InitialPosition = mgl64.Vec3{0, 0.1, 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultVehicleConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestWithBoostOverridesCoefficients(t *testing.T) {
	cfg := DefaultVehicleConfig()
	b := cfg.WithBoost()
	assert.Equal(t, 1000.0, b.Thrust)
	assert.Equal(t, 0.001, b.DragCoefficient)
	assert.Equal(t, 0.000001, b.LiftCoefficient)
	assert.Equal(t, 20.0, cfg.Thrust, "receiver config must not change")
}

func TestNewRigidBodyStateFacesMinusZ(t *testing.T) {
	s := NewRigidBodyState(DefaultVehicleConfig())
	assert.Equal(t, mgl64.Vec3{0, 0.5, 0}, s.Position)
	assert.True(t, s.Forward().ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-12))
	heading, pitch, bank := s.Attitude()
	assert.InDelta(t, 0, heading, 1e-9)
	assert.InDelta(t, 0, pitch, 1e-9)
	assert.InDelta(t, 0, bank, 1e-9)
}

func TestAttitudeSigns(t *testing.T) {
	s := RigidBodyState{Orientation: mgl64.QuatRotate(-math.Pi/2, axisYaw)}
	heading, _, _ := s.Attitude()
	assert.InDelta(t, 90, heading, 1e-9, "negative yaw turns the nose east")

	s.Orientation = mgl64.QuatRotate(0.3, axisPitch)
	_, pitch, _ := s.Attitude()
	assert.InDelta(t, mgl64.RadToDeg(0.3), pitch, 1e-9)

	s.Orientation = mgl64.QuatRotate(-0.2, axisRoll)
	_, _, bank := s.Attitude()
	assert.InDelta(t, mgl64.RadToDeg(0.2), bank, 1e-9, "right wing down is positive bank")
}

func TestAerodynamicsAtZeroSpeedIsPureThrust(t *testing.T) {
	cfg := DefaultVehicleConfig()
	f := Aerodynamics(AeroInput{Forward: mgl64.Vec3{0, 0, -1}, Throttle: 1}, cfg)

	assert.Equal(t, mgl64.Vec3{}, f.Lift)
	assert.Equal(t, mgl64.Vec3{}, f.Drag)
	assert.InDelta(t, -20, f.Thrust.Z(), 1e-12)
}

func TestAerodynamicsMagnitudes(t *testing.T) {
	cfg := DefaultVehicleConfig()
	f := Aerodynamics(AeroInput{
		Velocity:      mgl64.Vec3{0, 0, -10},
		Forward:       mgl64.Vec3{0, 0, -1},
		Throttle:      0.5,
		AngleOfAttack: 0.1,
	}, cfg)

	assert.InDelta(t, 0.5, f.Drag.Z(), 1e-12, "drag opposes velocity with 0.5*rho*v^2*S*Cd")
	assert.InDelta(t, 0, f.Drag.X(), 1e-12)
	assert.InDelta(t, 100*0.005*math.Sin(0.1), f.Lift.Y(), 1e-12)
	assert.InDelta(t, -20*0.5*(1-10.0/120), f.Thrust.Z(), 1e-12)
	assert.InDelta(t, f.Lift.Y(), f.Total().Y(), 1e-12)
}

func TestEffectiveThrustTapersToZero(t *testing.T) {
	cfg := DefaultVehicleConfig()
	assert.Equal(t, 20.0, EffectiveThrust(1, 0, cfg))
	assert.Equal(t, 0.0, EffectiveThrust(1, cfg.MaxSpeed, cfg))
	assert.Equal(t, 0.0, EffectiveThrust(1, 2*cfg.MaxSpeed, cfg))
}

func TestLiftNeverPullsDown(t *testing.T) {
	cfg := DefaultVehicleConfig()
	f := Aerodynamics(AeroInput{
		Velocity:      mgl64.Vec3{0, 0, 10},
		Forward:       mgl64.Vec3{0, 0, -1},
		AngleOfAttack: math.Pi + 0.1,
	}, cfg)
	assert.Equal(t, 0.0, f.Lift.Y())
}

func TestAngleOfAttack(t *testing.T) {
	fwd := mgl64.Vec3{0, 0, -1}
	assert.Equal(t, 0.0, AngleOfAttack(fwd, mgl64.Vec3{}))
	assert.InDelta(t, 0, AngleOfAttack(fwd, mgl64.Vec3{0, 0, -3}), 1e-7)
	assert.InDelta(t, math.Pi/2, AngleOfAttack(fwd, mgl64.Vec3{0, -5, 0}), 1e-12)
	assert.False(t, math.IsNaN(AngleOfAttack(fwd, mgl64.Vec3{1e-12, 0, 0})))
}

func TestControlSurfacesRollRoundTrip(t *testing.T) {
	cfg := DefaultVehicleConfig()
	in := SurfaceInput{RollIntent: 1, Airspeed: 42, AngleOfAttack: 0.1, DeltaTime: 0.25}
	start := mgl64.Vec3{0.1, -0.05, 0.2}

	w := start.Add(ControlSurfaces(in, cfg).Moment)
	assert.Greater(t, w.Z(), start.Z())

	in.RollIntent = -1
	w = w.Add(ControlSurfaces(in, cfg).Moment)
	assert.True(t, w.ApproxEqualThreshold(start, 1e-12))
}

func TestControlSurfacesMoments(t *testing.T) {
	cfg := DefaultVehicleConfig()
	out := ControlSurfaces(SurfaceInput{
		RollIntent:  1,
		PitchIntent: -1,
		YawIntent:   1,
		Airspeed:    cfg.ControlReferenceSpeed,
		DeltaTime:   0.5,
	}, cfg)

	assert.InDelta(t, -0.75, out.Moment.X(), 1e-12)
	assert.InDelta(t, 0.75, out.Moment.Y(), 1e-12)
	assert.InDelta(t, 0.75, out.Moment.Z(), 1e-12)
	assert.InDelta(t, -cfg.ElevatorForce, out.Force.Y(), 1e-12)
}

func TestControlSurfacesPowerlessWhenStationaryOrStalled(t *testing.T) {
	cfg := DefaultVehicleConfig()
	out := ControlSurfaces(SurfaceInput{RollIntent: 1, PitchIntent: 1, DeltaTime: 1}, cfg)
	assert.Equal(t, SurfaceOutput{}, out)

	assert.Equal(t, 0.0, Effectiveness(50, math.Pi, cfg), "large AoA saturates at zero")
	out = ControlSurfaces(SurfaceInput{RollIntent: 1, Airspeed: 50, AngleOfAttack: math.Pi, DeltaTime: 1}, cfg)
	assert.Equal(t, SurfaceOutput{}, out)
}

func TestGroundContactAboveClearance(t *testing.T) {
	cfg := DefaultVehicleConfig()
	out := GroundContact(ContactInput{
		Position:    mgl64.Vec3{0, 10, 0},
		Orientation: mgl64.QuatIdent(),
		Velocity:    mgl64.Vec3{3, -2, 1},
		DeltaTime:   0.016,
	}, cfg)
	assert.False(t, out.Grounded())
	assert.Equal(t, ContactOutput{}, out)
}

func TestGroundContactSpringRestoresRoll(t *testing.T) {
	cfg := DefaultVehicleConfig()
	out := GroundContact(ContactInput{
		Position:    mgl64.Vec3{0, cfg.GroundClearance, 0},
		Orientation: mgl64.QuatRotate(0.2, axisRoll),
		DeltaTime:   0.016,
	}, cfg)

	require.True(t, out.Grounded())
	assert.Equal(t, 2, out.GroundedWheels, "left main and nose touch, right main is lifted")
	assert.Greater(t, out.Force.Y(), 0.0)
	assert.Less(t, out.Moment.Z(), 0.0, "left wing down must be pushed back up")
}

func TestGroundContactDampingOpposesSink(t *testing.T) {
	cfg := DefaultVehicleConfig()
	out := GroundContact(ContactInput{
		Position:    mgl64.Vec3{0, cfg.GroundClearance, 0},
		Orientation: mgl64.QuatIdent(),
		Velocity:    mgl64.Vec3{0, -2, 0},
		DeltaTime:   0.016,
	}, cfg)
	assert.InDelta(t, 3*2*cfg.DampingConstant, out.Force.Y(), 1e-9)
}

func TestGroundContactFriction(t *testing.T) {
	cfg := DefaultVehicleConfig()
	in := ContactInput{
		Position:    mgl64.Vec3{0, cfg.GroundClearance, 0},
		Orientation: mgl64.QuatIdent(),
		Velocity:    mgl64.Vec3{10, 0, 0},
		DeltaTime:   0.016,
	}
	out := GroundContact(in, cfg)
	assert.InDelta(t, -cfg.FrictionCoefficient*cfg.Mass*cfg.Gravity, out.Force.X(), 1e-9)

	in.Velocity = mgl64.Vec3{0.001, 0, 0}
	in.DeltaTime = 0.1
	out = GroundContact(in, cfg)
	assert.InDelta(t, -0.01, out.Force.X(), 1e-12, "friction is capped so it cannot reverse motion")
}

func TestGroundContactRollStabilization(t *testing.T) {
	cfg := DefaultVehicleConfig()
	out := GroundContact(ContactInput{
		Position:        mgl64.Vec3{0, cfg.GroundClearance, 0},
		Orientation:     mgl64.QuatIdent(),
		AngularVelocity: mgl64.Vec3{0, 0, 0.5},
		DeltaTime:       0.1,
	}, cfg)
	assert.InDelta(t, -cfg.RollStabilization*0.1, out.Moment.Z(), 1e-12)
}

func TestClampDeltaTime(t *testing.T) {
	assert.Equal(t, 0.0, ClampDeltaTime(-1, 0.1))
	assert.Equal(t, 0.0, ClampDeltaTime(math.NaN(), 0.1))
	assert.Equal(t, 0.05, ClampDeltaTime(0.05, 0.1))
	assert.Equal(t, 0.1, ClampDeltaTime(3, 0.1))
}

func TestIntegrateOrientationStaysUnit(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := mgl64.QuatIdent()
	for i := 0; i < 10000; i++ {
		w := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		q = IntegrateOrientation(q, w, 0.016)
		require.InDelta(t, 1, q.Len(), 1e-9)
	}
}

func TestIntegrateOrientationOrder(t *testing.T) {
	w := mgl64.Vec3{1, 1, 0}
	got := IntegrateOrientation(mgl64.QuatIdent(), w, 0.5)

	pitchThenYaw := mgl64.QuatRotate(0.5, axisPitch).Mul(mgl64.QuatRotate(0.5, axisYaw))
	yawThenPitch := mgl64.QuatRotate(0.5, axisYaw).Mul(mgl64.QuatRotate(0.5, axisPitch))

	assert.True(t, got.ApproxEqualThreshold(pitchThenYaw, 1e-12))
	assert.False(t, got.ApproxEqualThreshold(yawThenPitch, 1e-6))
}

func TestNormalizeQuatDegenerate(t *testing.T) {
	assert.Equal(t, mgl64.QuatIdent(), NormalizeQuat(mgl64.Quat{}))
	q := NormalizeQuat(mgl64.Quat{W: 2, V: mgl64.Vec3{0, 0, 0}})
	assert.Equal(t, mgl64.QuatIdent(), q)
}

func TestDampAngularIsTimeNormalized(t *testing.T) {
	w := mgl64.Vec3{1, -1, 0.5}
	one := DampAngular(w, 0.99, 60, 1.0/60)
	assert.InDelta(t, 0.99, one.X(), 1e-12)

	two := DampAngular(DampAngular(w, 0.99, 60, 1.0/120), 0.99, 60, 1.0/120)
	assert.True(t, one.ApproxEqualThreshold(two, 1e-12), "two half frames equal one full frame")
}

func TestClampAngular(t *testing.T) {
	limit := math.Pi / 4
	w := ClampAngular(mgl64.Vec3{5, -5, 0.1}, limit)
	assert.Equal(t, mgl64.Vec3{limit, -limit, 0.1}, w)
}

func TestClampGroundRatesLeavesYaw(t *testing.T) {
	w := ClampGroundRates(mgl64.Vec3{0.5, 0.5, -0.5}, 0.1)
	assert.Equal(t, mgl64.Vec3{0.1, 0.5, -0.1}, w)
}

func TestApplyBrake(t *testing.T) {
	assert.True(t, ApplyBrake(mgl64.Vec3{5, 0, 0}, 10, 0.1, 0.1).ApproxEqualThreshold(mgl64.Vec3{4, 0, 0}, 1e-12))
	assert.Equal(t, mgl64.Vec3{}, ApplyBrake(mgl64.Vec3{0.5, 0, 0}, 10, 0.1, 0.1))
	assert.Equal(t, mgl64.Vec3{}, ApplyBrake(mgl64.Vec3{1.05, 0, 0}, 10, 0.1, 0.1), "snaps below threshold")
}

func TestClampToGround(t *testing.T) {
	s := RigidBodyState{Position: mgl64.Vec3{1, 0.2, 3}, Velocity: mgl64.Vec3{4, -9, 2}}
	require.True(t, ClampToGround(&s, 0.5))
	assert.Equal(t, mgl64.Vec3{1, 0.5, 3}, s.Position)
	assert.Equal(t, mgl64.Vec3{4, 0, 2}, s.Velocity)

	s.Position[1] = 7
	assert.False(t, ClampToGround(&s, 0.5))
}

func TestSanitizeVec3(t *testing.T) {
	v := SanitizeVec3(mgl64.Vec3{math.NaN(), math.Inf(1), 2})
	assert.Equal(t, mgl64.Vec3{0, 0, 2}, v)
}

func TestGroundContactDampingNeverLaunches(t *testing.T) {
	cfg := DefaultVehicleConfig()
	in := ContactInput{
		Position:    mgl64.Vec3{0, cfg.GroundClearance, 0},
		Orientation: mgl64.QuatIdent(),
		Velocity:    mgl64.Vec3{0, -0.981, 0},
		DeltaTime:   0.1,
	}
	out := GroundContact(in, cfg)
	vy := in.Velocity.Y() + out.Force.Y()*in.DeltaTime/cfg.Mass
	assert.InDelta(t, 0, vy, 1e-12)
}

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ClampDeltaTime bounds the frame step to [0, limit]. NaN and negative steps become zero.
func ClampDeltaTime(dt, limit float64) float64 {
	if math.IsNaN(dt) || dt <= 0 {
		return 0
	}
	return math.Min(dt, limit)
}

// IntegrateOrientation rotates q about its own pitch, yaw and roll axes, in that
// order, by w*dt and renormalizes the result.
func IntegrateOrientation(q mgl64.Quat, w mgl64.Vec3, dt float64) mgl64.Quat {
	q = q.Mul(mgl64.QuatRotate(w.X()*dt, axisPitch)).
		Mul(mgl64.QuatRotate(w.Y()*dt, axisYaw)).
		Mul(mgl64.QuatRotate(w.Z()*dt, axisRoll))
	return NormalizeQuat(q)
}

// NormalizeQuat returns q at unit length; degenerate quaternions become identity.
func NormalizeQuat(q mgl64.Quat) mgl64.Quat {
	l := q.Len()
	if l < minSpeed || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: q.W / l, V: q.V.Mul(1 / l)}
}

// DampAngular applies factor once per reference frame, normalized to dt:
// w * factor^(dt*refRate).
func DampAngular(w mgl64.Vec3, factor, refRate, dt float64) mgl64.Vec3 {
	return w.Mul(math.Pow(factor, dt*refRate))
}

// ClampAngular clamps each component to [-limit, limit].
func ClampAngular(w mgl64.Vec3, limit float64) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(w.X(), -limit, limit),
		mgl64.Clamp(w.Y(), -limit, limit),
		mgl64.Clamp(w.Z(), -limit, limit),
	}
}

// ClampGroundRates limits pitch and roll rates while taxiing.
func ClampGroundRates(w mgl64.Vec3, limit float64) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(w.X(), -limit, limit),
		w.Y(),
		mgl64.Clamp(w.Z(), -limit, limit),
	}
}

// ApplyBrake decelerates v along its own direction by resistance*dt and snaps
// it to zero below snap.
func ApplyBrake(v mgl64.Vec3, resistance, snap, dt float64) mgl64.Vec3 {
	speed := v.Len()
	step := resistance * dt
	if speed <= step || speed < minSpeed {
		return mgl64.Vec3{}
	}
	v = v.Sub(v.Mul(step / speed))
	if v.Len() < snap {
		return mgl64.Vec3{}
	}
	return v
}

// ClampToGround snaps the body to the clearance plane and kills vertical velocity.
// It reports whether the clamp was applied.
func ClampToGround(s *RigidBodyState, clearance float64) bool {
	if s.Position.Y() > clearance {
		return false
	}
	s.Position[1] = clearance
	s.Velocity[1] = 0
	return true
}

// SanitizeVec3 replaces NaN and infinite components with zero.
func SanitizeVec3(v mgl64.Vec3) mgl64.Vec3 {
	for i := range v {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			v[i] = 0
		}
	}
	return v
}

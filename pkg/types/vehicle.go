package types

import "time"

// Vec3 is a JSON-friendly 3D vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a JSON-friendly rotation.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// VehicleSnapshot is the published state of the vehicle after a frame.
type VehicleSnapshot struct {
	Frame           uint64     `json:"frame"`
	Position        Vec3       `json:"position"`
	Orientation     Quaternion `json:"orientation"`
	Velocity        Vec3       `json:"velocity"`
	AngularVelocity Vec3       `json:"angular_velocity"`

	Speed           float64 `json:"speed_mps"`
	Altitude        float64 `json:"altitude_m"`
	Throttle        float64 `json:"throttle"`
	ThrottlePercent int     `json:"throttle_pct"`
	Heading         float64 `json:"heading_deg"`
	Pitch           float64 `json:"pitch_deg"`
	Bank            float64 `json:"bank_deg"`

	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`

	Grounded       bool     `json:"grounded"`
	Collided       bool     `json:"collided"`
	Boosted        bool     `json:"boosted"`
	HelpRequested  bool     `json:"help_requested"`
	ResetRequested bool     `json:"reset_requested"`
	HeldKeys       []string `json:"held_keys"`

	SimTime   float64   `json:"sim_time_s"`
	Timestamp time.Time `json:"timestamp"`
}

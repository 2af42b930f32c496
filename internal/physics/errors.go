package physics

import "errors"

// ErrInvalidConfig is returned when a VehicleConfig fails validation.
var ErrInvalidConfig = errors.New("physics: invalid vehicle config")

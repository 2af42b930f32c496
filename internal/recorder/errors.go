package recorder

import "errors"

var (
	// ErrClosed is returned when recording into a sink that has been closed.
	ErrClosed = errors.New("recorder: sink closed")

	// ErrTrackTooShort is returned when a ground track has fewer than two points.
	ErrTrackTooShort = errors.New("recorder: ground track needs at least two points")

	// ErrUnknownDriver is returned for an unsupported SQL driver name.
	ErrUnknownDriver = errors.New("recorder: unknown sql driver")
)

package types

import "fmt"

// SimulatorError reports that the simulation loop can no longer advance.
// Frame is the frame number the failure was observed on, 0 when unknown.
type SimulatorError struct {
	Err         error
	Message     string
	Frame       uint64
	Recoverable bool
}

func (e *SimulatorError) Error() string {
	if e.Frame == 0 {
		return fmt.Sprintf("simulator stopped: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("simulator stopped at frame %d: %s: %v", e.Frame, e.Message, e.Err)
}

func (e *SimulatorError) Unwrap() error {
	return e.Err
}

package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulatorErrorMessage(t *testing.T) {
	cause := errors.New("db down")

	err := &SimulatorError{Err: cause, Message: "recorder failed"}
	assert.EqualError(t, err, "simulator stopped: recorder failed: db down")

	err.Frame = 42
	assert.EqualError(t, err, "simulator stopped at frame 42: recorder failed: db down")
	assert.ErrorIs(t, err, cause)
}

package state

import "errors"

// ErrStale is returned when no snapshot has been published within the stale threshold.
var ErrStale = errors.New("state: vehicle snapshot is stale")

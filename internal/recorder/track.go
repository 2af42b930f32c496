package recorder

import (
	"context"
	"fmt"
	"sync"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/eytandecker/flightsim-dynamics/pkg/types"
)

// Track keeps the most recent geodetic positions of the vehicle in a ring buffer.
// It is safe for concurrent use.
type Track struct {
	mu     sync.RWMutex
	points []types.Vec3 // lon, lat, altitude
	head   int
	full   bool
	closed bool
}

// NewTrack creates a Track holding up to capacity points.
func NewTrack(capacity int) *Track {
	if capacity < 2 {
		capacity = 2
	}
	return &Track{points: make([]types.Vec3, 0, capacity)}
}

// Record appends the snapshot's position. Repeated positions are skipped.
// A reset snapshot starts a new track at the reset position.
func (t *Track) Record(_ context.Context, snap types.VehicleSnapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if snap.ResetRequested {
		t.resetLocked()
	}

	p := types.Vec3{X: snap.Longitude, Y: snap.Latitude, Z: snap.Altitude}
	if n := t.lenLocked(); n > 0 && t.atLocked(n-1) == p {
		return nil
	}
	if !t.full && len(t.points) < cap(t.points) {
		t.points = append(t.points, p)
		return nil
	}
	t.full = true
	t.points[t.head] = p
	t.head = (t.head + 1) % len(t.points)
	return nil
}

// Close implements Sink.
func (t *Track) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Len returns the number of stored points.
func (t *Track) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lenLocked()
}

// Points returns the stored points, oldest first.
func (t *Track) Points() []types.Vec3 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.Vec3, t.lenLocked())
	for i := range out {
		out[i] = t.atLocked(i)
	}
	return out
}

// LineString returns the track as a lon/lat/altitude line string.
func (t *Track) LineString() (geom.LineString, error) {
	pts := t.Points()
	if len(pts) < 2 {
		return geom.LineString{}, ErrTrackTooShort
	}
	flat := make([]float64, 0, len(pts)*3)
	for _, p := range pts {
		flat = append(flat, p.X, p.Y, p.Z)
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("recorder: build track: %w", err)
	}
	return ls, nil
}

// WKT returns the track in well-known text.
func (t *Track) WKT() (string, error) {
	ls, err := t.LineString()
	if err != nil {
		return "", err
	}
	return ls.AsText(), nil
}

func (t *Track) resetLocked() {
	t.points = t.points[:0]
	t.head = 0
	t.full = false
}

func (t *Track) lenLocked() int { return len(t.points) }

func (t *Track) atLocked(i int) types.Vec3 {
	if !t.full {
		return t.points[i]
	}
	return t.points[(t.head+i)%len(t.points)]
}

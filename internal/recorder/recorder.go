// Package recorder persists published vehicle snapshots: an in-memory ground
// track, a SQL frame table and an InfluxDB time series.
package recorder

import (
	"context"
	"errors"

	"github.com/eytandecker/flightsim-dynamics/pkg/types"
)

// Sink receives vehicle snapshots.
type Sink interface {
	Record(ctx context.Context, snap types.VehicleSnapshot) error
	Close() error
}

// Fanout records into every sink and joins their errors.
type Fanout []Sink

// Record implements Sink.
func (f Fanout) Record(ctx context.Context, snap types.VehicleSnapshot) error {
	var errs []error
	for _, s := range f {
		if err := s.Record(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Sink.
func (f Fanout) Close() error {
	var errs []error
	for _, s := range f {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sampler forwards snapshots at most once per interval of simulated time.
// Collisions and resets are always forwarded.
type Sampler struct {
	next     Sink
	interval float64
	last     float64
	started  bool
}

// NewSampler wraps next. A non-positive interval forwards every snapshot.
func NewSampler(next Sink, intervalSeconds float64) *Sampler {
	return &Sampler{next: next, interval: intervalSeconds}
}

// Record implements Sink.
func (s *Sampler) Record(ctx context.Context, snap types.VehicleSnapshot) error {
	due := !s.started || snap.SimTime-s.last >= s.interval || snap.SimTime < s.last
	if !due && !snap.Collided && !snap.ResetRequested {
		return nil
	}
	s.started = true
	s.last = snap.SimTime
	return s.next.Record(ctx, snap)
}

// Close implements Sink.
func (s *Sampler) Close() error { return s.next.Close() }

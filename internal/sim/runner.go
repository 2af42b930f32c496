// Package sim hosts the flight core: it paces frames, publishes snapshots and
// feeds the recorder.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/eytandecker/flightsim-dynamics/internal/flight"
	"github.com/eytandecker/flightsim-dynamics/internal/geodesy"
	"github.com/eytandecker/flightsim-dynamics/internal/input"
	"github.com/eytandecker/flightsim-dynamics/pkg/types"
)

// SnapshotUpdater is implemented by state.Manager.
// Defined here (consuming side) to avoid import cycles.
type SnapshotUpdater interface {
	Update(snap types.VehicleSnapshot)
}

// InputSource is implemented by input.HeldKeys.
type InputSource interface {
	Held() input.KeySet
}

// Recorder is implemented by the recorder sinks.
type Recorder interface {
	Record(ctx context.Context, snap types.VehicleSnapshot) error
}

// Config holds configuration for the Runner.
type Config struct {
	FrameRate       float64
	MaxRecordErrors int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{FrameRate: 60, MaxRecordErrors: 10}
}

// Option customizes a Runner.
type Option func(*Runner)

// WithRecorder sets the sink every snapshot is recorded to.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithProjector adds geodetic coordinates to snapshots.
func WithProjector(p *geodesy.Projector) Option {
	return func(r *Runner) { r.projector = p }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// Runner advances a flight.Core on a fixed ticker and publishes its snapshots.
type Runner struct {
	core      *flight.Core
	input     InputSource
	updater   SnapshotUpdater
	recorder  Recorder
	projector *geodesy.Projector
	log       zerolog.Logger
	cfg       Config
	clock     *FrameClock
	metrics   *metrics
	now       func() time.Time

	simTime      float64
	recordErrors int

	mu    sync.RWMutex
	last  types.VehicleSnapshot
	ready bool
}

// NewRunner creates a Runner for core, reading controls from in and publishing to updater.
func NewRunner(core *flight.Core, in InputSource, updater SnapshotUpdater, cfg Config, opts ...Option) (*Runner, error) {
	r := &Runner{
		core:    core,
		input:   in,
		updater: updater,
		log:     zerolog.Nop(),
		cfg:     cfg,
		clock:   NewFrameClock(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	m, err := newMetrics(r.speed)
	if err != nil {
		return nil, err
	}
	r.metrics = m
	return r, nil
}

// Start blocks, stepping the core once per tick with the measured frame time.
// It exits when ctx is cancelled or a frame fails.
func (r *Runner) Start(ctx context.Context) error {
	rate := r.cfg.FrameRate
	if rate <= 0 {
		rate = DefaultConfig().FrameRate
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	r.log.Info().Float64("frameRate", rate).Msg("Simulation started")
	r.clock.Tick()
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Float64("simTime", r.simTime).Msg("Simulation stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Step(ctx, r.clock.Tick()); err != nil {
				return err
			}
		}
	}
}

// Step runs one frame of dt seconds and returns the published snapshot.
// It fails only when the recorder has failed MaxRecordErrors frames in a row.
func (r *Runner) Step(ctx context.Context, dt float64) (types.VehicleSnapshot, error) {
	held := r.input.Held()
	frame := r.core.Update(dt, held)
	r.simTime += frame.DeltaTime

	snap := r.snapshot(frame, held)
	r.updater.Update(snap)
	r.mu.Lock()
	r.last, r.ready = snap, true
	r.mu.Unlock()

	r.metrics.frame(ctx, frame.DeltaTime, frame.Grounded)
	if frame.Collision.Collided {
		r.metrics.collisions.Add(ctx, 1)
		ev := r.log.Debug().
			Uint64("frame", frame.Number).
			Float64("distance", frame.Collision.Distance)
		if r.projector != nil {
			if pt, err := r.projector.Point(frame.Pose.Position); err == nil {
				ev = ev.Str("mercator", pt.AsText())
			}
		}
		ev.Msg("Collision stop")
	}
	if frame.Signals.Reset {
		r.metrics.resets.Add(ctx, 1)
		r.log.Info().Uint64("frame", frame.Number).Msg("Vehicle reset")
	}

	if r.recorder == nil {
		return snap, nil
	}
	if err := r.recorder.Record(ctx, snap); err != nil {
		r.recordErrors++
		r.metrics.recordErrors.Add(ctx, 1)
		r.log.Warn().Err(err).
			Uint64("frame", frame.Number).
			Int("consecutive", r.recordErrors).
			Msg("Failed to record frame")
		if r.cfg.MaxRecordErrors > 0 && r.recordErrors >= r.cfg.MaxRecordErrors {
			return snap, &types.SimulatorError{
				Err:         err,
				Message:     "recorder failed repeatedly",
				Frame:       frame.Number,
				Recoverable: false,
			}
		}
		return snap, nil
	}
	r.recordErrors = 0
	return snap, nil
}

func (r *Runner) speed() (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last.Speed, r.ready
}

func (r *Runner) snapshot(f flight.Frame, held input.KeySet) types.VehicleSnapshot {
	s := r.core.State()
	keys := held.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}

	snap := types.VehicleSnapshot{
		Frame:    f.Number,
		Position: vec(f.Pose.Position),
		Orientation: types.Quaternion{
			W: f.Pose.Orientation.W,
			X: f.Pose.Orientation.V.X(),
			Y: f.Pose.Orientation.V.Y(),
			Z: f.Pose.Orientation.V.Z(),
		},
		Velocity:        vec(s.Velocity),
		AngularVelocity: vec(s.AngularVelocity),
		Speed:           f.Telemetry.Speed,
		Altitude:        f.Telemetry.Altitude,
		Throttle:        f.Telemetry.Throttle,
		ThrottlePercent: f.Telemetry.ThrottlePercent(),
		Heading:         f.Telemetry.Heading,
		Pitch:           f.Telemetry.Pitch,
		Bank:            f.Telemetry.Bank,
		Grounded:        f.Grounded,
		Collided:        f.Collision.Collided,
		Boosted:         f.Telemetry.Boosted,
		HelpRequested:   f.Signals.Help,
		ResetRequested:  f.Signals.Reset,
		HeldKeys:        names,
		SimTime:         r.simTime,
		Timestamp:       r.now().UTC(),
	}
	if r.projector != nil {
		g := r.projector.Project(f.Pose.Position)
		snap.Longitude, snap.Latitude, snap.Altitude = g.Longitude, g.Latitude, g.Altitude
	}
	return snap
}

func vec(v mgl64.Vec3) types.Vec3 {
	return types.Vec3{X: v.X(), Y: v.Y(), Z: v.Z()}
}

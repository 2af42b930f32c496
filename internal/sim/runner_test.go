package sim

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eytandecker/flightsim-dynamics/internal/collision"
	"github.com/eytandecker/flightsim-dynamics/internal/flight"
	"github.com/eytandecker/flightsim-dynamics/internal/geodesy"
	"github.com/eytandecker/flightsim-dynamics/internal/input"
	"github.com/eytandecker/flightsim-dynamics/internal/physics"
	"github.com/eytandecker/flightsim-dynamics/pkg/types"
)

type fakeUpdater struct {
	mu    sync.Mutex
	snaps []types.VehicleSnapshot
}

func (f *fakeUpdater) Update(snap types.VehicleSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps = append(f.snaps, snap)
}

func (f *fakeUpdater) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snaps)
}

type fakeRecorder struct {
	err   error
	calls int
}

func (f *fakeRecorder) Record(context.Context, types.VehicleSnapshot) error {
	f.calls++
	return f.err
}

func newRunner(t *testing.T, held *input.HeldKeys, upd SnapshotUpdater, cfg Config, opts ...Option) *Runner {
	t.Helper()
	core, err := flight.New(physics.DefaultVehicleConfig(), nil)
	require.NoError(t, err)
	r, err := NewRunner(core, held, upd, cfg, opts...)
	require.NoError(t, err)
	return r
}

func TestStepPublishesSnapshot(t *testing.T) {
	held := input.NewHeldKeys()
	held.Press("e", "h")
	upd := &fakeUpdater{}
	r := newRunner(t, held, upd, DefaultConfig())

	snap, err := r.Step(context.Background(), 0.016)
	require.NoError(t, err)

	require.Equal(t, 1, upd.count())
	assert.Equal(t, snap, upd.snaps[0])
	assert.Equal(t, uint64(1), snap.Frame)
	assert.Equal(t, 1.0, snap.Throttle)
	assert.Equal(t, 100, snap.ThrottlePercent)
	assert.True(t, snap.HelpRequested)
	assert.True(t, snap.Grounded)
	assert.Equal(t, []string{"e", "h"}, snap.HeldKeys)
	assert.InDelta(t, 0.016, snap.SimTime, 1e-12)
	assert.InDelta(t, 1.0, snap.Orientation.W, 1e-6)
}

func TestStepLogsCollisionPoint(t *testing.T) {
	proj, err := geodesy.NewProjector(geodesy.Origin{Longitude: 8.5, Latitude: 47.4, Elevation: 400})
	require.NoError(t, err)
	wall := collision.NewWorld(collision.Box{Min: mgl64.Vec3{-5, 0, -3}, Max: mgl64.Vec3{5, 5, -2}})
	core, err := flight.New(physics.DefaultVehicleConfig(), wall)
	require.NoError(t, err)

	var buf bytes.Buffer
	r, err := NewRunner(core, input.NewHeldKeys(), &fakeUpdater{}, DefaultConfig(),
		WithProjector(proj), WithLogger(zerolog.New(&buf)))
	require.NoError(t, err)

	snap, err := r.Step(context.Background(), 0.016)
	require.NoError(t, err)
	require.True(t, snap.Collided)
	assert.Contains(t, buf.String(), `"message":"Collision stop"`)
	assert.Contains(t, buf.String(), `"mercator":"POINT Z`)
}

func TestStepAddsGeodeticPosition(t *testing.T) {
	proj, err := geodesy.NewProjector(geodesy.Origin{Longitude: 8.5, Latitude: 47.4, Elevation: 400})
	require.NoError(t, err)
	r := newRunner(t, input.NewHeldKeys(), &fakeUpdater{}, DefaultConfig(), WithProjector(proj))

	snap, err := r.Step(context.Background(), 0.016)
	require.NoError(t, err)
	assert.InDelta(t, 8.5, snap.Longitude, 1e-9)
	assert.InDelta(t, 47.4, snap.Latitude, 1e-9)
	assert.InDelta(t, 400.5, snap.Altitude, 1e-9)
}

func TestStepRecorderFailures(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db down")}
	cfg := Config{FrameRate: 60, MaxRecordErrors: 3}
	r := newRunner(t, input.NewHeldKeys(), &fakeUpdater{}, cfg, WithRecorder(rec))
	ctx := context.Background()

	_, err := r.Step(ctx, 0.016)
	require.NoError(t, err)
	_, err = r.Step(ctx, 0.016)
	require.NoError(t, err)

	rec.err = nil
	_, err = r.Step(ctx, 0.016)
	require.NoError(t, err, "a success resets the failure streak")

	rec.err = errors.New("db down")
	for i := 0; i < 2; i++ {
		_, err = r.Step(ctx, 0.016)
		require.NoError(t, err)
	}
	_, err = r.Step(ctx, 0.016)
	require.Error(t, err)

	var simErr *types.SimulatorError
	require.ErrorAs(t, err, &simErr)
	assert.False(t, simErr.Recoverable)
	assert.EqualError(t, errors.Unwrap(err), "db down")
	assert.Equal(t, 6, rec.calls)
}

func TestStepResetSignal(t *testing.T) {
	held := input.NewHeldKeys()
	r := newRunner(t, held, &fakeUpdater{}, DefaultConfig())
	ctx := context.Background()

	held.Press("e")
	for i := 0; i < 30; i++ {
		_, err := r.Step(ctx, 0.05)
		require.NoError(t, err)
	}
	held.Replace("r")
	snap, err := r.Step(ctx, 0.05)
	require.NoError(t, err)
	assert.True(t, snap.ResetRequested)
	assert.Equal(t, types.Vec3{X: 0, Y: 0.5, Z: 0}, snap.Position)
	assert.Zero(t, snap.Speed)
}

func TestStartStopsOnCancel(t *testing.T) {
	upd := &fakeUpdater{}
	r := newRunner(t, input.NewHeldKeys(), upd, Config{FrameRate: 200})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := r.Start(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Greater(t, upd.count(), 0)
	upd.mu.Lock()
	defer upd.mu.Unlock()
	assert.Greater(t, upd.snaps[len(upd.snaps)-1].SimTime, 0.0)
}

func TestStartReturnsFrameError(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("broken")}
	r := newRunner(t, input.NewHeldKeys(), &fakeUpdater{}, Config{FrameRate: 500, MaxRecordErrors: 1}, WithRecorder(rec))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.Start(ctx)
	var simErr *types.SimulatorError
	require.ErrorAs(t, err, &simErr)
}

func TestFrameClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &FrameClock{now: func() time.Time { return now }}

	assert.Equal(t, 0.0, c.Tick())
	now = now.Add(16 * time.Millisecond)
	assert.InDelta(t, 0.016, c.Tick(), 1e-12)
	now = now.Add(2 * time.Second)
	assert.InDelta(t, 2.0, c.Tick(), 1e-12)
}

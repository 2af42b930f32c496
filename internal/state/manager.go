package state

import (
	"sync"
	"time"

	"github.com/eytandecker/flightsim-dynamics/pkg/types"
)

// Manager holds a concurrent-safe cache of the last published vehicle snapshot.
type Manager struct {
	mu             sync.RWMutex
	snapshot       types.VehicleSnapshot
	lastUpdated    time.Time
	staleThreshold time.Duration
	stopErr        error
	now            func() time.Time
}

// NewManager creates a Manager with the given stale threshold.
// A zero threshold disables staleness checking.
func NewManager(staleThreshold time.Duration) *Manager {
	return &Manager{staleThreshold: staleThreshold, now: time.Now}
}

// Update stores a new snapshot and records the current time.
func (m *Manager) Update(snap types.VehicleSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snap
	m.lastUpdated = m.now()
}

// Stop records why the publisher stopped. Later reads return err.
func (m *Manager) Stop(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopErr = err
}

// GetSnapshot returns the cached snapshot, or ErrStale if nothing has been
// published yet or the data age exceeds the stale threshold.
func (m *Manager) GetSnapshot() (types.VehicleSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.stopErr != nil {
		return types.VehicleSnapshot{}, m.stopErr
	}
	if m.lastUpdated.IsZero() {
		return types.VehicleSnapshot{}, ErrStale
	}
	if m.staleThreshold > 0 && m.now().Sub(m.lastUpdated) > m.staleThreshold {
		return types.VehicleSnapshot{}, ErrStale
	}
	snap := m.snapshot
	snap.HeldKeys = append([]string(nil), m.snapshot.HeldKeys...)
	return snap, nil
}

// LastUpdated returns the time of the most recent Update, or zero if never updated.
func (m *Manager) LastUpdated() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdated
}

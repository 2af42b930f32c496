package input

import (
	"slices"
	"sync"
)

// Key identifies a held input, using browser KeyboardEvent.key names ("w", "ArrowUp").
type Key string

// KeySet is the set of inputs held during a frame.
type KeySet map[Key]struct{}

// NewKeySet builds a KeySet from the given keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether k is held.
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Keys returns the held keys in sorted order.
func (s KeySet) Keys() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// HeldKeys is a concurrency-safe held-key set fed by a host input device
// and read once per frame by the simulation loop.
type HeldKeys struct {
	mu   sync.RWMutex
	keys KeySet
}

// NewHeldKeys creates an empty HeldKeys.
func NewHeldKeys() *HeldKeys {
	return &HeldKeys{keys: make(KeySet)}
}

// Press marks keys as held.
func (h *HeldKeys) Press(keys ...Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, k := range keys {
		h.keys[k] = struct{}{}
	}
}

// Release marks keys as no longer held.
func (h *HeldKeys) Release(keys ...Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, k := range keys {
		delete(h.keys, k)
	}
}

// Replace sets the held set to exactly keys.
func (h *HeldKeys) Replace(keys ...Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = NewKeySet(keys...)
}

// Held returns a copy of the currently held set.
func (h *HeldKeys) Held() KeySet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(KeySet, len(h.keys))
	for k := range h.keys {
		out[k] = struct{}{}
	}
	return out
}

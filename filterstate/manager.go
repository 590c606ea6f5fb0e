// Package filterstate owns the mutable filter selection shared between the
// UI-facing surfaces. Readers get immutable snapshot clones; mutations
// notify subscribers so dependent views can re-aggregate.
package filterstate

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hangar-lab/demandview-go/filter"
)

// Manager is the single owner of the active filter selection.
// Safe for concurrent use.
type Manager struct {
	// notifyMu serializes each mutation together with its subscriber
	// notification, so listeners observe selections in application order.
	notifyMu sync.Mutex

	mu     sync.RWMutex
	snap   filter.Snapshot
	subs   map[int]func(filter.Snapshot)
	nextID int
	logger *slog.Logger
}

// NewManager creates a manager with an all-wildcard selection.
// A nil logger selects slog.Default().
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		subs:   make(map[int]func(filter.Snapshot)),
		logger: logger,
	}
}

// Snapshot returns an independent copy of the current selection. Callers
// may hold it across an aggregation pass without locking.
func (m *Manager) Snapshot() filter.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Clone()
}

// Set replaces one dimension's accepted values. Passing no values clears
// the dimension back to wildcard. Unknown dimension names are an error.
func (m *Manager) Set(dimension string, values ...string) error {
	if !knownDimension(dimension) {
		return fmt.Errorf("filterstate: unknown dimension %q", dimension)
	}

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	m.snap = m.snap.WithDimension(dimension, filter.NewSet(values...))
	snap := m.snap.Clone()
	m.mu.Unlock()

	m.logger.Debug("filter dimension updated",
		"dimension", dimension,
		"values", len(values),
	)
	m.notify(snap)
	return nil
}

// Clear resets one dimension to wildcard.
func (m *Manager) Clear(dimension string) error {
	return m.Set(dimension)
}

// ClearAll resets every dimension to wildcard.
func (m *Manager) ClearAll() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	m.snap = filter.Snapshot{}
	snap := m.snap.Clone()
	m.mu.Unlock()

	m.logger.Debug("filter selection cleared")
	m.notify(snap)
}

// Replace swaps in a complete selection, cloning it first so the caller
// keeps ownership of its copy.
func (m *Manager) Replace(snap filter.Snapshot) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	m.snap = snap.Clone()
	out := m.snap.Clone()
	m.mu.Unlock()

	m.notify(out)
}

// Subscribe registers a callback invoked with a snapshot clone after every
// mutation, in the order mutations are applied. The returned cancel function
// removes the subscription. Callbacks run synchronously on the mutating
// goroutine and must not call back into the manager's mutators.
func (m *Manager) Subscribe(fn func(filter.Snapshot)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(snap filter.Snapshot) {
	m.mu.RLock()
	fns := make([]func(filter.Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
}

func knownDimension(name string) bool {
	for _, d := range filter.Dimensions {
		if d == name {
			return true
		}
	}
	return false
}

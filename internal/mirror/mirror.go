// Package mirror implements the State Mirror & Scheduler: a process-local,
// periodically refreshed snapshot of every effect category's state, kept
// consistent under a single lock and reconciled against in-flight
// optimistic writes from the Facade.
//
// The background refresher (see Scheduler in scheduler.go) re-reads every
// category on a timer; Mirror itself only holds the last-known state and
// arbitrates between a refresh's fresh read and a caller's more recent
// local edit.
package mirror

import (
	"sync"

	"github.com/jdesfossez/gt1000ctl/internal/effect"
)

// Mirror holds the last-known state of every effect category instance,
// each stamped with the monotonic timestamp of the refresh pass that
// produced it. Reads take a consistent snapshot under M_mirror; refresh
// holds the lock only around the swap at the end of each category's pass,
// not across the category's individual field fetches.
type Mirror struct {
	mu           sync.Mutex
	perCategory  map[string][]effect.State
	lastSyncTS   map[string]int64
}

// New builds an empty Mirror. It becomes populated after the first
// refresh pass (see Scheduler.RefreshOnce).
func New() *Mirror {
	return &Mirror{
		perCategory: make(map[string][]effect.State),
		lastSyncTS:  make(map[string]int64),
	}
}

// Snapshot is a consistent, caller-owned copy of the Mirror's contents at
// one instant. Callers must not mutate the returned maps' slice values in
// place; GetState always reallocates independent slices.
type Snapshot struct {
	PerCategory map[string][]effect.State
	LastSyncTS  map[string]int64
}

// GetState returns a deep-enough copy of the mirror suitable for handing
// to a caller outside the lock: the outer maps and the per-category
// slices are copies, so a concurrent refresh cannot mutate what the
// caller holds.
func (m *Mirror) GetState() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		PerCategory: make(map[string][]effect.State, len(m.perCategory)),
		LastSyncTS:  make(map[string]int64, len(m.lastSyncTS)),
	}
	for category, states := range m.perCategory {
		cp := make([]effect.State, len(states))
		copy(cp, states)
		snap.PerCategory[category] = cp
	}
	for category, ts := range m.lastSyncTS {
		snap.LastSyncTS[category] = ts
	}
	return snap
}

// LastSyncTS returns the monotonic timestamp of the last successful
// refresh of category, or 0 if it has never been refreshed.
func (m *Mirror) LastSyncTS(category string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSyncTS[category]
}

// replace swaps in a freshly read set of states for category, stamping
// syncTS as its last-sync timestamp. The Scheduler calls it once per
// category per refresh cycle, already having decided (via lastActionTS
// reconciliation) whether the fresh read should actually win. The other
// mutator is ApplyOptimistic, used for user writes.
func (m *Mirror) replace(category string, states []effect.State, syncTS int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perCategory[category] = states
	m.lastSyncTS[category] = syncTS
}

// ApplyOptimistic mutates a single (category, index) entry in place,
// without waiting for a refresh. The Facade calls this immediately after
// issuing a write, so the UI never flickers back to the pre-edit value
// for the refresh cycle that races the write. It does not touch
// lastSyncTS: only a genuine refresh pass advances that.
func (m *Mirror) ApplyOptimistic(category, index string, mutate func(*effect.State)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := m.perCategory[category]
	for i := range states {
		if states[i].Index == index {
			mutate(&states[i])
			return
		}
	}
}

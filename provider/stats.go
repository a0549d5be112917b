package provider

import (
	"sync/atomic"
)

// counters tracks one provider's participation across rounds.
// All fields are atomics: rounds may complete concurrently and the
// orchestrator never holds a lock across dispatch.
type counters struct {
	calls        atomic.Uint64
	agreements   atomic.Uint64
	lastSelected atomic.Uint64 // round number of the most recent selection
}

// Stats is the process-wide adaptive selection state: per-provider counters
// plus a global round counter. The key set is fixed at construction; lookups
// after that are read-only map access, so no lock is needed anywhere.
//
// Counters are only mutated after a round's reduction completes, never
// mid-flight, so a selection reads a stable snapshot of past rounds.
type Stats struct {
	rounds   atomic.Uint64
	counters map[ID]*counters
}

// NewStats builds counters for the given provider IDs.
func NewStats(ids []ID) *Stats {
	m := make(map[ID]*counters, len(ids))
	for _, id := range ids {
		m[id] = &counters{}
	}
	return &Stats{counters: m}
}

// NewRegistryStats builds counters for every registry provider.
func NewRegistryStats() *Stats {
	ids := make([]ID, 0, len(supportedProviders))
	for _, p := range supportedProviders {
		ids = append(ids, p.ID)
	}
	return NewStats(ids)
}

// RecordRound commits one completed round: every selected provider gets a
// call increment and its selection round updated; providers the reducer
// placed in the winning group additionally get an agreement increment.
// Returns the committed round number.
func (s *Stats) RecordRound(selected []ID, agreed func(ID) bool) uint64 {
	round := s.rounds.Add(1)
	for _, id := range selected {
		c, ok := s.counters[id]
		if !ok {
			// Custom endpoints are not tracked.
			continue
		}
		c.calls.Add(1)
		storeMax(&c.lastSelected, round)
		if agreed != nil && agreed(id) {
			c.agreements.Add(1)
		}
	}
	return round
}

// Rounds returns the number of completed rounds.
func (s *Stats) Rounds() uint64 {
	return s.rounds.Load()
}

// Snapshot is a point-in-time copy of one provider's counters.
type Snapshot struct {
	Calls        uint64
	Agreements   uint64
	LastSelected uint64
}

// Snapshot returns the current counters for a provider. Unknown IDs read as zero.
func (s *Stats) Snapshot(id ID) Snapshot {
	c, ok := s.counters[id]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Calls:        c.calls.Load(),
		Agreements:   c.agreements.Load(),
		LastSelected: c.lastSelected.Load(),
	}
}

// storeMax raises the atomic to round unless a concurrent later round
// already stored a higher value.
func storeMax(a *atomic.Uint64, round uint64) {
	for {
		old := a.Load()
		if old >= round || a.CompareAndSwap(old, round) {
			return
		}
	}
}

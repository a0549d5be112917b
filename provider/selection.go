package provider

import (
	"slices"
	"strings"
)

// defaultRotationPeriod controls how aggressively selection cycles lower
// ranked providers back in: every defaultRotationPeriod-th round donates one
// slot to the least recently selected leftover, and any candidate passed
// over for more than defaultRotationPeriod rounds is force-included.
const defaultRotationPeriod = 4

// Selector picks a subset of default-source candidates when more providers
// are available than the consensus strategy queries.
//
// Selection is biased toward providers whose past responses agreed with
// consensus, but it is fully deterministic: a pure function of the counter
// snapshot and the candidate list. No randomness and no clock reads, so
// every replica holding the same counters selects the same providers.
// Rotation guarantees starvation-freedom: a misbehaving provider's
// selection rate drops but never reaches permanent zero.
type Selector struct {
	stats          *Stats
	rotationPeriod uint64
}

func NewSelector(stats *Stats) *Selector {
	return &Selector{stats: stats, rotationPeriod: defaultRotationPeriod}
}

// Select returns total candidates. If total >= len(candidates), all
// candidates are returned in their given order.
func (s *Selector) Select(candidates []ID, total int) []ID {
	if total <= 0 {
		return nil
	}
	if total >= len(candidates) {
		return slices.Clone(candidates)
	}

	// The round this selection will execute as.
	round := s.stats.Rounds() + 1

	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b ID) int {
		if c := s.compareScores(a, b); c != 0 {
			return -c // higher score first
		}
		return strings.Compare(string(a), string(b))
	})

	selected := slices.Clone(ranked[:total])
	leftovers := ranked[total:]

	// Candidates passed over for more than a full rotation period are due
	// now, most starved first. They displace the lowest ranked picks.
	overdue := s.overdue(leftovers, round)
	if len(overdue) > 0 {
		if len(overdue) >= total {
			return overdue[:total]
		}
		return append(selected[:total-len(overdue)], overdue...)
	}

	// On rotation rounds, donate the last slot to the least recently
	// selected leftover so the ranking can never freeze the same subset.
	if round%s.rotationPeriod == 0 {
		selected[total-1] = s.leastRecentlySelected(leftovers)
	}

	return selected
}

// compareScores orders two providers by Laplace-smoothed agreement rate:
// (agreements+1)/(calls+2), compared by cross-multiplication to keep the
// arithmetic exact and replica-independent.
func (s *Selector) compareScores(a, b ID) int {
	sa, sb := s.stats.Snapshot(a), s.stats.Snapshot(b)
	left := (sa.Agreements + 1) * (sb.Calls + 2)
	right := (sb.Agreements + 1) * (sa.Calls + 2)
	switch {
	case left > right:
		return 1
	case left < right:
		return -1
	default:
		return 0
	}
}

func (s *Selector) overdue(leftovers []ID, round uint64) []ID {
	var out []ID
	for _, id := range leftovers {
		last := s.stats.Snapshot(id).LastSelected
		if round-last > s.rotationPeriod {
			out = append(out, id)
		}
	}
	slices.SortStableFunc(out, func(a, b ID) int {
		la, lb := s.stats.Snapshot(a).LastSelected, s.stats.Snapshot(b).LastSelected
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		default:
			return strings.Compare(string(a), string(b))
		}
	})
	return out
}

func (s *Selector) leastRecentlySelected(leftovers []ID) ID {
	best := leftovers[0]
	bestLast := s.stats.Snapshot(best).LastSelected
	for _, id := range leftovers[1:] {
		last := s.stats.Snapshot(id).LastSelected
		if last < bestLast || (last == bestLast && id < best) {
			best, bestLast = id, last
		}
	}
	return best
}

package consensus

import (
	"errors"
	"fmt"
)

// ErrInvalidStrategy tags strategy validation failures. It is a
// configuration error: requests carrying an invalid strategy are rejected
// before any provider is contacted.
var ErrInvalidStrategy = errors.New("invalid consensus strategy")

// Strategy selects how a round's outcomes reduce to a verdict.
//
// The zero value is equality: every queried provider must return the same
// outcome. Setting Threshold relaxes that to agreement among at least Min
// of the queried providers.
type Strategy struct {
	Threshold *Threshold `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// Threshold describes min-of-total agreement. Total bounds how many
// providers are queried; Min is the smallest group of byte-identical
// outcomes that forms a verdict.
type Threshold struct {
	Min uint8 `json:"min" yaml:"min"`

	// Total is the number of providers to query. When nil it defaults to
	// the number of resolved providers. When set against an explicit
	// provider list it must match that list's length exactly.
	Total *uint8 `json:"total,omitempty" yaml:"total,omitempty"`
}

// Equality returns the unanimity strategy.
func Equality() Strategy {
	return Strategy{}
}

// ThresholdOf returns a min-of-total threshold strategy.
func ThresholdOf(min, total uint8) Strategy {
	return Strategy{Threshold: &Threshold{Min: min, Total: &total}}
}

// IsEquality reports whether the strategy demands unanimity.
func (s Strategy) IsEquality() bool {
	return s.Threshold == nil
}

// Validate checks the strategy's internal bounds: a threshold needs
// 2 <= min <= total. Whether enough providers actually resolve to satisfy
// total is checked at resolution time, not here.
func (s Strategy) Validate() error {
	t := s.Threshold
	if t == nil {
		return nil
	}
	if t.Min < 2 {
		return fmt.Errorf("%w: threshold min must be at least 2, got %d", ErrInvalidStrategy, t.Min)
	}
	if t.Total != nil && t.Min > *t.Total {
		return fmt.Errorf("%w: threshold min %d exceeds total %d", ErrInvalidStrategy, t.Min, *t.Total)
	}
	return nil
}

// QueryCount returns how many providers the strategy queries out of
// available candidates. Equality queries every candidate. A threshold
// queries Total (or all candidates when Total is nil) and fails when fewer
// candidates are available than it needs.
func (s Strategy) QueryCount(available int) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	t := s.Threshold
	if t == nil {
		return available, nil
	}
	want := available
	if t.Total != nil {
		want = int(*t.Total)
	}
	if available < want || available < int(t.Min) {
		return 0, fmt.Errorf("%w: strategy needs %d providers, only %d resolved",
			ErrInvalidStrategy, max(want, int(t.Min)), available)
	}
	return want, nil
}

// Reduce applies the strategy to a completed round. The strategy must have
// passed Validate; Reduce does not re-check bounds.
func (s Strategy) Reduce(outcomes Outcomes) Verdict {
	if s.Threshold != nil {
		return ReduceThreshold(int(s.Threshold.Min), outcomes)
	}
	return ReduceEquality(outcomes)
}

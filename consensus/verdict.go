package consensus

// Verdict is the reduction of one round: either every grouping rule was
// satisfied and one outcome speaks for the round (Consistent), or the
// providers disagreed and the full per-provider breakdown is returned
// (Inconsistent). Exactly one of the two fields is populated.
type Verdict struct {
	Consistent   *Outcome `json:"consistent,omitempty"`
	Inconsistent Outcomes `json:"inconsistent,omitempty"`
}

// NewConsistent wraps the round's single agreed outcome.
func NewConsistent(outcome Outcome) Verdict {
	return Verdict{Consistent: &outcome}
}

// NewInconsistent wraps the full per-provider breakdown of a disagreement.
func NewInconsistent(outcomes Outcomes) Verdict {
	return Verdict{Inconsistent: outcomes}
}

// IsConsistent reports whether the round reached agreement.
func (v Verdict) IsConsistent() bool {
	return v.Consistent != nil
}

// Map applies f to every outcome in the verdict, preserving its shape.
func (v Verdict) Map(f func(Outcome) Outcome) Verdict {
	if v.Consistent != nil {
		return NewConsistent(f(*v.Consistent))
	}
	mapped := make(Outcomes, len(v.Inconsistent))
	for i, so := range v.Inconsistent {
		mapped[i] = SourcedOutcome{Source: so.Source, Outcome: f(so.Outcome)}
	}
	return NewInconsistent(mapped)
}

// ExpectConsistent returns the agreed outcome and panics on disagreement.
// Test helper.
func (v Verdict) ExpectConsistent() Outcome {
	if v.Consistent == nil {
		panic("expected consistent verdict, got inconsistent")
	}
	return *v.Consistent
}

// ExpectInconsistent returns the disagreement breakdown and panics on a
// consistent verdict. Test helper.
func (v Verdict) ExpectInconsistent() Outcomes {
	if v.Consistent != nil {
		panic("expected inconsistent verdict, got consistent")
	}
	return v.Inconsistent
}

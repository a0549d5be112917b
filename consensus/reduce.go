package consensus

// ReduceEquality is consistent only on unanimity: every outcome, error
// outcomes included, must share the same canonical identity. A single
// dissenting provider forces the full breakdown.
func ReduceEquality(outcomes Outcomes) Verdict {
	if len(outcomes) == 0 {
		return NewInconsistent(nil)
	}
	first := outcomes[0].Outcome
	firstKey := first.key()
	for _, so := range outcomes[1:] {
		if so.Outcome.key() != firstKey {
			return NewInconsistent(outcomes)
		}
	}
	return NewConsistent(first)
}

// ReduceThreshold groups outcomes by canonical identity and is consistent
// iff exactly one group reaches min members. Two groups reaching min at
// once are contradictory majorities: picking either would reward
// first-arrival over genuine agreement, so the round is inconsistent
// regardless of their relative sizes. Error outcomes group like values,
// so a quorum of identical failures is itself a consistent verdict.
func ReduceThreshold(min int, outcomes Outcomes) Verdict {
	if min < 1 || len(outcomes) < min {
		return NewInconsistent(outcomes)
	}
	sizes := make(map[string]int, len(outcomes))
	var winner Outcome
	winners := 0
	for _, so := range outcomes {
		k := so.Outcome.key()
		sizes[k]++
		if sizes[k] == min {
			winner = so.Outcome
			winners++
		}
	}
	if winners == 1 {
		return NewConsistent(winner)
	}
	return NewInconsistent(outcomes)
}

package cycles

// ChargingPolicy decides what a caller pays for an outcall given its raw
// cost. In demo mode the service absorbs all costs and callers pay nothing.
type ChargingPolicy struct {
	chargeCaller      bool
	collateralPerNode Cycles
	numNodes          uint32
}

// NewChargingPolicy returns the production policy: raw cost plus a fixed
// per-node collateral margin.
func NewChargingPolicy(numNodes uint32) ChargingPolicy {
	return ChargingPolicy{
		chargeCaller:      true,
		collateralPerNode: CollateralCyclesPerNode,
		numNodes:          numNodes,
	}
}

// NewDemoChargingPolicy returns a policy under which every call is free.
func NewDemoChargingPolicy(numNodes uint32) ChargingPolicy {
	return ChargingPolicy{
		chargeCaller: false,
		numNodes:     numNodes,
	}
}

func (p ChargingPolicy) ChargesCaller() bool {
	return p.chargeCaller
}

// CyclesToCharge converts a raw outcall cost into the amount billed to the
// caller.
func (p ChargingPolicy) CyclesToCharge(cost Cycles) Cycles {
	if !p.chargeCaller {
		return 0
	}
	return cost + p.collateralPerNode*Cycles(p.numNodes)
}

// TotalCharge sums the billed amount over a batch of per-provider outcall
// costs.
func (p ChargingPolicy) TotalCharge(costs []Cycles) Cycles {
	var total Cycles
	for _, cost := range costs {
		total += p.CyclesToCharge(cost)
	}
	return total
}

// ValidatePayment checks an attached payment against the total charge for
// a batch of per-provider outcall costs. It returns the total charge and,
// when the payment falls short, a TooFewCyclesError. Validation happens
// before any outcall: a failed check costs the caller nothing.
func (p ChargingPolicy) ValidatePayment(attached Cycles, costs []Cycles) (Cycles, error) {
	total := p.TotalCharge(costs)
	if attached < total {
		return 0, &TooFewCyclesError{Expected: total, Received: attached}
	}
	return total, nil
}

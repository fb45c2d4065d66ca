package strategy

import (
	"math"

	"storage-bca/internal/model"
)

// DefaultDischargeMultiplier is how far the balancing price must exceed the
// wholesale price before stored energy is sold.
const DefaultDischargeMultiplier = 1.3

// RuleBased charges from overproduction or negative balancing prices and
// discharges into spare transmission capacity when balancing prices are high.
// Charging wins when both apply.
type RuleBased struct {
	DischargeMultiplier float64
}

func NewRuleBased(multiplier float64) *RuleBased {
	if multiplier <= 0 {
		multiplier = DefaultDischargeMultiplier
	}
	return &RuleBased{DischargeMultiplier: multiplier}
}

func (s *RuleBased) Name() string { return "rule-based" }

func (s *RuleBased) Decide(ctx Context) Decision {
	it := ctx.Interval
	rating := ctx.Storage.Params.PowerMW
	eff := ctx.Storage.Params.Efficiency()
	delta := it.TransmissionCapacityMW - it.AvailablePowerMW

	var d Decision
	switch {
	case delta < 0:
		d.TheoreticalCharge = -delta
	case it.BalancingPrice < 0:
		d.TheoreticalCharge = rating
	}
	d.EffectiveCharge = d.TheoreticalCharge * eff

	if delta >= 0 {
		d.MaxDischarge = -math.Min(rating, delta/eff)
		if it.BalancingPrice > s.DischargeMultiplier*it.WholesalePrice {
			d.TheoreticalDischarge = d.MaxDischarge
		}
	}

	if d.EffectiveCharge != 0 {
		d.Command = model.Dispatch{PowerMW: d.EffectiveCharge}
	} else {
		d.Command = model.Dispatch{PowerMW: d.TheoreticalDischarge}
	}
	return d
}

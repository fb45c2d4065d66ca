// Package finance turns annualized storage income into an investment case:
// CAPEX, OPEX, a constant-annuity cash-flow vector, IRR and NPV.
package finance

import (
	"errors"
	"math"
)

// Defaults for IRR sanitization. A cash-flow vector with no real IRR is
// reported at the fallback; one above the ceiling is reported as NaN.
const (
	DefaultIRRFallback = -0.20
	DefaultIRRCeiling  = 1.0
)

// Params are the run-wide investment assumptions.
type Params struct {
	// PowerCapexPerKW is EUR per kW of rated power.
	PowerCapexPerKW float64
	// CapacityCapexPerKWh is EUR per kWh of energy capacity.
	CapacityCapexPerKWh float64
	// OPEXRate is the annual OPEX as a fraction of CAPEX.
	OPEXRate         float64
	ProjectLifeYears int
	DiscountRate     float64
	IRRFallback      float64
	IRRCeiling       float64
}

func (p Params) Validate() error {
	if p.PowerCapexPerKW < 0 || p.CapacityCapexPerKWh < 0 {
		return errors.New("unit CAPEX must be >= 0")
	}
	if p.OPEXRate < 0 {
		return errors.New("OPEX rate must be >= 0")
	}
	if p.ProjectLifeYears <= 0 {
		return errors.New("project life must be > 0 years")
	}
	if p.DiscountRate <= -1 {
		return errors.New("discount rate must be > -1")
	}
	if p.IRRCeiling <= 0 {
		return errors.New("IRR ceiling must be > 0")
	}
	return nil
}

// Summary is the financial outcome of one scenario.
type Summary struct {
	CAPEX           float64
	OPEX            float64
	AnnualNetIncome float64
	CashFlows       []float64
	IRR             float64
	NPV             float64
}

// CAPEX is the up-front cost of a store with the given rating and capacity.
func CAPEX(powerMW, capacityMWh float64, p Params) float64 {
	return 1000 * (p.PowerCapexPerKW*powerMW + p.CapacityCapexPerKWh*capacityMWh)
}

// CashFlows is [-capex] followed by years copies of (annualNet - opex).
func CashFlows(capex, annualNet, opex float64, years int) []float64 {
	cf := make([]float64, years+1)
	cf[0] = -capex
	for i := 1; i <= years; i++ {
		cf[i] = annualNet - opex
	}
	return cf
}

// NPV discounts cf[1:] from year 1 and adds cf[0] undiscounted.
func NPV(rate float64, cf []float64) float64 {
	if len(cf) == 0 {
		return 0
	}
	npv := cf[0]
	df := 1.0
	for _, c := range cf[1:] {
		df /= 1 + rate
		npv += c * df
	}
	return npv
}

// SanitizeIRR maps an unsolvable IRR (NaN) to the fallback and an IRR above
// the ceiling to NaN.
func (p Params) SanitizeIRR(irr float64) float64 {
	if math.IsNaN(irr) {
		return p.IRRFallback
	}
	if irr > p.IRRCeiling {
		return math.NaN()
	}
	return irr
}

// Evaluate builds the cash flows for a store and computes IRR and NPV.
func Evaluate(p Params, powerMW, capacityMWh, annualNetIncome float64) Summary {
	capex := CAPEX(powerMW, capacityMWh, p)
	opex := capex * p.OPEXRate
	cf := CashFlows(capex, annualNetIncome, opex, p.ProjectLifeYears)
	return Summary{
		CAPEX:           capex,
		OPEX:            opex,
		AnnualNetIncome: annualNetIncome,
		CashFlows:       cf,
		IRR:             p.SanitizeIRR(IRR(cf)),
		NPV:             NPV(p.DiscountRate, cf),
	}
}

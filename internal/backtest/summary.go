package backtest

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Annual holds ledger totals converted to per-year figures.
// Energies are MWh/yr, money is EUR/yr.
type Annual struct {
	YearsCovered float64

	AvailableEnergy      float64
	CurtailedEnergy      float64
	TotalGeneration      float64
	ConversionLosses     float64
	ResidualStoredEnergy float64
	ExportedViaStorage   float64

	BaselineIncome        float64
	BalancingIncome       float64
	StorageIncome         float64
	ExtraGenerationIncome float64
}

// TotalWithStorage is storage-attributed income including extra generation.
func (a Annual) TotalWithStorage() float64 {
	return a.StorageIncome + a.ExtraGenerationIncome
}

// NetIncome is the income attributable to storage over the no-storage baseline.
func (a Annual) NetIncome() float64 {
	return a.TotalWithStorage() - a.BaselineIncome
}

// Summarize annualizes a ledger. years is the span the ledger covers and
// must be positive.
func Summarize(res *Result, years float64) (Annual, error) {
	if res == nil || len(res.Ledger) == 0 {
		return Annual{}, fmt.Errorf("empty ledger")
	}
	if years <= 0 {
		return Annual{}, fmt.Errorf("time series must span at least one whole day to annualize, got %g years", years)
	}

	n := len(res.Ledger)
	col := func(get func(r *LedgerRow) float64) []float64 {
		out := make([]float64, n)
		for i := range res.Ledger {
			out[i] = get(&res.Ledger[i])
		}
		return out
	}
	energy := func(get func(r *LedgerRow) float64) float64 {
		return floats.Sum(col(get)) * res.StepHours
	}
	money := func(get func(r *LedgerRow) float64) float64 {
		return floats.Sum(col(get))
	}

	available := energy(func(r *LedgerRow) float64 { return r.AvailablePowerMW })
	exported := energy(func(r *LedgerRow) float64 { return r.ExportedPowerMW })
	extra := energy(func(r *LedgerRow) float64 { return r.ExtraGenerationMW })
	viaStorage := energy(func(r *LedgerRow) float64 { return r.NetExportedWithStorageMW })
	curtailed := energy(func(r *LedgerRow) float64 { return r.CurtailedPowerMW })

	return Annual{
		YearsCovered: years,

		AvailableEnergy:      available / years,
		CurtailedEnergy:      curtailed / years,
		TotalGeneration:      (exported + extra) / years,
		ConversionLosses:     (exported + extra - viaStorage - res.FinalSOC) / years,
		ResidualStoredEnergy: res.FinalSOC / years,
		ExportedViaStorage:   viaStorage / years,

		BaselineIncome:        money(func(r *LedgerRow) float64 { return r.BaselineIncome }) / years,
		BalancingIncome:       money(func(r *LedgerRow) float64 { return r.BalancingIncome }) / years,
		StorageIncome:         money(func(r *LedgerRow) float64 { return r.StorageIncome }) / years,
		ExtraGenerationIncome: money(func(r *LedgerRow) float64 { return r.ExtraGenerationIncome }) / years,
	}, nil
}

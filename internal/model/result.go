package model

import "math"

// ResultColumns names the SimulationResult outputs in write-back order.
var ResultColumns = []string{
	"Potential Generation (MWh/yr)",
	"Generation Constraint (MWh/yr)",
	"Available Energy (MWh/yr)",
	"Curtailed Energy (MWh/yr)",
	"Total Generation (MWh/yr)",
	"Conversion Losses (MWh/yr)",
	"Residual Stored Energy (MWh/yr)",
	"Exported via Storage (MWh/yr)",
	"CAPEX (EUR)",
	"OPEX (EUR/yr)",
	"Baseline Income (EUR/yr)",
	"Revenue A Balancing (EUR/yr)",
	"Revenue B Storage (EUR/yr)",
	"Revenue C Extra Generation (EUR/yr)",
	"Total Revenue with Storage (EUR/yr)",
	"IRR",
	"NPV (EUR)",
}

// SimulationResult is the annualized outcome of one scenario.
// Energies are MWh/yr, money is EUR or EUR/yr. NaN marks a value that could
// not be derived from the inputs (or an undefined IRR).
type SimulationResult struct {
	PotentialGeneration   float64 `json:"potential_generation"`
	GenerationConstraint  float64 `json:"generation_constraint"`
	AvailableEnergy       float64 `json:"available_energy"`
	CurtailedEnergy       float64 `json:"curtailed_energy"`
	TotalGeneration       float64 `json:"total_generation"`
	ConversionLosses      float64 `json:"conversion_losses"`
	ResidualStoredEnergy  float64 `json:"residual_stored_energy"`
	ExportedViaStorage    float64 `json:"exported_via_storage"`
	CAPEX                 float64 `json:"capex"`
	OPEX                  float64 `json:"opex"`
	BaselineIncome        float64 `json:"baseline_income"`
	RevenueBalancing      float64 `json:"revenue_balancing"`
	RevenueStorage        float64 `json:"revenue_storage"`
	RevenueExtraGen       float64 `json:"revenue_extra_generation"`
	TotalRevenueWithStore float64 `json:"total_revenue_with_storage"`
	IRR                   float64 `json:"irr"`
	NPV                   float64 `json:"npv"`
}

// Values returns the outputs in ResultColumns order.
func (r SimulationResult) Values() []float64 {
	return []float64{
		r.PotentialGeneration,
		r.GenerationConstraint,
		r.AvailableEnergy,
		r.CurtailedEnergy,
		r.TotalGeneration,
		r.ConversionLosses,
		r.ResidualStoredEnergy,
		r.ExportedViaStorage,
		r.CAPEX,
		r.OPEX,
		r.BaselineIncome,
		r.RevenueBalancing,
		r.RevenueStorage,
		r.RevenueExtraGen,
		r.TotalRevenueWithStore,
		r.IRR,
		r.NPV,
	}
}

// IRRDefined reports whether the IRR is a number.
func (r SimulationResult) IRRDefined() bool {
	return !math.IsNaN(r.IRR)
}

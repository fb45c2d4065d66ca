package runner

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"storage-bca/internal/backtest"
	"storage-bca/internal/config"
	"storage-bca/internal/data"
	"storage-bca/internal/finance"
	"storage-bca/internal/model"
	"storage-bca/internal/policy"
	"storage-bca/internal/strategy"
)

// Evaluator runs the policy, dispatch, attribution and financial steps for
// one scenario at a time against a shared, read-only time series.
type Evaluator struct {
	Table    *data.Table
	Policy   policy.Policy
	Strategy strategy.Strategy
	Step     time.Duration

	RoundTripEfficiency   float64
	GreenCertificatePrice float64
	Finance               finance.Params
}

// NewEvaluator builds an evaluator for table from the run configuration.
func NewEvaluator(cfg *config.Config, table *data.Table) (*Evaluator, error) {
	kind, err := cfg.PolicyKind()
	if err != nil {
		return nil, err
	}
	pol, err := policy.New(kind, cfg.PolicyParams())
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		Table:                 table,
		Policy:                pol,
		Strategy:              strategy.NewRuleBased(cfg.Dispatch.DischargePriceMultiplier),
		Step:                  cfg.Step(),
		RoundTripEfficiency:   cfg.StorageRTE,
		GreenCertificatePrice: cfg.GreenCertificatePrice,
		Finance:               cfg.FinanceParams(),
	}, nil
}

// Outcome is everything computed for one scenario.
type Outcome struct {
	Scenario model.Scenario
	Result   model.SimulationResult
	Annual   backtest.Annual
	Finance  finance.Summary
	// Ledger is nil when the runner was not asked to keep ledgers.
	Ledger *backtest.Result
}

// Evaluate simulates s and summarizes it. It does not modify the evaluator.
func (e *Evaluator) Evaluate(s model.Scenario) (*Outcome, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Check(e.Policy, e.Table); err != nil {
		return nil, fmt.Errorf("%s policy: %w", e.Policy.Kind(), err)
	}

	available, err := e.Policy.AvailablePower(e.Table, s)
	if err != nil {
		return nil, fmt.Errorf("available power: %w", err)
	}
	capacity, err := e.Policy.TransmissionCapacity(e.Table, s)
	if err != nil {
		return nil, fmt.Errorf("transmission capacity: %w", err)
	}
	prices, err := policy.BalancingPrices(e.Table, s.Market)
	if err != nil {
		return nil, fmt.Errorf("balancing prices (%q): %w", s.Market.String(), err)
	}

	ts := e.Table.Timestamps()
	intervals := make([]model.Interval, len(ts))
	for i := range ts {
		intervals[i] = model.Interval{
			Start:                  ts[i],
			AvailablePowerMW:       available[i],
			TransmissionCapacityMW: capacity[i],
			BalancingPrice:         prices[i],
			WholesalePrice:         s.PPAPrice,
			GreenCertificatePrice:  e.GreenCertificatePrice,
		}
	}

	st, err := model.NewStorage(s.StorageParams(e.RoundTripEfficiency))
	if err != nil {
		return nil, err
	}
	res, err := backtest.New(e.Step).Run(intervals, st, e.Strategy, s.BalancingFraction)
	if err != nil {
		return nil, err
	}
	annual, err := backtest.Summarize(res, e.Table.YearsCovered())
	if err != nil {
		return nil, err
	}
	fin := finance.Evaluate(e.Finance, st.Params.PowerMW, st.Params.CapacityMWh(), annual.NetIncome())

	return &Outcome{
		Scenario: s,
		Annual:   annual,
		Finance:  fin,
		Ledger:   res,
		Result: model.SimulationResult{
			PotentialGeneration:   e.optionalEnergy(data.ColPotentialGeneration, annual.YearsCovered),
			GenerationConstraint:  e.optionalEnergy(data.ColGenerationConstraint, annual.YearsCovered),
			AvailableEnergy:       annual.AvailableEnergy,
			CurtailedEnergy:       annual.CurtailedEnergy,
			TotalGeneration:       annual.TotalGeneration,
			ConversionLosses:      annual.ConversionLosses,
			ResidualStoredEnergy:  annual.ResidualStoredEnergy,
			ExportedViaStorage:    annual.ExportedViaStorage,
			CAPEX:                 fin.CAPEX,
			OPEX:                  fin.OPEX,
			BaselineIncome:        annual.BaselineIncome,
			RevenueBalancing:      annual.BalancingIncome - annual.BaselineIncome,
			RevenueStorage:        annual.StorageIncome - annual.BalancingIncome,
			RevenueExtraGen:       annual.ExtraGenerationIncome,
			TotalRevenueWithStore: annual.TotalWithStorage(),
			IRR:                   fin.IRR,
			NPV:                   fin.NPV,
		},
	}, nil
}

// optionalEnergy annualizes a column when the time series has it, else NaN.
func (e *Evaluator) optionalEnergy(col string, years float64) float64 {
	if !e.Table.Has(col) {
		return math.NaN()
	}
	vals, err := e.Table.Column(col)
	if err != nil {
		return math.NaN()
	}
	return floats.Sum(vals) * e.Step.Hours() / years
}

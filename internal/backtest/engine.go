package backtest

import (
	"fmt"
	"time"

	"storage-bca/internal/model"
	"storage-bca/internal/strategy"
)

type Engine struct {
	step time.Duration
}

// New returns an engine for a fixed settlement period length.
func New(step time.Duration) *Engine { return &Engine{step: step} }

// Run simulates storage over the intervals in order, starting from an empty
// store, and attributes income to every period. balancingFraction is the
// share of exported power offered on the balancing market.
func (e *Engine) Run(intervals []model.Interval, st *model.Storage, strat strategy.Strategy, balancingFraction float64) (*Result, error) {
	if st == nil {
		return nil, fmt.Errorf("storage is nil")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if len(intervals) == 0 {
		return nil, fmt.Errorf("no intervals")
	}
	if e.step <= 0 {
		return nil, fmt.Errorf("settlement period must be > 0")
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}

	dtH := e.step.Hours()
	st.State.SOC = 0
	ledger := make([]LedgerRow, 0, len(intervals))

	for idx, it := range intervals {
		dec := strat.Decide(strategy.Context{
			Index:    idx,
			Interval: it,
			Storage:  st,
		})

		res, err := st.Apply(dec.Command, dtH)
		if err != nil {
			return nil, fmt.Errorf("interval %d apply dispatch: %w", idx, err)
		}

		exported := min(it.AvailablePowerMW, it.TransmissionCapacityMW)
		row := LedgerRow{
			Index:    idx,
			Interval: it,

			ExportedPowerMW:           exported,
			DeltaPowerMW:              it.TransmissionCapacityMW - it.AvailablePowerMW,
			BalancingAllocatedPowerMW: balancingFraction * exported,

			TheoreticalChargeMW:    dec.TheoreticalCharge,
			EffectiveChargeMW:      dec.EffectiveCharge,
			MaxDischargeMW:         dec.MaxDischarge,
			TheoreticalDischargeMW: dec.TheoreticalDischarge,
			CommandMW:              dec.Command.PowerMW,

			SOCEnd:     res.SOCEnd,
			NetRateMW:  res.NetRateMW,
			GridRateMW: res.GridRateMW,
			SOCPercent: st.SOCPercent(),

			Action: model.ActionFromRateMW(res.GridRateMW),
		}
		attribute(&row, st.Params.PowerMW, balancingFraction, dtH)
		ledger = append(ledger, row)
	}

	return &Result{
		Ledger:    ledger,
		FinalSOC:  st.State.SOC,
		StepHours: dtH,
	}, nil
}

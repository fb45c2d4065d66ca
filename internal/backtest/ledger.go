package backtest

import "storage-bca/internal/model"

// LedgerRow is one row of per-period output: the interval inputs plus every
// derived quantity, in dependency order. Powers are MW, money is EUR.
type LedgerRow struct {
	Index int

	model.Interval

	ExportedPowerMW           float64
	DeltaPowerMW              float64
	BalancingAllocatedPowerMW float64

	TheoreticalChargeMW    float64
	EffectiveChargeMW      float64
	MaxDischargeMW         float64
	TheoreticalDischargeMW float64
	CommandMW              float64

	SOCEnd     float64
	NetRateMW  float64
	GridRateMW float64
	SOCPercent float64

	Action model.Action
	Branch Branch

	BaselineIncome  float64
	BalancingIncome float64
	StorageIncome   float64

	NetExportedWithStorageMW float64
	ExtraGenerationMW        float64
	ExtraGenerationIncome    float64
	CurtailedPowerMW         float64
}

type Result struct {
	Ledger   []LedgerRow
	FinalSOC float64
	// StepHours is the settlement period length used for every row.
	StepHours float64
}

package backtest

import (
	"bytes"
	"encoding/csv"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-bca/internal/model"
	"storage-bca/internal/strategy"
)

func surplusIntervals(n int) []model.Interval {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.Interval, n)
	for i := range out {
		out[i] = model.Interval{
			Start:                  start.Add(time.Duration(i) * time.Hour),
			AvailablePowerMW:       5,
			TransmissionCapacityMW: 3,
			BalancingPrice:         40,
			WholesalePrice:         50,
			GreenCertificatePrice:  10,
		}
	}
	return out
}

func run(t *testing.T, durationH float64) *Result {
	t.Helper()
	st, err := model.NewStorage(model.StorageParams{PowerMW: 10, DurationHours: durationH, RoundTripEfficiency: 1})
	require.NoError(t, err)
	res, err := New(time.Hour).Run(surplusIntervals(4), st, strategy.NewRuleBased(0), 0)
	require.NoError(t, err)
	return res
}

func TestRunChargesSurplus(t *testing.T) {
	res := run(t, 1)
	require.Len(t, res.Ledger, 4)
	assert.Equal(t, 1.0, res.StepHours)
	assert.Equal(t, 8.0, res.FinalSOC)

	for i, r := range res.Ledger {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, float64(2*(i+1)), r.SOCEnd)
		assert.Equal(t, 3.0, r.ExportedPowerMW)
		assert.Equal(t, -2.0, r.DeltaPowerMW)
		assert.Equal(t, 2.0, r.GridRateMW)
		assert.Equal(t, model.ActionCharging, r.Action)
		assert.Equal(t, BranchOverproduction, r.Branch)
		assert.Equal(t, 0.0, r.CurtailedPowerMW)
		assert.Equal(t, 3.0, r.NetExportedWithStorageMW)
	}
}

func TestRunClipsAtCapacity(t *testing.T) {
	res := run(t, 0.25)
	require.Len(t, res.Ledger, 4)

	var soc, net, curtailed []float64
	var branches []Branch
	for _, r := range res.Ledger {
		soc = append(soc, r.SOCEnd)
		net = append(net, r.NetRateMW)
		curtailed = append(curtailed, r.CurtailedPowerMW)
		branches = append(branches, r.Branch)
	}
	assert.Equal(t, []float64{2, 2.5, 2.5, 2.5}, soc)
	assert.Equal(t, []float64{2, 0.5, 0, 0}, net)
	assert.Equal(t, []float64{0, 1.5, 2, 2}, curtailed)
	assert.Equal(t, []Branch{BranchOverproduction, BranchOverproduction, BranchIdle, BranchIdle}, branches)
	assert.Equal(t, model.ActionIdle, res.Ledger[3].Action)
	assert.Equal(t, 100.0, res.Ledger[3].SOCPercent)
}

func TestRunResetsStateOfCharge(t *testing.T) {
	st, err := model.NewStorage(model.StorageParams{PowerMW: 10, DurationHours: 1, RoundTripEfficiency: 1})
	require.NoError(t, err)
	st.State.SOC = 9

	res, err := New(time.Hour).Run(surplusIntervals(1), st, strategy.NewRuleBased(0), 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Ledger[0].SOCEnd)
}

func TestRunValidatesInputs(t *testing.T) {
	st, err := model.NewStorage(model.StorageParams{PowerMW: 1, DurationHours: 1, RoundTripEfficiency: 1})
	require.NoError(t, err)
	strat := strategy.NewRuleBased(0)

	_, err = New(time.Hour).Run(nil, st, strat, 0)
	assert.Error(t, err)
	_, err = New(time.Hour).Run(surplusIntervals(1), nil, strat, 0)
	assert.Error(t, err)
	_, err = New(time.Hour).Run(surplusIntervals(1), st, nil, 0)
	assert.Error(t, err)
	_, err = New(0).Run(surplusIntervals(1), st, strat, 0)
	assert.Error(t, err)
}

func mixedIntervals() []model.Interval {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []struct{ ap, atc, bp float64 }{
		{10, 8, 50},   // surplus charge
		{10, 20, -10}, // negative price, rating within balancing share
		{6, 20, -10},  // rating within export
		{2, 20, -10},  // rating above export
		{0, 20, 100},  // price spike, discharge
		{5, 10, 50},   // nothing to do
	}
	out := make([]model.Interval, len(rows))
	for i, r := range rows {
		out[i] = model.Interval{
			Start:                  start.Add(time.Duration(i) * time.Hour),
			AvailablePowerMW:       r.ap,
			TransmissionCapacityMW: r.atc,
			BalancingPrice:         r.bp,
			WholesalePrice:         50,
			GreenCertificatePrice:  10,
		}
	}
	return out
}

func TestRunCoversEveryBranch(t *testing.T) {
	st, err := model.NewStorage(model.StorageParams{PowerMW: 4, DurationHours: 10, RoundTripEfficiency: 1})
	require.NoError(t, err)
	res, err := New(time.Hour).Run(mixedIntervals(), st, strategy.NewRuleBased(0), 0.5)
	require.NoError(t, err)
	require.Len(t, res.Ledger, 6)

	var soc, storage []float64
	var branches []Branch
	var actions []model.Action
	for _, r := range res.Ledger {
		soc = append(soc, r.SOCEnd)
		storage = append(storage, r.StorageIncome)
		branches = append(branches, r.Branch)
		actions = append(actions, r.Action)
	}
	assert.Equal(t, []float64{2, 6, 10, 14, 10, 10}, soc)
	assert.Equal(t, []Branch{
		BranchOverproduction, BranchWithinBalancing, BranchWithinExport,
		BranchAboveExport, BranchDischarge, BranchIdle,
	}, branches)
	assert.Equal(t, []model.Action{
		model.ActionCharging, model.ActionCharging, model.ActionCharging,
		model.ActionCharging, model.ActionDischarging, model.ActionIdle,
	}, actions)
	assert.InDeltaSlice(t, []float64{480, 340, 170, 30, 400, 300}, storage, 1e-9)
	assert.Equal(t, 10.0, res.FinalSOC)
}

func TestRunKeepsInvariantsOnRandomSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	intervals := make([]model.Interval, 2000)
	for i := range intervals {
		intervals[i] = model.Interval{
			Start:                  start.Add(time.Duration(i) * 15 * time.Minute),
			AvailablePowerMW:       rng.Float64() * 15,
			TransmissionCapacityMW: rng.Float64() * 20,
			BalancingPrice:         rng.Float64()*250 - 50,
			WholesalePrice:         20 + rng.Float64()*60,
			GreenCertificatePrice:  rng.Float64() * 10,
		}
	}

	st, err := model.NewStorage(model.StorageParams{PowerMW: 10, DurationHours: 2, RoundTripEfficiency: 0.85})
	require.NoError(t, err)
	res, err := New(15*time.Minute).Run(intervals, st, strategy.NewRuleBased(0), 0.3)
	require.NoError(t, err)
	require.Len(t, res.Ledger, len(intervals))

	capacity := st.Params.CapacityMWh()
	prev := 0.0
	seen := map[Branch]int{}
	for i, r := range res.Ledger {
		require.GreaterOrEqual(t, r.SOCEnd, 0.0, "row %d", i)
		require.LessOrEqual(t, r.SOCEnd, capacity+1e-9, "row %d", i)
		require.InDelta(t, r.SOCEnd-prev, r.NetRateMW*res.StepHours, 1e-9, "row %d", i)
		require.Equal(t, model.ActionFromRateMW(r.GridRateMW), r.Action, "row %d", i)
		require.Equal(t, r.GridRateMW == 0, r.Branch == BranchIdle, "row %d", i)
		require.Equal(t, r.GridRateMW < 0, r.Branch == BranchDischarge, "row %d", i)
		require.GreaterOrEqual(t, int(r.Branch), int(BranchIdle), "row %d", i)
		require.LessOrEqual(t, int(r.Branch), int(BranchAboveExport), "row %d", i)
		seen[r.Branch]++
		prev = r.SOCEnd
	}
	assert.Equal(t, prev, res.FinalSOC)
	for _, b := range []Branch{BranchIdle, BranchDischarge, BranchOverproduction} {
		assert.Positive(t, seen[b], "branch %s never applied", b)
	}
}

type holdStrategy struct{}

func (holdStrategy) Name() string { return "hold" }

func (holdStrategy) Decide(strategy.Context) strategy.Decision { return strategy.Decision{} }

func TestRunIdleStorageEarnsBalancingIncome(t *testing.T) {
	st, err := model.NewStorage(model.StorageParams{PowerMW: 4, DurationHours: 10, RoundTripEfficiency: 0.9})
	require.NoError(t, err)
	res, err := New(time.Hour).Run(mixedIntervals(), st, holdStrategy{}, 0.5)
	require.NoError(t, err)

	for i, r := range res.Ledger {
		assert.Equal(t, 0.0, r.SOCEnd, "row %d", i)
		assert.Equal(t, 0.0, r.GridRateMW, "row %d", i)
		assert.Equal(t, BranchIdle, r.Branch, "row %d", i)
		assert.Equal(t, model.ActionIdle, r.Action, "row %d", i)
		assert.Equal(t, r.BalancingIncome, r.StorageIncome, "row %d", i)
		assert.Equal(t, 0.0, r.ExtraGenerationIncome, "row %d", i)
	}
	assert.Equal(t, 0.0, res.FinalSOC)
}

func TestSummarize(t *testing.T) {
	res := run(t, 0.25)

	a, err := Summarize(res, 1)
	require.NoError(t, err)
	assert.Equal(t, 20.0, a.AvailableEnergy)
	assert.Equal(t, 5.5, a.CurtailedEnergy)
	assert.Equal(t, 14.5, a.TotalGeneration)
	assert.Equal(t, 12.0, a.ExportedViaStorage)
	assert.Equal(t, 2.5, a.ResidualStoredEnergy)
	assert.InDelta(t, 0, a.ConversionLosses, 1e-12)

	assert.Equal(t, 720.0, a.BaselineIncome)
	assert.Equal(t, 720.0, a.BalancingIncome)
	assert.Equal(t, 720.0, a.StorageIncome)
	assert.Equal(t, 25.0, a.ExtraGenerationIncome)
	assert.Equal(t, 745.0, a.TotalWithStorage())
	assert.Equal(t, 25.0, a.NetIncome())

	half, err := Summarize(res, 2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, half.AvailableEnergy)
}

func TestSummarizeErrors(t *testing.T) {
	_, err := Summarize(&Result{}, 1)
	assert.Error(t, err)
	_, err = Summarize(run(t, 1), 0)
	assert.Error(t, err)
}

func TestWriteLedgerCSV(t *testing.T) {
	res := run(t, 1)
	path := filepath.Join(t.TempDir(), "ledgers", "base.csv")
	require.NoError(t, WriteLedgerCSV(path, res.Ledger))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, ledgerHeader, records[0])
	assert.Equal(t, "2023-01-01T00:00:00Z", records[1][1])
	assert.Equal(t, "CHARGING", records[1][19])
	assert.Equal(t, "C", records[1][20])
	assert.Equal(t, "8.000000", records[4][15])
}

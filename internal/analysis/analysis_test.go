package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-bca/internal/data"
	"storage-bca/internal/model"
)

func TestProfilePrices(t *testing.T) {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, 5)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * 15 * time.Minute)
	}
	tbl, err := data.NewTable(ts, map[string][]float64{
		data.ColBalancingPrice: {20, -10, 80, 0, 10},
	})
	require.NoError(t, err)

	p, err := ProfilePrices(tbl, model.MarketDefault, 50, 1.3)
	require.NoError(t, err)
	assert.Equal(t, "default", p.Market)
	assert.Equal(t, 5, p.Count)
	assert.Equal(t, start, p.Start)
	assert.Equal(t, start.Add(time.Hour), p.End)
	assert.Equal(t, -10.0, p.Min)
	assert.Equal(t, 80.0, p.Max)
	assert.InDelta(t, 20, p.Mean, 1e-12)
	assert.GreaterOrEqual(t, p.P05, p.Min)
	assert.LessOrEqual(t, p.P95, p.Max)
	assert.InDelta(t, p.P95-p.P05, p.SpreadP95P05, 1e-12)
	assert.InDelta(t, 0.2, p.NegativeShare, 1e-12)
	assert.InDelta(t, 0.2, p.DischargeShare, 1e-12)

	_, err = ProfilePrices(tbl, model.MarketImbalance, 50, 1.3)
	assert.Error(t, err)
}

func TestRankByNPV(t *testing.T) {
	in := []RankedScenario{
		{Label: "a", Result: model.SimulationResult{NPV: 1}},
		{Label: "nan", Result: model.SimulationResult{NPV: math.NaN()}},
		{Label: "b", Result: model.SimulationResult{NPV: 5}},
		{Label: "c", Result: model.SimulationResult{NPV: 1}},
	}
	out := RankByNPV(in)
	labels := make([]string, len(out))
	for i, r := range out {
		labels[i] = r.Label
	}
	assert.Equal(t, []string{"b", "a", "c", "nan"}, labels)
	assert.Equal(t, "a", in[0].Label, "input is not reordered")
}

package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageValidation(t *testing.T) {
	cases := []struct {
		name   string
		params StorageParams
		ok     bool
	}{
		{"valid", StorageParams{PowerMW: 10, DurationHours: 2, RoundTripEfficiency: 0.81}, true},
		{"zero power", StorageParams{PowerMW: 0, DurationHours: 2, RoundTripEfficiency: 0.81}, false},
		{"zero duration", StorageParams{PowerMW: 10, DurationHours: 0, RoundTripEfficiency: 0.81}, false},
		{"zero rte", StorageParams{PowerMW: 10, DurationHours: 2, RoundTripEfficiency: 0}, false},
		{"rte above one", StorageParams{PowerMW: 10, DurationHours: 2, RoundTripEfficiency: 1.1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewStorage(tc.params)
			if tc.ok {
				require.NoError(t, err)
				assert.Zero(t, s.State.SOC)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStorageCapacityAndEfficiency(t *testing.T) {
	p := StorageParams{PowerMW: 10, DurationHours: 2, RoundTripEfficiency: 0.81}
	assert.Equal(t, 20.0, p.CapacityMWh())
	assert.InDelta(t, 0.9, p.Efficiency(), 1e-12)
}

func TestStorageApplyClipsToCapacity(t *testing.T) {
	s, err := NewStorage(StorageParams{PowerMW: 10, DurationHours: 0.25, RoundTripEfficiency: 1})
	require.NoError(t, err)

	res, err := s.Apply(Dispatch{PowerMW: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.SOCEnd)
	assert.Equal(t, 2.0, res.NetRateMW)

	res, err = s.Apply(Dispatch{PowerMW: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, res.SOCEnd)
	assert.Equal(t, 0.5, res.NetRateMW)
	assert.Less(t, res.NetRateMW, 2.0)
}

func TestStorageApplyClipsAtZero(t *testing.T) {
	s, err := NewStorage(StorageParams{PowerMW: 10, DurationHours: 1, RoundTripEfficiency: 1})
	require.NoError(t, err)

	res, err := s.Apply(Dispatch{PowerMW: -5}, 0.5)
	require.NoError(t, err)
	assert.Zero(t, res.SOCEnd)
	assert.Zero(t, res.NetRateMW)
	assert.Zero(t, res.GridRateMW)
}

func TestStorageGridRateConversion(t *testing.T) {
	s, err := NewStorage(StorageParams{PowerMW: 10, DurationHours: 1, RoundTripEfficiency: 0.81})
	require.NoError(t, err)

	res, err := s.Apply(Dispatch{PowerMW: 4.5}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, res.NetRateMW, 1e-12)
	assert.InDelta(t, 5.0, res.GridRateMW, 1e-12)

	res, err = s.Apply(Dispatch{PowerMW: -2}, 1)
	require.NoError(t, err)
	assert.InDelta(t, -2, res.NetRateMW, 1e-12)
	assert.InDelta(t, -1.8, res.GridRateMW, 1e-12)
	assert.InDelta(t, 25, s.SOCPercent(), 1e-9)
}

func TestStorageApplyRejectsNonPositivePeriod(t *testing.T) {
	s, err := NewStorage(StorageParams{PowerMW: 1, DurationHours: 1, RoundTripEfficiency: 1})
	require.NoError(t, err)
	_, err = s.Apply(Dispatch{PowerMW: 1}, 0)
	assert.Error(t, err)
}

func TestActionFromRateMW(t *testing.T) {
	assert.Equal(t, ActionCharging, ActionFromRateMW(1))
	assert.Equal(t, ActionDischarging, ActionFromRateMW(-1))
	assert.Equal(t, ActionIdle, ActionFromRateMW(0))
}

func TestParseMarketType(t *testing.T) {
	cases := map[string]MarketType{
		"":       MarketDefault,
		"IMB":    MarketImbalance,
		"imb":    MarketImbalance,
		" Intra": MarketIntraday,
	}
	for in, want := range cases {
		got, err := ParseMarketType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMarketType("DA")
	var mt *InvalidMarketTypeError
	require.True(t, errors.As(err, &mt))
	assert.Equal(t, "DA", mt.Value)
}

func TestMarketTypeText(t *testing.T) {
	var m MarketType
	require.NoError(t, m.UnmarshalText([]byte("intra")))
	assert.Equal(t, MarketIntraday, m)
	b, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "INTRA", string(b))
	assert.Error(t, m.UnmarshalText([]byte("spot")))
}

func TestScenarioValidate(t *testing.T) {
	base := Scenario{Label: "S1", PPAPrice: 50, BalancingFraction: 0.3, PowerMW: 10, DurationHours: 2}
	require.NoError(t, base.Validate())

	bad := base
	bad.BalancingFraction = 1.5
	assert.Error(t, bad.Validate())

	bad = base
	bad.DurationHours = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Label = " "
	assert.Error(t, bad.Validate())
}

func TestSimulationResultValuesOrder(t *testing.T) {
	r := SimulationResult{
		PotentialGeneration: math.NaN(),
		AvailableEnergy:     3,
		CAPEX:               9,
		IRR:                 16,
		NPV:                 17,
	}
	v := r.Values()
	require.Len(t, v, len(ResultColumns))
	assert.True(t, math.IsNaN(v[0]))
	assert.Equal(t, 3.0, v[2])
	assert.Equal(t, 9.0, v[8])
	assert.Equal(t, 16.0, v[15])
	assert.Equal(t, 17.0, v[16])
	assert.True(t, r.IRRDefined())
}

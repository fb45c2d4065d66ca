package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params() Params {
	return Params{
		PowerCapexPerKW:     300,
		CapacityCapexPerKWh: 250,
		OPEXRate:            0.02,
		ProjectLifeYears:    15,
		DiscountRate:        0.07,
		IRRFallback:         DefaultIRRFallback,
		IRRCeiling:          DefaultIRRCeiling,
	}
}

func annuity(capex, payment float64, years int) []float64 {
	return CashFlows(capex, payment, 0, years)
}

func TestCAPEX(t *testing.T) {
	assert.Equal(t, 8e6, CAPEX(10, 20, params()))
}

func TestCashFlows(t *testing.T) {
	cf := CashFlows(1000, 350, 50, 3)
	assert.Equal(t, []float64{-1000, 300, 300, 300}, cf)
}

func TestNPV(t *testing.T) {
	assert.InDelta(t, 10, NPV(0, []float64{-100, 110}), 1e-12)
	assert.InDelta(t, 0, NPV(0.1, []float64{-100, 110}), 1e-12)
	assert.InDelta(t, 230.05923078427796, NPV(0.07, annuity(1000, 300, 5)), 1e-9)
	assert.Equal(t, 0.0, NPV(0.07, nil))
}

func TestIRR(t *testing.T) {
	assert.InDelta(t, 0.1, IRR([]float64{-100, 110}), 1e-12)
	assert.InDelta(t, 0.15238237116630649, IRR(annuity(1000, 300, 5)), 1e-9)
	assert.InDelta(t, 0, IRR([]float64{-100, 50, 50}), 1e-12)
	assert.True(t, math.IsNaN(IRR([]float64{-100, -10, -10})))
	assert.True(t, math.IsNaN(IRR([]float64{0, 0})))
}

func TestIRRIsRootOfNPV(t *testing.T) {
	cf := annuity(8e6, 1.1e6, 15)
	r := IRR(cf)
	require.False(t, math.IsNaN(r))
	assert.InDelta(t, 0, NPV(r, cf), 1)
}

func TestIRRPicksRateClosestToZero(t *testing.T) {
	// Roots at r = 0.1 and r = 0.2.
	cf := []float64{-1, 2.3, -1.32}
	assert.InDelta(t, 0.1, IRR(cf), 1e-9)
}

func TestSanitizeIRR(t *testing.T) {
	p := params()
	assert.Equal(t, -0.2, p.SanitizeIRR(math.NaN()))
	assert.True(t, math.IsNaN(p.SanitizeIRR(2)))
	assert.Equal(t, 0.5, p.SanitizeIRR(0.5))
	assert.Equal(t, 1.0, p.SanitizeIRR(1.0))
}

func TestEvaluate(t *testing.T) {
	p := params()
	s := Evaluate(p, 10, 20, 1.1e6)
	assert.Equal(t, 8e6, s.CAPEX)
	assert.Equal(t, 160000.0, s.OPEX)
	require.Len(t, s.CashFlows, 16)
	assert.Equal(t, -8e6, s.CashFlows[0])
	assert.Equal(t, 940000.0, s.CashFlows[15])
	assert.InDelta(t, NPV(0.07, s.CashFlows), s.NPV, 1e-6)
	assert.Greater(t, s.IRR, 0.0)
}

func TestEvaluateUnprofitable(t *testing.T) {
	s := Evaluate(params(), 10, 20, -1000)
	assert.Equal(t, DefaultIRRFallback, s.IRR)
	assert.Less(t, s.NPV, -8e6)

	s = Evaluate(params(), 10, 20, 3e7)
	assert.True(t, math.IsNaN(s.IRR))
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, params().Validate())

	p := params()
	p.ProjectLifeYears = 0
	assert.Error(t, p.Validate())

	p = params()
	p.DiscountRate = -1
	assert.Error(t, p.Validate())

	p = params()
	p.OPEXRate = -0.1
	assert.Error(t, p.Validate())
}

package policy

import (
	"errors"
	"math"
)

// TurbineCurve is a smoothed power curve for a farm of identical turbines.
type TurbineCurve struct {
	Count        int     `json:"count" yaml:"count"`
	RatedPowerMW float64 `json:"rated_power_mw" yaml:"rated_power_mw"`
	CutInMS      float64 `json:"cut_in_ms" yaml:"cut_in_ms"`
	RatedSpeedMS float64 `json:"rated_speed_ms" yaml:"rated_speed_ms"`
	CutOutMS     float64 `json:"cut_out_ms" yaml:"cut_out_ms"`
}

// DefaultTurbineCurve is a 72 x 14 MW offshore farm.
func DefaultTurbineCurve() TurbineCurve {
	return TurbineCurve{
		Count:        72,
		RatedPowerMW: 14,
		CutInMS:      3,
		RatedSpeedMS: 13,
		CutOutMS:     32,
	}
}

func (c TurbineCurve) Validate() error {
	if c.Count <= 0 {
		return errors.New("turbine count must be > 0")
	}
	if c.RatedPowerMW <= 0 {
		return errors.New("turbine rated power must be > 0")
	}
	if !(0 <= c.CutInMS && c.CutInMS < c.RatedSpeedMS && c.RatedSpeedMS < c.CutOutMS) {
		return errors.New("turbine speeds must satisfy 0 <= cut-in < rated < cut-out")
	}
	return nil
}

// OutputMW is a single turbine's output at wind speed v (m/s). Between cut-in
// and rated speed the curve is a logistic ramp centred on their midpoint.
func (c TurbineCurve) OutputMW(v float64) float64 {
	switch {
	case v < c.CutInMS || v >= c.CutOutMS:
		return 0
	case v >= c.RatedSpeedMS:
		return c.RatedPowerMW
	default:
		mid := (c.CutInMS + c.RatedSpeedMS) / 2
		return c.RatedPowerMW / (1 + math.Exp(-0.5*(v-mid)))
	}
}

// FarmOutputMW is OutputMW for every turbine in the farm.
func (c TurbineCurve) FarmOutputMW(v float64) float64 {
	return float64(c.Count) * c.OutputMW(v)
}

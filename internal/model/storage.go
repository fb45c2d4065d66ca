package model

import (
	"errors"
	"math"
)

// StorageParams defines the physical parameters of the storage asset.
// Units:
// - PowerMW: MW (rated charge and discharge power)
// - DurationHours: h (capacity = power x duration)
// - RoundTripEfficiency: 0..1
type StorageParams struct {
	PowerMW             float64
	DurationHours       float64
	RoundTripEfficiency float64
}

// CapacityMWh is the usable energy capacity.
func (p StorageParams) CapacityMWh() float64 {
	return p.PowerMW * p.DurationHours
}

// Efficiency is the one-way conversion efficiency, sqrt(RTE).
func (p StorageParams) Efficiency() float64 {
	return math.Sqrt(p.RoundTripEfficiency)
}

// StorageState captures mutable state.
type StorageState struct {
	// SOC is the stored energy in MWh, within [0, capacity].
	SOC float64
}

// Storage bundles params + state. Every simulation starts empty.
type Storage struct {
	Params StorageParams
	State  StorageState
}

func NewStorage(params StorageParams) (*Storage, error) {
	s := &Storage{Params: params}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) Validate() error {
	p := s.Params
	if p.PowerMW <= 0 {
		return errors.New("storage power rating must be > 0")
	}
	if p.DurationHours <= 0 {
		return errors.New("storage duration must be > 0")
	}
	if p.RoundTripEfficiency <= 0 || p.RoundTripEfficiency > 1 {
		return errors.New("round-trip efficiency must be in (0, 1]")
	}
	return nil
}

// Dispatch is a storage-side rate command for one settlement period.
// Convention: positive MW = charge, negative MW = discharge.
type Dispatch struct {
	PowerMW float64
}

// StepResult captures what happened in one settlement period.
type StepResult struct {
	SOCStart float64
	SOCEnd   float64
	// NetRateMW is the realized storage-side rate after capacity clipping.
	NetRateMW float64
	// GridRateMW is NetRateMW converted to the grid side of the converter.
	GridRateMW float64
}

// Apply integrates a dispatch over one period, clipping SOC to [0, capacity].
func (s *Storage) Apply(d Dispatch, durationHours float64) (StepResult, error) {
	if durationHours <= 0 {
		return StepResult{}, errors.New("durationHours must be > 0")
	}

	res := StepResult{SOCStart: s.State.SOC}
	s.State.SOC = clamp(s.State.SOC+d.PowerMW*durationHours, 0, s.Params.CapacityMWh())
	res.SOCEnd = s.State.SOC
	res.NetRateMW = (res.SOCEnd - res.SOCStart) / durationHours

	eff := s.Params.Efficiency()
	if res.NetRateMW >= 0 {
		res.GridRateMW = res.NetRateMW / eff
	} else {
		res.GridRateMW = res.NetRateMW * eff
	}
	return res, nil
}

// SOCPercent reports the current SOC as a percentage of capacity.
func (s *Storage) SOCPercent() float64 {
	return s.State.SOC * 100 / s.Params.CapacityMWh()
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

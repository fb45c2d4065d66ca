// Package policy derives available generation and transmission capacity from
// the raw time series, one variant per asset configuration.
package policy

import (
	"fmt"
	"strings"

	"storage-bca/internal/data"
	"storage-bca/internal/model"
)

// Kind names a generation/transmission policy variant.
type Kind int

const (
	// Direct reads available power and transmission capacity columns as-is.
	Direct Kind = iota
	// WindCurve converts wind speed to output through a turbine power curve.
	WindCurve
	// GenerationConstraint subtracts a constraint column from potential generation.
	GenerationConstraint
	// Hybrid blends wind output with a solar profile scaled to installed MWp.
	Hybrid
)

var kindNames = map[Kind]string{
	Direct:               "direct",
	WindCurve:            "wind-curve",
	GenerationConstraint: "generation-constraint",
	Hybrid:               "hybrid",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the names returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return Direct, fmt.Errorf("unknown policy %q", s)
}

// Kinds lists every policy variant in declaration order.
func Kinds() []Kind {
	return []Kind{Direct, WindCurve, GenerationConstraint, Hybrid}
}

// Policy derives the per-period available power and transmission capacity
// that feed the dispatch simulation. Outputs are never negative.
type Policy interface {
	Kind() Kind
	// Requires lists the time-series columns the policy reads.
	Requires() []string
	AvailablePower(t *data.Table, s model.Scenario) ([]float64, error)
	TransmissionCapacity(t *data.Table, s model.Scenario) ([]float64, error)
}

// Params carries the run-wide constants the variants need.
type Params struct {
	Turbine TurbineCurve
	// TransformerRatingMW caps export for the wind-curve and
	// generation-constraint variants.
	TransformerRatingMW float64
	// ExportCapacityMW is the export ceiling for the hybrid variant.
	ExportCapacityMW float64
	// ReferenceSolarMWp is the installed capacity behind the solar_power profile.
	ReferenceSolarMWp float64
}

// Transformer ratings used when Params.TransformerRatingMW is zero.
const (
	DefaultWindTransformerMW       = 1000.0
	DefaultConstraintTransformerMW = 19.0
)

// New returns the policy for kind.
func New(kind Kind, p Params) (Policy, error) {
	if p.TransformerRatingMW == 0 {
		switch kind {
		case WindCurve:
			p.TransformerRatingMW = DefaultWindTransformerMW
		case GenerationConstraint:
			p.TransformerRatingMW = DefaultConstraintTransformerMW
		}
	}
	switch kind {
	case Direct:
		return directPolicy{}, nil
	case WindCurve:
		if err := p.Turbine.Validate(); err != nil {
			return nil, err
		}
		return windCurvePolicy{curve: p.Turbine, transformerMW: p.TransformerRatingMW}, nil
	case GenerationConstraint:
		return constraintPolicy{transformerMW: p.TransformerRatingMW}, nil
	case Hybrid:
		if p.ReferenceSolarMWp <= 0 {
			return nil, fmt.Errorf("hybrid policy: reference solar capacity must be > 0")
		}
		if p.ExportCapacityMW <= 0 {
			return nil, fmt.Errorf("hybrid policy: export transmission capacity must be > 0")
		}
		return hybridPolicy{exportMW: p.ExportCapacityMW, refSolarMWp: p.ReferenceSolarMWp}, nil
	default:
		return nil, fmt.Errorf("unsupported policy: %s", kind)
	}
}

// RequiredColumns lists the columns kind reads.
func RequiredColumns(k Kind) []string {
	switch k {
	case WindCurve:
		return windCurvePolicy{}.Requires()
	case GenerationConstraint:
		return constraintPolicy{}.Requires()
	case Hybrid:
		return hybridPolicy{}.Requires()
	default:
		return directPolicy{}.Requires()
	}
}

// Check reports the first required column missing from t.
func Check(p Policy, t *data.Table) error {
	for _, col := range p.Requires() {
		if !t.Has(col) {
			return &model.MissingInputError{Column: col}
		}
	}
	return nil
}

type directPolicy struct{}

func (directPolicy) Kind() Kind { return Direct }

func (directPolicy) Requires() []string {
	return []string{data.ColAvailablePower, data.ColTransmissionCapacity}
}

func (directPolicy) AvailablePower(t *data.Table, _ model.Scenario) ([]float64, error) {
	return floored(t, data.ColAvailablePower)
}

func (directPolicy) TransmissionCapacity(t *data.Table, _ model.Scenario) ([]float64, error) {
	return floored(t, data.ColTransmissionCapacity)
}

type windCurvePolicy struct {
	curve         TurbineCurve
	transformerMW float64
}

func (windCurvePolicy) Kind() Kind { return WindCurve }

func (windCurvePolicy) Requires() []string {
	return []string{data.ColWindSpeed, data.ColCapacityConstraint}
}

func (p windCurvePolicy) AvailablePower(t *data.Table, _ model.Scenario) ([]float64, error) {
	speed, err := t.Column(data.ColWindSpeed)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(speed))
	for i, v := range speed {
		out[i] = p.curve.FarmOutputMW(v)
	}
	return out, nil
}

func (p windCurvePolicy) TransmissionCapacity(t *data.Table, _ model.Scenario) ([]float64, error) {
	return ceilingMinus(t, p.transformerMW)
}

type constraintPolicy struct {
	transformerMW float64
}

func (constraintPolicy) Kind() Kind { return GenerationConstraint }

func (constraintPolicy) Requires() []string {
	return []string{data.ColPotentialGeneration, data.ColGenerationConstraint, data.ColCapacityConstraint, data.ColActualGeneration}
}

func (constraintPolicy) AvailablePower(t *data.Table, _ model.Scenario) ([]float64, error) {
	potential, err := t.Column(data.ColPotentialGeneration)
	if err != nil {
		return nil, err
	}
	constraint, err := t.Column(data.ColGenerationConstraint)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(potential))
	for i := range potential {
		out[i] = floor(potential[i] - constraint[i])
	}
	return out, nil
}

// TransmissionCapacity is the transformer rating in unconstrained periods and
// the metered output of the asset in constrained ones.
func (p constraintPolicy) TransmissionCapacity(t *data.Table, _ model.Scenario) ([]float64, error) {
	constraint, err := t.Column(data.ColCapacityConstraint)
	if err != nil {
		return nil, err
	}
	actual, err := t.Column(data.ColActualGeneration)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(constraint))
	for i := range constraint {
		if constraint[i] == 0 {
			out[i] = floor(p.transformerMW)
		} else {
			out[i] = floor(actual[i])
		}
	}
	return out, nil
}

type hybridPolicy struct {
	exportMW    float64
	refSolarMWp float64
}

func (hybridPolicy) Kind() Kind { return Hybrid }

func (hybridPolicy) Requires() []string {
	return []string{data.ColWindPower, data.ColSolarPower, data.ColCapacityConstraint}
}

func (p hybridPolicy) AvailablePower(t *data.Table, s model.Scenario) ([]float64, error) {
	wind, err := t.Column(data.ColWindPower)
	if err != nil {
		return nil, err
	}
	solar, err := t.Column(data.ColSolarPower)
	if err != nil {
		return nil, err
	}
	scale := s.SolarMWp / p.refSolarMWp
	out := make([]float64, len(wind))
	for i := range wind {
		out[i] = floor(wind[i] + scale*solar[i])
	}
	return out, nil
}

func (p hybridPolicy) TransmissionCapacity(t *data.Table, _ model.Scenario) ([]float64, error) {
	return ceilingMinus(t, p.exportMW)
}

// ceilingMinus is a fixed ceiling minus the capacity_constraint column.
func ceilingMinus(t *data.Table, ceilingMW float64) ([]float64, error) {
	constraint, err := t.Column(data.ColCapacityConstraint)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(constraint))
	for i, c := range constraint {
		out[i] = floor(ceilingMW - c)
	}
	return out, nil
}

func floored(t *data.Table, col string) ([]float64, error) {
	vals, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = floor(v)
	}
	return out, nil
}

func floor(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

package strategy

import "storage-bca/internal/model"

// Context is what a strategy sees for one settlement period. It carries no
// future periods.
type Context struct {
	Index    int
	Interval model.Interval
	Storage  *model.Storage
}

// Decision is the requested storage command for a period, together with the
// intermediate quantities it was derived from. Rates are in MW, storage side.
type Decision struct {
	TheoreticalCharge    float64
	EffectiveCharge      float64
	MaxDischarge         float64
	TheoreticalDischarge float64
	Command              model.Dispatch
}

type Strategy interface {
	Name() string
	Decide(ctx Context) Decision
}

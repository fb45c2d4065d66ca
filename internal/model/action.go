package model

// Action is a human-friendly operating mode for a settlement period.
// Keep these values stable; they are written to the ledger CSV.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

// ActionFromRateMW maps a grid-side storage rate to an Action.
// Positive rates flow into storage, negative rates flow out to the grid.
func ActionFromRateMW(rateMW float64) Action {
	switch {
	case rateMW > 0:
		return ActionCharging
	case rateMW < 0:
		return ActionDischarging
	default:
		return ActionIdle
	}
}

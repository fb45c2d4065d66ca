package model

import "fmt"

// MissingInputError reports a required column absent from an input table.
type MissingInputError struct {
	Column string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input column %q", e.Column)
}

// ScenarioNotFoundError reports a selected label with no matching scenario row.
type ScenarioNotFoundError struct {
	Label string
}

func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario %q not found", e.Label)
}

// InvalidMarketTypeError reports a market type outside IMB, INTRA or empty.
type InvalidMarketTypeError struct {
	Value string
}

func (e *InvalidMarketTypeError) Error() string {
	return fmt.Sprintf("invalid market type %q (want IMB, INTRA or empty)", e.Value)
}

// CoercionError reports a scenario cell that could not be read as a number.
type CoercionError struct {
	Scenario string
	Field    string
	Value    string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("scenario %q: field %q: cannot read %q as a number", e.Scenario, e.Field, e.Value)
}

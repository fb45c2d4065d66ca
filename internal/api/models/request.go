package models

// EvaluateRequest is the request body for POST /api/v1/evaluate.
type EvaluateRequest struct {
	// TimeSeries rows override the server's configured time series.
	TimeSeries []map[string]any `json:"timeseries,omitempty"`
	Scenarios  []ScenarioInput  `json:"scenarios" binding:"required,min=1,dive"`
	Options    EvaluateOptions  `json:"options,omitempty"`
}

// ScenarioInput is one scenario row. Numeric fields accept numbers or strings
// such as "15%". A missing value fails its scenario during coercion.
type ScenarioInput struct {
	Label             string `json:"label" binding:"required"`
	PPAPrice          any    `json:"ppa_price"`
	BalancingFraction any    `json:"balancing_fraction"`
	MarketType        string `json:"market_type,omitempty"`
	PowerMW           any    `json:"power_mw"`
	DurationHours     any    `json:"duration_h"`
	SolarMWp          any    `json:"solar_mwp,omitempty"`
}

type EvaluateOptions struct {
	LimitIntervals int  `json:"limit_intervals,omitempty"` // 0 = all
	IncludeLedger  bool `json:"include_ledger,omitempty"`  // default: false
}

// ProfileRequest is the query for GET /api/v1/profile.
type ProfileRequest struct {
	MarketType string  `form:"market_type"`
	Wholesale  float64 `form:"wholesale" binding:"required"`
	Multiplier float64 `form:"multiplier"`
}

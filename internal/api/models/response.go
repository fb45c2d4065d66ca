package models

import (
	"math"
	"time"
)

// EvaluateResponse represents the response from an evaluation run.
type EvaluateResponse struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Scenarios []ScenarioResult `json:"scenarios"`
	// Ranking lists successful scenario labels by descending NPV.
	Ranking []string `json:"ranking"`
}

// ScenarioResult is one scenario's outcome.
type ScenarioResult struct {
	Label   string      `json:"label"`
	Status  string      `json:"status"` // "ok" or "failed"
	Error   string      `json:"error,omitempty"`
	Outputs []Output    `json:"outputs,omitempty"`
	Ledger  []LedgerRow `json:"ledger,omitempty"`
}

// Output is a named result value. Value is null when undefined.
type Output struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

// LedgerRow represents one settlement period in a scenario ledger.
type LedgerRow struct {
	Index                 int       `json:"index"`
	Timestamp             time.Time `json:"timestamp"`
	AvailablePowerMW      float64   `json:"available_power_mw"`
	TransmissionMW        float64   `json:"transmission_capacity_mw"`
	BalancingPrice        float64   `json:"balancing_price"`
	ExportedPowerMW       float64   `json:"exported_power_mw"`
	CommandMW             float64   `json:"command_mw"`
	NetRateMW             float64   `json:"net_rate_mw"`
	GridRateMW            float64   `json:"grid_rate_mw"`
	SOCMWh                float64   `json:"soc_mwh"`
	SOCPercent            float64   `json:"soc_percent"`
	Action                string    `json:"action"` // "CHARGING", "DISCHARGING", "IDLE"
	Branch                string    `json:"branch"`
	BaselineIncome        float64   `json:"baseline_income"`
	BalancingIncome       float64   `json:"balancing_income"`
	StorageIncome         float64   `json:"storage_income"`
	ExtraGenerationIncome float64   `json:"extra_generation_income"`
	CurtailedPowerMW      float64   `json:"curtailed_power_mw"`
}

// PolicyInfo describes a generation/transmission policy.
type PolicyInfo struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	RequiredColumns []string        `json:"required_columns"`
	Parameters      []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a configuration parameter.
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "string"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ProfileResponse summarizes the configured balancing price series.
type ProfileResponse struct {
	Market         string    `json:"market"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Count          int       `json:"count"`
	Min            float64   `json:"min"`
	Max            float64   `json:"max"`
	Mean           float64   `json:"mean"`
	P05            float64   `json:"p05"`
	P95            float64   `json:"p95"`
	SpreadP95P05   float64   `json:"spread_p95_p05"`
	NegativeShare  float64   `json:"negative_share"`
	DischargeShare float64   `json:"discharge_share"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Number returns nil for NaN and infinities so the value encodes as JSON null.
func Number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

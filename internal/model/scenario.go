package model

import (
	"errors"
	"fmt"
	"strings"
)

// MarketType selects which price series a scenario settles its balancing share against.
type MarketType int

const (
	// MarketDefault settles against the table's balancing price column.
	MarketDefault MarketType = iota
	MarketImbalance
	MarketIntraday
)

func (m MarketType) String() string {
	switch m {
	case MarketImbalance:
		return "IMB"
	case MarketIntraday:
		return "INTRA"
	default:
		return ""
	}
}

// ParseMarketType accepts IMB, INTRA or an empty string, case-insensitively.
func ParseMarketType(s string) (MarketType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return MarketDefault, nil
	case "IMB":
		return MarketImbalance, nil
	case "INTRA":
		return MarketIntraday, nil
	default:
		return MarketDefault, &InvalidMarketTypeError{Value: s}
	}
}

func (m MarketType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MarketType) UnmarshalText(b []byte) error {
	v, err := ParseMarketType(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Scenario is one row of the scenario parameter table.
type Scenario struct {
	Label string `json:"label" yaml:"label"`

	PPAPrice          float64    `json:"ppa_price" yaml:"ppa_price"`
	BalancingFraction float64    `json:"balancing_fraction" yaml:"balancing_fraction"`
	Market            MarketType `json:"market_type" yaml:"market_type"`

	PowerMW       float64 `json:"power_mw" yaml:"power_mw"`
	DurationHours float64 `json:"duration_h" yaml:"duration_h"`

	// SolarMWp is only read by the hybrid policy.
	SolarMWp float64 `json:"solar_mwp,omitempty" yaml:"solar_mwp,omitempty"`
}

func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Label) == "" {
		return errors.New("scenario label is required")
	}
	if s.BalancingFraction < 0 || s.BalancingFraction > 1 {
		return fmt.Errorf("scenario %q: balancing participation must be in [0, 1], got %g", s.Label, s.BalancingFraction)
	}
	if s.SolarMWp < 0 {
		return fmt.Errorf("scenario %q: solar capacity must be >= 0", s.Label)
	}
	if s.PowerMW <= 0 || s.DurationHours <= 0 {
		return fmt.Errorf("scenario %q: storage power rating and duration must be > 0", s.Label)
	}
	return nil
}

// StorageParams builds the storage sizing for this scenario.
func (s Scenario) StorageParams(rte float64) StorageParams {
	return StorageParams{
		PowerMW:             s.PowerMW,
		DurationHours:       s.DurationHours,
		RoundTripEfficiency: rte,
	}
}

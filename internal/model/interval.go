package model

import "time"

// Interval is one settlement period of input to the dispatch simulation.
// Prices are in EUR/MWh, powers in MW.
type Interval struct {
	Start time.Time `json:"start"`

	AvailablePowerMW       float64 `json:"available_power_mw"`
	TransmissionCapacityMW float64 `json:"transmission_capacity_mw"`

	BalancingPrice        float64 `json:"balancing_price"`
	WholesalePrice        float64 `json:"wholesale_price"`
	GreenCertificatePrice float64 `json:"green_certificate_price"`
}

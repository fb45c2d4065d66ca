package policy

import (
	"storage-bca/internal/data"
	"storage-bca/internal/model"
)

// intradayWeight positions the derived intraday price between day-ahead and imbalance.
const intradayWeight = 0.5

// BalancingPrices returns the price series a scenario's balancing share settles against.
// INTRA prefers an intraday_price column and otherwise derives one from
// day-ahead and imbalance prices.
func BalancingPrices(t *data.Table, m model.MarketType) ([]float64, error) {
	switch m {
	case model.MarketImbalance:
		return t.Column(data.ColImbalancePrice)
	case model.MarketIntraday:
		if t.Has(data.ColIntradayPrice) {
			return t.Column(data.ColIntradayPrice)
		}
		da, err := t.Column(data.ColDayAheadPrice)
		if err != nil {
			return nil, err
		}
		imb, err := t.Column(data.ColImbalancePrice)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(da))
		for i := range da {
			out[i] = da[i] + (imb[i]-da[i])*intradayWeight
		}
		return out, nil
	case model.MarketDefault:
		return t.Column(data.ColBalancingPrice)
	default:
		return nil, &model.InvalidMarketTypeError{Value: m.String()}
	}
}

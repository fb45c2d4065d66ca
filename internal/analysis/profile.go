package analysis

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"storage-bca/internal/data"
	"storage-bca/internal/model"
	"storage-bca/internal/policy"
)

// PriceProfile summarizes the balancing price series a market type settles
// against, and how often the dispatch rule would act on it.
type PriceProfile struct {
	Market string

	Start time.Time
	End   time.Time
	Count int

	Min  float64
	Max  float64
	Mean float64
	P05  float64
	P95  float64

	SpreadP95P05 float64

	// NegativeShare is the fraction of periods with a negative price, when
	// the rule charges regardless of overproduction.
	NegativeShare float64
	// DischargeShare is the fraction of periods priced above the discharge
	// threshold for the given wholesale price.
	DischargeShare float64
}

// ProfilePrices computes a PriceProfile. wholesale and multiplier define the
// discharge threshold, wholesale x multiplier.
func ProfilePrices(t *data.Table, m model.MarketType, wholesale, multiplier float64) (PriceProfile, error) {
	prices, err := policy.BalancingPrices(t, m)
	if err != nil {
		return PriceProfile{}, err
	}
	ts := t.Timestamps()
	p := PriceProfile{
		Market: m.String(),
		Start:  ts[0],
		End:    ts[len(ts)-1],
		Count:  len(prices),
	}
	if p.Market == "" {
		p.Market = "default"
	}

	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)
	p.Min = sorted[0]
	p.Max = sorted[len(sorted)-1]
	p.Mean = stat.Mean(sorted, nil)
	p.P05 = stat.Quantile(0.05, stat.LinInterp, sorted, nil)
	p.P95 = stat.Quantile(0.95, stat.LinInterp, sorted, nil)
	p.SpreadP95P05 = p.P95 - p.P05

	threshold := multiplier * wholesale
	var neg, above int
	for _, v := range prices {
		if v < 0 {
			neg++
		}
		if v > threshold {
			above++
		}
	}
	p.NegativeShare = float64(neg) / float64(len(prices))
	p.DischargeShare = float64(above) / float64(len(prices))
	return p, nil
}

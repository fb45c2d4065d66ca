package analysis

import (
	"math"
	"sort"

	"storage-bca/internal/model"
)

type RankedScenario struct {
	Label  string
	Result model.SimulationResult
}

// RankByNPV sorts scenarios descending by NPV. Ties keep input order and
// NaN NPVs sort last.
func RankByNPV(in []RankedScenario) []RankedScenario {
	out := append([]RankedScenario(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Result.NPV, out[j].Result.NPV
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		if math.IsNaN(a) {
			return false
		}
		return a > b
	})
	return out
}

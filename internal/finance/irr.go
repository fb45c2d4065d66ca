package finance

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// IRR returns the internal rate of return of cf, where cf[t] falls at the end
// of year t. The rate is found from the real positive roots x of
// sum(cf[t] * x^t), x = 1/(1+r); when several exist the rate closest to zero
// wins. NaN means no real solution.
func IRR(cf []float64) float64 {
	roots := realPositiveRoots(cf)
	if len(roots) == 0 {
		return math.NaN()
	}
	best := math.NaN()
	for _, x := range roots {
		r := 1/x - 1
		if math.IsNaN(best) || math.Abs(r) < math.Abs(best) {
			best = r
		}
	}
	return best
}

// realPositiveRoots finds roots of sum(c[t] * x^t) as eigenvalues of the
// companion matrix.
func realPositiveRoots(c []float64) []float64 {
	hi := len(c) - 1
	for hi >= 0 && c[hi] == 0 {
		hi--
	}
	lo := 0
	for lo <= hi && c[lo] == 0 {
		lo++
	}
	// Zero roots are dropped with the low-order zeros; they are not positive.
	c = c[lo : hi+1]
	n := len(c) - 1
	if n < 1 {
		return nil
	}

	lead := c[n]
	comp := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		comp.Set(0, j, -c[n-1-j]/lead)
	}
	for i := 1; i < n; i++ {
		comp.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return nil
	}
	var out []float64
	for _, v := range eig.Values(nil) {
		re, im := real(v), imag(v)
		if math.Abs(im) > 1e-12*math.Max(1, math.Abs(re)) {
			continue
		}
		if re > 0 {
			out = append(out, re)
		}
	}
	return out
}

package mcmc

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// rHatThreshold is the split R-hat value above which a parameter is
// considered non-converged.
const rHatThreshold = 1.05

// splitRHat computes the Gelman-Rubin potential scale reduction factor over
// the chains, with each chain split in half so within-chain drift also
// registers. Values near 1 indicate the chains mixed.
func splitRHat(chains [][]float64) float64 {
	var halves [][]float64
	for _, c := range chains {
		if len(c) < 4 {
			return math.Inf(1)
		}
		mid := len(c) / 2
		halves = append(halves, c[:mid], c[mid:mid*2])
	}

	m := len(halves)
	n := len(halves[0])

	means := make([]float64, m)
	withinSum := 0.0
	for i, h := range halves {
		means[i] = stat.Mean(h, nil)
		withinSum += stat.Variance(h, nil)
	}
	w := withinSum / float64(m)
	b := float64(n) * stat.Variance(means, nil)

	if w == 0 {
		if b == 0 {
			return 1
		}
		return math.Inf(1)
	}

	varPlus := (float64(n-1)/float64(n))*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}

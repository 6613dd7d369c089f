package posterior

import (
	"fmt"
	"math"
	"sort"

	"gobest/domain/core"

	"github.com/montanaflynn/stats"
)

// DensityEstimate is a fitted kernel density over one sample sequence.
type DensityEstimate interface {
	// BandwidthFactor returns the dimensionless bandwidth factor of the fit.
	BandwidthFactor() float64
	// Evaluate returns the estimated density at x.
	Evaluate(x float64) float64
}

// DensityEstimator fits a kernel density estimate to posterior samples.
// The numerical estimation itself is an external primitive.
type DensityEstimator interface {
	Fit(samples []float64) (DensityEstimate, error)
}

// modeGridSize is the fixed resolution of the mode search grid, an
// accuracy/cost tradeoff that is not user-configurable.
const modeGridSize = 512

// HDI returns the narrowest interval covering credibleMass of the empirical
// sample distribution: the minimum-width window over the sorted samples that
// holds the requested fraction of the mass. The interval is not necessarily
// centered on the mean or median.
func HDI(samples []float64, credibleMass float64) (low, high float64, err error) {
	if credibleMass <= 0 || credibleMass >= 1 {
		return 0, 0, fmt.Errorf("%w: got %g", core.ErrInvalidCredibleMass, credibleMass)
	}
	n := len(samples)
	if n == 0 {
		return 0, 0, core.ErrEmptyTrace
	}

	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	span := int(math.Floor(credibleMass * float64(n)))
	if span < 1 {
		span = 1
	}
	if span >= n {
		return sorted[0], sorted[n-1], nil
	}

	bestIdx := 0
	bestWidth := math.Inf(1)
	for i := 0; i+span < n; i++ {
		if w := sorted[i+span] - sorted[i]; w < bestWidth {
			bestWidth = w
			bestIdx = i
		}
	}
	return sorted[bestIdx], sorted[bestIdx+span], nil
}

// Prob returns the fraction of samples strictly inside (low, high). Both
// bounds open and infinite by default usage gives exactly 1; an inverted or
// vacuous interval (low >= high) gives exactly 0 by construction of the
// strict double inequality. The result is a plain empirical frequency whose
// standard error is sqrt(p(1-p)/S) for S samples.
func Prob(samples []float64, low, high float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	count := 0
	for _, v := range samples {
		if low < v && v < high {
			count++
		}
	}
	return float64(count) / float64(len(samples))
}

// Mode estimates the posterior mode by fitting a kernel density to the
// samples and scanning a fixed grid for the density maximum. Posteriors from
// these models are typically unimodal but skewed, so mean and median are
// poor point estimates.
func Mode(samples []float64, estimator DensityEstimator) (float64, error) {
	if len(samples) == 0 {
		return 0, core.ErrEmptyTrace
	}
	kernel, err := estimator.Fit(samples)
	if err != nil {
		return 0, fmt.Errorf("fitting kernel density: %w", err)
	}

	min, max := samples[0], samples[0]
	for _, v := range samples[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	bw := kernel.BandwidthFactor()
	cut := 3 * bw
	xLow := min - cut*bw
	xHigh := max + cut*bw
	step := (xHigh - xLow) / float64(modeGridSize-1)

	mode := xLow
	maxDensity := math.Inf(-1)
	for i := 0; i < modeGridSize; i++ {
		x := xLow + float64(i)*step
		if d := kernel.Evaluate(x); d > maxDensity {
			maxDensity = d
			mode = x
		}
	}
	return mode, nil
}

// VariableSummary is one row of a posterior summary.
type VariableSummary struct {
	Mean    float64 `json:"mean"`
	SD      float64 `json:"sd"`
	Median  float64 `json:"median"`
	HDILow  float64 `json:"hdi_low"`
	HDIHigh float64 `json:"hdi_high"`
	Mode    float64 `json:"mode"`
}

// Summarize computes summary statistics for every variable in the trace,
// with HDI bounds at the given credible mass. The credible mass is validated
// up front, before any per-variable work.
func Summarize(t *Trace, credibleMass float64, estimator DensityEstimator) (map[string]VariableSummary, error) {
	if credibleMass <= 0 || credibleMass >= 1 {
		return nil, fmt.Errorf("%w: got %g", core.ErrInvalidCredibleMass, credibleMass)
	}

	out := make(map[string]VariableSummary, len(t.samples))
	for _, name := range t.Variables() {
		samples := t.samples[name]

		mean, err := stats.Mean(samples)
		if err != nil {
			return nil, fmt.Errorf("summarizing %q: %w", name, err)
		}
		sd, err := stats.StandardDeviation(samples)
		if err != nil {
			return nil, fmt.Errorf("summarizing %q: %w", name, err)
		}
		median, err := stats.Median(samples)
		if err != nil {
			return nil, fmt.Errorf("summarizing %q: %w", name, err)
		}
		low, high, err := HDI(samples, credibleMass)
		if err != nil {
			return nil, fmt.Errorf("summarizing %q: %w", name, err)
		}
		mode, err := Mode(samples, estimator)
		if err != nil {
			return nil, fmt.Errorf("summarizing %q: %w", name, err)
		}

		out[name] = VariableSummary{
			Mean:    mean,
			SD:      sd,
			Median:  median,
			HDILow:  low,
			HDIHigh: high,
			Mode:    mode,
		}
	}
	return out, nil
}

package model

import (
	"fmt"
	"math"

	"gobest/domain/core"

	"github.com/montanaflynn/stats"
)

// Degrees-of-freedom prior constants: nu = nuMin + Exponential(1/(nuMean-nuMin)).
// The prior favors near-normal data but lets nu drop toward 2.5 to absorb
// outliers.
const (
	nuMin  = 2.5
	nuMean = 30.0
)

// Hyperparameters are the prior hyperparameters derived from the observed
// data. The mean prior is deliberately diffuse (scale 1000x the sample
// standard deviation) and the log-sigma bounds span six orders of magnitude,
// so the priors stay weakly informative at any plausible data scale.
type Hyperparameters struct {
	MeanLoc   float64 // sample mean (pooled for two groups)
	MeanScale float64 // 1000 * sample standard deviation
	SigmaLow  float64 // std / 1000, lower bound for sigma
	SigmaHigh float64 // std * 1000, upper bound for sigma
	NuMin     float64
	NuMean    float64
}

// deriveHyperparameters computes the prior hyperparameters from the pooled
// data. Deterministic: identical data yields identical hyperparameters.
func deriveHyperparameters(pooled []float64) (Hyperparameters, error) {
	mean, err := stats.Mean(pooled)
	if err != nil {
		return Hyperparameters{}, fmt.Errorf("computing sample mean: %w", err)
	}
	// Population standard deviation, matching the reference formulation.
	sd, err := stats.StandardDeviation(pooled)
	if err != nil {
		return Hyperparameters{}, fmt.Errorf("computing sample standard deviation: %w", err)
	}
	if sd == 0 {
		return Hyperparameters{}, fmt.Errorf("%w: log-sigma prior bounds would be improper", core.ErrZeroVariance)
	}

	return Hyperparameters{
		MeanLoc:   mean,
		MeanScale: sd * 1000,
		SigmaLow:  sd / 1000,
		SigmaHigh: sd * 1000,
		NuMin:     nuMin,
		NuMean:    nuMean,
	}, nil
}

// validateSample rejects groups that are too small or contain non-finite
// values, before any expensive work.
func validateSample(name string, y []float64) error {
	if len(y) < 2 {
		return core.NewInsufficientDataError(name, len(y))
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewNonFiniteError(name, i)
		}
	}
	return nil
}

// Package kde provides the gaussian kernel density estimator used for
// posterior mode estimation.
package kde

import (
	"math"

	"gobest/domain/core"
	"gobest/domain/posterior"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gaussian fits a gaussian kernel density with Scott's rule bandwidth,
// matching the behavior of scipy's gaussian_kde with default settings.
type Gaussian struct{}

// NewGaussian creates a gaussian density estimator.
func NewGaussian() Gaussian {
	return Gaussian{}
}

// Fit implements posterior.DensityEstimator.
func (Gaussian) Fit(samples []float64) (posterior.DensityEstimate, error) {
	n := len(samples)
	if n < 2 {
		return nil, core.NewInsufficientDataError("kernel density input", n)
	}

	sd, err := stats.StandardDeviation(samples)
	if err != nil {
		return nil, err
	}

	// Scott's rule: factor n^(-1/5), bandwidth factor * sd.
	factor := math.Pow(float64(n), -1.0/5.0)
	bandwidth := factor * sd
	if bandwidth == 0 {
		// Degenerate sample (all values equal): fall back to a narrow
		// kernel so evaluation stays finite.
		bandwidth = 1e-9
	}

	return &estimate{
		samples:   samples,
		factor:    factor,
		kernel:    distuv.Normal{Mu: 0, Sigma: bandwidth},
		bandwidth: bandwidth,
	}, nil
}

type estimate struct {
	samples   []float64
	factor    float64
	bandwidth float64
	kernel    distuv.Normal
}

func (e *estimate) BandwidthFactor() float64 {
	return e.factor
}

func (e *estimate) Evaluate(x float64) float64 {
	sum := 0.0
	for _, xi := range e.samples {
		sum += e.kernel.Prob(x - xi)
	}
	return sum / float64(len(e.samples))
}

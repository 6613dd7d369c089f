package model

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// BuildOneGroup constructs the model for a single sample compared against a
// reference value. The graph has free nodes Mean, Log sigma and Normality,
// derived nodes Sigma, SD and Effect size, and a Student-t likelihood over
// the observed data.
func BuildOneGroup(data []float64, refVal float64) (*Model, error) {
	if err := validateSample("group 1", data); err != nil {
		return nil, err
	}
	y := append([]float64(nil), data...)

	priors, err := deriveHyperparameters(y)
	if err != nil {
		return nil, err
	}

	meanPrior := distuv.Normal{Mu: priors.MeanLoc, Sigma: priors.MeanScale}
	logSigmaPrior := distuv.Uniform{Min: math.Log(priors.SigmaLow), Max: math.Log(priors.SigmaHigh)}
	nuPrior := distuv.Exponential{Rate: 1 / (priors.NuMean - priors.NuMin)}
	nuShift := priors.NuMin

	sampleSD := priors.MeanScale / 1000

	graph := &Graph{
		free: []Stochastic{
			{
				Name:     VarMean,
				LogPrior: meanPrior.LogProb,
				Init:     priors.MeanLoc,
				Step:     sampleSD,
			},
			{
				Name:     VarLogSigma,
				LogPrior: logSigmaPrior.LogProb,
				Init:     math.Log(sampleSD),
				Step:     0.5,
			},
			{
				Name:     VarNormality,
				LogPrior: func(x float64) float64 { return nuPrior.LogProb(x - nuShift) },
				Init:     priors.NuMean,
				Step:     10,
			},
		},
		deterministic: []Deterministic{
			{Name: VarSigma, Compute: func(p Point) float64 {
				return math.Exp(p[VarLogSigma])
			}},
			{Name: VarSD, Compute: func(p Point) float64 {
				return effectiveSD(math.Exp(p[VarLogSigma]), p[VarNormality])
			}},
			{Name: VarEffectSize, Compute: func(p Point) float64 {
				sd := effectiveSD(math.Exp(p[VarLogSigma]), p[VarNormality])
				return (p[VarMean] - refVal) / sd
			}},
		},
		logLikelihood: func(p Point) float64 {
			return studentTLogLikelihood(y, p[VarMean], math.Exp(p[VarLogSigma]), p[VarNormality])
		},
	}

	return &Model{
		kind:   KindOneGroup,
		graph:  graph,
		priors: priors,
		group1: y,
		refVal: refVal,
	}, nil
}

// effectiveSD converts the Student-t scale parameter into the standard
// deviation of the t distribution, sigma * sqrt(nu/(nu-2)).
func effectiveSD(sigma, nu float64) float64 {
	return sigma * math.Sqrt(nu/(nu-2))
}

// studentTLogLikelihood sums the Student-t log density over the observations.
func studentTLogLikelihood(y []float64, mean, sigma, nu float64) float64 {
	t := distuv.StudentsT{Mu: mean, Sigma: sigma, Nu: nu}
	ll := 0.0
	for _, v := range y {
		ll += t.LogProb(v)
	}
	return ll
}

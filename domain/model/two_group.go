package model

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// BuildTwoGroup constructs the model for two independent samples. The groups
// get independent mean and sigma nodes but share a single Normality node:
// both groups are assumed equally prone to outliers, which trades
// flexibility for a more identifiable posterior. Prior hyperparameters are
// derived from the pooled data.
func BuildTwoGroup(data1, data2 []float64) (*Model, error) {
	if err := validateSample("group 1", data1); err != nil {
		return nil, err
	}
	if err := validateSample("group 2", data2); err != nil {
		return nil, err
	}
	y1 := append([]float64(nil), data1...)
	y2 := append([]float64(nil), data2...)

	pooled := make([]float64, 0, len(y1)+len(y2))
	pooled = append(pooled, y1...)
	pooled = append(pooled, y2...)

	priors, err := deriveHyperparameters(pooled)
	if err != nil {
		return nil, err
	}

	meanPrior := distuv.Normal{Mu: priors.MeanLoc, Sigma: priors.MeanScale}
	logSigmaPrior := distuv.Uniform{Min: math.Log(priors.SigmaLow), Max: math.Log(priors.SigmaHigh)}
	nuPrior := distuv.Exponential{Rate: 1 / (priors.NuMean - priors.NuMin)}
	nuShift := priors.NuMin

	pooledSD := priors.MeanScale / 1000

	sd1 := func(p Point) float64 {
		return effectiveSD(math.Exp(p[VarGroup1LogSigma]), p[VarNormality])
	}
	sd2 := func(p Point) float64 {
		return effectiveSD(math.Exp(p[VarGroup2LogSigma]), p[VarNormality])
	}

	graph := &Graph{
		free: []Stochastic{
			{Name: VarGroup1Mean, LogPrior: meanPrior.LogProb, Init: priors.MeanLoc, Step: pooledSD},
			{Name: VarGroup2Mean, LogPrior: meanPrior.LogProb, Init: priors.MeanLoc, Step: pooledSD},
			{Name: VarGroup1LogSigma, LogPrior: logSigmaPrior.LogProb, Init: math.Log(pooledSD), Step: 0.5},
			{Name: VarGroup2LogSigma, LogPrior: logSigmaPrior.LogProb, Init: math.Log(pooledSD), Step: 0.5},
			{
				Name:     VarNormality,
				LogPrior: func(x float64) float64 { return nuPrior.LogProb(x - nuShift) },
				Init:     priors.NuMean,
				Step:     10,
			},
		},
		deterministic: []Deterministic{
			{Name: VarGroup1Sigma, Compute: func(p Point) float64 {
				return math.Exp(p[VarGroup1LogSigma])
			}},
			{Name: VarGroup2Sigma, Compute: func(p Point) float64 {
				return math.Exp(p[VarGroup2LogSigma])
			}},
			{Name: VarGroup1SD, Compute: sd1},
			{Name: VarGroup2SD, Compute: sd2},
			{Name: VarDiffOfMeans, Compute: func(p Point) float64 {
				return p[VarGroup1Mean] - p[VarGroup2Mean]
			}},
			{Name: VarDiffOfSDs, Compute: func(p Point) float64 {
				return sd1(p) - sd2(p)
			}},
			{Name: VarEffectSize, Compute: func(p Point) float64 {
				s1, s2 := sd1(p), sd2(p)
				return (p[VarGroup1Mean] - p[VarGroup2Mean]) / math.Sqrt((s1*s1+s2*s2)/2)
			}},
		},
		logLikelihood: func(p Point) float64 {
			nu := p[VarNormality]
			return studentTLogLikelihood(y1, p[VarGroup1Mean], math.Exp(p[VarGroup1LogSigma]), nu) +
				studentTLogLikelihood(y2, p[VarGroup2Mean], math.Exp(p[VarGroup2LogSigma]), nu)
		},
	}

	return &Model{
		kind:   KindTwoGroup,
		graph:  graph,
		priors: priors,
		group1: y1,
		group2: y2,
	}, nil
}

// Package model builds the probabilistic graphs for Bayesian estimation of
// one or two groups of continuous measurements, after Kruschke's BEST method
// (Bayesian estimation supersedes the t test, 2012).
package model

import (
	"fmt"

	"gobest/domain/core"
)

// Version of the model specification implemented by the builders.
const Version = "v2"

// Kind tags the two fixed model topologies.
type Kind int

const (
	KindOneGroup Kind = iota + 1
	KindTwoGroup
)

func (k Kind) String() string {
	switch k {
	case KindOneGroup:
		return "one-group"
	case KindTwoGroup:
		return "two-group"
	default:
		return "unknown"
	}
}

// Posterior variable names shared across packages.
const (
	VarMean       = "Mean"
	VarSigma      = "Sigma"
	VarLogSigma   = "Log sigma"
	VarSD         = "SD"
	VarNormality  = "Normality"
	VarEffectSize = "Effect size"

	VarGroup1Mean     = "Group 1 mean"
	VarGroup2Mean     = "Group 2 mean"
	VarGroup1LogSigma = "Group 1 log sigma"
	VarGroup2LogSigma = "Group 2 log sigma"
	VarGroup1Sigma    = "Group 1 sigma"
	VarGroup2Sigma    = "Group 2 sigma"
	VarGroup1SD       = "Group 1 SD"
	VarGroup2SD       = "Group 2 SD"
	VarDiffOfMeans    = "Difference of means"
	VarDiffOfSDs      = "Difference of SDs"
)

// Model owns its graph, the derived prior hyperparameters, and the original
// observed data. A Model is immutable once built.
type Model struct {
	kind   Kind
	graph  *Graph
	priors Hyperparameters
	group1 []float64
	group2 []float64 // nil for one-group models
	refVal float64   // comparison reference, one-group only
}

// Kind reports which of the two topologies this model is.
func (m *Model) Kind() Kind {
	return m.kind
}

// Version returns the model specification version.
func (m *Model) Version() string {
	return Version
}

// Graph returns the model's probabilistic graph.
func (m *Model) Graph() *Graph {
	return m.graph
}

// Priors returns the data-derived prior hyperparameters.
func (m *Model) Priors() Hyperparameters {
	return m.priors
}

// ReferenceValue returns the comparison value of a one-group analysis.
func (m *Model) ReferenceValue() float64 {
	return m.refVal
}

// NumGroups returns 1 or 2.
func (m *Model) NumGroups() int {
	if m.kind == KindTwoGroup {
		return 2
	}
	return 1
}

// ObservedData returns a copy of the observed data for a group. Group ids
// are 1-based; out-of-range ids fail with core.ErrInvalidGroupID.
func (m *Model) ObservedData(groupID int) ([]float64, error) {
	switch {
	case groupID == 1:
		return append([]float64(nil), m.group1...), nil
	case groupID == 2 && m.kind == KindTwoGroup:
		return append([]float64(nil), m.group2...), nil
	default:
		return nil, core.NewGroupIDError(groupID, m.NumGroups())
	}
}

// String renders the prior specification of the model.
func (m *Model) String() string {
	h := m.priors
	nuRate := h.NuMean - h.NuMin
	if m.kind == KindTwoGroup {
		return fmt.Sprintf(
			"mu1 ~ Normal(%g, %g)\n"+
				"mu2 ~ Normal(%g, %g)\n"+
				"log(sigma1) ~ Uniform(log(%g), log(%g))\n"+
				"log(sigma2) ~ Uniform(log(%g), log(%g))\n"+
				"nu ~ Exponential(1/%g) + %g\n"+
				"y1 ~ t(nu, mu1, sigma1)\n"+
				"y2 ~ t(nu, mu2, sigma2)\n",
			h.MeanLoc, h.MeanScale,
			h.MeanLoc, h.MeanScale,
			h.SigmaLow, h.SigmaHigh,
			h.SigmaLow, h.SigmaHigh,
			nuRate, h.NuMin)
	}
	return fmt.Sprintf(
		"mu ~ Normal(%g, %g)\n"+
			"log(sigma) ~ Uniform(log(%g), log(%g))\n"+
			"nu ~ Exponential(1/%g) + %g\n"+
			"y ~ t(nu, mu, sigma)\n",
		h.MeanLoc, h.MeanScale,
		h.SigmaLow, h.SigmaHigh,
		nuRate, h.NuMin)
}

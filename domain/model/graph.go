package model

import (
	"math"
	"sort"
)

// Point assigns a value to every free parameter of a graph.
type Point map[string]float64

// Stochastic is a free random variable with a proper prior.
type Stochastic struct {
	Name     string
	LogPrior func(x float64) float64
	Init     float64 // starting value for samplers
	Step     float64 // proposal scale hint for random-walk samplers
}

// Deterministic is a named transform of the free parameters.
type Deterministic struct {
	Name    string
	Compute func(p Point) float64
}

// Graph is the directed acyclic graph of named random variables for one
// analysis: independent priors, deterministic transforms, and a Student-t
// likelihood bound to the observed data. It is built once per analysis and
// immutable afterwards.
type Graph struct {
	free          []Stochastic
	deterministic []Deterministic
	logLikelihood func(p Point) float64
}

// Free returns the stochastic nodes sampled by the engine.
func (g *Graph) Free() []Stochastic {
	return g.free
}

// Deterministic returns the derived nodes, evaluated per posterior draw.
func (g *Graph) Deterministic() []Deterministic {
	return g.deterministic
}

// LogLikelihood evaluates the data likelihood at a point.
func (g *Graph) LogLikelihood(p Point) float64 {
	return g.logLikelihood(p)
}

// LogPosterior evaluates the unnormalized log posterior density at a point.
// Points outside a prior's support yield -Inf.
func (g *Graph) LogPosterior(p Point) float64 {
	lp := 0.0
	for _, node := range g.free {
		lp += node.LogPrior(p[node.Name])
		if math.IsInf(lp, -1) {
			return math.Inf(-1)
		}
	}
	return lp + g.logLikelihood(p)
}

// InitialPoint returns a fresh point at the nodes' starting values.
func (g *Graph) InitialPoint() Point {
	p := make(Point, len(g.free))
	for _, node := range g.free {
		p[node.Name] = node.Init
	}
	return p
}

// EvalDeterministic computes every derived variable at a point.
func (g *Graph) EvalDeterministic(p Point) map[string]float64 {
	out := make(map[string]float64, len(g.deterministic))
	for _, node := range g.deterministic {
		out[node.Name] = node.Compute(p)
	}
	return out
}

// VariableNames lists every named variable in the graph, sorted.
func (g *Graph) VariableNames() []string {
	names := make([]string, 0, len(g.free)+len(g.deterministic))
	for _, node := range g.free {
		names = append(names, node.Name)
	}
	for _, node := range g.deterministic {
		names = append(names, node.Name)
	}
	sort.Strings(names)
	return names
}

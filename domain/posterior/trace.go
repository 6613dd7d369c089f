// Package posterior holds the posterior sample store and the pure analysis
// operations over it: highest-density intervals, interval probabilities,
// kernel-density modes and summary statistics.
package posterior

import (
	"sort"

	"gobest/domain/core"
)

// Trace maps variable names to their posterior draws, flattened across
// chains. It is created by the sampling engine and read-only afterwards.
type Trace struct {
	samples map[string][]float64
	chains  int
}

// NewTrace builds a trace from per-variable sample sequences. The map and
// its slices are taken over by the trace and must not be mutated afterwards.
func NewTrace(samples map[string][]float64, chains int) *Trace {
	if chains < 1 {
		chains = 1
	}
	return &Trace{samples: samples, chains: chains}
}

// Variables lists the variable names in the trace, sorted.
func (t *Trace) Variables() []string {
	names := make([]string, 0, len(t.samples))
	for name := range t.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Samples returns the flattened draws for a named variable. The returned
// slice is shared with the trace and must be treated as read-only.
func (t *Trace) Samples(name string) ([]float64, error) {
	s, ok := t.samples[name]
	if !ok {
		return nil, core.NewUnknownVariableError(name)
	}
	return s, nil
}

// Chains reports how many chains contributed to the trace.
func (t *Trace) Chains() int {
	return t.chains
}

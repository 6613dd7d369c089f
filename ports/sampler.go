// Package ports defines the narrow interfaces between the estimation core
// and its external collaborators.
package ports

import (
	"context"

	"gobest/domain/model"
	"gobest/domain/posterior"
)

// SamplerOptions configure one sampling run.
type SamplerOptions struct {
	// Tuning is the number of warmup draws per chain, discarded from the
	// trace.
	Tuning int
	// TargetAccept is the acceptance rate the engine adapts toward.
	TargetAccept float64
	// Chains is the number of independent chains.
	Chains int
	// Seed makes runs reproducible; 0 lets the engine pick.
	Seed int64
}

// Sampler is the MCMC engine boundary. Given a model it returns posterior
// draws for every named variable of the graph, plus a pass/fail diagnostics
// signal. The core works with any engine implementing this contract and
// never inspects how the draws were produced.
type Sampler interface {
	Sample(ctx context.Context, m *model.Model, draws int, opts SamplerOptions) (trace *posterior.Trace, diagnosticsOK bool, err error)
}

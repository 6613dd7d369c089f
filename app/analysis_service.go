// Package app wires the model builders, the sampling engine and the
// posterior analyzer into caller-facing analysis operations.
package app

import (
	"context"
	"fmt"

	"gobest/domain/model"
	"gobest/domain/posterior"
	"gobest/internal"
	"gobest/ports"
)

// Sampling runs at most twice: the initial attempt plus one retry with more
// tuning.
const (
	maxSamplingRounds = 2
	retryTuning       = 2000
)

// Options configure an analysis. Zero values fall back to the defaults.
type Options struct {
	Draws        int     // posterior draws per chain, default 2000
	Tuning       int     // warmup draws per chain, default 1000
	Chains       int     // independent chains, default 2
	TargetAccept float64 // default 0.9
	Seed         int64   // 0 lets the engine pick
}

func (o Options) withDefaults() Options {
	if o.Draws == 0 {
		o.Draws = 2000
	}
	if o.Tuning == 0 {
		o.Tuning = 1000
	}
	if o.Chains == 0 {
		o.Chains = 2
	}
	if o.TargetAccept == 0 {
		o.TargetAccept = 0.9
	}
	return o
}

// Service runs Bayesian estimation analyses.
type Service struct {
	sampler   ports.Sampler
	estimator posterior.DensityEstimator
	logger    *internal.Logger
}

// NewService creates an analysis service on top of a sampling engine and a
// density estimator.
func NewService(sampler ports.Sampler, estimator posterior.DensityEstimator, logger *internal.Logger) *Service {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Service{sampler: sampler, estimator: estimator, logger: logger}
}

// AnalyzeOne estimates the distribution of a single group of measurements
// against a reference value. Typical uses are paired data or an experiment
// without a control group.
func (s *Service) AnalyzeOne(ctx context.Context, data []float64, refVal float64, opts Options) (*Results, error) {
	m, err := model.BuildOneGroup(data, refVal)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, m, opts)
}

// AnalyzeTwo estimates the difference between two independent groups of
// measurements, including the difference of means and the effect size.
func (s *Service) AnalyzeTwo(ctx context.Context, data1, data2 []float64, opts Options) (*Results, error) {
	m, err := model.BuildTwoGroup(data1, data2)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, m, opts)
}

// run drives the sampling engine with the bounded retry policy: a failed
// diagnostics report triggers exactly one rerun with more tuning samples,
// and a second failure still returns the samples, flagged untrustworthy.
func (s *Service) run(ctx context.Context, m *model.Model, opts Options) (*Results, error) {
	opts = opts.withDefaults()
	tuning := opts.Tuning

	var trace *posterior.Trace
	var ok bool
	for round := 0; round < maxSamplingRounds; round++ {
		var err error
		trace, ok, err = s.sampler.Sample(ctx, m, opts.Draws, ports.SamplerOptions{
			Tuning:       tuning,
			TargetAccept: opts.TargetAccept,
			Chains:       opts.Chains,
			Seed:         opts.Seed,
		})
		if err != nil {
			return nil, fmt.Errorf("sampling %s model: %w", m.Kind(), err)
		}
		if ok {
			break
		}
		if round == 0 {
			tuning = retryTuning
			s.logger.Warn("sampling diagnostics failed, estimates may be unreliable; rerunning with %d tuning samples", tuning)
		} else {
			s.logger.Warn("sampling diagnostics still failing after retry; treat these results with suspicion and consider rerunning the analysis")
		}
	}

	return newResults(m, trace, ok, s.estimator), nil
}

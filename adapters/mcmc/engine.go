// Package mcmc is the default sampling engine: an adaptive random-walk
// Metropolis sampler running parallel chains over a model graph. It
// implements the ports.Sampler contract; the estimation core never depends
// on it directly and works with any engine honoring that contract.
package mcmc

import (
	"context"
	"math"
	"math/rand"
	"time"

	"gobest/domain/model"
	"gobest/domain/posterior"
	"gobest/internal"
	"gobest/ports"

	"golang.org/x/sync/errgroup"
)

const (
	defaultChains       = 2
	defaultTuning       = 1000
	defaultTargetAccept = 0.9

	// adaptBatch is the number of tuning iterations between step-size
	// adjustments.
	adaptBatch = 50
)

// Engine is an adaptive Metropolis sampler.
type Engine struct {
	logger *internal.Logger
}

// NewEngine creates a sampling engine.
func NewEngine(logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{logger: logger}
}

type chainResult struct {
	draws      map[string][]float64
	acceptRate float64
}

// Sample draws posterior samples from the model. Chains run in parallel;
// each chain adapts its per-parameter step sizes toward the target
// acceptance rate during tuning and records draws afterwards. Diagnostics
// are the split R-hat convergence statistic per free parameter plus an
// acceptance-rate sanity band.
func (e *Engine) Sample(ctx context.Context, m *model.Model, draws int, opts ports.SamplerOptions) (*posterior.Trace, bool, error) {
	chains := opts.Chains
	if chains < 1 {
		chains = defaultChains
	}
	tuning := opts.Tuning
	if tuning <= 0 {
		tuning = defaultTuning
	}
	target := opts.TargetAccept
	if target <= 0 || target >= 1 {
		target = defaultTargetAccept
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	graph := m.Graph()
	results := make([]chainResult, chains)

	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < chains; c++ {
		c := c
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(c)))
			res, err := runChain(gctx, graph, draws, tuning, target, rng)
			if err != nil {
				return err
			}
			results[c] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	ok := e.checkDiagnostics(graph, results, target)
	trace := assembleTrace(graph, results)
	return trace, ok, nil
}

// runChain executes one Metropolis chain: tuning iterations with step
// adaptation, then draws iterations recorded into the result.
func runChain(ctx context.Context, graph *model.Graph, draws, tuning int, target float64, rng *rand.Rand) (chainResult, error) {
	free := graph.Free()
	point := graph.InitialPoint()

	// Overdisperse the start a little so chains do not begin identical.
	for _, node := range free {
		point[node.Name] += 0.1 * node.Step * rng.NormFloat64()
	}
	lp := graph.LogPosterior(point)
	if math.IsInf(lp, -1) {
		point = graph.InitialPoint()
		lp = graph.LogPosterior(point)
	}

	steps := make(map[string]float64, len(free))
	for _, node := range free {
		steps[node.Name] = node.Step
	}

	res := chainResult{draws: make(map[string][]float64, len(free))}
	for _, node := range free {
		res.draws[node.Name] = make([]float64, 0, draws)
	}

	var accepted, proposed int
	var batchAccepted, batchProposed int

	total := tuning + draws
	for i := 0; i < total; i++ {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return chainResult{}, err
			}
		}

		for _, node := range free {
			old := point[node.Name]
			point[node.Name] = old + steps[node.Name]*rng.NormFloat64()
			proposal := graph.LogPosterior(point)

			if math.Log(rng.Float64()) < proposal-lp {
				lp = proposal
				if i >= tuning {
					accepted++
				}
				batchAccepted++
			} else {
				point[node.Name] = old
			}
			if i >= tuning {
				proposed++
			}
			batchProposed++
		}

		// Step adaptation runs only during tuning; adapting after would
		// break detailed balance.
		if i < tuning && batchProposed >= adaptBatch*len(free) {
			rate := float64(batchAccepted) / float64(batchProposed)
			for name := range steps {
				steps[name] *= math.Exp(rate - target)
			}
			batchAccepted, batchProposed = 0, 0
		}

		if i >= tuning {
			for _, node := range free {
				res.draws[node.Name] = append(res.draws[node.Name], point[node.Name])
			}
		}
	}

	if proposed > 0 {
		res.acceptRate = float64(accepted) / float64(proposed)
	}
	return res, nil
}

// assembleTrace flattens the chains per variable and evaluates the
// deterministic nodes for every recorded draw.
func assembleTrace(graph *model.Graph, results []chainResult) *posterior.Trace {
	free := graph.Free()
	det := graph.Deterministic()

	total := 0
	for _, res := range results {
		if len(free) > 0 {
			total += len(res.draws[free[0].Name])
		}
	}

	samples := make(map[string][]float64, len(free)+len(det))
	for _, node := range free {
		samples[node.Name] = make([]float64, 0, total)
	}
	for _, node := range det {
		samples[node.Name] = make([]float64, 0, total)
	}

	point := make(model.Point, len(free))
	for _, res := range results {
		n := 0
		if len(free) > 0 {
			n = len(res.draws[free[0].Name])
		}
		for i := 0; i < n; i++ {
			for _, node := range free {
				v := res.draws[node.Name][i]
				point[node.Name] = v
				samples[node.Name] = append(samples[node.Name], v)
			}
			for _, node := range det {
				samples[node.Name] = append(samples[node.Name], node.Compute(point))
			}
		}
	}

	return posterior.NewTrace(samples, len(results))
}

func (e *Engine) checkDiagnostics(graph *model.Graph, results []chainResult, target float64) bool {
	ok := true
	for _, res := range results {
		if res.acceptRate < 0.05 || res.acceptRate > 0.995 {
			e.logger.Debug("chain acceptance rate %.3f outside sanity band (target %.2f)", res.acceptRate, target)
			ok = false
		}
	}
	for _, node := range graph.Free() {
		chains := make([][]float64, len(results))
		for c, res := range results {
			chains[c] = res.draws[node.Name]
		}
		if r := splitRHat(chains); r > rHatThreshold {
			e.logger.Debug("split R-hat %.3f for %q exceeds %.2f", r, node.Name, rHatThreshold)
			ok = false
		}
	}
	return ok
}

package app

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobest/adapters/kde"
	"gobest/domain/core"
	"gobest/domain/model"
	"gobest/domain/posterior"
	"gobest/ports"
)

var (
	drugScores = []float64{
		101, 100, 102, 104, 102, 97, 105, 105, 98, 101, 100, 123, 105, 103, 100,
		95, 102, 106, 109, 102, 82, 102, 100, 102, 102, 101, 102, 102, 103, 103,
		97, 97, 103, 101, 97, 104, 96, 103, 124, 101, 101, 100, 101, 101, 104,
		100, 101,
	}
	placeboScores = []float64{
		99, 101, 100, 101, 102, 100, 97, 101, 104, 101, 102, 102, 100, 105, 88,
		101, 100, 104, 100, 100, 100, 101, 102, 103, 97, 101, 101, 100, 101, 99,
		101, 100, 100, 101, 100, 99, 101, 100, 102, 99, 100, 99,
	}
)

// fakeSampler records every call and answers diagnostics from a script. The
// trace it fabricates jitters the graph's starting point and evaluates the
// derived nodes per draw, so posterior operations stay meaningful.
type fakeSampler struct {
	script []bool
	calls  []ports.SamplerOptions
	err    error
}

func (f *fakeSampler) Sample(_ context.Context, m *model.Model, draws int, opts ports.SamplerOptions) (*posterior.Trace, bool, error) {
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return nil, false, f.err
	}

	ok := true
	if len(f.script) > 0 {
		ok = f.script[0]
		f.script = f.script[1:]
	}

	chains := opts.Chains
	if chains < 1 {
		chains = 1
	}
	total := draws * chains
	rng := rand.New(rand.NewSource(99))
	graph := m.Graph()
	start := graph.InitialPoint()

	samples := make(map[string][]float64)
	for _, node := range graph.Free() {
		samples[node.Name] = make([]float64, 0, total)
	}
	for _, node := range graph.Deterministic() {
		samples[node.Name] = make([]float64, 0, total)
	}

	point := make(model.Point, len(start))
	for i := 0; i < total; i++ {
		for _, node := range graph.Free() {
			v := start[node.Name] + 0.05*node.Step*rng.NormFloat64()
			point[node.Name] = v
			samples[node.Name] = append(samples[node.Name], v)
		}
		for name, v := range graph.EvalDeterministic(point) {
			samples[name] = append(samples[name], v)
		}
	}
	return posterior.NewTrace(samples, chains), ok, nil
}

func newTestService(sampler ports.Sampler) *Service {
	return NewService(sampler, kde.NewGaussian(), nil)
}

func TestAnalyzeOne_SingleRoundWhenDiagnosticsPass(t *testing.T) {
	sampler := &fakeSampler{script: []bool{true}}
	svc := newTestService(sampler)

	res, err := svc.AnalyzeOne(context.Background(), drugScores, 100, Options{Draws: 200})
	require.NoError(t, err)
	require.Len(t, sampler.calls, 1)
	assert.Equal(t, 1000, sampler.calls[0].Tuning)
	assert.Equal(t, 2, sampler.calls[0].Chains)
	assert.InDelta(t, 0.9, sampler.calls[0].TargetAccept, 1e-12)
	assert.True(t, res.DiagnosticsOK())
}

func TestAnalyzeOne_RetriesOnceWithMoreTuning(t *testing.T) {
	sampler := &fakeSampler{script: []bool{false, true}}
	svc := newTestService(sampler)

	res, err := svc.AnalyzeOne(context.Background(), drugScores, 100, Options{Draws: 200})
	require.NoError(t, err)
	require.Len(t, sampler.calls, 2)
	assert.Equal(t, 1000, sampler.calls[0].Tuning)
	assert.Equal(t, 2000, sampler.calls[1].Tuning)
	assert.True(t, res.DiagnosticsOK())
}

func TestAnalyzeOne_ReturnsFlaggedResultsAfterSecondFailure(t *testing.T) {
	sampler := &fakeSampler{script: []bool{false, false}}
	svc := newTestService(sampler)

	res, err := svc.AnalyzeOne(context.Background(), drugScores, 100, Options{Draws: 200})
	require.NoError(t, err)
	require.Len(t, sampler.calls, 2)
	require.NotNil(t, res)
	assert.False(t, res.DiagnosticsOK())
	assert.NotNil(t, res.Trace())
}

func TestAnalyzeOne_SamplerErrorPropagates(t *testing.T) {
	wantErr := errors.New("engine exploded")
	sampler := &fakeSampler{err: wantErr}
	svc := newTestService(sampler)

	_, err := svc.AnalyzeOne(context.Background(), drugScores, 100, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Len(t, sampler.calls, 1)
}

func TestAnalyzeOne_ValidationBeforeSampling(t *testing.T) {
	sampler := &fakeSampler{}
	svc := newTestService(sampler)

	cases := map[string][]float64{
		"too short":     {1},
		"non-finite":    {1, 2, math.NaN(), 4},
		"zero variance": {3, 3, 3, 3},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.AnalyzeOne(context.Background(), data, 0, Options{})
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err), "want a validation error, got %v", err)
		})
	}
	assert.Empty(t, sampler.calls, "invalid data must never reach the sampler")
}

func TestAnalyzeTwo_EndToEnd(t *testing.T) {
	sampler := &fakeSampler{script: []bool{true}}
	svc := newTestService(sampler)

	res, err := svc.AnalyzeTwo(context.Background(), drugScores, placeboScores, Options{Draws: 300})
	require.NoError(t, err)
	assert.Equal(t, model.KindTwoGroup, res.Model().Kind())

	summary, err := res.Summary(0.95)
	require.NoError(t, err)
	for _, name := range []string{
		model.VarGroup1Mean, model.VarGroup2Mean,
		model.VarDiffOfMeans, model.VarDiffOfSDs,
		model.VarEffectSize, model.VarNormality,
	} {
		s, ok := summary[name]
		require.True(t, ok, "summary missing %q", name)
		assert.LessOrEqual(t, s.HDILow, s.HDIHigh, "%q interval inverted", name)
		assert.False(t, math.IsNaN(s.Mean), "%q mean is NaN", name)
	}

	p, err := res.PosteriorProb(model.VarDiffOfMeans, 0, math.Inf(1))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)

	mode, err := res.PosteriorMode(model.VarDiffOfMeans)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(mode))
}

func TestResults_ObservedData(t *testing.T) {
	svc := newTestService(&fakeSampler{})

	res, err := svc.AnalyzeTwo(context.Background(), drugScores, placeboScores, Options{Draws: 50})
	require.NoError(t, err)

	g1, err := res.ObservedData(1)
	require.NoError(t, err)
	assert.Equal(t, drugScores, g1)

	g2, err := res.ObservedData(2)
	require.NoError(t, err)
	assert.Equal(t, placeboScores, g2)

	// Returned slices are copies.
	g1[0] = -1
	again, err := res.ObservedData(1)
	require.NoError(t, err)
	assert.Equal(t, drugScores[0], again[0])

	_, err = res.ObservedData(3)
	assert.ErrorIs(t, err, core.ErrInvalidGroupID)

	res1, err := svc.AnalyzeOne(context.Background(), drugScores, 100, Options{Draws: 50})
	require.NoError(t, err)
	_, err = res1.ObservedData(2)
	assert.ErrorIs(t, err, core.ErrInvalidGroupID)
}

func TestResults_UnknownVariable(t *testing.T) {
	svc := newTestService(&fakeSampler{})

	res, err := svc.AnalyzeOne(context.Background(), drugScores, 100, Options{Draws: 50})
	require.NoError(t, err)

	_, err = res.PosteriorProb("No such variable", 0, 1)
	assert.ErrorIs(t, err, core.ErrUnknownVariable)
	_, _, err = res.HDI("No such variable", 0.95)
	assert.ErrorIs(t, err, core.ErrUnknownVariable)
}

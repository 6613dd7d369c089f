package app

import (
	"time"

	"gobest/domain/core"
	"gobest/domain/model"
	"gobest/domain/posterior"

	"github.com/google/uuid"
)

// Results pairs one model with the posterior samples drawn from it and
// exposes the posterior analysis operations on named variables. The model
// and trace are owned 1:1 by the Results object and read-only.
type Results struct {
	id            uuid.UUID
	model         *model.Model
	trace         *posterior.Trace
	diagnosticsOK bool
	estimator     posterior.DensityEstimator
	createdAt     time.Time
}

func newResults(m *model.Model, t *posterior.Trace, diagnosticsOK bool, estimator posterior.DensityEstimator) *Results {
	return &Results{
		id:            uuid.New(),
		model:         m,
		trace:         t,
		diagnosticsOK: diagnosticsOK,
		estimator:     estimator,
		createdAt:     time.Now().UTC(),
	}
}

// RestoreResults rebuilds a Results object from persisted state.
func RestoreResults(id uuid.UUID, m *model.Model, t *posterior.Trace, diagnosticsOK bool, estimator posterior.DensityEstimator, createdAt time.Time) *Results {
	return &Results{
		id:            id,
		model:         m,
		trace:         t,
		diagnosticsOK: diagnosticsOK,
		estimator:     estimator,
		createdAt:     createdAt,
	}
}

// ID returns the analysis identifier.
func (r *Results) ID() uuid.UUID {
	return r.id
}

// Model returns the model the samples were drawn from.
func (r *Results) Model() *model.Model {
	return r.model
}

// Trace returns the collection of posterior samples.
func (r *Results) Trace() *posterior.Trace {
	return r.trace
}

// DiagnosticsOK reports whether the engine's sampling diagnostics passed.
// When false the posterior samples are still usable but should be treated
// with suspicion.
func (r *Results) DiagnosticsOK() bool {
	return r.diagnosticsOK
}

// CreatedAt returns when the analysis completed.
func (r *Results) CreatedAt() time.Time {
	return r.createdAt
}

// ObservedData returns the observed data of a group (1-based id).
func (r *Results) ObservedData(groupID int) ([]float64, error) {
	return r.model.ObservedData(groupID)
}

// Summary returns per-variable summary statistics with HDI bounds at the
// given credible mass.
func (r *Results) Summary(credibleMass float64) (map[string]posterior.VariableSummary, error) {
	return posterior.Summarize(r.trace, credibleMass, r.estimator)
}

// HDI returns the highest-density interval of a variable.
func (r *Results) HDI(varName string, credibleMass float64) (float64, float64, error) {
	samples, err := r.trace.Samples(varName)
	if err != nil {
		return 0, 0, err
	}
	return posterior.HDI(samples, credibleMass)
}

// PosteriorProb returns the posterior probability that a variable lies
// strictly inside (low, high). Pass -Inf or +Inf for one-sided intervals.
func (r *Results) PosteriorProb(varName string, low, high float64) (float64, error) {
	samples, err := r.trace.Samples(varName)
	if err != nil {
		return 0, err
	}
	return posterior.Prob(samples, low, high), nil
}

// PosteriorMode returns the kernel-density mode of a variable.
func (r *Results) PosteriorMode(varName string) (float64, error) {
	samples, err := r.trace.Samples(varName)
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, core.ErrEmptyTrace
	}
	return posterior.Mode(samples, r.estimator)
}

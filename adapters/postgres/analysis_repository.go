// Package postgres persists completed analyses. An analysis row stores the
// observed data and the flattened trace, which is everything needed to
// reconstruct the Results object.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gobest/app"
	"gobest/domain/model"
	"gobest/domain/posterior"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrAnalysisNotFound is returned when no row matches the requested id.
var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisRepository implements app.ResultsRepository for PostgreSQL.
type AnalysisRepository struct {
	db        *sqlx.DB
	estimator posterior.DensityEstimator
}

// NewAnalysisRepository creates a PostgreSQL results repository. The
// estimator is attached to restored Results objects for mode computation.
func NewAnalysisRepository(db *sqlx.DB, estimator posterior.DensityEstimator) *AnalysisRepository {
	return &AnalysisRepository{db: db, estimator: estimator}
}

type analysisRow struct {
	ID            uuid.UUID      `db:"id"`
	Kind          string         `db:"kind"`
	Group1        []byte         `db:"group1"`
	Group2        []byte         `db:"group2"`
	RefVal        float64        `db:"ref_val"`
	Chains        int            `db:"chains"`
	DiagnosticsOK bool           `db:"diagnostics_ok"`
	Trace         []byte         `db:"trace"`
	CreatedAt     time.Time      `db:"created_at"`
}

// Save upserts an analysis.
func (r *AnalysisRepository) Save(ctx context.Context, res *app.Results) error {
	m := res.Model()

	group1, err := m.ObservedData(1)
	if err != nil {
		return err
	}
	group1JSON, _ := json.Marshal(group1)

	var group2JSON []byte
	if m.Kind() == model.KindTwoGroup {
		group2, err := m.ObservedData(2)
		if err != nil {
			return err
		}
		group2JSON, _ = json.Marshal(group2)
	}

	trace := res.Trace()
	samples := make(map[string][]float64, len(trace.Variables()))
	for _, name := range trace.Variables() {
		s, err := trace.Samples(name)
		if err != nil {
			return err
		}
		samples[name] = s
	}
	traceJSON, err := json.Marshal(samples)
	if err != nil {
		return fmt.Errorf("encoding trace: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analyses (
			id, kind, group1, group2, ref_val, chains, diagnostics_ok, trace, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			diagnostics_ok = EXCLUDED.diagnostics_ok,
			trace = EXCLUDED.trace`,
		res.ID(), m.Kind().String(), group1JSON, group2JSON,
		m.ReferenceValue(), trace.Chains(), res.DiagnosticsOK(), traceJSON, res.CreatedAt())
	if err != nil {
		return fmt.Errorf("saving analysis %s: %w", res.ID(), err)
	}
	return nil
}

// Get loads and reconstructs an analysis by id.
func (r *AnalysisRepository) Get(ctx context.Context, id uuid.UUID) (*app.Results, error) {
	var row analysisRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, kind, group1, group2, ref_val, chains, diagnostics_ok, trace, created_at
		FROM analyses WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading analysis %s: %w", id, err)
	}

	var group1 []float64
	if err := json.Unmarshal(row.Group1, &group1); err != nil {
		return nil, fmt.Errorf("decoding group 1 data: %w", err)
	}

	var m *model.Model
	switch row.Kind {
	case model.KindTwoGroup.String():
		var group2 []float64
		if err := json.Unmarshal(row.Group2, &group2); err != nil {
			return nil, fmt.Errorf("decoding group 2 data: %w", err)
		}
		m, err = model.BuildTwoGroup(group1, group2)
	default:
		m, err = model.BuildOneGroup(group1, row.RefVal)
	}
	if err != nil {
		return nil, fmt.Errorf("rebuilding %s model: %w", row.Kind, err)
	}

	var samples map[string][]float64
	if err := json.Unmarshal(row.Trace, &samples); err != nil {
		return nil, fmt.Errorf("decoding trace: %w", err)
	}
	trace := posterior.NewTrace(samples, row.Chains)

	return app.RestoreResults(row.ID, m, trace, row.DiagnosticsOK, r.estimator, row.CreatedAt), nil
}

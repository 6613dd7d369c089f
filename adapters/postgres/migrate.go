package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id UUID PRIMARY KEY,
	kind TEXT NOT NULL,
	group1 JSONB NOT NULL,
	group2 JSONB,
	ref_val DOUBLE PRECISION NOT NULL DEFAULT 0,
	chains INT NOT NULL,
	diagnostics_ok BOOLEAN NOT NULL,
	trace JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at);
`

// Migrate creates the schema if it does not exist. Safe to run on every
// startup.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying analyses schema: %w", err)
	}
	return nil
}

package app

import (
	"context"

	"github.com/google/uuid"
)

// ResultsRepository persists completed analyses. A stored analysis must be
// fully reconstructible: the observed data, the configuration and the
// flattened trace together rebuild the Results object.
type ResultsRepository interface {
	Save(ctx context.Context, r *Results) error
	Get(ctx context.Context, id uuid.UUID) (*Results, error)
}

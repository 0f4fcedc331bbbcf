package ports

import (
	"context"

	"childcare-route-service/internal/domain"
)

// Contract for retrieving pairwise driving times between locations.
// Matrix returns a square matrix of seconds where entry [i][j] is the
// estimated drive time from locations[i] to locations[j].
//
// Providers may fail or be absent entirely; callers fall back to a
// great-circle estimate in that case.
type TimeMatrixProvider interface {
	Matrix(ctx context.Context, locations []domain.Coordinates) ([][]int, error)
}

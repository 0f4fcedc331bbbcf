package ports

import (
	"context"

	"childcare-route-service/internal/domain"
)

// Contract for resolving a free-form street address to coordinates.
// Best-effort: a nil result with nil error means the provider had no
// sufficiently confident match.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (*domain.Coordinates, error)
}

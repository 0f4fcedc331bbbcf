package ports

import (
	"context"
	"errors"

	"childcare-route-service/internal/domain"
)

// ErrNotFound is returned by Store lookups when the referenced entity is absent.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when concurrent transactions collide and the
// store aborts one of them.
var ErrConflict = errors.New("transaction conflict")

// Port: transactional persistence for roster, fleet, and planned routes.
//
// Routes returned by GetRoute, ListRoutesByDate, and FindAssignedRoute carry
// their stops ordered by sequence. WithTransaction runs fn against a
// transactional view of the store; if fn returns an error the transaction is
// rolled back and nothing persists. Implementations must serialize concurrent
// transactions touching the same routes.
type Store interface {
	WithTransaction(ctx context.Context, fn func(tx Store) error) error

	ListChildren(ctx context.Context) ([]*domain.Child, error)
	GetChild(ctx context.Context, id string) (*domain.Child, error)
	ListDrivers(ctx context.Context) ([]*domain.Driver, error)
	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	ListVehicles(ctx context.Context) ([]*domain.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)

	CreateRoute(ctx context.Context, r *domain.Route) error
	GetRoute(ctx context.Context, id string) (*domain.Route, error)
	ListRoutesByDate(ctx context.Context, date string) ([]*domain.Route, error)
	// FindAssignedRoute returns the route on the given date whose driver is
	// driverID and whose status is past planning, or ErrNotFound.
	FindAssignedRoute(ctx context.Context, driverID, date string) (*domain.Route, error)
	UpdateRouteAssignment(ctx context.Context, routeID string, driverID, vehicleID *string, status domain.RouteStatus) error
	// DeleteRoute removes the route and cascades to its stops.
	DeleteRoute(ctx context.Context, id string) error
	// DeleteRoutesByDate removes every route on the date together with their
	// stops. Used by the planner's wipe-and-rewrite step.
	DeleteRoutesByDate(ctx context.Context, date string) error

	CreateStop(ctx context.Context, s *domain.Stop) error
	GetStop(ctx context.Context, id string) (*domain.Stop, error)
	DeleteStop(ctx context.Context, id string) error
	UpdateStopSequence(ctx context.Context, stopID string, sequence int) error
}

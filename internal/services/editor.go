package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/ports"
)

// Editor applies manual refinements to persisted routes. Every operation runs
// in its own store transaction and maintains the sequence densification
// invariant: a route's stop sequences are always a contiguous 1..N.
type Editor struct {
	store ports.Store
}

func NewEditor(store ports.Store) *Editor {
	return &Editor{store: store}
}

// CreateManualRoute creates an empty route in planning status with no driver
// or vehicle attached.
func (e *Editor) CreateManualRoute(ctx context.Context, name, date string) (*domain.Route, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("create route: name must be non-empty: %w", ErrBadInput)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("create route: date %q is not YYYY-MM-DD: %w", date, ErrBadInput)
	}

	route := &domain.Route{
		ID:     uuid.New().String(),
		Name:   name,
		Date:   date,
		Status: domain.RouteStatusPlanning,
	}

	err := e.store.WithTransaction(ctx, func(tx ports.Store) error {
		return tx.CreateRoute(ctx, route)
	})
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	return route, nil
}

// DeleteRoute removes the route and all of its stops. Completed and
// in-progress routes are deletable too; the editor is an operator tool.
func (e *Editor) DeleteRoute(ctx context.Context, routeID string) error {
	err := e.store.WithTransaction(ctx, func(tx ports.Store) error {
		if _, err := tx.GetRoute(ctx, routeID); err != nil {
			return err
		}
		return tx.DeleteRoute(ctx, routeID)
	})
	if err != nil {
		return fmt.Errorf("delete route %s: %w", routeID, err)
	}
	return nil
}

// AddStopToRoute appends a pending pickup stop for the child at the end of
// the route. A child already on the route is rejected; one stop per child.
func (e *Editor) AddStopToRoute(ctx context.Context, routeID, childID string) (*domain.Route, error) {
	var out *domain.Route

	err := e.store.WithTransaction(ctx, func(tx ports.Store) error {
		route, err := tx.GetRoute(ctx, routeID)
		if err != nil {
			return err
		}
		if _, err := tx.GetChild(ctx, childID); err != nil {
			return err
		}
		if route.StopForChild(childID) != nil {
			return fmt.Errorf("child %s is already on route %s: %w", childID, routeID, ErrBadInput)
		}

		stop := &domain.Stop{
			ID:       uuid.New().String(),
			Sequence: len(route.Stops) + 1,
			Type:     domain.StopTypePickup,
			Status:   domain.StopStatusPending,
			ChildID:  childID,
			RouteID:  routeID,
		}
		if err := tx.CreateStop(ctx, stop); err != nil {
			return err
		}

		out, err = tx.GetRoute(ctx, routeID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add stop to route %s: %w", routeID, err)
	}

	return out, nil
}

// RemoveStopFromRoute deletes the stop and densifies the surviving stops'
// sequences back to 1..N, preserving their relative order.
func (e *Editor) RemoveStopFromRoute(ctx context.Context, stopID string) (*domain.Route, error) {
	var out *domain.Route

	err := e.store.WithTransaction(ctx, func(tx ports.Store) error {
		stop, err := tx.GetStop(ctx, stopID)
		if err != nil {
			return err
		}
		if err := tx.DeleteStop(ctx, stopID); err != nil {
			return err
		}

		route, err := tx.GetRoute(ctx, stop.RouteID)
		if err != nil {
			return err
		}

		survivors := make([]*domain.Stop, len(route.Stops))
		copy(survivors, route.Stops)
		sort.SliceStable(survivors, func(a, b int) bool {
			return survivors[a].Sequence < survivors[b].Sequence
		})
		for i, s := range survivors {
			if s.Sequence == i+1 {
				continue
			}
			if err := tx.UpdateStopSequence(ctx, s.ID, i+1); err != nil {
				return err
			}
		}

		out, err = tx.GetRoute(ctx, stop.RouteID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("remove stop %s: %w", stopID, err)
	}

	return out, nil
}

// ReorderStops rewrites the route's sequences to follow the given order.
// stopIDs must be exactly the route's stop set; anything else would leave
// stale sequences behind and break the densification invariant.
func (e *Editor) ReorderStops(ctx context.Context, routeID string, stopIDs []string) (*domain.Route, error) {
	if len(stopIDs) == 0 {
		return nil, fmt.Errorf("reorder stops: stopIds must be non-empty: %w", ErrBadInput)
	}

	var out *domain.Route

	err := e.store.WithTransaction(ctx, func(tx ports.Store) error {
		route, err := tx.GetRoute(ctx, routeID)
		if err != nil {
			return err
		}

		if err := requirePermutation(route, stopIDs); err != nil {
			return err
		}

		for i, id := range stopIDs {
			if err := tx.UpdateStopSequence(ctx, id, i+1); err != nil {
				return err
			}
		}

		out, err = tx.GetRoute(ctx, routeID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reorder stops on route %s: %w", routeID, err)
	}

	return out, nil
}

// AssignDriverAndVehicle attaches a driver and vehicle to the route and moves
// it from planning to assigned. A driver or vehicle already holding another
// route on the same date is a conflict.
func (e *Editor) AssignDriverAndVehicle(ctx context.Context, routeID, driverID, vehicleID string) (*domain.Route, error) {
	var out *domain.Route

	err := e.store.WithTransaction(ctx, func(tx ports.Store) error {
		route, err := tx.GetRoute(ctx, routeID)
		if err != nil {
			return err
		}
		if _, err := tx.GetDriver(ctx, driverID); err != nil {
			return err
		}
		if _, err := tx.GetVehicle(ctx, vehicleID); err != nil {
			return err
		}

		sameDate, err := tx.ListRoutesByDate(ctx, route.Date)
		if err != nil {
			return err
		}
		for _, other := range sameDate {
			if other.ID == routeID {
				continue
			}
			if other.DriverID != nil && *other.DriverID == driverID {
				return fmt.Errorf("driver %s holds route %s on %s: %w",
					driverID, other.ID, route.Date, ErrDriverAlreadyAssigned)
			}
			if other.VehicleID != nil && *other.VehicleID == vehicleID {
				return fmt.Errorf("vehicle %s holds route %s on %s: %w",
					vehicleID, other.ID, route.Date, ErrVehicleAlreadyAssigned)
			}
		}

		err = tx.UpdateRouteAssignment(ctx, routeID, &driverID, &vehicleID, domain.RouteStatusAssigned)
		if err != nil {
			return err
		}

		out, err = tx.GetRoute(ctx, routeID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("assign route %s: %w", routeID, err)
	}

	return out, nil
}

// requirePermutation verifies stopIDs is exactly the route's stop id set.
func requirePermutation(route *domain.Route, stopIDs []string) error {
	if len(stopIDs) != len(route.Stops) {
		return fmt.Errorf("expected %d stop ids, got %d: %w", len(route.Stops), len(stopIDs), ErrBadInput)
	}

	onRoute := make(map[string]struct{}, len(route.Stops))
	for _, s := range route.Stops {
		onRoute[s.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(stopIDs))
	for _, id := range stopIDs {
		if _, ok := onRoute[id]; !ok {
			return fmt.Errorf("stop %s is not on the route: %w", id, ErrBadInput)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("stop %s listed twice: %w", id, ErrBadInput)
		}
		seen[id] = struct{}{}
	}

	return nil
}

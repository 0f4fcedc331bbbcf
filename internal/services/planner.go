package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/metrics"
	"childcare-route-service/internal/ports"
)

// Unroutable reason strings; part of the external contract.
const (
	ReasonNoInfantDriver  = "No infant-certified driver available"
	ReasonNoInfantSeat    = "No vehicle with infant seat available"
	ReasonNoToddlerSeat   = "No vehicle with toddler seat available"
	ReasonNoCompatibility = "No compatible transport available"
)

// A child the planner could not place, with the reason shown to operators.
type UnroutableChild struct {
	Child  *domain.Child
	Reason string
}

// Output of a full planning run for one date.
type PlanningResult struct {
	Routes     []*domain.Route
	Unroutable []UnroutableChild
}

// Planner drives the daily pipeline: eligibility matching, compatibility
// partitioning, geographic clustering, sequence optimization, and route
// materialization — all inside one store transaction.
type Planner struct {
	store             ports.Store
	matrix            ports.TimeMatrixProvider
	depot             domain.Coordinates
	capacityHeuristic int
}

func NewPlanner(
	store ports.Store,
	matrix ports.TimeMatrixProvider,
	depot domain.Coordinates,
	capacityHeuristic int,
) *Planner {
	if capacityHeuristic < 1 {
		capacityHeuristic = DefaultCapacityHeuristic
	}
	return &Planner{
		store:             store,
		matrix:            matrix,
		depot:             depot,
		capacityHeuristic: capacityHeuristic,
	}
}

// PlanDay replaces the date's planned routes with a freshly computed set.
//
// Existing routes on the date — manually assigned ones included — are wiped
// first: planning is a full rewrite. Any fault aborts the transaction, so a
// failed run leaves the previous plan untouched.
func (p *Planner) PlanDay(ctx context.Context, date string) (*PlanningResult, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("plan day: date %q is not YYYY-MM-DD: %w", date, ErrBadInput)
	}

	var result *PlanningResult
	err := p.store.WithTransaction(ctx, func(tx ports.Store) error {
		var err error
		result, err = p.planDay(ctx, tx, date)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.PlansTotal.Inc()
	metrics.RoutesGenerated.Add(float64(len(result.Routes)))
	metrics.UnroutableChildren.Add(float64(len(result.Unroutable)))

	return result, nil
}

func (p *Planner) planDay(ctx context.Context, tx ports.Store, date string) (*PlanningResult, error) {
	if err := tx.DeleteRoutesByDate(ctx, date); err != nil {
		return nil, fmt.Errorf("plan day: wipe routes for %s: %w", date, err)
	}

	children, err := tx.ListChildren(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan day: list children: %w", err)
	}
	drivers, err := tx.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan day: list drivers: %w", err)
	}
	vehicles, err := tx.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan day: list vehicles: %w", err)
	}

	elig := MatchEligibility(children, drivers, vehicles)

	routable := make([]*domain.Child, 0, len(children))
	unroutable := make([]UnroutableChild, 0)
	for _, child := range children {
		if len(elig[child.ID]) > 0 {
			routable = append(routable, child)
			continue
		}

		reason := unroutableReason(child.Category, drivers, vehicles)
		unroutable = append(unroutable, UnroutableChild{Child: child, Reason: reason})
		logrus.WithFields(logrus.Fields{
			"child":  child.ID,
			"reason": reason,
		}).Warn("child has no eligible transport option")
	}

	result := &PlanningResult{Routes: []*domain.Route{}, Unroutable: unroutable}

	counter := 0
	for _, workload := range PartitionWorkloads(routable, elig) {
		for _, cluster := range ClusterWorkload(workload.Children, p.capacityHeuristic) {
			ordered, err := OrderPickups(ctx, cluster, p.depot, p.matrix)
			if err != nil {
				return nil, fmt.Errorf("plan day: order cluster: %w", err)
			}

			counter++
			route := &domain.Route{
				ID:     uuid.New().String(),
				Name:   fmt.Sprintf("Route %d - %s", counter, workload.Label),
				Date:   date,
				Status: domain.RouteStatusPlanning,
			}
			if err := tx.CreateRoute(ctx, route); err != nil {
				return nil, fmt.Errorf("plan day: create route %q: %w", route.Name, err)
			}

			for i, child := range ordered {
				stop := &domain.Stop{
					ID:       uuid.New().String(),
					Sequence: i + 1,
					Type:     domain.StopTypePickup,
					Status:   domain.StopStatusPending,
					ChildID:  child.ID,
					RouteID:  route.ID,
				}
				if err := tx.CreateStop(ctx, stop); err != nil {
					return nil, fmt.Errorf("plan day: create stop for child %s: %w", child.ID, err)
				}
			}

			// Reload so the result carries stops exactly as persisted.
			created, err := tx.GetRoute(ctx, route.ID)
			if err != nil {
				return nil, fmt.Errorf("plan day: reload route %s: %w", route.ID, err)
			}
			result.Routes = append(result.Routes, created)
		}
	}

	return result, nil
}

// unroutableReason diagnoses why a child's eligible set came up empty,
// preferring the most specific shortage.
func unroutableReason(c domain.Category, drivers []*domain.Driver, vehicles []*domain.Vehicle) string {
	switch c {
	case domain.CategoryInfant:
		if !anyDriverWith(drivers, domain.CapabilityInfantCertified) {
			return ReasonNoInfantDriver
		}
		if !anyVehicleWith(vehicles, domain.EquipmentInfantSeat) {
			return ReasonNoInfantSeat
		}
		return ReasonNoCompatibility
	case domain.CategoryToddler:
		if !anyVehicleWith(vehicles, domain.EquipmentToddlerSeat) {
			return ReasonNoToddlerSeat
		}
		return ReasonNoCompatibility
	default:
		return ReasonNoCompatibility
	}
}

func anyDriverWith(drivers []*domain.Driver, c domain.Capability) bool {
	for _, d := range drivers {
		if d.HasCapability(c) {
			return true
		}
	}
	return false
}

func anyVehicleWith(vehicles []*domain.Vehicle, e domain.Equipment) bool {
	for _, v := range vehicles {
		if v.HasEquipment(e) {
			return true
		}
	}
	return false
}

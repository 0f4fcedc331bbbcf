package services

import (
	"context"
	"errors"
	"testing"

	"childcare-route-service/internal/adapters/repositories"
	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/ports"
)

func newEditorFixture(t *testing.T) (*Editor, *repositories.Memory) {
	t.Helper()

	store := repositories.NewMemory()
	for _, id := range []string{"c1", "c2", "c3"} {
		store.PutChild(&domain.Child{ID: id, Name: id, Category: domain.CategoryPreschool})
	}
	store.PutDriver(&domain.Driver{ID: "d1", Name: "Dana"})
	store.PutDriver(&domain.Driver{ID: "d2", Name: "Eli"})
	store.PutVehicle(&domain.Vehicle{ID: "v1", Name: "Van 1", Capacity: 8})
	store.PutVehicle(&domain.Vehicle{ID: "v2", Name: "Van 2", Capacity: 8})

	return NewEditor(store), store
}

func mustCreateRoute(t *testing.T, e *Editor, name, date string) *domain.Route {
	t.Helper()

	route, err := e.CreateManualRoute(context.Background(), name, date)
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	return route
}

func assertSequences(t *testing.T, route *domain.Route, childIDs ...string) {
	t.Helper()

	if len(route.Stops) != len(childIDs) {
		t.Fatalf("route has %d stops, want %d", len(route.Stops), len(childIDs))
	}
	for i, stop := range route.Stops {
		if stop.Sequence != i+1 {
			t.Fatalf("stop %d sequence = %d, want %d", i, stop.Sequence, i+1)
		}
		if stop.ChildID != childIDs[i] {
			t.Fatalf("stop %d child = %s, want %s", i, stop.ChildID, childIDs[i])
		}
	}
}

func TestCreateManualRouteValidation(t *testing.T) {
	editor, _ := newEditorFixture(t)

	if _, err := editor.CreateManualRoute(context.Background(), "", "2025-02-01"); !errors.Is(err, ErrBadInput) {
		t.Fatalf("empty name: expected ErrBadInput, got %v", err)
	}
	if _, err := editor.CreateManualRoute(context.Background(), "Run", "Feb 1"); !errors.Is(err, ErrBadInput) {
		t.Fatalf("bad date: expected ErrBadInput, got %v", err)
	}

	route := mustCreateRoute(t, editor, "Run", "2025-02-01")
	if route.Status != domain.RouteStatusPlanning {
		t.Fatalf("status = %s, want planning", route.Status)
	}
	if len(route.Stops) != 0 {
		t.Fatalf("new route has %d stops, want 0", len(route.Stops))
	}
}

func TestAddRemoveReorderStops(t *testing.T) {
	editor, _ := newEditorFixture(t)
	route := mustCreateRoute(t, editor, "Run", "2025-02-02")

	var err error
	var current *domain.Route
	for _, child := range []string{"c1", "c2", "c3"} {
		current, err = editor.AddStopToRoute(context.Background(), route.ID, child)
		if err != nil {
			t.Fatalf("add %s: %v", child, err)
		}
	}
	assertSequences(t, current, "c1", "c2", "c3")

	// Remove the middle stop; survivors densify to 1..2 keeping order.
	current, err = editor.RemoveStopFromRoute(context.Background(), current.Stops[1].ID)
	if err != nil {
		t.Fatalf("remove stop: %v", err)
	}
	assertSequences(t, current, "c1", "c3")

	// Reorder to c3, c1.
	current, err = editor.ReorderStops(context.Background(), route.ID,
		[]string{current.Stops[1].ID, current.Stops[0].ID})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	assertSequences(t, current, "c3", "c1")
}

func TestReorderStopsIsNoOpOnCurrentOrder(t *testing.T) {
	editor, _ := newEditorFixture(t)
	route := mustCreateRoute(t, editor, "Run", "2025-02-03")

	var current *domain.Route
	var err error
	for _, child := range []string{"c1", "c2"} {
		current, err = editor.AddStopToRoute(context.Background(), route.ID, child)
		if err != nil {
			t.Fatalf("add %s: %v", child, err)
		}
	}

	current, err = editor.ReorderStops(context.Background(), route.ID,
		[]string{current.Stops[0].ID, current.Stops[1].ID})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	assertSequences(t, current, "c1", "c2")
}

func TestReorderStopsRejectsPartialSets(t *testing.T) {
	editor, _ := newEditorFixture(t)
	route := mustCreateRoute(t, editor, "Run", "2025-02-04")

	var current *domain.Route
	var err error
	for _, child := range []string{"c1", "c2"} {
		current, err = editor.AddStopToRoute(context.Background(), route.ID, child)
		if err != nil {
			t.Fatalf("add %s: %v", child, err)
		}
	}

	if _, err := editor.ReorderStops(context.Background(), route.ID, nil); !errors.Is(err, ErrBadInput) {
		t.Fatalf("empty ids: expected ErrBadInput, got %v", err)
	}

	_, err = editor.ReorderStops(context.Background(), route.ID, []string{current.Stops[0].ID})
	if !errors.Is(err, ErrBadInput) {
		t.Fatalf("subset: expected ErrBadInput, got %v", err)
	}

	_, err = editor.ReorderStops(context.Background(), route.ID,
		[]string{current.Stops[0].ID, "not-a-stop"})
	if !errors.Is(err, ErrBadInput) {
		t.Fatalf("foreign stop: expected ErrBadInput, got %v", err)
	}
}

func TestAddStopRejectsDuplicateChild(t *testing.T) {
	editor, _ := newEditorFixture(t)
	route := mustCreateRoute(t, editor, "Run", "2025-02-05")

	if _, err := editor.AddStopToRoute(context.Background(), route.ID, "c1"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := editor.AddStopToRoute(context.Background(), route.ID, "c1"); !errors.Is(err, ErrBadInput) {
		t.Fatalf("duplicate child: expected ErrBadInput, got %v", err)
	}
}

func TestAddStopMissingReferents(t *testing.T) {
	editor, _ := newEditorFixture(t)
	route := mustCreateRoute(t, editor, "Run", "2025-02-06")

	if _, err := editor.AddStopToRoute(context.Background(), "missing-route", "c1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("missing route: expected ErrNotFound, got %v", err)
	}
	if _, err := editor.AddStopToRoute(context.Background(), route.ID, "missing-child"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("missing child: expected ErrNotFound, got %v", err)
	}
}

func TestAddThenRemoveAllLeavesRouteEmpty(t *testing.T) {
	editor, _ := newEditorFixture(t)
	route := mustCreateRoute(t, editor, "Run", "2025-02-07")

	var current *domain.Route
	var err error
	for _, child := range []string{"c1", "c2", "c3"} {
		current, err = editor.AddStopToRoute(context.Background(), route.ID, child)
		if err != nil {
			t.Fatalf("add %s: %v", child, err)
		}
	}

	for len(current.Stops) > 0 {
		current, err = editor.RemoveStopFromRoute(context.Background(), current.Stops[0].ID)
		if err != nil {
			t.Fatalf("remove: %v", err)
		}
		// No sequence gaps at any intermediate state.
		for i, stop := range current.Stops {
			if stop.Sequence != i+1 {
				t.Fatalf("gap after removal: stop %d has sequence %d", i, stop.Sequence)
			}
		}
	}
}

func TestAssignDriverAndVehicleConflicts(t *testing.T) {
	editor, _ := newEditorFixture(t)
	r1 := mustCreateRoute(t, editor, "Run 1", "2025-02-08")
	r2 := mustCreateRoute(t, editor, "Run 2", "2025-02-08")

	assigned, err := editor.AssignDriverAndVehicle(context.Background(), r1.ID, "d1", "v1")
	if err != nil {
		t.Fatalf("assign r1: %v", err)
	}
	if assigned.Status != domain.RouteStatusAssigned {
		t.Fatalf("status = %s, want assigned", assigned.Status)
	}
	if assigned.DriverID == nil || *assigned.DriverID != "d1" {
		t.Fatalf("driver = %v, want d1", assigned.DriverID)
	}

	_, err = editor.AssignDriverAndVehicle(context.Background(), r2.ID, "d1", "v2")
	if !errors.Is(err, ErrDriverAlreadyAssigned) {
		t.Fatalf("driver conflict: expected ErrDriverAlreadyAssigned, got %v", err)
	}

	_, err = editor.AssignDriverAndVehicle(context.Background(), r2.ID, "d2", "v1")
	if !errors.Is(err, ErrVehicleAlreadyAssigned) {
		t.Fatalf("vehicle conflict: expected ErrVehicleAlreadyAssigned, got %v", err)
	}

	// A free pair on the same date assigns cleanly.
	if _, err := editor.AssignDriverAndVehicle(context.Background(), r2.ID, "d2", "v2"); err != nil {
		t.Fatalf("assign r2: %v", err)
	}
}

func TestAssignMissingReferents(t *testing.T) {
	editor, _ := newEditorFixture(t)
	route := mustCreateRoute(t, editor, "Run", "2025-02-09")

	if _, err := editor.AssignDriverAndVehicle(context.Background(), "missing", "d1", "v1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("missing route: expected ErrNotFound, got %v", err)
	}
	if _, err := editor.AssignDriverAndVehicle(context.Background(), route.ID, "ghost", "v1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("missing driver: expected ErrNotFound, got %v", err)
	}
	if _, err := editor.AssignDriverAndVehicle(context.Background(), route.ID, "d1", "ghost"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("missing vehicle: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRouteCascades(t *testing.T) {
	editor, store := newEditorFixture(t)
	route := mustCreateRoute(t, editor, "Run", "2025-02-10")

	current, err := editor.AddStopToRoute(context.Background(), route.ID, "c1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	stopID := current.Stops[0].ID

	if err := editor.DeleteRoute(context.Background(), route.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.GetRoute(context.Background(), route.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("route should be gone, got %v", err)
	}
	if _, err := store.GetStop(context.Background(), stopID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("stop should cascade, got %v", err)
	}

	if err := editor.DeleteRoute(context.Background(), route.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

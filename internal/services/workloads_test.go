package services

import (
	"testing"

	"childcare-route-service/internal/domain"
)

func TestPartitionWorkloadsGroupsByDriverSet(t *testing.T) {
	a := &domain.Child{ID: "a", Category: domain.CategoryPreschool}
	b := &domain.Child{ID: "b", Category: domain.CategoryPreschool}
	c := &domain.Child{ID: "c", Category: domain.CategoryInfant}

	elig := EligibilityMap{
		// Same driver set serialized in different orders must still group.
		"a": {{DriverID: "d1", VehicleID: "v1"}, {DriverID: "d2", VehicleID: "v1"}},
		"b": {{DriverID: "d2", VehicleID: "v2"}, {DriverID: "d1", VehicleID: "v2"}},
		"c": {{DriverID: "d1", VehicleID: "v1"}},
	}

	workloads := PartitionWorkloads([]*domain.Child{a, b, c}, elig)

	if len(workloads) != 2 {
		t.Fatalf("expected 2 workloads, got %d", len(workloads))
	}

	// Sorted by key: "d1" before "d1,d2".
	if workloads[0].Key != "d1" {
		t.Fatalf("workload 0 key = %q, want %q", workloads[0].Key, "d1")
	}
	if len(workloads[0].Children) != 1 || workloads[0].Children[0].ID != "c" {
		t.Fatalf("workload 0 children = %v, want [c]", workloads[0].Children)
	}

	if workloads[1].Key != "d1,d2" {
		t.Fatalf("workload 1 key = %q, want %q", workloads[1].Key, "d1,d2")
	}
	if len(workloads[1].Children) != 2 {
		t.Fatalf("workload 1 has %d children, want 2", len(workloads[1].Children))
	}
}

func TestPartitionWorkloadsSkipsUnroutable(t *testing.T) {
	a := &domain.Child{ID: "a", Category: domain.CategoryPreschool}
	b := &domain.Child{ID: "b", Category: domain.CategoryInfant}

	elig := EligibilityMap{
		"a": {{DriverID: "d1", VehicleID: "v1"}},
		"b": {},
	}

	workloads := PartitionWorkloads([]*domain.Child{a, b}, elig)

	if len(workloads) != 1 {
		t.Fatalf("expected 1 workload, got %d", len(workloads))
	}
	if len(workloads[0].Children) != 1 || workloads[0].Children[0].ID != "a" {
		t.Fatalf("workload children = %v, want [a]", workloads[0].Children)
	}
}

func TestWorkloadLabels(t *testing.T) {
	elig := EligibilityMap{
		"a": {{DriverID: "d1", VehicleID: "v1"}},
		"b": {{DriverID: "d1", VehicleID: "v1"}},
	}

	same := PartitionWorkloads([]*domain.Child{
		{ID: "a", Category: domain.CategoryToddler},
		{ID: "b", Category: domain.CategoryToddler},
	}, elig)
	if same[0].Label != "Toddler" {
		t.Fatalf("label = %q, want %q", same[0].Label, "Toddler")
	}

	mixed := PartitionWorkloads([]*domain.Child{
		{ID: "a", Category: domain.CategoryToddler},
		{ID: "b", Category: domain.CategoryOutOfSchoolCare},
	}, elig)
	if mixed[0].Label != MixedCategoriesLabel {
		t.Fatalf("label = %q, want %q", mixed[0].Label, MixedCategoriesLabel)
	}
}

package services

import (
	"testing"

	"childcare-route-service/internal/domain"
)

func TestMatchEligibilityInfantRequirements(t *testing.T) {
	infant := &domain.Child{ID: "c1", Name: "Alex", Category: domain.CategoryInfant}

	certified := &domain.Driver{ID: "d1", Capabilities: []domain.Capability{domain.CapabilityInfantCertified}}
	uncertified := &domain.Driver{ID: "d2"}

	withSeat := &domain.Vehicle{ID: "v1", Capacity: 8, Equipment: []domain.Equipment{domain.EquipmentInfantSeat}}
	withoutSeat := &domain.Vehicle{ID: "v2", Capacity: 8}

	elig := MatchEligibility(
		[]*domain.Child{infant},
		[]*domain.Driver{certified, uncertified},
		[]*domain.Vehicle{withSeat, withoutSeat},
	)

	options := elig["c1"]
	if len(options) != 1 {
		t.Fatalf("expected 1 option, got %d: %v", len(options), options)
	}
	if options[0].DriverID != "d1" || options[0].VehicleID != "v1" {
		t.Fatalf("expected (d1, v1), got (%s, %s)", options[0].DriverID, options[0].VehicleID)
	}
}

func TestMatchEligibilityPreschoolTakesAnyPair(t *testing.T) {
	child := &domain.Child{ID: "c1", Category: domain.CategoryPreschool}

	drivers := []*domain.Driver{{ID: "d1"}, {ID: "d2"}}
	vehicles := []*domain.Vehicle{{ID: "v1", Capacity: 8}, {ID: "v2", Capacity: 8}}

	elig := MatchEligibility([]*domain.Child{child}, drivers, vehicles)

	if len(elig["c1"]) != 4 {
		t.Fatalf("expected full cartesian product of 4 options, got %d", len(elig["c1"]))
	}
}

func TestMatchEligibilityEmptySet(t *testing.T) {
	toddler := &domain.Child{ID: "c1", Category: domain.CategoryToddler}

	drivers := []*domain.Driver{{ID: "d1", Capabilities: []domain.Capability{domain.CapabilityToddlerTrained}}}
	vehicles := []*domain.Vehicle{{ID: "v1", Capacity: 8}} // no toddler seat

	elig := MatchEligibility([]*domain.Child{toddler}, drivers, vehicles)

	options, ok := elig["c1"]
	if !ok {
		t.Fatal("expected an entry for the child even when no pair qualifies")
	}
	if len(options) != 0 {
		t.Fatalf("expected empty option set, got %v", options)
	}
}

package services

import (
	"childcare-route-service/internal/domain"
)

// A (driver, vehicle) pair competent to transport a particular child.
type TransportOption struct {
	DriverID  string
	VehicleID string
}

// EligibilityMap maps a child id to every transport option that satisfies the
// child's category requirements. The slice is empty (not absent) for children
// no pair can serve.
type EligibilityMap map[string][]TransportOption

// categoryRequirements returns the certifications and equipment a child's
// category demands from a driver and vehicle.
func categoryRequirements(c domain.Category) ([]domain.Capability, []domain.Equipment) {
	switch c {
	case domain.CategoryInfant:
		return []domain.Capability{domain.CapabilityInfantCertified},
			[]domain.Equipment{domain.EquipmentInfantSeat}
	case domain.CategoryToddler:
		return []domain.Capability{domain.CapabilityToddlerTrained},
			[]domain.Equipment{domain.EquipmentToddlerSeat}
	default:
		// Preschool and out-of-school care ride with any pair.
		return nil, nil
	}
}

// MatchEligibility enumerates, for each child, the (driver, vehicle) pairs
// that satisfy the child's category requirements. The candidate set is the
// full cartesian product of drivers and vehicles; no pre-pairing.
//
// Pure function: callers decide what to do with empty option sets.
func MatchEligibility(
	children []*domain.Child,
	drivers []*domain.Driver,
	vehicles []*domain.Vehicle,
) EligibilityMap {
	out := make(EligibilityMap, len(children))

	for _, child := range children {
		caps, equip := categoryRequirements(child.Category)

		options := []TransportOption{}
		for _, d := range drivers {
			if !d.HasAllCapabilities(caps) {
				continue
			}
			for _, v := range vehicles {
				if !v.HasAllEquipment(equip) {
					continue
				}
				options = append(options, TransportOption{DriverID: d.ID, VehicleID: v.ID})
			}
		}

		out[child.ID] = options
	}

	return out
}

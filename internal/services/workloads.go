package services

import (
	"sort"
	"strings"

	"childcare-route-service/internal/domain"
)

// MixedCategoriesLabel names a workload whose children span care categories.
const MixedCategoriesLabel = "Mixed Categories"

// A maximal group of children sharing an identical eligible-driver set.
// Only driver ids form the key; members' eligible vehicles are not compared
// and may differ.
type Workload struct {
	Key      string
	Label    string
	Children []*domain.Child
}

// PartitionWorkloads groups routable children by the value identity of their
// eligible-driver sets. Children with no eligible options are skipped; the
// orchestrator has already flagged them unroutable.
//
// The returned slice is sorted by key so downstream processing is
// deterministic regardless of map iteration order.
func PartitionWorkloads(children []*domain.Child, elig EligibilityMap) []Workload {
	byKey := make(map[string][]*domain.Child)

	for _, child := range children {
		options := elig[child.ID]
		if len(options) == 0 {
			continue
		}
		key := driverSetKey(options)
		byKey[key] = append(byKey[key], child)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	workloads := make([]Workload, 0, len(keys))
	for _, k := range keys {
		members := byKey[k]
		workloads = append(workloads, Workload{
			Key:      k,
			Label:    workloadLabel(members),
			Children: members,
		})
	}

	return workloads
}

// driverSetKey serializes an option list's driver ids into an
// order-independent value identity.
func driverSetKey(options []TransportOption) string {
	seen := make(map[string]struct{}, len(options))
	ids := make([]string, 0, len(options))
	for _, o := range options {
		if _, ok := seen[o.DriverID]; ok {
			continue
		}
		seen[o.DriverID] = struct{}{}
		ids = append(ids, o.DriverID)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// workloadLabel names the workload after its single shared category, or marks
// it mixed. The label is informational and shows up in generated route names.
func workloadLabel(children []*domain.Child) string {
	if len(children) == 0 {
		return MixedCategoriesLabel
	}

	first := children[0].Category
	for _, c := range children[1:] {
		if c.Category != first {
			return MixedCategoriesLabel
		}
	}

	return categoryLabel(first)
}

func categoryLabel(c domain.Category) string {
	switch c {
	case domain.CategoryInfant:
		return "Infant"
	case domain.CategoryToddler:
		return "Toddler"
	case domain.CategoryPreschool:
		return "Preschool"
	case domain.CategoryOutOfSchoolCare:
		return "Out of School Care"
	default:
		return string(c)
	}
}

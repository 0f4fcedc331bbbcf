package services

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/ports"
)

// fallbackSpeedKmh is the assumed average driving speed when no time-matrix
// provider is available and drive times come from great-circle distances.
const fallbackSpeedKmh = 40.0

// bruteForceLimit caps exhaustive search at 5 non-depot nodes (120 tours).
const bruteForceLimit = 6

// OrderPickups returns the children in the best visiting order for a tour
// that starts and ends at the depot. The depot endpoints are stripped from
// the result. Children without coordinates are excluded from optimization and
// appended verbatim at the end.
func OrderPickups(
	ctx context.Context,
	children []*domain.Child,
	depot domain.Coordinates,
	provider ports.TimeMatrixProvider,
) ([]*domain.Child, error) {
	if len(children) == 0 {
		return []*domain.Child{}, nil
	}

	located := make([]*domain.Child, 0, len(children))
	unlocated := make([]*domain.Child, 0)
	for _, c := range children {
		if c.HasCoords() {
			located = append(located, c)
		} else {
			unlocated = append(unlocated, c)
		}
	}

	if len(located) == 0 {
		out := make([]*domain.Child, len(unlocated))
		copy(out, unlocated)
		return out, nil
	}

	locations := make([]domain.Coordinates, 0, 1+len(located))
	locations = append(locations, depot)
	for _, c := range located {
		locations = append(locations, *c.Coords)
	}

	matrix, err := timeMatrix(ctx, provider, locations)
	if err != nil {
		return nil, err
	}

	tour := bestTour(matrix)

	out := make([]*domain.Child, 0, len(children))
	for _, idx := range tour {
		out = append(out, located[idx-1])
	}
	out = append(out, unlocated...)

	return out, nil
}

// timeMatrix obtains pairwise drive seconds from the provider, falling back
// to a great-circle estimate when the provider is absent, fails, or returns a
// matrix with the wrong number of rows. Such faults are logged, not surfaced,
// except that a provider error after the context is done returns ctx.Err().
func timeMatrix(
	ctx context.Context,
	provider ports.TimeMatrixProvider,
	locations []domain.Coordinates,
) ([][]int, error) {
	if provider != nil {
		matrix, err := provider.Matrix(ctx, locations)
		if err == nil && len(matrix) == len(locations) {
			return matrix, nil
		}
		if err != nil {
			// Respect a dead deadline rather than planning on estimates.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logrus.WithError(err).Warn("time matrix provider failed, using great-circle fallback")
		} else {
			logrus.WithFields(logrus.Fields{
				"want": len(locations),
				"got":  len(matrix),
			}).Warn("time matrix provider returned wrong shape, using great-circle fallback")
		}
	}

	return greatCircleMatrix(locations), nil
}

// greatCircleMatrix estimates drive seconds between all location pairs from
// haversine distance at a flat average speed.
func greatCircleMatrix(locations []domain.Coordinates) [][]int {
	n := len(locations)
	matrix := make([][]int, n)
	for i := range matrix {
		matrix[i] = make([]int, n)
		for j := range matrix[i] {
			if i == j {
				continue
			}
			km := domain.HaversineKm(locations[i], locations[j])
			matrix[i][j] = int(math.Round(km / fallbackSpeedKmh * 3600))
		}
	}
	return matrix
}

// bestTour solves the open-depot tour over the matrix: start and end at node
// 0, visit every other node once. Several candidate heuristics run and the
// cheapest tour wins; ties resolve to the first candidate generated. The
// returned slice holds the non-depot nodes in visit order.
func bestTour(matrix [][]int) []int {
	n := len(matrix)
	if n <= 1 {
		return nil
	}
	if n == 2 {
		return []int{1}
	}

	candidates := [][]int{
		nearestNeighborTour(matrix),
		greedyTour(matrix),
	}
	if n <= bruteForceLimit {
		candidates = append(candidates, bruteForceTour(matrix))
	}

	best := candidates[0]
	bestCost := tourCost(matrix, best)
	for _, c := range candidates[1:] {
		if cost := tourCost(matrix, c); cost < bestCost {
			best = c
			bestCost = cost
		}
	}

	return best
}

// tourCost totals the closed tour: depot → stops in order → depot.
func tourCost(matrix [][]int, tour []int) int {
	total := 0
	prev := 0
	for _, node := range tour {
		total += matrix[prev][node]
		prev = node
	}
	total += matrix[prev][0]
	return total
}

// nearestNeighborTour repeatedly visits the closest unvisited node starting
// from the depot. Ties resolve to the lowest node index for determinism.
func nearestNeighborTour(matrix [][]int) []int {
	n := len(matrix)
	visited := make([]bool, n)
	visited[0] = true

	tour := make([]int, 0, n-1)
	current := 0
	for len(tour) < n-1 {
		next := -1
		bestTime := math.MaxInt
		for node := 1; node < n; node++ {
			if visited[node] {
				continue
			}
			if matrix[current][node] < bestTime {
				bestTime = matrix[current][node]
				next = node
			}
		}
		visited[next] = true
		tour = append(tour, next)
		current = next
	}

	return tour
}

// greedyTour also extends from the current node to its nearest unvisited
// neighbor. It coincides with nearest-neighbor in this formulation but stays
// a separate seed so a future replacement can diverge.
func greedyTour(matrix [][]int) []int {
	return nearestNeighborTour(matrix)
}

// bruteForceTour exhausts every permutation of the non-depot nodes.
// Permutations generate in a fixed order, so equal-cost tours settle on the
// first one generated.
func bruteForceTour(matrix [][]int) []int {
	n := len(matrix)
	nodes := make([]int, 0, n-1)
	for i := 1; i < n; i++ {
		nodes = append(nodes, i)
	}

	best := make([]int, len(nodes))
	copy(best, nodes)
	bestCost := tourCost(matrix, best)

	permute(nodes, 0, func(tour []int) {
		if cost := tourCost(matrix, tour); cost < bestCost {
			bestCost = cost
			copy(best, tour)
		}
	})

	return best
}

func permute(nodes []int, start int, visit func([]int)) {
	if start == len(nodes) {
		visit(nodes)
		return
	}
	for i := start; i < len(nodes); i++ {
		nodes[start], nodes[i] = nodes[i], nodes[start]
		permute(nodes, start+1, visit)
		nodes[start], nodes[i] = nodes[i], nodes[start]
	}
}

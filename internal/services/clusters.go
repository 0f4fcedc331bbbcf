package services

import (
	"sort"

	"childcare-route-service/internal/domain"
)

// DefaultCapacityHeuristic is the average-vehicle-capacity constant used to
// pick the cluster count. It deliberately ignores true per-vehicle capacity.
const DefaultCapacityHeuristic = 10

// maxLloydIterations bounds the k-means loop; convergence on these input
// sizes happens in a handful of iterations.
const maxLloydIterations = 100

// ClusterWorkload subdivides a workload into geographic clusters of roughly
// capacityHeuristic children each, clustering on raw (lat, lon) degrees.
// Children without coordinates cannot be placed spatially and are appended to
// the first cluster, or form their own cluster when nothing has coordinates.
//
// Deterministic for a given input order, so re-planning an unchanged roster
// reproduces the same clusters.
func ClusterWorkload(children []*domain.Child, capacityHeuristic int) [][]*domain.Child {
	if len(children) == 0 {
		return nil
	}
	if capacityHeuristic < 1 {
		capacityHeuristic = DefaultCapacityHeuristic
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
		return [][]*domain.Child{children}
	}

	k := (len(located) + capacityHeuristic - 1) / capacityHeuristic
	if k > len(located) {
		k = len(located)
	}
	if k <= 1 {
		return [][]*domain.Child{children}
	}

	points := make([]domain.Coordinates, len(located))
	for i, c := range located {
		points[i] = *c.Coords
	}

	assignments := lloydClusters(points, k)

	clusters := make([][]*domain.Child, k)
	for i, cluster := range assignments {
		if cluster < 0 {
			continue
		}
		clusters[cluster] = append(clusters[cluster], located[i])
	}

	// Drop clusters k-means left empty.
	out := make([][]*domain.Child, 0, k)
	for _, members := range clusters {
		if len(members) > 0 {
			out = append(out, members)
		}
	}

	if len(unlocated) > 0 {
		if len(out) > 0 {
			out[0] = append(out[0], unlocated...)
		} else {
			out = append(out, unlocated)
		}
	}

	return out
}

// lloydClusters runs standard Lloyd k-means on 2-D points and returns the
// cluster index per point. Seeding picks k evenly spaced points of the
// coordinate-sorted input, which keeps the result deterministic.
func lloydClusters(points []domain.Coordinates, k int) []int {
	n := len(points)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		pa, pb := points[order[a]], points[order[b]]
		if pa.Lat != pb.Lat {
			return pa.Lat < pb.Lat
		}
		return pa.Lon < pb.Lon
	})

	centroids := make([]domain.Coordinates, k)
	for i := 0; i < k; i++ {
		centroids[i] = points[order[i*n/k]]
	}

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < maxLloydIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		sumLat := make([]float64, k)
		sumLon := make([]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assignments[i]
			sumLat[c] += p.Lat
			sumLon[c] += p.Lon
			counts[c]++
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			centroids[c] = domain.Coordinates{
				Lat: sumLat[c] / float64(counts[c]),
				Lon: sumLon[c] / float64(counts[c]),
			}
		}
	}

	return assignments
}

// nearestCentroid resolves ties toward the lowest cluster index.
func nearestCentroid(p domain.Coordinates, centroids []domain.Coordinates) int {
	best := 0
	bestDist := squaredDegreeDistance(p, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := squaredDegreeDistance(p, centroids[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// squaredDegreeDistance works in raw degrees with no projection, which is
// acceptable over the small urban regions the planner serves.
func squaredDegreeDistance(a, b domain.Coordinates) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return dLat*dLat + dLon*dLon
}

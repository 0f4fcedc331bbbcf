package services

import (
	"fmt"
	"testing"

	"childcare-route-service/internal/domain"
)

func locatedChild(id string, lat, lon float64) *domain.Child {
	return &domain.Child{
		ID:       id,
		Name:     id,
		Category: domain.CategoryPreschool,
		Coords:   &domain.Coordinates{Lat: lat, Lon: lon},
	}
}

func TestClusterWorkloadSingleCluster(t *testing.T) {
	children := []*domain.Child{
		locatedChild("a", 47.61, -122.33),
		locatedChild("b", 47.62, -122.34),
		{ID: "c", Name: "c", Category: domain.CategoryPreschool}, // no coords
	}

	clusters := ClusterWorkload(children, 10)

	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if len(clusters[0]) != 3 {
		t.Fatalf("expected all 3 children in the cluster, got %d", len(clusters[0]))
	}
}

func TestClusterWorkloadAllWithoutCoords(t *testing.T) {
	children := []*domain.Child{
		{ID: "a", Category: domain.CategoryPreschool},
		{ID: "b", Category: domain.CategoryPreschool},
	}

	clusters := ClusterWorkload(children, 10)

	if len(clusters) != 1 || len(clusters[0]) != 2 {
		t.Fatalf("expected one cluster of 2, got %v", clusters)
	}
}

func TestClusterWorkloadSplitsByGeography(t *testing.T) {
	// Two far-apart groups of 6 each; heuristic 10 forces k=2 and k-means
	// should split along the obvious geographic boundary.
	children := make([]*domain.Child, 0, 12)
	for i := 0; i < 6; i++ {
		children = append(children, locatedChild(
			fmt.Sprintf("north-%d", i), 47.70+float64(i)*0.001, -122.33))
	}
	for i := 0; i < 6; i++ {
		children = append(children, locatedChild(
			fmt.Sprintf("south-%d", i), 47.50+float64(i)*0.001, -122.33))
	}

	clusters := ClusterWorkload(children, 10)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}

	total := 0
	for _, cluster := range clusters {
		total += len(cluster)

		prefix := cluster[0].ID[:5]
		for _, c := range cluster {
			if c.ID[:5] != prefix {
				t.Fatalf("cluster mixes groups: %v", cluster)
			}
		}
	}
	if total != 12 {
		t.Fatalf("clusters cover %d children, want 12", total)
	}
}

func TestClusterWorkloadAppendsUncoordinatedToFirst(t *testing.T) {
	children := make([]*domain.Child, 0, 13)
	for i := 0; i < 6; i++ {
		children = append(children, locatedChild(fmt.Sprintf("n%d", i), 47.70+float64(i)*0.001, -122.33))
	}
	for i := 0; i < 6; i++ {
		children = append(children, locatedChild(fmt.Sprintf("s%d", i), 47.50+float64(i)*0.001, -122.33))
	}
	children = append(children, &domain.Child{ID: "nowhere", Category: domain.CategoryPreschool})

	clusters := ClusterWorkload(children, 10)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}

	found := false
	for _, c := range clusters[0] {
		if c.ID == "nowhere" {
			found = true
		}
	}
	if !found {
		t.Fatal("child without coordinates should land in the first cluster")
	}

	if len(clusters[0])+len(clusters[1]) != 13 {
		t.Fatalf("clusters cover %d children, want 13", len(clusters[0])+len(clusters[1]))
	}
}

func TestClusterWorkloadDeterministic(t *testing.T) {
	children := make([]*domain.Child, 0, 24)
	for i := 0; i < 24; i++ {
		children = append(children, locatedChild(
			fmt.Sprintf("c%02d", i), 47.50+float64(i%7)*0.013, -122.30-float64(i%5)*0.017))
	}

	first := ClusterWorkload(children, 10)
	second := ClusterWorkload(children, 10)

	if len(first) != len(second) {
		t.Fatalf("cluster counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if len(first[i]) != len(second[i]) {
			t.Fatalf("cluster %d sizes differ: %d vs %d", i, len(first[i]), len(second[i]))
		}
		for j := range first[i] {
			if first[i][j].ID != second[i][j].ID {
				t.Fatalf("cluster %d member %d differs: %s vs %s", i, j, first[i][j].ID, second[i][j].ID)
			}
		}
	}
}

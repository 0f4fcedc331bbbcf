package services

import (
	"context"
	"errors"
	"testing"

	"childcare-route-service/internal/adapters/geo"
	"childcare-route-service/internal/domain"
)

var testDepot = domain.Coordinates{Lat: 47.6062, Lon: -122.3321}

func TestOrderPickupsBoundaries(t *testing.T) {
	empty, err := OrderPickups(context.Background(), nil, testDepot, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty order, got %v", empty)
	}

	single := locatedChild("only", 47.61, -122.33)
	out, err := OrderPickups(context.Background(), []*domain.Child{single}, testDepot, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "only" {
		t.Fatalf("expected [only], got %v", out)
	}

	noCoords := &domain.Child{ID: "lost", Category: domain.CategoryPreschool}
	out, err = OrderPickups(context.Background(), []*domain.Child{noCoords}, testDepot, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "lost" {
		t.Fatalf("expected [lost], got %v", out)
	}
}

func TestOrderPickupsBruteForceBeatsGreedy(t *testing.T) {
	a := locatedChild("a", 47.61, -122.33)
	b := locatedChild("b", 47.62, -122.34)
	c := locatedChild("c", 47.63, -122.35)

	// Nearest-neighbor from the depot picks a (300), then c (210), then b,
	// returning via b (total 1380). The tour a→b→c closes at 1260, which only
	// the exhaustive candidate finds.
	provider := &geo.MockTimeMatrixProvider{M: [][]int{
		{0, 300, 600, 450},
		{300, 0, 240, 210},
		{600, 240, 0, 270},
		{450, 210, 270, 0},
	}}

	out, err := OrderPickups(context.Background(), []*domain.Child{a, b, c}, testDepot, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{out[0].ID, out[1].ID, out[2].ID}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestOrderPickupsFallsBackOnProviderError(t *testing.T) {
	a := locatedChild("a", 47.61, -122.33)
	b := locatedChild("b", 47.62, -122.34)
	c := locatedChild("c", 47.63, -122.35)

	provider := &geo.MockTimeMatrixProvider{Err: errors.New("matrix service down")}

	out, err := OrderPickups(context.Background(), []*domain.Child{c, a, b}, testDepot, provider)
	if err != nil {
		t.Fatalf("expected great-circle fallback, got error: %v", err)
	}

	// With great-circle estimates the points line up away from the depot.
	got := []string{out[0].ID, out[1].ID, out[2].ID}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestOrderPickupsKeepsUncoordinatedTrailing(t *testing.T) {
	a := locatedChild("a", 47.61, -122.33)
	b := locatedChild("b", 47.62, -122.34)
	lost := &domain.Child{ID: "lost", Category: domain.CategoryPreschool}

	out, err := OrderPickups(context.Background(), []*domain.Child{lost, b, a}, testDepot, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out) != 3 {
		t.Fatalf("expected 3 children, got %d", len(out))
	}
	if out[2].ID != "lost" {
		t.Fatalf("child without coordinates should trail, got order %v", []string{out[0].ID, out[1].ID, out[2].ID})
	}
}

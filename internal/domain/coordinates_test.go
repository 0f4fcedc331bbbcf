package domain

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	seattle := Coordinates{Lat: 47.6062, Lon: -122.3321}
	portland := Coordinates{Lat: 45.5152, Lon: -122.6784}

	if d := HaversineKm(seattle, seattle); d != 0 {
		t.Fatalf("distance to self = %f, want 0", d)
	}

	d := HaversineKm(seattle, portland)
	if d < 230 || d > 236 {
		t.Fatalf("Seattle-Portland = %fkm, want ~233km", d)
	}

	back := HaversineKm(portland, seattle)
	if math.Abs(d-back) > 1e-9 {
		t.Fatalf("distance is not symmetric: %f vs %f", d, back)
	}
}

func TestCoordsToList(t *testing.T) {
	c := Coordinates{Lat: 47.61, Lon: -122.33}
	got := c.CoordsToList()
	if len(got) != 2 || got[0] != -122.33 || got[1] != 47.61 {
		t.Fatalf("CoordsToList = %v, want [lon, lat]", got)
	}
}

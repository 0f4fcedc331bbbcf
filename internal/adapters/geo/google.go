package geo

import (
	"context"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"childcare-route-service/internal/domain"
)

// GoogleProvider implements the Geocoder and TimeMatrixProvider ports with
// the Google Geocoding and Distance Matrix APIs.
type GoogleProvider struct {
	client *maps.Client
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// Lookup geocodes a free-form address. No results means no confident match;
// callers treat a nil result as "not geocodable".
func (g *GoogleProvider) Lookup(ctx context.Context, address string) (*domain.Coordinates, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	loc := results[0].Geometry.Location
	return &domain.Coordinates{Lat: loc.Lat, Lon: loc.Lng}, nil
}

// Matrix fetches pairwise driving durations in seconds.
func (g *GoogleProvider) Matrix(ctx context.Context, locations []domain.Coordinates) ([][]int, error) {
	if len(locations) == 0 {
		return [][]int{}, nil
	}

	points := make([]string, 0, len(locations))
	for _, l := range locations {
		points = append(points, fmt.Sprintf("%f,%f", l.Lat, l.Lon))
	}

	resp, err := g.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      points,
		Destinations: points,
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}

	if len(resp.Rows) != len(locations) {
		return nil, fmt.Errorf(
			"matrix rows do not match locations: rows=%d locations=%d",
			len(resp.Rows), len(locations),
		)
	}

	out := make([][]int, len(locations))
	for i, row := range resp.Rows {
		if len(row.Elements) != len(locations) {
			return nil, fmt.Errorf(
				"matrix row %d length does not match locations: cols=%d locations=%d",
				i, len(row.Elements), len(locations),
			)
		}
		out[i] = make([]int, len(locations))
		for j, el := range row.Elements {
			if el.Status != "OK" {
				return nil, fmt.Errorf("no route for element [%d][%d]: %s", i, j, el.Status)
			}
			out[i][j] = int(math.Round(el.Duration.Seconds()))
		}
	}

	return out, nil
}

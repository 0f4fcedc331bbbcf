package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/platform/obs"
)

// ORSProvider implements the Geocoder and TimeMatrixProvider ports using
// OpenRouteService. Safe for concurrent use.
type ORSProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
}

func NewORSProvider(apiKey string) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
	}, nil
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Lookup resolves an address via /geocode/search. A miss (no features)
// returns nil without error; the provider had no confident match.
func (o *ORSProvider) Lookup(ctx context.Context, address string) (_ *domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Lookup")(&err)

	norm := strings.Join(strings.Fields(address), " ")
	if norm == "" {
		return nil, errors.New("geocode: address must be non-empty")
	}

	query := url.Values{}
	query.Set("text", norm)
	query.Set("size", "1")
	endpoint := o.baseURL + "/geocode/search?" + query.Encode()

	var decoded geocodeResponse
	if err := o.fetchJSON(ctx, http.MethodGet, endpoint, nil, &decoded); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", norm, err)
	}

	if len(decoded.Features) == 0 {
		return nil, nil
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return nil, fmt.Errorf("geocode %q: invalid coordinate format", norm)
	}

	return &domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

// Matrix retrieves the full pairwise duration matrix for the locations using
// the OpenRouteService matrix endpoint.
func (o *ORSProvider) Matrix(ctx context.Context, locations []domain.Coordinates) (_ [][]int, err error) {
	defer obs.Time(ctx, "ors.Matrix")(&err)

	if len(locations) == 0 {
		return [][]int{}, nil
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	coords := make([][]float64, 0, len(locations))
	for _, l := range locations {
		coords = append(coords, l.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: coords,
		Metrics:   []string{"duration"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	var mr matrixResponse
	if err := o.fetchJSON(ctx, http.MethodPost, endpoint, payload, &mr); err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}

	if len(mr.Durations) != len(locations) {
		return nil, fmt.Errorf(
			"matrix rows do not match locations: rows=%d locations=%d",
			len(mr.Durations), len(locations),
		)
	}

	out := make([][]int, len(locations))
	for i, row := range mr.Durations {
		if len(row) != len(locations) {
			return nil, fmt.Errorf(
				"matrix row %d length does not match locations: cols=%d locations=%d",
				i, len(row), len(locations),
			)
		}
		out[i] = make([]int, len(locations))
		for j, secondsPtr := range row {
			if secondsPtr == nil {
				return nil, fmt.Errorf("matrix returned no duration for [%d][%d]", i, j)
			}
			// ORS returns float metrics; round for domain consistency.
			out[i][j] = int(math.Round(*secondsPtr))
		}
	}

	return out, nil
}

package geo

import (
	"context"

	"childcare-route-service/internal/domain"
)

// MockTimeMatrixProvider returns a canned matrix (or error) for tests.
type MockTimeMatrixProvider struct {
	M   [][]int
	Err error
}

func (p *MockTimeMatrixProvider) Matrix(ctx context.Context, locations []domain.Coordinates) ([][]int, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.M, nil
}

// MockGeocoder resolves addresses from a fixed table; unknown addresses miss.
type MockGeocoder struct {
	m     map[string]domain.Coordinates
	Calls int
}

func NewMockGeocoder(m map[string]domain.Coordinates) *MockGeocoder {
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Lookup(ctx context.Context, address string) (*domain.Coordinates, error) {
	g.Calls++
	c, ok := g.m[address]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

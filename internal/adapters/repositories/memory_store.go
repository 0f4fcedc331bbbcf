package repositories

import (
	"context"
	"sort"
	"sync"

	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/ports"
)

// Memory is an in-memory Store used by tests and when no DATABASE_URL is set.
// Transactions snapshot route and stop state up front and restore it when the
// callback fails, so abort semantics match the SQL adapter.
type Memory struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	children map[string]*domain.Child
	drivers  map[string]*domain.Driver
	vehicles map[string]*domain.Vehicle
	routes   map[string]*domain.Route // stored without stops
	stops    map[string]*domain.Stop
}

func NewMemory() *Memory {
	return &Memory{
		state: memState{
			children: map[string]*domain.Child{},
			drivers:  map[string]*domain.Driver{},
			vehicles: map[string]*domain.Vehicle{},
			routes:   map[string]*domain.Route{},
			stops:    map[string]*domain.Stop{},
		},
	}
}

// PutChild seeds or replaces a roster entry. Roster CRUD itself is external
// to this service.
func (m *Memory) PutChild(c *domain.Child) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.state.children[c.ID] = &cp
}

// PutDriver seeds or replaces a driver.
func (m *Memory) PutDriver(d *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.state.drivers[d.ID] = &cp
}

// PutVehicle seeds or replaces a vehicle.
func (m *Memory) PutVehicle(v *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.state.vehicles[v.ID] = &cp
}

// WithTransaction serializes all mutations behind one mutex; the per-date and
// per-route locking the SQL adapter needs collapses to that here.
func (m *Memory) WithTransaction(ctx context.Context, fn func(tx ports.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.cloneRouteState()

	if err := fn(&memTx{state: &m.state}); err != nil {
		m.state.routes = snapshot.routes
		m.state.stops = snapshot.stops
		return err
	}

	return nil
}

func (s *memState) cloneRouteState() memState {
	routes := make(map[string]*domain.Route, len(s.routes))
	for id, r := range s.routes {
		cp := *r
		routes[id] = &cp
	}
	stops := make(map[string]*domain.Stop, len(s.stops))
	for id, st := range s.stops {
		cp := *st
		stops[id] = &cp
	}
	return memState{routes: routes, stops: stops}
}

// Direct (non-transactional) reads lock and delegate to the tx view.

func (m *Memory) ListChildren(ctx context.Context) ([]*domain.Child, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).ListChildren(ctx)
}

func (m *Memory) GetChild(ctx context.Context, id string) (*domain.Child, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).GetChild(ctx, id)
}

func (m *Memory) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).ListDrivers(ctx)
}

func (m *Memory) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).GetDriver(ctx, id)
}

func (m *Memory) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).ListVehicles(ctx)
}

func (m *Memory) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).GetVehicle(ctx, id)
}

func (m *Memory) CreateRoute(ctx context.Context, r *domain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).CreateRoute(ctx, r)
}

func (m *Memory) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).GetRoute(ctx, id)
}

func (m *Memory) ListRoutesByDate(ctx context.Context, date string) ([]*domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).ListRoutesByDate(ctx, date)
}

func (m *Memory) FindAssignedRoute(ctx context.Context, driverID, date string) (*domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).FindAssignedRoute(ctx, driverID, date)
}

func (m *Memory) UpdateRouteAssignment(ctx context.Context, routeID string, driverID, vehicleID *string, status domain.RouteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).UpdateRouteAssignment(ctx, routeID, driverID, vehicleID, status)
}

func (m *Memory) DeleteRoute(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).DeleteRoute(ctx, id)
}

func (m *Memory) DeleteRoutesByDate(ctx context.Context, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).DeleteRoutesByDate(ctx, date)
}

func (m *Memory) CreateStop(ctx context.Context, s *domain.Stop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).CreateStop(ctx, s)
}

func (m *Memory) GetStop(ctx context.Context, id string) (*domain.Stop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).GetStop(ctx, id)
}

func (m *Memory) DeleteStop(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).DeleteStop(ctx, id)
}

func (m *Memory) UpdateStopSequence(ctx context.Context, stopID string, sequence int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{state: &m.state}).UpdateStopSequence(ctx, stopID, sequence)
}

// memTx is the unlocked view handed to transaction callbacks; the owning
// Memory holds the mutex for the transaction's whole lifetime.
type memTx struct {
	state *memState
}

// Nested transactions just join the ambient one.
func (t *memTx) WithTransaction(ctx context.Context, fn func(tx ports.Store) error) error {
	return fn(t)
}

func (t *memTx) ListChildren(ctx context.Context) ([]*domain.Child, error) {
	out := make([]*domain.Child, 0, len(t.state.children))
	for _, c := range t.state.children {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (t *memTx) GetChild(ctx context.Context, id string) (*domain.Child, error) {
	c, ok := t.state.children[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	out := make([]*domain.Driver, 0, len(t.state.drivers))
	for _, d := range t.state.drivers {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (t *memTx) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	d, ok := t.state.drivers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (t *memTx) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	out := make([]*domain.Vehicle, 0, len(t.state.vehicles))
	for _, v := range t.state.vehicles {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (t *memTx) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	v, ok := t.state.vehicles[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (t *memTx) CreateRoute(ctx context.Context, r *domain.Route) error {
	cp := *r
	cp.Stops = nil
	t.state.routes[r.ID] = &cp
	return nil
}

func (t *memTx) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	r, ok := t.state.routes[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return t.assemble(r), nil
}

func (t *memTx) ListRoutesByDate(ctx context.Context, date string) ([]*domain.Route, error) {
	out := []*domain.Route{}
	for _, r := range t.state.routes {
		if r.Date == date {
			out = append(out, t.assemble(r))
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (t *memTx) FindAssignedRoute(ctx context.Context, driverID, date string) (*domain.Route, error) {
	for _, r := range t.state.routes {
		if r.Date != date || r.Status == domain.RouteStatusPlanning {
			continue
		}
		if r.DriverID != nil && *r.DriverID == driverID {
			return t.assemble(r), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (t *memTx) UpdateRouteAssignment(ctx context.Context, routeID string, driverID, vehicleID *string, status domain.RouteStatus) error {
	r, ok := t.state.routes[routeID]
	if !ok {
		return ports.ErrNotFound
	}
	r.DriverID = driverID
	r.VehicleID = vehicleID
	r.Status = status
	return nil
}

func (t *memTx) DeleteRoute(ctx context.Context, id string) error {
	if _, ok := t.state.routes[id]; !ok {
		return ports.ErrNotFound
	}
	delete(t.state.routes, id)
	for stopID, s := range t.state.stops {
		if s.RouteID == id {
			delete(t.state.stops, stopID)
		}
	}
	return nil
}

func (t *memTx) DeleteRoutesByDate(ctx context.Context, date string) error {
	for id, r := range t.state.routes {
		if r.Date != date {
			continue
		}
		delete(t.state.routes, id)
		for stopID, s := range t.state.stops {
			if s.RouteID == id {
				delete(t.state.stops, stopID)
			}
		}
	}
	return nil
}

func (t *memTx) CreateStop(ctx context.Context, s *domain.Stop) error {
	if _, ok := t.state.routes[s.RouteID]; !ok {
		return ports.ErrNotFound
	}
	cp := *s
	t.state.stops[s.ID] = &cp
	return nil
}

func (t *memTx) GetStop(ctx context.Context, id string) (*domain.Stop, error) {
	s, ok := t.state.stops[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (t *memTx) DeleteStop(ctx context.Context, id string) error {
	if _, ok := t.state.stops[id]; !ok {
		return ports.ErrNotFound
	}
	delete(t.state.stops, id)
	return nil
}

func (t *memTx) UpdateStopSequence(ctx context.Context, stopID string, sequence int) error {
	s, ok := t.state.stops[stopID]
	if !ok {
		return ports.ErrNotFound
	}
	s.Sequence = sequence
	return nil
}

// assemble copies the route and attaches its stops ordered by sequence.
func (t *memTx) assemble(r *domain.Route) *domain.Route {
	cp := *r
	cp.Stops = []*domain.Stop{}
	for _, s := range t.state.stops {
		if s.RouteID == r.ID {
			sc := *s
			cp.Stops = append(cp.Stops, &sc)
		}
	}
	sort.Slice(cp.Stops, func(a, b int) bool {
		return cp.Stops[a].Sequence < cp.Stops[b].Sequence
	})
	return &cp
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/ports"
)

// queryer is the subset of database/sql shared by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Postgres-backed implementation of the Store port.
//
// A PostgresStore built from a *sql.DB runs each call in autocommit mode;
// WithTransaction hands the callback a view bound to a *sql.Tx. GetRoute
// inside a transaction takes a row lock (FOR UPDATE) so manual-editor
// operations on the same route serialize; other reads take no locks.
type PostgresStore struct {
	db *sql.DB // nil on transactional views
	q  queryer
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

func (s *PostgresStore) inTx() bool { return s.db == nil }

func (s *PostgresStore) WithTransaction(ctx context.Context, fn func(tx ports.Store) error) error {
	if s.inTx() {
		// Already transactional; join the ambient transaction.
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&PostgresStore{q: tx}); err != nil {
		return translateConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return translateConflict(fmt.Errorf("store: commit tx: %w", err))
	}

	return nil
}

// translateConflict maps serialization and deadlock aborts onto the port's
// conflict sentinel so callers can report them as retryable.
func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%v: %w", err, ports.ErrConflict)
		}
	}
	return err
}

func (s *PostgresStore) ListChildren(ctx context.Context) ([]*domain.Child, error) {
	rows, err := s.q.QueryContext(ctx, `
	SELECT id, name, street, city, state, lat, lon, category
	FROM child
	ORDER BY name, id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list children: query: %w", err)
	}
	defer rows.Close()

	children := make([]*domain.Child, 0, 64)
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("list children: %w", err)
		}
		children = append(children, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list children: row iteration: %w", err)
	}

	return children, nil
}

func (s *PostgresStore) GetChild(ctx context.Context, id string) (*domain.Child, error) {
	row := s.q.QueryRowContext(ctx, `
	SELECT id, name, street, city, state, lat, lon, category
	FROM child
	WHERE id = $1;
	`, id)

	c, err := scanChild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get child %s: %w", id, err)
	}

	return c, nil
}

func (s *PostgresStore) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	rows, err := s.q.QueryContext(ctx, `
	SELECT id, name, capabilities
	FROM driver
	ORDER BY name, id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, 16)
	for rows.Next() {
		var d domain.Driver
		var caps string
		if err := rows.Scan(&d.ID, &d.Name, &caps); err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		d.Capabilities = parseCapabilities(caps)
		drivers = append(drivers, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}

	return drivers, nil
}

func (s *PostgresStore) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	var d domain.Driver
	var caps string
	err := s.q.QueryRowContext(ctx, `
	SELECT id, name, capabilities
	FROM driver
	WHERE id = $1;
	`, id).Scan(&d.ID, &d.Name, &caps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get driver %s: %w", id, err)
	}
	d.Capabilities = parseCapabilities(caps)

	return &d, nil
}

func (s *PostgresStore) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	rows, err := s.q.QueryContext(ctx, `
	SELECT id, name, capacity, equipment
	FROM vehicle
	ORDER BY name, id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*domain.Vehicle, 0, 16)
	for rows.Next() {
		var v domain.Vehicle
		var equip string
		if err := rows.Scan(&v.ID, &v.Name, &v.Capacity, &equip); err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		v.Equipment = parseEquipment(equip)
		vehicles = append(vehicles, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}

func (s *PostgresStore) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	var equip string
	err := s.q.QueryRowContext(ctx, `
	SELECT id, name, capacity, equipment
	FROM vehicle
	WHERE id = $1;
	`, id).Scan(&v.ID, &v.Name, &v.Capacity, &equip)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle %s: %w", id, err)
	}
	v.Equipment = parseEquipment(equip)

	return &v, nil
}

func (s *PostgresStore) CreateRoute(ctx context.Context, r *domain.Route) error {
	_, err := s.q.ExecContext(ctx, `
	INSERT INTO route (id, name, date, status, driver_id, vehicle_id)
	VALUES ($1, $2, $3, $4, $5, $6);
	`, r.ID, r.Name, r.Date, string(r.Status), r.DriverID, r.VehicleID)
	if err != nil {
		return fmt.Errorf("create route %s: %w", r.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	query := `
	SELECT id, name, date, status, driver_id, vehicle_id
	FROM route
	WHERE id = $1`
	if s.inTx() {
		query += `
	FOR UPDATE`
	}

	var r domain.Route
	var status string
	err := s.q.QueryRowContext(ctx, query+";", id).
		Scan(&r.ID, &r.Name, &r.Date, &status, &r.DriverID, &r.VehicleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}
	r.Status = domain.RouteStatus(status)

	if r.Stops, err = s.listStops(ctx, r.ID); err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}

	return &r, nil
}

func (s *PostgresStore) ListRoutesByDate(ctx context.Context, date string) ([]*domain.Route, error) {
	rows, err := s.q.QueryContext(ctx, `
	SELECT id, name, date, status, driver_id, vehicle_id
	FROM route
	WHERE date = $1
	ORDER BY name, id;
	`, date)
	if err != nil {
		return nil, fmt.Errorf("list routes for %s: query: %w", date, err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 16)
	for rows.Next() {
		var r domain.Route
		var status string
		if err := rows.Scan(&r.ID, &r.Name, &r.Date, &status, &r.DriverID, &r.VehicleID); err != nil {
			return nil, fmt.Errorf("list routes for %s: scan row: %w", date, err)
		}
		r.Status = domain.RouteStatus(status)
		routes = append(routes, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes for %s: row iteration: %w", date, err)
	}

	for _, r := range routes {
		if r.Stops, err = s.listStops(ctx, r.ID); err != nil {
			return nil, fmt.Errorf("list routes for %s: %w", date, err)
		}
	}

	return routes, nil
}

func (s *PostgresStore) FindAssignedRoute(ctx context.Context, driverID, date string) (*domain.Route, error) {
	var id string
	err := s.q.QueryRowContext(ctx, `
	SELECT id
	FROM route
	WHERE driver_id = $1 AND date = $2 AND status <> $3
	ORDER BY id
	LIMIT 1;
	`, driverID, date, string(domain.RouteStatusPlanning)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find assigned route for driver %s on %s: %w", driverID, date, err)
	}

	return s.GetRoute(ctx, id)
}

func (s *PostgresStore) UpdateRouteAssignment(ctx context.Context, routeID string, driverID, vehicleID *string, status domain.RouteStatus) error {
	res, err := s.q.ExecContext(ctx, `
	UPDATE route
	SET driver_id = $1, vehicle_id = $2, status = $3
	WHERE id = $4;
	`, driverID, vehicleID, string(status), routeID)
	if err != nil {
		return fmt.Errorf("update route %s assignment: %w", routeID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteRoute(ctx context.Context, id string) error {
	// stop.route_id cascades on delete.
	res, err := s.q.ExecContext(ctx, `DELETE FROM route WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete route %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteRoutesByDate(ctx context.Context, date string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM route WHERE date = $1;`, date); err != nil {
		return fmt.Errorf("delete routes for %s: %w", date, err)
	}
	return nil
}

func (s *PostgresStore) CreateStop(ctx context.Context, st *domain.Stop) error {
	_, err := s.q.ExecContext(ctx, `
	INSERT INTO stop (id, seq, type, status, child_id, route_id)
	VALUES ($1, $2, $3, $4, $5, $6);
	`, st.ID, st.Sequence, string(st.Type), string(st.Status), st.ChildID, st.RouteID)
	if err != nil {
		return fmt.Errorf("create stop %s: %w", st.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetStop(ctx context.Context, id string) (*domain.Stop, error) {
	var st domain.Stop
	var typ, status string
	err := s.q.QueryRowContext(ctx, `
	SELECT id, seq, type, status, child_id, route_id
	FROM stop
	WHERE id = $1;
	`, id).Scan(&st.ID, &st.Sequence, &typ, &status, &st.ChildID, &st.RouteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stop %s: %w", id, err)
	}
	st.Type = domain.StopType(typ)
	st.Status = domain.StopStatus(status)

	return &st, nil
}

func (s *PostgresStore) DeleteStop(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM stop WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete stop %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateStopSequence(ctx context.Context, stopID string, sequence int) error {
	res, err := s.q.ExecContext(ctx, `UPDATE stop SET seq = $1 WHERE id = $2;`, sequence, stopID)
	if err != nil {
		return fmt.Errorf("update stop %s sequence: %w", stopID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) listStops(ctx context.Context, routeID string) ([]*domain.Stop, error) {
	rows, err := s.q.QueryContext(ctx, `
	SELECT id, seq, type, status, child_id, route_id
	FROM stop
	WHERE route_id = $1
	ORDER BY seq;
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("list stops: query: %w", err)
	}
	defer rows.Close()

	stops := []*domain.Stop{}
	for rows.Next() {
		var st domain.Stop
		var typ, status string
		if err := rows.Scan(&st.ID, &st.Sequence, &typ, &status, &st.ChildID, &st.RouteID); err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}
		st.Type = domain.StopType(typ)
		st.Status = domain.StopStatus(status)
		stops = append(stops, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}

	return stops, nil
}

// scanner covers *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanChild(sc scanner) (*domain.Child, error) {
	var c domain.Child
	var state sql.NullString
	var lat, lon sql.NullFloat64
	var category string

	if err := sc.Scan(&c.ID, &c.Name, &c.Street, &c.City, &state, &lat, &lon, &category); err != nil {
		return nil, err
	}

	c.State = state.String
	c.Category = domain.Category(category)
	if lat.Valid && lon.Valid {
		c.Coords = &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
	}

	return &c, nil
}

// Capability and equipment sets persist as comma-separated strings for
// parity with existing data.

func parseCapabilities(s string) []domain.Capability {
	parts := splitSet(s)
	if len(parts) == 0 {
		return nil
	}
	out := make([]domain.Capability, 0, len(parts))
	for _, p := range parts {
		out = append(out, domain.Capability(p))
	}
	return out
}

func parseEquipment(s string) []domain.Equipment {
	parts := splitSet(s)
	if len(parts) == 0 {
		return nil
	}
	out := make([]domain.Equipment, 0, len(parts))
	for _, p := range parts {
		out = append(out, domain.Equipment(p))
	}
	return out
}

func splitSet(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createChildQuery := `
	CREATE TABLE IF NOT EXISTS child (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		street TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		category TEXT NOT NULL
	);
	`

	createDriverQuery := `
	CREATE TABLE IF NOT EXISTS driver (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		capabilities TEXT NOT NULL DEFAULT ''
	);
	`

	createVehicleQuery := `
	CREATE TABLE IF NOT EXISTS vehicle (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		equipment TEXT NOT NULL DEFAULT ''
	);
	`

	createRouteQuery := `
	CREATE TABLE IF NOT EXISTS route (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		driver_id TEXT REFERENCES driver(id),
		vehicle_id TEXT REFERENCES vehicle(id)
	);
	`

	createStopQuery := `
	CREATE TABLE IF NOT EXISTS stop (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL CHECK (seq > 0),
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		child_id TEXT NOT NULL REFERENCES child(id),
		route_id TEXT NOT NULL REFERENCES route(id) ON DELETE CASCADE
	);
	`

	createRouteDateIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_date ON route(date);
	`

	createStopRouteIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_stop_route ON stop(route_id);
	`

	statements := []string{
		createChildQuery,
		createDriverQuery,
		createVehicleQuery,
		createRouteQuery,
		createStopQuery,
		createRouteDateIndexQuery,
		createStopRouteIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ChildSeed struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Street   string   `json:"street"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	Category string   `json:"category"`
}

type DriverSeed struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

type VehicleSeed struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment"`
}

type SeedFile struct {
	Children []ChildSeed   `json:"children"`
	Drivers  []DriverSeed  `json:"drivers"`
	Vehicles []VehicleSeed `json:"vehicles"`
}

// Populate the database with roster and fleet data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed data: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed data: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, c := range data.Children {
		if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("seed data: child at index %d: id and name are required", i)
		}
		if strings.TrimSpace(c.Category) == "" {
			return fmt.Errorf("seed data: child %q: category is required", c.ID)
		}

		var state any
		if strings.TrimSpace(c.State) != "" {
			state = c.State
		}

		_, err := tx.Exec(`
		INSERT INTO child (id, name, street, city, state, lat, lon, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			category = EXCLUDED.category;
		`, c.ID, c.Name, c.Street, c.City, state, c.Lat, c.Lon, c.Category)
		if err != nil {
			return fmt.Errorf("seed data: insert child %q: %w", c.ID, err)
		}
	}

	for _, d := range data.Drivers {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("seed data: driver %q: id is required", d.Name)
		}

		_, err := tx.Exec(`
		INSERT INTO driver (id, name, capabilities)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			capabilities = EXCLUDED.capabilities;
		`, d.ID, d.Name, strings.Join(d.Capabilities, ","))
		if err != nil {
			return fmt.Errorf("seed data: insert driver %q: %w", d.ID, err)
		}
	}

	for _, v := range data.Vehicles {
		if strings.TrimSpace(v.ID) == "" {
			return fmt.Errorf("seed data: vehicle %q: id is required", v.Name)
		}
		if v.Capacity < 1 {
			return fmt.Errorf("seed data: vehicle %q: capacity must be positive", v.ID)
		}

		_, err := tx.Exec(`
		INSERT INTO vehicle (id, name, capacity, equipment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			capacity = EXCLUDED.capacity,
			equipment = EXCLUDED.equipment;
		`, v.ID, v.Name, v.Capacity, strings.Join(v.Equipment, ","))
		if err != nil {
			return fmt.Errorf("seed data: insert vehicle %q: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed data: commit tx: %w", err)
	}

	return nil
}

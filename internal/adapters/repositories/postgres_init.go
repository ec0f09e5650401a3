package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres schema for trips, plan stops and the geocode cache.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS ausfluege (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		adresse TEXT
	);
	`

	createPlanTripsQuery := `
	CREATE TABLE IF NOT EXISTS plan_trips (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		trip_id TEXT REFERENCES ausfluege(id) ON DELETE SET NULL,
		custom_location TEXT
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_plan_trips_plan_sequence
	ON plan_trips(plan_id, sequence);
	`

	statements := []string{
		createTripsQuery,
		createPlanTripsQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
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

type TripSeed struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address"`
}

type PlanStopSeed struct {
	ID             string `json:"id"`
	Sequence       int    `json:"sequence"`
	TripID         string `json:"trip_id"`
	CustomLocation string `json:"custom_location"`
}

type PlanSeed struct {
	ID    string         `json:"id"`
	Stops []PlanStopSeed `json:"stops"`
}

type Seed struct {
	Trips []TripSeed `json:"trips"`
	Plans []PlanSeed `json:"plans"`
}

// LoadSeed reads and validates a seed file.
func LoadSeed(jsonPath string) (*Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", jsonPath, err)
	}

	var seed Seed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return nil, fmt.Errorf("load seed: parse json: %w", err)
	}

	trips := make(map[string]struct{}, len(seed.Trips))
	for i, t := range seed.Trips {
		if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("load seed: trip at index %d: id and name are required", i)
		}
		if (t.Lat == nil) != (t.Lng == nil) {
			return nil, fmt.Errorf("load seed: trip %q: lat and lng must be set together", t.ID)
		}
		trips[t.ID] = struct{}{}
	}

	stopIDs := map[string]struct{}{}
	for _, p := range seed.Plans {
		if strings.TrimSpace(p.ID) == "" {
			return nil, errors.New("load seed: plan id cannot be empty")
		}
		for i, s := range p.Stops {
			if strings.TrimSpace(s.ID) == "" {
				return nil, fmt.Errorf("load seed: plan %q stop at index %d: id cannot be empty", p.ID, i)
			}
			if _, dup := stopIDs[s.ID]; dup {
				return nil, fmt.Errorf("load seed: duplicate stop id %q", s.ID)
			}
			stopIDs[s.ID] = struct{}{}

			if s.TripID != "" {
				if _, ok := trips[s.TripID]; !ok {
					return nil, fmt.Errorf("load seed: stop %q references unknown trip %q", s.ID, s.TripID)
				}
			}
		}
	}

	return &seed, nil
}

// Populate the database with trips and plans from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	seed, err := LoadSeed(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed plans: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tripStmt, err := tx.Prepare(`
	INSERT INTO ausfluege (id, name, lat, lng, adresse)
	VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		adresse = EXCLUDED.adresse;
	`)
	if err != nil {
		return fmt.Errorf("seed plans: prepare trip insert: %w", err)
	}
	defer tripStmt.Close()

	for _, t := range seed.Trips {
		if _, err := tripStmt.Exec(t.ID, t.Name, t.Lat, t.Lng, t.Address); err != nil {
			return fmt.Errorf("seed plans: insert trip id=%q: %w", t.ID, err)
		}
	}

	stopStmt, err := tx.Prepare(`
	INSERT INTO plan_trips (id, plan_id, sequence, trip_id, custom_location)
	VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
	ON CONFLICT (id) DO UPDATE
	SET plan_id = EXCLUDED.plan_id,
		sequence = EXCLUDED.sequence,
		trip_id = EXCLUDED.trip_id,
		custom_location = EXCLUDED.custom_location;
	`)
	if err != nil {
		return fmt.Errorf("seed plans: prepare stop insert: %w", err)
	}
	defer stopStmt.Close()

	for _, p := range seed.Plans {
		for _, s := range p.Stops {
			if _, err := stopStmt.Exec(s.ID, p.ID, s.Sequence, s.TripID, s.CustomLocation); err != nil {
				return fmt.Errorf("seed plans: insert stop id=%q: %w", s.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed plans: commit tx: %w", err)
	}

	return nil
}

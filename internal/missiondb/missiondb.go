// Package missiondb persists the per-cycle data-collection samples and the
// terminal outcome of each mission run in a SQLite database.
package missiondb

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/openasv/surveyor/internal/mission"
	"github.com/openasv/surveyor/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MissionDB wraps the SQLite handle holding mission telemetry.
type MissionDB struct {
	*sql.DB
	logf monitoring.Logf
}

// New opens (creating if needed) the mission database at path and migrates it
// to the latest schema version.
func New(path string, logf monitoring.Logf) (*MissionDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open mission db %s: %w", path, err)
	}

	mdb := &MissionDB{DB: db, logf: monitoring.OrDefault(logf)}
	if err := mdb.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return mdb, nil
}

// migrateUp applies all pending embedded migrations.
func (mdb *MissionDB) migrateUp() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(mdb.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// Not closing m: that would close the shared DB connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate mission db: %w", err)
	}
	mdb.logf("mission database schema up to date")
	return nil
}

// Record persists one data-collection sample. It implements mission.Recorder.
func (mdb *MissionDB) Record(ctx context.Context, sample mission.Sample) error {
	payload, err := json.Marshal(sample.Data)
	if err != nil {
		return fmt.Errorf("encode sample payload: %w", err)
	}

	const stmt = `INSERT INTO mission_samples
		(run_id, waypoint_index, control_mode, lat, lon, arrival_only, payload_json, taken_unix_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = mdb.ExecContext(ctx, stmt,
		sample.RunID, sample.WaypointIndex, sample.Mode.String(),
		sample.Position.Lat, sample.Position.Lon,
		sample.ArrivalOnly, string(payload), sample.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// RecordOutcome persists the terminal outcome of a mission run.
func (mdb *MissionDB) RecordOutcome(ctx context.Context, runID string, outcome mission.Outcome) error {
	const stmt = `INSERT INTO mission_outcomes
		(run_id, success, abort_reason, waypoints_visited, finished_unix_nanos)
		VALUES (?, ?, ?, ?, ?)`
	_, err := mdb.ExecContext(ctx, stmt,
		runID, outcome.Success, string(outcome.Reason),
		outcome.WaypointsVisited, time.Now().UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// SampleCount returns the number of samples stored for a run. Used by tests
// and the collection binary's shutdown summary.
func (mdb *MissionDB) SampleCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := mdb.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mission_samples WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}

// Verify at compile time that *MissionDB implements mission.Recorder.
var _ mission.Recorder = (*MissionDB)(nil)

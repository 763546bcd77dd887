package missiondb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openasv/surveyor/internal/geo"
	"github.com/openasv/surveyor/internal/mission"
	"github.com/openasv/surveyor/internal/monitoring"
)

func newTestDB(t *testing.T) *MissionDB {
	t.Helper()
	mdb, err := New(filepath.Join(t.TempDir(), "mission.db"), monitoring.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { mdb.Close() })
	return mdb
}

func TestNew_MigratesSchema(t *testing.T) {
	t.Parallel()
	mdb := newTestDB(t)

	// Opening the same file again must be a no-op migration, not an error.
	path := filepath.Join(t.TempDir(), "reopen.db")
	first, err := New(path, monitoring.Discard)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(path, monitoring.Discard)
	require.NoError(t, err)
	require.NoError(t, second.Close())

	n, err := mdb.SampleCount(context.Background(), "none")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecord_RoundTrip(t *testing.T) {
	t.Parallel()
	mdb := newTestDB(t)
	ctx := context.Background()

	sample := mission.Sample{
		RunID:         "run-1",
		WaypointIndex: 2,
		Mode:          mission.ModeWaypoint,
		Position:      geo.Coordinate{Lat: 25.7617, Lon: -80.1918},
		Data:          map[string]string{"state": "ok", "exo2": "ph=7.9"},
		Timestamp:     time.Now().UTC(),
	}
	require.NoError(t, mdb.Record(ctx, sample))
	require.NoError(t, mdb.Record(ctx, sample))

	n, err := mdb.SampleCount(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var mode, payload string
	var lat float64
	err = mdb.QueryRowContext(ctx,
		`SELECT control_mode, payload_json, lat FROM mission_samples WHERE run_id = ? LIMIT 1`,
		"run-1").Scan(&mode, &payload, &lat)
	require.NoError(t, err)
	assert.Equal(t, "Waypoint", mode)
	assert.Contains(t, payload, `"exo2":"ph=7.9"`)
	assert.InDelta(t, 25.7617, lat, 1e-9)
}

func TestRecordOutcome(t *testing.T) {
	t.Parallel()
	mdb := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, mdb.RecordOutcome(ctx, "run-2", mission.Outcome{
		Success:          false,
		Reason:           mission.AbortVehicleInitiatedERP,
		WaypointsVisited: 1,
	}))

	var success bool
	var reason string
	err := mdb.QueryRowContext(ctx,
		`SELECT success, abort_reason FROM mission_outcomes WHERE run_id = ?`,
		"run-2").Scan(&success, &reason)
	require.NoError(t, err)
	assert.False(t, success)
	assert.Equal(t, "vehicle_initiated_erp", reason)
}

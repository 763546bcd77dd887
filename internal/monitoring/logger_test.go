package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrDefault(t *testing.T) {
	t.Parallel()

	called := false
	custom := func(format string, v ...interface{}) { called = true }

	OrDefault(custom)("hello %s", "world")
	assert.True(t, called, "supplied logger should be returned as-is")

	// A nil logger falls back to log.Printf; it must be callable.
	assert.NotNil(t, OrDefault(nil))
	assert.NotPanics(t, func() { OrDefault(nil)("fallback %d", 1) })
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { Discard("ignored %v", 42) })
}

func TestMissionMetrics_Counts(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := NewMissionMetrics(reg)

	m.ObservePollCycle("Waypoint")
	m.ObservePollCycle("Waypoint")
	m.ObservePollCycle("Station Keep")
	m.ObserveWaypoint("success", 12.5)
	m.ObserveMissionOutcome("aborted", "vehicle_initiated_erp")
	m.ObserveAvoidance()
	m.ObservePatrol()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pollCycles.WithLabelValues("Waypoint")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pollCycles.WithLabelValues("Station Keep")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.waypointOutcomes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.missionOutcomes.WithLabelValues("aborted", "vehicle_initiated_erp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.avoidanceEvents))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.patrolEvents))

	n, err := testutil.GatherAndCount(reg,
		"mission_poll_cycles_total", "mission_waypoint_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMissionMetrics_NilSafe(t *testing.T) {
	t.Parallel()
	var m *MissionMetrics

	assert.NotPanics(t, func() {
		m.ObservePollCycle("Standby")
		m.ObserveWaypoint("retry", 1)
		m.ObserveMissionOutcome("success", "")
		m.ObserveAvoidance()
		m.ObservePatrol()
	})
}

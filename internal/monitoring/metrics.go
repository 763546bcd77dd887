package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MissionMetrics records executor activity. Construct one per process with
// NewMissionMetrics and hand it to the executor; a nil *MissionMetrics is
// safe to use and records nothing, so tests do not need a registry.
type MissionMetrics struct {
	pollCycles       *prometheus.CounterVec
	waypointOutcomes *prometheus.CounterVec
	missionOutcomes  *prometheus.CounterVec
	avoidanceEvents  prometheus.Counter
	patrolEvents     prometheus.Counter
	waypointSeconds  prometheus.Histogram
}

// NewMissionMetrics registers the mission metric set on the given registerer.
// Passing nil registers on the default Prometheus registry.
func NewMissionMetrics(reg prometheus.Registerer) *MissionMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &MissionMetrics{
		pollCycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_poll_cycles_total",
				Help: "Total executor poll cycles by reported vehicle control mode",
			},
			[]string{"mode"},
		),
		waypointOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_waypoint_outcomes_total",
				Help: "Waypoint arrival evaluations by outcome (success, retry)",
			},
			[]string{"outcome"},
		),
		missionOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_outcomes_total",
				Help: "Terminal mission outcomes by result and abort reason",
			},
			[]string{"result", "reason"},
		),
		avoidanceEvents: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mission_avoidance_events_total",
				Help: "Obstacle-avoidance pauses triggered during waypoint legs",
			},
		),
		patrolEvents: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mission_anomaly_patrols_total",
				Help: "Square patrol detours triggered near the anomaly site",
			},
		),
		waypointSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mission_waypoint_duration_seconds",
				Help:    "Wall time spent per waypoint leg",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
}

// ObservePollCycle counts one poll loop iteration in the given mode.
func (m *MissionMetrics) ObservePollCycle(mode string) {
	if m == nil {
		return
	}
	m.pollCycles.WithLabelValues(mode).Inc()
}

// ObserveWaypoint records one arrival evaluation and the leg duration.
func (m *MissionMetrics) ObserveWaypoint(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.waypointOutcomes.WithLabelValues(outcome).Inc()
	m.waypointSeconds.Observe(seconds)
}

// ObserveMissionOutcome records the terminal mission result. reason is empty
// on success.
func (m *MissionMetrics) ObserveMissionOutcome(result, reason string) {
	if m == nil {
		return
	}
	m.missionOutcomes.WithLabelValues(result, reason).Inc()
}

// ObserveAvoidance counts one obstacle-avoidance pause.
func (m *MissionMetrics) ObserveAvoidance() {
	if m == nil {
		return
	}
	m.avoidanceEvents.Inc()
}

// ObservePatrol counts one anomaly square-patrol detour.
func (m *MissionMetrics) ObservePatrol() {
	if m == nil {
		return
	}
	m.patrolEvents.Inc()
}

package mission

import (
	"context"
	"sync"

	"github.com/openasv/surveyor/internal/geo"
	"github.com/openasv/surveyor/internal/monitoring"
)

// SimVehicle is an in-memory vehicle for bench runs and tests. It accepts the
// full Vehicle contract and crudely integrates motion: each control-mode read
// advances the hull one step toward the head of the dispatched route, and the
// mode flips to Station Keep when the route is exhausted.
type SimVehicle struct {
	mu            sync.Mutex
	mode          ControlMode
	position      geo.Coordinate
	route         []geo.Coordinate
	metersPerPoll float64
	data          map[string]string
	logf          monitoring.Logf
}

// NewSimVehicle builds a simulator starting at the given position in Standby.
// metersPerPoll is the distance covered between consecutive mode reads.
func NewSimVehicle(start geo.Coordinate, metersPerPoll float64, logf monitoring.Logf) *SimVehicle {
	return &SimVehicle{
		mode:          ModeStandby,
		position:      start,
		metersPerPoll: metersPerPoll,
		data: map[string]string{
			"state": "ok",
			"exo2":  "temp=24.8;ph=7.9;odo=6.4",
		},
		logf: monitoring.OrDefault(logf),
	}
}

// GetControlMode reports the current mode, advancing the simulated hull first.
func (v *SimVehicle) GetControlMode(context.Context) (ControlMode, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advance()
	return v.mode, nil
}

func (v *SimVehicle) advance() {
	if v.mode != ModeWaypoint || len(v.route) == 0 {
		return
	}

	target := v.route[0]
	remaining := geo.Distance(v.position, target)
	if remaining <= v.metersPerPoll {
		v.position = target
		v.route = v.route[1:]
		if len(v.route) == 0 {
			v.mode = ModeStationKeep
			v.logf("sim: route complete, holding station at (%.6f, %.6f)",
				v.position.Lat, v.position.Lon)
		}
		return
	}

	// Linear interpolation is plenty at patrol scales.
	fraction := v.metersPerPoll / remaining
	v.position.Lat += (target.Lat - v.position.Lat) * fraction
	v.position.Lon += (target.Lon - v.position.Lon) * fraction
}

// SetStandbyMode puts the simulator in Standby.
func (v *SimVehicle) SetStandbyMode(context.Context) error { return v.setMode(ModeStandby) }

// SetWaypointMode resumes transit on the dispatched route.
func (v *SimVehicle) SetWaypointMode(context.Context) error { return v.setMode(ModeWaypoint) }

// SetStationKeepMode holds position.
func (v *SimVehicle) SetStationKeepMode(context.Context) error { return v.setMode(ModeStationKeep) }

// SetERPMode starts the simulated retreat.
func (v *SimVehicle) SetERPMode(context.Context) error { return v.setMode(ModeGoToERP) }

func (v *SimVehicle) setMode(m ControlMode) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = m
	return nil
}

// GoToWaypoint dispatches a single-waypoint route and enters Waypoint mode.
func (v *SimVehicle) GoToWaypoint(_ context.Context, wp geo.Coordinate, _ []geo.Coordinate, _ int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.route = []geo.Coordinate{wp}
	v.mode = ModeWaypoint
	return nil
}

// SendWaypoints dispatches a multi-waypoint route and enters Waypoint mode.
func (v *SimVehicle) SendWaypoints(_ context.Context, route []geo.Coordinate, _ []geo.Coordinate, _ int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.route = append([]geo.Coordinate(nil), route...)
	v.mode = ModeWaypoint
	return nil
}

// GetGPSCoordinates reports the simulated position.
func (v *SimVehicle) GetGPSCoordinates(context.Context) (geo.Coordinate, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position, nil
}

// GetData returns the canned telemetry snapshot for the requested keys.
func (v *SimVehicle) GetData(_ context.Context, keys []string) (map[string]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if value, ok := v.data[k]; ok {
			out[k] = value
		}
	}
	return out, nil
}

// Verify at compile time that *SimVehicle implements Vehicle.
var _ Vehicle = (*SimVehicle)(nil)

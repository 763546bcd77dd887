// Package mission implements the waypoint mission executor: a polling state
// machine that mirrors the vehicle's reported control mode, drives it through
// an ordered waypoint list, pauses for obstacles, patrols a square near a
// configured anomaly site, and surfaces exactly one terminal outcome.
package mission

import "fmt"

// ControlMode mirrors the control mode reported by the vehicle. The vehicle
// handle is the source of truth; the executor never asserts a mode locally,
// it only requests changes and reads the mirror back.
type ControlMode int

const (
	// ModeStandby is the idle mode; thrusters hold no setpoint.
	ModeStandby ControlMode = iota
	// ModeWaypoint is active transit toward a dispatched waypoint.
	ModeWaypoint
	// ModeStationKeep holds position; the vehicle reports it on arrival.
	ModeStationKeep
	// ModeGoToERP is the vehicle's autonomous retreat to its emergency
	// recovery point.
	ModeGoToERP
)

// Wire strings as reported by the vehicle controller.
const (
	modeStandbyWire     = "Standby"
	modeWaypointWire    = "Waypoint"
	modeStationKeepWire = "Station Keep"
	modeGoToERPWire     = "Go To ERP"
)

// String returns the vehicle wire string for the mode.
func (m ControlMode) String() string {
	switch m {
	case ModeStandby:
		return modeStandbyWire
	case ModeWaypoint:
		return modeWaypointWire
	case ModeStationKeep:
		return modeStationKeepWire
	case ModeGoToERP:
		return modeGoToERPWire
	default:
		return fmt.Sprintf("ControlMode(%d)", int(m))
	}
}

// ParseControlMode converts a vehicle wire string into a ControlMode.
func ParseControlMode(s string) (ControlMode, error) {
	switch s {
	case modeStandbyWire:
		return ModeStandby, nil
	case modeWaypointWire:
		return ModeWaypoint, nil
	case modeStationKeepWire:
		return ModeStationKeep, nil
	case modeGoToERPWire:
		return ModeGoToERP, nil
	default:
		return ModeStandby, fmt.Errorf("unknown control mode %q", s)
	}
}

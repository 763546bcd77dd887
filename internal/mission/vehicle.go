package mission

import (
	"context"
	"time"

	"github.com/openasv/surveyor/internal/avoidance"
	"github.com/openasv/surveyor/internal/geo"
	"github.com/openasv/surveyor/internal/monitoring"
	"github.com/openasv/surveyor/internal/scan"
)

// Vehicle is the contract the executor drives the boat through. The handle is
// single-owner and non-reentrant: the executor issues no mode-change request
// until the previous one's effect has been observed via GetControlMode.
type Vehicle interface {
	// GetControlMode reads the vehicle's reported control mode.
	GetControlMode(ctx context.Context) (ControlMode, error)

	SetStandbyMode(ctx context.Context) error
	SetWaypointMode(ctx context.Context) error
	SetStationKeepMode(ctx context.Context) error
	SetERPMode(ctx context.Context) error

	// GoToWaypoint dispatches a single waypoint together with the ERP
	// candidates and a throttle setting.
	GoToWaypoint(ctx context.Context, wp geo.Coordinate, erps []geo.Coordinate, throttle int) error
	// SendWaypoints dispatches an ordered multi-waypoint route.
	SendWaypoints(ctx context.Context, route []geo.Coordinate, erps []geo.Coordinate, throttle int) error

	// GetGPSCoordinates reads the current position.
	GetGPSCoordinates(ctx context.Context) (geo.Coordinate, error)
	// GetData reads a keyed telemetry/sensor snapshot.
	GetData(ctx context.Context, keys []string) (map[string]string, error)
}

// ObstacleSensor is the capability the mission layer consults before each
// navigation cycle.
type ObstacleSensor interface {
	// IsClear reports whether the path ahead is free of obstacles.
	IsClear(ctx context.Context) (bool, error)
}

// AlwaysClear is the trivially optimistic sensor used when no ranging sensor
// is fitted.
type AlwaysClear struct{}

// IsClear always reports a clear path.
func (AlwaysClear) IsClear(context.Context) (bool, error) { return true, nil }

// ScanProvider supplies the most recent sensor sweep, reporting false when no
// sweep has arrived yet.
type ScanProvider func() (scan.Scan, bool)

// AvoidanceSensor routes the mission layer's clearance check through the
// numeric avoidance controller: the path is clear exactly when the controller
// computes no correction for the latest sweep.
type AvoidanceSensor struct {
	ctrl   *avoidance.Controller
	latest ScanProvider
	logf   monitoring.Logf
}

// NewAvoidanceSensor builds a controller-backed obstacle sensor.
func NewAvoidanceSensor(ctrl *avoidance.Controller, latest ScanProvider, logf monitoring.Logf) *AvoidanceSensor {
	return &AvoidanceSensor{ctrl: ctrl, latest: latest, logf: monitoring.OrDefault(logf)}
}

// IsClear reports clear when no sweep is available or when the controller
// returns no correction for the latest sweep. A malformed sweep fails the
// single check; the executor logs it and skips the cycle.
func (s *AvoidanceSensor) IsClear(context.Context) (bool, error) {
	sweep, ok := s.latest()
	if !ok {
		s.logf("mission: no sensor sweep yet, assuming clear")
		return true, nil
	}
	cmd, err := s.ctrl.ComputeControl(sweep)
	if err != nil {
		return false, err
	}
	return cmd == nil, nil
}

// Recorder receives the per-cycle data-collection samples. Persistence lives
// behind this interface; the executor only hands samples over.
type Recorder interface {
	Record(ctx context.Context, sample Sample) error
}

// Sample is one data-collection cycle: where the vehicle was, what it
// reported, and whether the sample was taken at waypoint arrival.
type Sample struct {
	RunID         string
	WaypointIndex int
	Mode          ControlMode
	Position      geo.Coordinate
	Data          map[string]string
	ArrivalOnly   bool
	Timestamp     time.Time
}

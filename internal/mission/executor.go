package mission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openasv/surveyor/internal/geo"
	"github.com/openasv/surveyor/internal/monitoring"
)

// AbortReason labels a terminal mission abort.
type AbortReason string

const (
	// AbortObstacleUnresolved means the settle-and-recheck maneuver left
	// the path still blocked and the vehicle was sent to its ERP.
	AbortObstacleUnresolved AbortReason = "obstacle_unresolved"
	// AbortVehicleInitiatedERP means the vehicle itself decided to retreat
	// to the ERP during a waypoint leg.
	AbortVehicleInitiatedERP AbortReason = "vehicle_initiated_erp"
	// AbortArrivalRetriesExhausted means a waypoint failed its arrival
	// evaluation more times than the configured budget.
	AbortArrivalRetriesExhausted AbortReason = "arrival_retries_exhausted"
)

// Outcome is the single terminal result of a mission run. Reason is empty on
// success. Mapping outcomes to process exit codes is the binary's concern.
type Outcome struct {
	Success          bool
	Reason           AbortReason
	WaypointsVisited int
}

// Config holds the mission executor tuning. Durations replace the source's
// busy polls: the executor sleeps PollInterval between mode reads instead of
// spinning on the handle.
type Config struct {
	// Throttle is the throttle setting dispatched with every waypoint.
	Throttle int
	// ToleranceMeters is the arrival acceptance radius.
	ToleranceMeters float64
	// CountdownSeconds is the visible countdown issued by Start.
	CountdownSeconds int
	// PollInterval is the minimum spacing between control-mode reads.
	PollInterval time.Duration
	// ObstacleSettle is how long to hold Standby before re-checking a
	// blocked path.
	ObstacleSettle time.Duration
	// MaxArrivalRetries bounds repeated arrival failures on one waypoint.
	// The source re-attempted forever; exhausting this budget aborts the
	// mission instead.
	MaxArrivalRetries int
	// CollectOnlyAtWaypoint additionally records an arrival-only sample
	// when a waypoint is reached.
	CollectOnlyAtWaypoint bool
	// DataKeys selects the telemetry snapshot collected each cycle.
	DataKeys []string
	// AnomalySite, when set, is the coordinate whose proximity triggers a
	// one-shot square patrol.
	AnomalySite *geo.Coordinate
	// AnomalyToleranceMeters is the patrol trigger radius.
	AnomalyToleranceMeters float64
	// PatrolSideMeters is the side length of the patrol square.
	PatrolSideMeters float64
}

// DefaultConfig returns the field-deployment mission settings.
func DefaultConfig() Config {
	return Config{
		Throttle:               25,
		ToleranceMeters:        2.5,
		CountdownSeconds:       5,
		PollInterval:           time.Second,
		ObstacleSettle:         10 * time.Second,
		MaxArrivalRetries:      3,
		CollectOnlyAtWaypoint:  false,
		DataKeys:               []string{"state", "exo2"},
		AnomalyToleranceMeters: 5.0,
		PatrolSideMeters:       5.0,
	}
}

// Validate checks the executor tuning.
func (c Config) Validate() error {
	if c.Throttle <= 0 || c.Throttle > 100 {
		return fmt.Errorf("throttle must be in (0, 100], got %d", c.Throttle)
	}
	if c.ToleranceMeters <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.ToleranceMeters)
	}
	if c.CountdownSeconds < 0 {
		return fmt.Errorf("countdown must be non-negative, got %d", c.CountdownSeconds)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.ObstacleSettle < 0 {
		return fmt.Errorf("obstacle settle must be non-negative, got %s", c.ObstacleSettle)
	}
	if c.MaxArrivalRetries < 0 {
		return fmt.Errorf("max arrival retries must be non-negative, got %d", c.MaxArrivalRetries)
	}
	if c.AnomalySite != nil {
		if c.AnomalyToleranceMeters <= 0 {
			return fmt.Errorf("anomaly tolerance must be positive, got %g", c.AnomalyToleranceMeters)
		}
		if c.PatrolSideMeters <= 0 {
			return fmt.Errorf("patrol side must be positive, got %g", c.PatrolSideMeters)
		}
	}
	return nil
}

// Options carries the executor's optional collaborators. Zero values are
// safe: a nil Sensor means always-clear, a nil Recorder drops samples, nil
// Metrics records nothing and a nil Logf logs to the standard logger.
type Options struct {
	Sensor   ObstacleSensor
	Recorder Recorder
	Metrics  *monitoring.MissionMetrics
	Logf     monitoring.Logf
}

// Executor owns mission progress and drives a single vehicle handle through
// a plan. It is single-threaded by design; one executor per vehicle.
type Executor struct {
	vehicle  Vehicle
	cfg      Config
	sensor   ObstacleSensor
	recorder Recorder
	metrics  *monitoring.MissionMetrics
	logf     monitoring.Logf

	runID        string
	currentIndex int
	patrolling   bool
}

// NewExecutor validates cfg and builds an executor for the given vehicle.
func NewExecutor(vehicle Vehicle, cfg Config, opts Options) (*Executor, error) {
	if vehicle == nil {
		return nil, fmt.Errorf("vehicle handle is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mission config: %w", err)
	}
	sensor := opts.Sensor
	if sensor == nil {
		sensor = AlwaysClear{}
	}
	return &Executor{
		vehicle:  vehicle,
		cfg:      cfg,
		sensor:   sensor,
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		logf:     monitoring.OrDefault(opts.Logf),
		runID:    uuid.NewString(),
	}, nil
}

// RunID identifies this mission run on every recorded sample.
func (e *Executor) RunID() string { return e.runID }

// CurrentIndex reports mission progress: the index of the waypoint currently
// being attempted, or the waypoint count after a completed run.
func (e *Executor) CurrentIndex() int { return e.currentIndex }

// Start requests Standby and issues the visible countdown before the mission
// proceeds. Startup policy: count down immediately after the Standby request
// rather than waiting for an operator mode switch.
func (e *Executor) Start(ctx context.Context) error {
	if err := e.vehicle.SetStandbyMode(ctx); err != nil {
		return fmt.Errorf("request standby: %w", err)
	}
	for i := e.cfg.CountdownSeconds; i > 0; i-- {
		e.logf("starting mission in %d", i)
		if err := sleepCtx(ctx, time.Second); err != nil {
			return err
		}
	}
	e.logf("mission started (run %s)", e.runID)
	return nil
}

// Run drives the vehicle through the plan and returns the terminal outcome.
// A non-nil error means a vehicle handle failure, not a mission abort; abort
// paths are reported through the Outcome.
func (e *Executor) Run(ctx context.Context, plan Plan) (Outcome, error) {
	if err := plan.Validate(); err != nil {
		return Outcome{}, err
	}

	for e.currentIndex < len(plan.Waypoints) {
		outcome, done, err := e.runWaypointLeg(ctx, plan)
		if err != nil {
			return Outcome{}, err
		}
		if done {
			e.observeOutcome(outcome)
			return outcome, nil
		}
	}

	e.logf("mission completed: %d waypoints visited", e.currentIndex)
	outcome := Outcome{Success: true, WaypointsVisited: e.currentIndex}
	e.observeOutcome(outcome)
	return outcome, nil
}

// runWaypointLeg dispatches the current waypoint, polls until the vehicle
// reports Station Keep, and evaluates arrival. done is true when the mission
// reached a terminal outcome inside the leg.
func (e *Executor) runWaypointLeg(ctx context.Context, plan Plan) (Outcome, bool, error) {
	wp := plan.Waypoints[e.currentIndex]
	legStart := time.Now()
	retries := 0

	for {
		e.logf("loading waypoint #%d (%.6f, %.6f)", e.currentIndex+1, wp.Lat, wp.Lon)
		if err := e.vehicle.GoToWaypoint(ctx, wp, plan.ERPs, e.cfg.Throttle); err != nil {
			return Outcome{}, false, fmt.Errorf("dispatch waypoint %d: %w", e.currentIndex, err)
		}

		outcome, aborted, err := e.pollUntilStationKeep(ctx, plan, wp)
		if err != nil {
			return Outcome{}, false, err
		}
		if aborted {
			return outcome, true, nil
		}

		arrived, err := e.evaluateArrival(ctx, wp)
		if err != nil {
			return Outcome{}, false, err
		}
		if arrived {
			e.metrics.ObserveWaypoint("success", time.Since(legStart).Seconds())
			e.logf("waypoint #%d reached", e.currentIndex+1)
			e.currentIndex++
			return Outcome{}, false, nil
		}

		retries++
		e.metrics.ObserveWaypoint("retry", time.Since(legStart).Seconds())
		if retries > e.cfg.MaxArrivalRetries {
			e.logf("waypoint #%d failed %d arrival checks, aborting", e.currentIndex+1, retries)
			return Outcome{
				Reason:           AbortArrivalRetriesExhausted,
				WaypointsVisited: e.currentIndex,
			}, true, nil
		}
		e.logf("waypoint #%d arrival check failed, retrying (%d/%d)",
			e.currentIndex+1, retries, e.cfg.MaxArrivalRetries)
	}
}

// pollUntilStationKeep is the inner poll loop of a waypoint leg. It returns
// aborted=true with a terminal outcome when the vehicle retreats to the ERP
// on its own or an obstacle cannot be resolved.
func (e *Executor) pollUntilStationKeep(ctx context.Context, plan Plan, wp geo.Coordinate) (Outcome, bool, error) {
	for {
		mode, err := e.vehicle.GetControlMode(ctx)
		if err != nil {
			return Outcome{}, false, fmt.Errorf("read control mode: %w", err)
		}
		e.metrics.ObservePollCycle(mode.String())

		switch mode {
		case ModeStationKeep:
			return Outcome{}, false, nil

		case ModeGoToERP:
			e.logf("vehicle is going to ERP, aborting mission")
			return Outcome{
				Reason:           AbortVehicleInitiatedERP,
				WaypointsVisited: e.currentIndex,
			}, true, nil

		case ModeWaypoint:
			outcome, aborted, err := e.navigationCycle(ctx, plan, wp)
			if err != nil {
				return Outcome{}, false, err
			}
			if aborted {
				return outcome, true, nil
			}

		default:
			// Transient mode (e.g. Standby while the controller
			// settles): no progress, no data collection this cycle.
			e.logf("%s mode", mode)
		}

		if err := sleepCtx(ctx, e.cfg.PollInterval); err != nil {
			return Outcome{}, false, err
		}
	}
}

// navigationCycle runs one Waypoint-mode poll cycle: clearance check, anomaly
// patrol trigger, data collection, progress log.
func (e *Executor) navigationCycle(ctx context.Context, plan Plan, wp geo.Coordinate) (Outcome, bool, error) {
	clear, err := e.sensor.IsClear(ctx)
	if err != nil {
		// A failed clearance check skips the cycle; the next sweep
		// decides.
		e.logf("obstacle check failed, skipping cycle: %v", err)
		return Outcome{}, false, nil
	}
	if !clear {
		resolved, err := e.avoidObstacle(ctx)
		if err != nil {
			return Outcome{}, false, err
		}
		if !resolved {
			return Outcome{
				Reason:           AbortObstacleUnresolved,
				WaypointsVisited: e.currentIndex,
			}, true, nil
		}
		return Outcome{}, false, nil
	}

	position, err := e.vehicle.GetGPSCoordinates(ctx)
	if err != nil {
		return Outcome{}, false, fmt.Errorf("read position: %w", err)
	}

	if e.cfg.AnomalySite != nil {
		if geo.Distance(position, *e.cfg.AnomalySite) <= e.cfg.AnomalyToleranceMeters {
			if !e.patrolling {
				if err := e.patrolSquare(ctx, *e.cfg.AnomalySite, wp, plan.ERPs); err != nil {
					return Outcome{}, false, err
				}
			}
			return Outcome{}, false, nil
		}
		// Left the trigger radius: arm the patrol for the next approach.
		e.patrolling = false
	}

	if err := e.collectSample(ctx, position, false); err != nil {
		e.logf("data collection failed: %v", err)
	}
	e.logf("meters to waypoint #%d: %.2f", e.currentIndex+1, geo.Distance(position, wp))
	return Outcome{}, false, nil
}

// avoidObstacle pauses in Standby for the settle period and re-checks the
// path. resolved=false means the path stayed blocked and the vehicle was
// ordered to its ERP.
func (e *Executor) avoidObstacle(ctx context.Context) (bool, error) {
	e.metrics.ObserveAvoidance()

	if err := e.vehicle.SetStandbyMode(ctx); err != nil {
		return false, fmt.Errorf("request standby for obstacle: %w", err)
	}
	e.logf("obstacle detected, waiting %s to see if it moves", e.cfg.ObstacleSettle)
	if err := sleepCtx(ctx, e.cfg.ObstacleSettle); err != nil {
		return false, err
	}

	clear, err := e.sensor.IsClear(ctx)
	if err != nil {
		e.logf("obstacle re-check failed, treating path as blocked: %v", err)
		clear = false
	}
	if !clear {
		e.logf("obstacle not cleared, sending vehicle to ERP")
		if err := e.vehicle.SetERPMode(ctx); err != nil {
			return false, fmt.Errorf("request ERP mode: %w", err)
		}
		return false, nil
	}

	e.logf("obstacle cleared, resuming navigation")
	if err := e.vehicle.SetWaypointMode(ctx); err != nil {
		return false, fmt.Errorf("resume waypoint mode: %w", err)
	}
	return true, nil
}

// patrolSquare detours around the anomaly site: four square corners followed
// by the interrupted destination. It holds Station Keep while dispatching the
// route, then waits for the vehicle to report Waypoint mode again before
// handing control back to the main loop.
func (e *Executor) patrolSquare(ctx context.Context, center, destination geo.Coordinate, erps []geo.Coordinate) error {
	e.metrics.ObservePatrol()
	e.patrolling = true
	e.logf("anomaly site within %.1fm, starting %gm square patrol",
		e.cfg.AnomalyToleranceMeters, e.cfg.PatrolSideMeters)

	corners := geo.SquareCorners(center, e.cfg.PatrolSideMeters)
	route := append(corners[:], destination)

	if err := e.vehicle.SetStationKeepMode(ctx); err != nil {
		return fmt.Errorf("hold for patrol dispatch: %w", err)
	}
	if err := e.vehicle.SendWaypoints(ctx, route, erps, e.cfg.Throttle); err != nil {
		return fmt.Errorf("dispatch patrol route: %w", err)
	}

	for {
		mode, err := e.vehicle.GetControlMode(ctx)
		if err != nil {
			return fmt.Errorf("read control mode during patrol dispatch: %w", err)
		}
		if mode == ModeWaypoint {
			return nil
		}
		if err := sleepCtx(ctx, e.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// evaluateArrival compares the position reported at Station Keep against the
// dispatched waypoint.
func (e *Executor) evaluateArrival(ctx context.Context, wp geo.Coordinate) (bool, error) {
	position, err := e.vehicle.GetGPSCoordinates(ctx)
	if err != nil {
		return false, fmt.Errorf("read position for arrival check: %w", err)
	}
	if geo.Distance(position, wp) > e.cfg.ToleranceMeters {
		return false, nil
	}

	if e.cfg.CollectOnlyAtWaypoint {
		if err := e.collectSample(ctx, position, true); err != nil {
			e.logf("arrival data collection failed: %v", err)
		}
	}
	return true, nil
}

// collectSample requests one telemetry snapshot and hands it to the recorder.
func (e *Executor) collectSample(ctx context.Context, position geo.Coordinate, arrivalOnly bool) error {
	if e.recorder == nil {
		return nil
	}
	data, err := e.vehicle.GetData(ctx, e.cfg.DataKeys)
	if err != nil {
		return fmt.Errorf("get data: %w", err)
	}
	mode := ModeWaypoint
	if arrivalOnly {
		mode = ModeStationKeep
	}
	return e.recorder.Record(ctx, Sample{
		RunID:         e.runID,
		WaypointIndex: e.currentIndex,
		Mode:          mode,
		Position:      position,
		Data:          data,
		ArrivalOnly:   arrivalOnly,
		Timestamp:     time.Now().UTC(),
	})
}

func (e *Executor) observeOutcome(o Outcome) {
	if o.Success {
		e.metrics.ObserveMissionOutcome("success", "")
		return
	}
	e.metrics.ObserveMissionOutcome("abort", string(o.Reason))
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still give cancellation a chance on zero waits.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

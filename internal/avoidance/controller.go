// Package avoidance implements the reactive obstacle-avoidance controller:
// it turns a ranging-sensor scan into a thrust/thrust-differential correction
// when something sits inside the safety threshold, and stays quiet otherwise.
package avoidance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/openasv/surveyor/internal/monitoring"
	"github.com/openasv/surveyor/internal/scan"
)

// Command is the correction the controller asks of the propulsion layer.
// Thrust is the forward setpoint; ThrustDifferential is the port/starboard
// imbalance commanding the turn (positive turns away from obstacles to port).
type Command struct {
	Thrust             float64
	ThrustDifferential float64
}

// State is the controller's observable telemetry, updated on every
// ComputeControl call.
type State struct {
	// CurrentFOV is the half-angle of the care cone used on the last cycle.
	CurrentFOV float64
	// LastMinDistance is the forward-hemisphere reference minimum seen on
	// the last cycle.
	LastMinDistance float64
}

// Controller owns the avoidance configuration and the transient FOV state.
// It is not safe for concurrent use; one instance serves one sensor stream.
type Controller struct {
	cfg   Config
	logf  monitoring.Logf
	state State
}

// New validates cfg and returns a controller. The state starts at the
// baseline FOV and the safe distance.
func New(cfg Config, logf monitoring.Logf) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		cfg:  cfg,
		logf: monitoring.OrDefault(logf),
		state: State{
			CurrentFOV:      cfg.HalfFOV,
			LastMinDistance: cfg.SafeDistance,
		},
	}, nil
}

// Config returns the immutable configuration.
func (c *Controller) Config() Config { return c.cfg }

// State returns the telemetry snapshot from the last cycle.
func (c *Controller) State() State { return c.state }

// ComputeControl consumes one scan and returns a correction, or nil when no
// obstacle sits inside the safety threshold. For identical config and scan
// the returned command is identical; the only side effect is the telemetry
// state.
func (c *Controller) ComputeControl(s scan.Scan) (*Command, error) {
	if s.Unit != c.cfg.Unit {
		return nil, fmt.Errorf("scan unit %q does not match configured %q", s.Unit, c.cfg.Unit)
	}

	// Reference minimum over the fixed forward hemisphere, regardless of
	// the configured cone. This is what the adaptive law keys on.
	forward, err := scan.Filter(s, 0, math.Pi/2, c.cfg.IgnoreDistance)
	if err != nil {
		return nil, err
	}
	refMin := c.cfg.SafeDistance
	if forward.Len() > 0 {
		refMin = floats.Min(forward.Distances)
	}

	fov := c.cfg.HalfFOV
	if c.cfg.AdaptiveFOV {
		fov = c.adaptiveFOV(refMin)
	}
	c.state.CurrentFOV = fov
	c.state.LastMinDistance = refMin

	working, err := scan.Filter(s, 0, fov, c.cfg.IgnoreDistance)
	if err != nil {
		return nil, err
	}
	nearest := c.cfg.SafeDistance
	if working.Len() > 0 {
		nearest = floats.Min(working.Distances)
	}
	if nearest >= c.cfg.SafeDistance {
		return nil, nil
	}

	// Mean signed angle of the critical readings. Angles are wrapped into
	// (-pi, pi] upstream, so the arithmetic mean is a fair direction
	// estimate inside the forward cone.
	var critical []float64
	for i, d := range working.Distances {
		if d <= c.cfg.SafeDistance {
			critical = append(critical, working.Angles[i])
		}
	}
	meanAngle := stat.Mean(critical, nil)

	proximity := 1 - math.Abs(meanAngle)/math.Pi
	proximity = math.Max(0, math.Min(1, proximity))

	differential := -sign(meanAngle) * c.cfg.AngularGain * proximity *
		math.Pow(c.cfg.SafeDistance/nearest, c.cfg.ShapingExponent)
	differential = c.applyDeadzone(differential)

	// Cap forward thrust at half of cruise whenever avoidance is active,
	// scaling further down as the obstacle closes in.
	thrust := c.cfg.DefaultThrust * math.Min(nearest/c.cfg.SafeDistance, 0.5)

	c.logf("avoidance: obstacle at %.2fm (mean angle %.2frad), thrust %.1f diff %.1f",
		nearest, meanAngle, thrust, differential)

	return &Command{Thrust: thrust, ThrustDifferential: differential}, nil
}

// adaptiveFOV widens the care cone from the baseline toward pi/2 as the
// reference distance drops below the safe threshold:
//
//	fov = halfFOV + (pi/2 - halfFOV) * ((safe - ref)/safe)^p
//
// At or beyond the safe distance the cone stays at the baseline; at contact
// it reaches the full forward hemisphere.
func (c *Controller) adaptiveFOV(refMin float64) float64 {
	if refMin >= c.cfg.SafeDistance {
		return c.cfg.HalfFOV
	}
	shortfall := (c.cfg.SafeDistance - refMin) / c.cfg.SafeDistance
	if shortfall > 1 {
		shortfall = 1
	}
	fov := c.cfg.HalfFOV + (math.Pi/2-c.cfg.HalfFOV)*math.Pow(shortfall, c.cfg.ShapingExponent)
	return math.Max(c.cfg.HalfFOV, math.Min(math.Pi/2, fov))
}

// applyDeadzone zeroes differentials too small to move the hull and snaps the
// intermediate band up to the effective minimum.
func (c *Controller) applyDeadzone(differential float64) float64 {
	magnitude := math.Abs(differential)
	switch {
	case magnitude < c.cfg.DeadzoneLow:
		return 0
	case magnitude < c.cfg.DeadzoneHigh:
		return c.cfg.DeadzoneHigh * sign(differential)
	default:
		return differential
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

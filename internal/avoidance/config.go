package avoidance

import (
	"errors"
	"fmt"
	"math"

	"github.com/openasv/surveyor/internal/scan"
)

// ErrConfig reports an invalid avoidance configuration. Construction fails
// fast; a Controller is never partially configured.
var ErrConfig = errors.New("invalid avoidance config")

// Config holds the avoidance tuning. Immutable after construction; Validate
// is called by New and enforces every positivity constraint.
//
// The deadzone and shaping knobs existed with different values across field
// deployments, so all of them are exposed here rather than hardcoded. The
// defaults follow the most recent deployment.
type Config struct {
	// HalfFOV is the half-angle (radians) of the baseline care cone.
	HalfFOV float64
	// SafeDistance is the obstacle reaction threshold in meters.
	SafeDistance float64
	// DefaultThrust is the cruise thrust the correction scales down from.
	DefaultThrust float64
	// AngularGain scales the thrust differential.
	AngularGain float64
	// AdaptiveFOV widens the care cone as obstacles get closer.
	AdaptiveFOV bool
	// IgnoreDistance discards near returns (hull, spray) as sensor noise.
	IgnoreDistance float64
	// Unit is the angle unit scans are expected to arrive in.
	Unit scan.AngleUnit
	// ShapingExponent shapes both the adaptive-FOV ramp and the proximity
	// term of the differential; 0.5 gives the square-root shaping used in
	// the field.
	ShapingExponent float64
	// DeadzoneLow zeroes differential magnitudes below it.
	DeadzoneLow float64
	// DeadzoneHigh snaps magnitudes in [DeadzoneLow, DeadzoneHigh) up to
	// DeadzoneHigh so the thrusters get a command that actually turns the
	// hull.
	DeadzoneHigh float64
}

// DefaultConfig returns the field-deployment defaults.
func DefaultConfig() Config {
	return Config{
		HalfFOV:         math.Pi / 4,
		SafeDistance:    2.0,
		DefaultThrust:   20.0,
		AngularGain:     1.0,
		AdaptiveFOV:     false,
		IgnoreDistance:  0.25,
		Unit:            scan.Radians,
		ShapingExponent: 0.5,
		DeadzoneLow:     5.0,
		DeadzoneHigh:    10.0,
	}
}

// Validate checks the configuration constraints.
func (c Config) Validate() error {
	if c.HalfFOV <= 0 || c.HalfFOV > math.Pi/2 {
		return fmt.Errorf("%w: half FOV must be in (0, pi/2], got %g", ErrConfig, c.HalfFOV)
	}
	if c.SafeDistance <= 0 {
		return fmt.Errorf("%w: safe distance must be positive, got %g", ErrConfig, c.SafeDistance)
	}
	if c.DefaultThrust <= 0 {
		return fmt.Errorf("%w: default thrust must be positive, got %g", ErrConfig, c.DefaultThrust)
	}
	if c.IgnoreDistance < 0 {
		return fmt.Errorf("%w: ignore distance must be non-negative, got %g", ErrConfig, c.IgnoreDistance)
	}
	if c.ShapingExponent <= 0 {
		return fmt.Errorf("%w: shaping exponent must be positive, got %g", ErrConfig, c.ShapingExponent)
	}
	if c.DeadzoneLow < 0 || c.DeadzoneHigh < c.DeadzoneLow {
		return fmt.Errorf("%w: deadzone must satisfy 0 <= low <= high, got [%g, %g]",
			ErrConfig, c.DeadzoneLow, c.DeadzoneHigh)
	}
	switch c.Unit {
	case scan.Radians, scan.Degrees:
	default:
		return fmt.Errorf("%w: unknown angle unit %q", ErrConfig, c.Unit)
	}
	return nil
}

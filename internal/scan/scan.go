// Package scan defines the ranging-sensor scan model shared by the avoidance
// controller and the sensor acquisition layer, together with the geometric
// cone filter applied to raw readings.
package scan

import (
	"errors"
	"fmt"
	"math"
)

// AngleUnit identifies the unit of the angles carried by a Scan.
type AngleUnit string

const (
	// Radians marks scan angles already expressed in radians.
	Radians AngleUnit = "radians"
	// Degrees marks scan angles in degrees; they are converted to radians
	// and wrapped before any geometric filtering.
	Degrees AngleUnit = "degrees"
)

// ErrLengthMismatch reports a scan whose distance and angle sequences are not
// index-aligned.
var ErrLengthMismatch = errors.New("scan distance and angle lengths differ")

// Scan is a single ranging-sensor sweep: parallel distance/angle sequences
// with index-aligned correspondence. Angle convention: forward = 0, positive
// angles to port.
type Scan struct {
	Distances []float64
	Angles    []float64
	Unit      AngleUnit
}

// Len returns the number of readings in the scan.
func (s Scan) Len() int { return len(s.Distances) }

// Validate checks the parallel-sequence invariant and the angle unit.
func (s Scan) Validate() error {
	if len(s.Distances) != len(s.Angles) {
		return fmt.Errorf("%w: %d distances, %d angles",
			ErrLengthMismatch, len(s.Distances), len(s.Angles))
	}
	switch s.Unit {
	case Radians, Degrees:
		return nil
	default:
		return fmt.Errorf("unknown angle unit %q", s.Unit)
	}
}

// Normalized returns a copy of the scan with angles in radians wrapped into
// (-pi, pi]. Distances are shared with the receiver; angles are copied only
// when conversion is required.
func (s Scan) Normalized() (Scan, error) {
	if err := s.Validate(); err != nil {
		return Scan{}, err
	}
	if s.Unit == Radians {
		return s, nil
	}

	angles := make([]float64, len(s.Angles))
	for i, a := range s.Angles {
		angles[i] = WrapAngle(a * math.Pi / 180.0)
	}
	return Scan{Distances: s.Distances, Angles: angles, Unit: Radians}, nil
}

// WrapAngle wraps an angle in radians into (-pi, pi].
func WrapAngle(a float64) float64 {
	w := math.Mod(a+math.Pi, 2*math.Pi)
	if w <= 0 {
		w += 2 * math.Pi
	}
	return w - math.Pi
}

// Package config loads the mission tuning file: a single JSON document whose
// fields are all optional, with documented defaults filled in through Get*
// accessors so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/openasv/surveyor/internal/avoidance"
	"github.com/openasv/surveyor/internal/geo"
	"github.com/openasv/surveyor/internal/mission"
	"github.com/openasv/surveyor/internal/scan"
)

// AnomalySite is the configured anomaly coordinate with its detection radius
// and patrol geometry. Lifting it into configuration keeps coordinates out of
// the mission logic.
type AnomalySite struct {
	Lat             *float64 `json:"lat,omitempty"`
	Lon             *float64 `json:"lon,omitempty"`
	ToleranceMeters *float64 `json:"tolerance_meters,omitempty"`
	SideMeters      *float64 `json:"side_meters,omitempty"`
}

// Tuning is the root mission/avoidance configuration. Every field is a
// pointer: omitted fields keep their defaults.
type Tuning struct {
	// Mission params
	Throttle              *int     `json:"throttle,omitempty"`
	ToleranceMeters       *float64 `json:"tolerance_meters,omitempty"`
	CountdownSeconds      *int     `json:"countdown_seconds,omitempty"`
	PollInterval          *string  `json:"poll_interval,omitempty"`   // duration string like "1s"
	ObstacleSettle        *string  `json:"obstacle_settle,omitempty"` // duration string like "10s"
	MaxArrivalRetries     *int     `json:"max_arrival_retries,omitempty"`
	CollectOnlyAtWaypoint *bool    `json:"collect_only_at_waypoint,omitempty"`
	DataKeys              []string `json:"data_keys,omitempty"`

	// Anomaly patrol params
	Anomaly *AnomalySite `json:"anomaly,omitempty"`

	// Avoidance params
	HalfFOV         *float64 `json:"half_fov,omitempty"` // radians
	SafeDistance    *float64 `json:"safe_distance,omitempty"`
	DefaultThrust   *float64 `json:"default_thrust,omitempty"`
	AngularGain     *float64 `json:"angular_gain,omitempty"`
	AdaptiveFOV     *bool    `json:"adaptive_fov,omitempty"`
	IgnoreDistance  *float64 `json:"ignore_distance,omitempty"`
	AngleUnit       *string  `json:"angle_unit,omitempty"` // "radians" or "degrees"
	ShapingExponent *float64 `json:"shaping_exponent,omitempty"`
	DeadzoneLow     *float64 `json:"deadzone_low,omitempty"`
	DeadzoneHigh    *float64 `json:"deadzone_high,omitempty"`
}

// Load reads a Tuning from a JSON file. The path must have a .json extension
// and stay under the size cap; omitted fields retain their defaults.
func Load(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Tuning{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that cannot be validated downstream (duration
// strings and the anomaly block shape); numeric constraints are enforced by
// the typed configs built in Avoidance and Mission.
func (t *Tuning) Validate() error {
	if t.PollInterval != nil && *t.PollInterval != "" {
		if _, err := time.ParseDuration(*t.PollInterval); err != nil {
			return fmt.Errorf("invalid poll_interval %q: %w", *t.PollInterval, err)
		}
	}
	if t.ObstacleSettle != nil && *t.ObstacleSettle != "" {
		if _, err := time.ParseDuration(*t.ObstacleSettle); err != nil {
			return fmt.Errorf("invalid obstacle_settle %q: %w", *t.ObstacleSettle, err)
		}
	}
	if t.Anomaly != nil {
		if t.Anomaly.Lat == nil || t.Anomaly.Lon == nil {
			return fmt.Errorf("anomaly block needs both lat and lon")
		}
	}
	if t.AngleUnit != nil {
		switch scan.AngleUnit(*t.AngleUnit) {
		case scan.Radians, scan.Degrees:
		default:
			return fmt.Errorf("invalid angle_unit %q", *t.AngleUnit)
		}
	}
	return nil
}

// GetPollInterval parses and returns the poll interval, defaulting to 1s.
func (t *Tuning) GetPollInterval() time.Duration {
	if t.PollInterval == nil || *t.PollInterval == "" {
		return time.Second
	}
	d, err := time.ParseDuration(*t.PollInterval)
	if err != nil {
		return time.Second
	}
	return d
}

// GetObstacleSettle parses and returns the settle wait, defaulting to 10s.
func (t *Tuning) GetObstacleSettle() time.Duration {
	if t.ObstacleSettle == nil || *t.ObstacleSettle == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(*t.ObstacleSettle)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetHalfFOV returns the avoidance half-FOV or the pi/4 default.
func (t *Tuning) GetHalfFOV() float64 {
	if t.HalfFOV == nil {
		return math.Pi / 4
	}
	return *t.HalfFOV
}

// Avoidance builds the typed avoidance configuration, filling defaults for
// omitted fields.
func (t *Tuning) Avoidance() avoidance.Config {
	cfg := avoidance.DefaultConfig()
	cfg.HalfFOV = t.GetHalfFOV()
	if t.SafeDistance != nil {
		cfg.SafeDistance = *t.SafeDistance
	}
	if t.DefaultThrust != nil {
		cfg.DefaultThrust = *t.DefaultThrust
	}
	if t.AngularGain != nil {
		cfg.AngularGain = *t.AngularGain
	}
	if t.AdaptiveFOV != nil {
		cfg.AdaptiveFOV = *t.AdaptiveFOV
	}
	if t.IgnoreDistance != nil {
		cfg.IgnoreDistance = *t.IgnoreDistance
	}
	if t.AngleUnit != nil {
		cfg.Unit = scan.AngleUnit(*t.AngleUnit)
	}
	if t.ShapingExponent != nil {
		cfg.ShapingExponent = *t.ShapingExponent
	}
	if t.DeadzoneLow != nil {
		cfg.DeadzoneLow = *t.DeadzoneLow
	}
	if t.DeadzoneHigh != nil {
		cfg.DeadzoneHigh = *t.DeadzoneHigh
	}
	return cfg
}

// Mission builds the typed mission configuration, filling defaults for
// omitted fields.
func (t *Tuning) Mission() mission.Config {
	cfg := mission.DefaultConfig()
	if t.Throttle != nil {
		cfg.Throttle = *t.Throttle
	}
	if t.ToleranceMeters != nil {
		cfg.ToleranceMeters = *t.ToleranceMeters
	}
	if t.CountdownSeconds != nil {
		cfg.CountdownSeconds = *t.CountdownSeconds
	}
	cfg.PollInterval = t.GetPollInterval()
	cfg.ObstacleSettle = t.GetObstacleSettle()
	if t.MaxArrivalRetries != nil {
		cfg.MaxArrivalRetries = *t.MaxArrivalRetries
	}
	if t.CollectOnlyAtWaypoint != nil {
		cfg.CollectOnlyAtWaypoint = *t.CollectOnlyAtWaypoint
	}
	if t.DataKeys != nil {
		cfg.DataKeys = t.DataKeys
	}
	if t.Anomaly != nil {
		cfg.AnomalySite = &geo.Coordinate{Lat: *t.Anomaly.Lat, Lon: *t.Anomaly.Lon}
		if t.Anomaly.ToleranceMeters != nil {
			cfg.AnomalyToleranceMeters = *t.Anomaly.ToleranceMeters
		}
		if t.Anomaly.SideMeters != nil {
			cfg.PatrolSideMeters = *t.Anomaly.SideMeters
		}
	}
	return cfg
}

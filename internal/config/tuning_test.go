package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openasv/surveyor/internal/scan"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestEmptyTuning_Defaults(t *testing.T) {
	t.Parallel()
	tuning := &Tuning{}

	m := tuning.Mission()
	assert.Equal(t, 25, m.Throttle)
	assert.Equal(t, 2.5, m.ToleranceMeters)
	assert.Equal(t, time.Second, m.PollInterval)
	assert.Equal(t, 10*time.Second, m.ObstacleSettle)
	assert.Equal(t, 3, m.MaxArrivalRetries)
	assert.Nil(t, m.AnomalySite)

	a := tuning.Avoidance()
	assert.InDelta(t, math.Pi/4, a.HalfFOV, 1e-12)
	assert.Equal(t, 2.0, a.SafeDistance)
	assert.Equal(t, 20.0, a.DefaultThrust)
	assert.Equal(t, 0.5, a.ShapingExponent)
	assert.Equal(t, 5.0, a.DeadzoneLow)
	assert.Equal(t, 10.0, a.DeadzoneHigh)
	assert.Equal(t, scan.Radians, a.Unit)
	assert.NoError(t, a.Validate())
}

func TestLoad_PartialConfigOverrides(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "tuning.json", `{
		"throttle": 40,
		"poll_interval": "250ms",
		"adaptive_fov": true,
		"deadzone_low": 0.0,
		"deadzone_high": 0.0,
		"angle_unit": "degrees",
		"anomaly": {"lat": 25.7617, "lon": -80.1918, "tolerance_meters": 8, "side_meters": 6}
	}`)

	tuning, err := Load(path)
	require.NoError(t, err)

	m := tuning.Mission()
	assert.Equal(t, 40, m.Throttle)
	assert.Equal(t, 250*time.Millisecond, m.PollInterval)
	assert.Equal(t, 2.5, m.ToleranceMeters) // untouched default
	require.NotNil(t, m.AnomalySite)
	assert.Equal(t, 25.7617, m.AnomalySite.Lat)
	assert.Equal(t, 8.0, m.AnomalyToleranceMeters)
	assert.Equal(t, 6.0, m.PatrolSideMeters)

	a := tuning.Avoidance()
	assert.True(t, a.AdaptiveFOV)
	assert.Zero(t, a.DeadzoneLow)
	assert.Zero(t, a.DeadzoneHigh)
	assert.Equal(t, scan.Degrees, a.Unit)
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	t.Run("wrong extension", func(t *testing.T) {
		path := writeConfig(t, "tuning.yaml", `{}`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := writeConfig(t, "bad.json", `{"throttle": `)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeConfig(t, "dur.json", `{"poll_interval": "soonish"}`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("anomaly without lon", func(t *testing.T) {
		path := writeConfig(t, "anomaly.json", `{"anomaly": {"lat": 25.0}}`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad angle unit", func(t *testing.T) {
		path := writeConfig(t, "unit.json", `{"angle_unit": "grads"}`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}

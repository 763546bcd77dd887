package avoidance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openasv/surveyor/internal/monitoring"
	"github.com/openasv/surveyor/internal/scan"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate_Rejections(t *testing.T) {
	t.Parallel()

	mutations := map[string]func(*Config){
		"zero half FOV":          func(c *Config) { c.HalfFOV = 0 },
		"negative half FOV":      func(c *Config) { c.HalfFOV = -0.1 },
		"half FOV beyond pi/2":   func(c *Config) { c.HalfFOV = math.Pi },
		"zero safe distance":     func(c *Config) { c.SafeDistance = 0 },
		"negative safe distance": func(c *Config) { c.SafeDistance = -1 },
		"zero thrust":            func(c *Config) { c.DefaultThrust = 0 },
		"negative thrust":        func(c *Config) { c.DefaultThrust = -20 },
		"negative ignore":        func(c *Config) { c.IgnoreDistance = -0.1 },
		"zero shaping exponent":  func(c *Config) { c.ShapingExponent = 0 },
		"inverted deadzone":      func(c *Config) { c.DeadzoneLow, c.DeadzoneHigh = 10, 5 },
		"negative deadzone":      func(c *Config) { c.DeadzoneLow = -1 },
		"unknown unit":           func(c *Config) { c.Unit = scan.AngleUnit("grads") },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)

			_, err = New(cfg, monitoring.Discard)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestNew_InitialState(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	c, err := New(cfg, monitoring.Discard)
	require.NoError(t, err)

	st := c.State()
	assert.Equal(t, cfg.HalfFOV, st.CurrentFOV)
	assert.Equal(t, cfg.SafeDistance, st.LastMinDistance)
}

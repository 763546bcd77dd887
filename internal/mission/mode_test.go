package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlMode_WireStrings(t *testing.T) {
	t.Parallel()

	wire := map[ControlMode]string{
		ModeStandby:     "Standby",
		ModeWaypoint:    "Waypoint",
		ModeStationKeep: "Station Keep",
		ModeGoToERP:     "Go To ERP",
	}
	for mode, want := range wire {
		assert.Equal(t, want, mode.String())

		parsed, err := ParseControlMode(want)
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
}

func TestParseControlMode_Unknown(t *testing.T) {
	t.Parallel()
	_, err := ParseControlMode("Thruster Test")
	assert.Error(t, err)
}

func TestControlMode_UnknownString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ControlMode(42)", ControlMode(42).String())
}

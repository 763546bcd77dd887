package mission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openasv/surveyor/internal/geo"
)

func writeCSV(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadPlanCSV(t *testing.T) {
	t.Parallel()

	waypoints := writeCSV(t, "waypoints.csv",
		"latitude,longitude\n25.7617,-80.1918\n25.7689,-80.1300\n")
	erp := writeCSV(t, "erp.csv",
		"latitude,longitude\n25.7600,-80.1900\n")

	plan, err := LoadPlanCSV(waypoints, erp)
	require.NoError(t, err)

	want := Plan{
		Waypoints: []geo.Coordinate{
			{Lat: 25.7617, Lon: -80.1918},
			{Lat: 25.7689, Lon: -80.1300},
		},
		ERPs: []geo.Coordinate{{Lat: 25.7600, Lon: -80.1900}},
	}
	assert.Empty(t, cmp.Diff(want, plan))
}

func TestLoadPlanCSV_Failures(t *testing.T) {
	t.Parallel()

	valid := writeCSV(t, "valid.csv", "lat,lon\n25.0,-80.0\n")

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPlanCSV(filepath.Join(t.TempDir(), "nope.csv"), valid)
		assert.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		empty := writeCSV(t, "empty.csv", "lat,lon\n")
		_, err := LoadPlanCSV(empty, valid)
		assert.Error(t, err)
	})

	t.Run("non-numeric latitude", func(t *testing.T) {
		bad := writeCSV(t, "bad.csv", "lat,lon\nnorth,-80.0\n")
		_, err := LoadPlanCSV(bad, valid)
		assert.Error(t, err)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		bad := writeCSV(t, "range.csv", "lat,lon\n95.0,-80.0\n")
		_, err := LoadPlanCSV(bad, valid)
		assert.Error(t, err)
	})

	t.Run("missing longitude column", func(t *testing.T) {
		bad := writeCSV(t, "short.csv", "lat\n25.0\n")
		_, err := LoadPlanCSV(bad, valid)
		assert.Error(t, err)
	})
}

func TestPlanValidate(t *testing.T) {
	t.Parallel()

	wp := []geo.Coordinate{{Lat: 25.0, Lon: -80.0}}

	assert.NoError(t, Plan{Waypoints: wp, ERPs: wp}.Validate())
	assert.Error(t, Plan{ERPs: wp}.Validate())
	assert.Error(t, Plan{Waypoints: wp}.Validate())
}

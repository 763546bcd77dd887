package mission

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/openasv/surveyor/internal/geo"
)

// Plan is a mission's route: the ordered waypoints to visit and the ERP
// candidates dispatched with every waypoint. Read-only during execution.
type Plan struct {
	Waypoints []geo.Coordinate
	ERPs      []geo.Coordinate
}

// Validate checks that the plan can be dispatched: at least one waypoint and
// at least one emergency recovery point.
func (p Plan) Validate() error {
	if len(p.Waypoints) == 0 {
		return fmt.Errorf("plan has no waypoints")
	}
	if len(p.ERPs) == 0 {
		return fmt.Errorf("plan has no emergency recovery points")
	}
	return nil
}

// LoadPlanCSV reads a plan from two CSV files of (latitude, longitude) rows,
// each with a header row.
func LoadPlanCSV(waypointsPath, erpPath string) (Plan, error) {
	waypoints, err := loadCoordinatesCSV(waypointsPath)
	if err != nil {
		return Plan{}, fmt.Errorf("waypoints: %w", err)
	}
	erps, err := loadCoordinatesCSV(erpPath)
	if err != nil {
		return Plan{}, fmt.Errorf("erp: %w", err)
	}

	plan := Plan{Waypoints: waypoints, ERPs: erps}
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func loadCoordinatesCSV(path string) ([]geo.Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: want a header row and at least one coordinate", path)
	}

	coords := make([]geo.Coordinate, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("%s row %d: want lat,lon", path, i+2)
		}
		lat, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad latitude: %w", path, i+2, err)
		}
		lon, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad longitude: %w", path, i+2, err)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("%s row %d: coordinate (%g, %g) out of range", path, i+2, lat, lon)
		}
		coords = append(coords, geo.Coordinate{Lat: lat, Lon: lon})
	}
	return coords, nil
}

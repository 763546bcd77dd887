// Package geo provides the great-circle primitives used by mission planning:
// distances between latitude/longitude coordinates, destination projection
// along a bearing, and square patrol-pattern construction.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle math.
const EarthRadiusMeters = 6371000.0

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance returns the great-circle (haversine) distance between a and b in
// meters.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLon := (b.Lon - a.Lon) * math.Pi / 180.0

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Destination returns the coordinate reached by travelling the given distance
// in meters from origin along the given initial bearing (degrees clockwise
// from true north).
func Destination(origin Coordinate, bearingDeg, meters float64) Coordinate {
	lat1 := origin.Lat * math.Pi / 180.0
	lon1 := origin.Lon * math.Pi / 180.0
	bearing := bearingDeg * math.Pi / 180.0
	angular := meters / EarthRadiusMeters

	sinLat1 := math.Sin(lat1)
	cosLat1 := math.Cos(lat1)
	sinAngular := math.Sin(angular)
	cosAngular := math.Cos(angular)

	lat2 := math.Asin(sinLat1*cosAngular + cosLat1*sinAngular*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*sinAngular*cosLat1,
		cosAngular-sinLat1*math.Sin(lat2),
	)

	// Wrap longitude into [-180, 180).
	lonDeg := math.Mod(lon2*180.0/math.Pi+540.0, 360.0) - 180.0

	return Coordinate{Lat: lat2 * 180.0 / math.Pi, Lon: lonDeg}
}

// SquareCorners returns the four corners of a square with the given side
// length (meters) centered on center, visited clockwise starting from the
// north-east corner. Each corner lies on a diagonal at distance side/sqrt(2)
// from the center.
func SquareCorners(center Coordinate, sideMeters float64) [4]Coordinate {
	radius := sideMeters / math.Sqrt2
	return [4]Coordinate{
		Destination(center, 45, radius),
		Destination(center, 135, radius),
		Destination(center, 225, radius),
		Destination(center, 315, radius),
	}
}

package geo

import (
	"github.com/golang/geo/s2"
)

func toS2Point(c Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

func fromS2Point(p s2.Point) Coordinate {
	ll := s2.LatLngFromPoint(p)
	return NewCoordinate(ll.Lat.Degrees(), ll.Lng.Degrees())
}

// Interpolate. point at fraction t of the great circle segment (a,b)
func Interpolate(a, b Coordinate, t float64) Coordinate {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return fromS2Point(s2.Interpolate(t, toS2Point(a), toS2Point(b)))
}

// CoordinateAtDistance. walk along coords and return the point after meters. returns the last coordinate if the
// polyline is shorter.
func CoordinateAtDistance(coords []Coordinate, meters float64) Coordinate {
	if len(coords) == 0 {
		return Coordinate{}
	}
	walked := 0.0
	for i := 1; i < len(coords); i++ {
		segment := HaversineDistance(coords[i-1], coords[i])
		if segment > 0 && walked+segment >= meters {
			return Interpolate(coords[i-1], coords[i], (meters-walked)/segment)
		}
		walked += segment
	}
	return coords[len(coords)-1]
}

/*
SampleCoordinates. resample a polyline every step meters, up to maxLength meters. the first coordinate is always kept.
a polyline of 35 m sampled at 5 m gives 8 coordinates.
*/
func SampleCoordinates(coords []Coordinate, maxLength, step float64) []Coordinate {
	if len(coords) == 0 {
		return []Coordinate{}
	}
	sampled := []Coordinate{coords[0]}

	walked := 0.0
	nextSample := step
	for i := 1; i < len(coords) && nextSample <= maxLength; i++ {
		segment := HaversineDistance(coords[i-1], coords[i])
		for segment > 0 && nextSample <= walked+segment && nextSample <= maxLength {
			sampled = append(sampled, Interpolate(coords[i-1], coords[i], (nextSample-walked)/segment))
			nextSample += step
		}
		walked += segment
	}
	return sampled
}

package geo

import (
	"math"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
)

const (
	// turn angles: 0 is going back the way you came, 90 is a right turn, 180 is straight on.
	StraightAngle = 180.0
	FullCircle    = 360.0
)

/*
BearingTo. menghitung sudut initial bearing untuk edge (p1,p2).
https://www.movable-type.co.uk/scripts/latlong.html
*/
func BearingTo(p1Lat, p1Lon, p2Lat, p2Lon float64) float64 {

	dLon := util.DegreeToRadians(p2Lon - p1Lon)

	lat1 := util.DegreeToRadians(p1Lat)
	lat2 := util.DegreeToRadians(p2Lat)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Mod(util.RadiansToDegree(math.Atan2(y, x))+360, 360.0)

	return brng
}

// Bearing. compass direction from a to b in [0,360)
func Bearing(a, b Coordinate) float64 {
	return BearingTo(a.Lat, a.Lon, b.Lat, b.Lon)
}

// latToY. web mercator y (in degree units) of a latitude.
func latToY(lat float64) float64 {
	return util.RadiansToDegree(math.Log(math.Tan(math.Pi/4 + util.DegreeToRadians(lat)/2)))
}

/*
ComputeAngle. turn angle at second, arriving from first and leaving to third.

	    third
	      |
	      |
	first-second

the example above is a left turn (270). going straight gives 180, turning right gives 90, and
turning back onto first gives 0. angles are measured clockwise in a web mercator projection.
*/
func ComputeAngle(first, second, third Coordinate) float64 {
	v1x := first.Lon - second.Lon
	v1y := latToY(first.Lat) - latToY(second.Lat)
	v2x := third.Lon - second.Lon
	v2y := latToY(third.Lat) - latToY(second.Lat)

	angle := util.RadiansToDegree(math.Atan2(v2y, v2x) - math.Atan2(v1y, v1x))
	for angle < 0 {
		angle += FullCircle
	}
	for angle >= FullCircle {
		angle -= FullCircle
	}
	return angle
}

// AngularDeviation. smallest difference between two angles, in [0,180]
func AngularDeviation(angle, fromAngle float64) float64 {
	deviation := math.Abs(angle - fromAngle)
	return math.Min(FullCircle-deviation, deviation)
}

/*
AngleBetween. circular mean of two angles. misal 350° dan 10° menghasilkan 0°, bukan 180°.
*/
func AngleBetween(lhs, rhs float64) float64 {
	difference := math.Abs(lhs - rhs)
	sum := lhs + rhs
	if difference <= 180 {
		return sum / 2
	}

	result := (sum + FullCircle) / 2
	if result >= FullCircle {
		result -= FullCircle
	}
	return result
}

// RestrictAngleToValidRange. wrap an angle into [0,360)
func RestrictAngleToValidRange(angle float64) float64 {
	angle = math.Mod(angle, FullCircle)
	if angle < 0 {
		angle += FullCircle
	}
	return angle
}

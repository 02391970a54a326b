package geo

import (
	"math"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
)

type planarPoint struct {
	x, y float64
}

// toPlanar. local equirectangular projection around origin, in meter
func toPlanar(origin Coordinate, coords []Coordinate) []planarPoint {
	cosLat := math.Cos(util.DegreeToRadians(origin.Lat))
	points := make([]planarPoint, len(coords))
	for i, c := range coords {
		points[i] = planarPoint{
			x: util.DegreeToRadians(c.Lon-origin.Lon) * cosLat * earthRadiusM,
			y: util.DegreeToRadians(c.Lat-origin.Lat) * earthRadiusM,
		}
	}
	return points
}

/*
regressionHeading. fit x(i) and y(i) by least squares over the sample index i. the slope vector (dx/di, dy/di) is the
direction the polyline is heading, oriented from the first to the last sample. returned as compass bearing.
*/
func regressionHeading(points []planarPoint) float64 {
	n := float64(len(points))
	meanI := (n - 1) / 2
	meanX, meanY := 0.0, 0.0
	for _, p := range points {
		meanX += p.x
		meanY += p.y
	}
	meanX /= n
	meanY /= n

	var covX, covY, varI float64
	for i, p := range points {
		di := float64(i) - meanI
		covX += di * (p.x - meanX)
		covY += di * (p.y - meanY)
		varI += di * di
	}
	if varI == 0 {
		return 0
	}
	return RestrictAngleToValidRange(util.RadiansToDegree(math.Atan2(covX/varI, covY/varI)))
}

// AreParallel. two sampled polylines are parallel when their regression headings deviate by at most maxDeviation degree.
func AreParallel(lhs, rhs []Coordinate, maxDeviation float64) bool {
	if len(lhs) < 2 || len(rhs) < 2 {
		return false
	}
	origin := lhs[0]
	lhsHeading := regressionHeading(toPlanar(origin, lhs))
	rhsHeading := regressionHeading(toPlanar(origin, rhs))
	return AngularDeviation(lhsHeading, rhsHeading) <= maxDeviation
}

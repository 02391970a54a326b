package guidance

import (
	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
)

// CoordinateExtractor. picks representative coordinates along the geometry of an edge.
type CoordinateExtractor struct {
	graph RoadGraph
}

func NewCoordinateExtractor(graph RoadGraph) *CoordinateExtractor {
	return &CoordinateExtractor{graph: graph}
}

/*
GetCoordinatesAlongRoad. full shape of edge, from fromNode to toNode (the target of edge).
with invert the shape is returned starting at toNode, i.e. walking the edge backwards.
*/
func (ce *CoordinateExtractor) GetCoordinatesAlongRoad(fromNode, edge datastructure.Index, invert bool,
	toNode datastructure.Index) []geo.Coordinate {
	geometry := ce.graph.GetEdgeGeometry(edge)
	coords := make([]geo.Coordinate, 0, len(geometry)+2)
	coords = append(coords, ce.graph.GetCoordinate(fromNode))
	coords = append(coords, geometry...)
	coords = append(coords, ce.graph.GetCoordinate(toNode))
	if invert {
		coords = util.ReverseG(coords)
	}
	return coords
}

func (ce *CoordinateExtractor) GetForwardCoordinatesAlongRoad(fromNode, edge datastructure.Index) []geo.Coordinate {
	return ce.GetCoordinatesAlongRoad(fromNode, edge, false, ce.graph.GetTarget(edge))
}

/*
GetCoordinateAlongRoad. the coordinate used to compute turn angles. it lies LOOKAHEAD_DISTANCE plus half the road width
away from the intersection, so that small mapping errors right at the node don't distort the angle.
short edges yield their far end.
*/
func (ce *CoordinateExtractor) GetCoordinateAlongRoad(fromNode, edge datastructure.Index, invert bool,
	toNode datastructure.Index, intersectionLanes uint8) geo.Coordinate {
	coords := ce.GetCoordinatesAlongRoad(fromNode, edge, invert, toNode)
	lookahead := LOOKAHEAD_DISTANCE + 0.5*float64(intersectionLanes)*ASSUMED_LANE_WIDTH
	return geo.CoordinateAtDistance(coords, lookahead)
}

// SampleCoordinates. resample coords every step meter up to maxLength meter.
func (ce *CoordinateExtractor) SampleCoordinates(coords []geo.Coordinate, maxLength, step float64) []geo.Coordinate {
	return geo.SampleCoordinates(coords, maxLength, step)
}

// TrimCoordinatesToLength. prefix of coords with a length of at most length meter.
func TrimCoordinatesToLength(coords []geo.Coordinate, length float64) []geo.Coordinate {
	if len(coords) < 2 {
		return coords
	}
	trimmed := []geo.Coordinate{coords[0]}
	walked := 0.0
	for i := 1; i < len(coords); i++ {
		segment := geo.HaversineDistance(coords[i-1], coords[i])
		if walked+segment >= length {
			if segment > 0 {
				trimmed = append(trimmed, geo.Interpolate(coords[i-1], coords[i], (length-walked)/segment))
			}
			return trimmed
		}
		walked += segment
		trimmed = append(trimmed, coords[i])
	}
	return trimmed
}

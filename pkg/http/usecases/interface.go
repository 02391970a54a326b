package usecases

import (
	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/guidance"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/spatialindex"
)

type IntersectionGenerator interface {
	GetConnectedRoads(fromNode, viaEdge datastructure.Index) guidance.Intersection
	MergeSegregatedRoads(node datastructure.Index, intersection guidance.Intersection) guidance.Intersection
	AdjustForJoiningRoads(node datastructure.Index, intersection guidance.Intersection) guidance.Intersection
	GetActualNextIntersection(startNode, viaEdge datastructure.Index) guidance.NextIntersection
}

type SpatialIndex interface {
	SearchWithinRadius(qLat, qLon, radius float64, limit int) []spatialindex.NodeHit
	Nearest(qLat, qLon float64) (spatialindex.NodeHit, bool)
}

type RoadGraph interface {
	guidance.RoadGraph
	NumberOfNodes() int
}

type NameTable interface {
	GetName(id datastructure.NameID) string
}

package guidance

import (
	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
)

// RoadGraph. read only view of the node based graph.
type RoadGraph interface {
	GetTarget(e datastructure.Index) datastructure.Index
	GetEdgeData(e datastructure.Index) datastructure.EdgeData
	GetAdjacentEdgeRange(u datastructure.Index) (datastructure.Index, datastructure.Index)
	GetOutDegree(u datastructure.Index) int
	FindEdge(u, v datastructure.Index) (datastructure.Index, bool)
	GetCoordinate(u datastructure.Index) geo.Coordinate
	GetEdgeGeometry(e datastructure.Index) []geo.Coordinate
	IsBarrier(u datastructure.Index) bool
	// highest lane count of the roads leaving u
	GetLaneCountAtIntersection(u datastructure.Index) uint8
}

type RestrictionLookup interface {
	CheckForEmanatingIsOnlyTurn(from, via datastructure.Index) (datastructure.Index, bool)
	CheckIfTurnIsRestricted(from, via, to datastructure.Index) bool
}

type NameLookup interface {
	RequiresNameAnnounced(lhs, rhs datastructure.NameID) bool
}

// ConnectedRoadsBuilder. anything that can build the raw intersection at the target of viaEdge.
type ConnectedRoadsBuilder interface {
	GetConnectedRoads(fromNode, viaEdge datastructure.Index) Intersection
}

// DiagnosticSink. receives the intersection before a merge. implementations must be safe for concurrent use.
type DiagnosticSink interface {
	Write(node datastructure.Index, intersection Intersection)
}

// MergeStrategy. one acceptance criterion deciding whether lhs and rhs at node are the same physical road.
type MergeStrategy interface {
	Name() string
	Evaluate(node datastructure.Index, lhs, rhs ConnectedRoad) bool
}

// IntersectionMergeStrategy. acceptance criterion that needs the whole intersection, tried after canMergeRoad.
type IntersectionMergeStrategy interface {
	Name() string
	EvaluateIntersection(node datastructure.Index, intersection Intersection, i, j int) bool
}

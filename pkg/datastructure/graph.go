package datastructure

import (
	"math"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
)

type Index uint32

const (
	SPECIAL_NODEID Index = math.MaxUint32
	SPECIAL_EDGEID Index = math.MaxUint32
)

type edge struct {
	target Index
	data   EdgeData
	// shape points between tail and head are globalPoints[geometryStart:geometryEnd].
	// geometryStart > geometryEnd means the points are read backwards (edge in reverse direction).
	geometryStart Index
	geometryEnd   Index
}

/*
NodeBasedGraph. read only directed road graph in compressed sparse row layout. out edges of node u are
edges[firstOut[u]:firstOut[u+1]], the edge id is the position in edges.
*/
type NodeBasedGraph struct {
	coordinates  []geo.Coordinate
	firstOut     []Index
	edges        []edge
	globalPoints []geo.Coordinate

	/*
		32 bit -> 32 boolean flag for barrier & traffic signal

		idx in flag array = floor(nodeID/32)
		idx in flag = nodeID % 32
	*/
	barrierFlag       []uint32
	trafficSignalFlag []uint32
}

func (g *NodeBasedGraph) NumberOfNodes() int {
	return len(g.coordinates)
}

func (g *NodeBasedGraph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *NodeBasedGraph) GetTarget(e Index) Index {
	return g.edges[e].target
}

func (g *NodeBasedGraph) GetEdgeData(e Index) EdgeData {
	return g.edges[e].data
}

// GetAdjacentEdgeRange. out edges of u are the ids in [begin, end)
func (g *NodeBasedGraph) GetAdjacentEdgeRange(u Index) (Index, Index) {
	return g.firstOut[u], g.firstOut[u+1]
}

func (g *NodeBasedGraph) GetOutDegree(u Index) int {
	return int(g.firstOut[u+1] - g.firstOut[u])
}

// FindEdge. first edge u->v
func (g *NodeBasedGraph) FindEdge(u, v Index) (Index, bool) {
	begin, end := g.GetAdjacentEdgeRange(u)
	for e := begin; e < end; e++ {
		if g.edges[e].target == v {
			return e, true
		}
	}
	return SPECIAL_EDGEID, false
}

func (g *NodeBasedGraph) GetCoordinate(u Index) geo.Coordinate {
	return g.coordinates[u]
}

// GetEdgeGeometry. shape points strictly between the tail and the head of e, in travel direction.
func (g *NodeBasedGraph) GetEdgeGeometry(e Index) []geo.Coordinate {
	start := int(g.edges[e].geometryStart)
	end := int(g.edges[e].geometryEnd)
	if start <= end {
		return g.globalPoints[start:end]
	}

	points := make([]geo.Coordinate, 0, start-end)
	for i := start - 1; i >= end; i-- {
		points = append(points, g.globalPoints[i])
	}
	return points
}

func (g *NodeBasedGraph) IsBarrier(u Index) bool {
	return getFlag(g.barrierFlag, u)
}

func (g *NodeBasedGraph) IsTrafficSignal(u Index) bool {
	return getFlag(g.trafficSignalFlag, u)
}

// GetLaneCountAtIntersection. highest lane count of all roads leaving u
func (g *NodeBasedGraph) GetLaneCountAtIntersection(u Index) uint8 {
	lanes := uint8(0)
	begin, end := g.GetAdjacentEdgeRange(u)
	for e := begin; e < end; e++ {
		lanes = max(lanes, g.edges[e].data.RoadClassification.GetNumberOfLanes())
	}
	return lanes
}

func setFlag(flags []uint32, id Index) []uint32 {
	index := int(id / 32)
	if len(flags) <= index {
		flags = append(flags, make([]uint32, index-len(flags)+1)...)
	}
	flags[index] |= 1 << (id % 32)
	return flags
}

func getFlag(flags []uint32, id Index) bool {
	index := int(id / 32)
	if index >= len(flags) {
		return false
	}
	return (flags[index] & (1 << (id % 32))) != 0
}

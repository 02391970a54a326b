package datastructure

import (
	"sort"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
)

type pendingEdge struct {
	from, to      Index
	data          EdgeData
	geometryStart Index
	geometryEnd   Index
}

// NodeBasedGraphBuilder. collects nodes & edges, Build freezes them into a NodeBasedGraph.
type NodeBasedGraphBuilder struct {
	coordinates       []geo.Coordinate
	edges             []pendingEdge
	globalPoints      []geo.Coordinate
	barrierFlag       []uint32
	trafficSignalFlag []uint32
}

func NewNodeBasedGraphBuilder() *NodeBasedGraphBuilder {
	return &NodeBasedGraphBuilder{
		coordinates:  make([]geo.Coordinate, 0),
		edges:        make([]pendingEdge, 0),
		globalPoints: make([]geo.Coordinate, 0),
	}
}

func (b *NodeBasedGraphBuilder) AddNode(c geo.Coordinate) Index {
	b.coordinates = append(b.coordinates, c)
	return Index(len(b.coordinates) - 1)
}

func (b *NodeBasedGraphBuilder) NumberOfNodes() int {
	return len(b.coordinates)
}

func (b *NodeBasedGraphBuilder) SetBarrier(u Index) {
	b.barrierFlag = setFlag(b.barrierFlag, u)
}

func (b *NodeBasedGraphBuilder) SetTrafficSignal(u Index) {
	b.trafficSignalFlag = setFlag(b.trafficSignalFlag, u)
}

// AddEdge. directed edge from->to, geometry = shape points between from and to.
func (b *NodeBasedGraphBuilder) AddEdge(from, to Index, data EdgeData, geometry []geo.Coordinate) {
	start := Index(len(b.globalPoints))
	b.globalPoints = append(b.globalPoints, geometry...)
	end := Index(len(b.globalPoints))
	b.edges = append(b.edges, pendingEdge{from: from, to: to, data: data, geometryStart: start, geometryEnd: end})
}

/*
AddRoad. adds the edge pair of one road segment. for a oneway the backward edge is marked reversed. both edges share
the shape points, the backward edge reads them in reverse order.
*/
func (b *NodeBasedGraphBuilder) AddRoad(from, to Index, data EdgeData, geometry []geo.Coordinate, oneway bool) {
	if data.Distance == 0 {
		coords := make([]geo.Coordinate, 0, len(geometry)+2)
		coords = append(coords, b.coordinates[from])
		coords = append(coords, geometry...)
		coords = append(coords, b.coordinates[to])
		data.Distance = geo.PolylineLength(coords)
	}

	data.Reversed = false
	b.AddEdge(from, to, data, geometry)
	forward := b.edges[len(b.edges)-1]

	backward := data
	backward.Reversed = oneway
	b.edges = append(b.edges, pendingEdge{from: to, to: from, data: backward,
		geometryStart: forward.geometryEnd, geometryEnd: forward.geometryStart})
}

func (b *NodeBasedGraphBuilder) Build() *NodeBasedGraph {
	sort.SliceStable(b.edges, func(i, j int) bool {
		return b.edges[i].from < b.edges[j].from
	})

	n := len(b.coordinates)
	firstOut := make([]Index, n+1)
	edges := make([]edge, len(b.edges))
	for i, e := range b.edges {
		firstOut[e.from+1]++
		edges[i] = edge{target: e.to, data: e.data, geometryStart: e.geometryStart, geometryEnd: e.geometryEnd}
	}
	for u := 0; u < n; u++ {
		firstOut[u+1] += firstOut[u]
	}

	return &NodeBasedGraph{
		coordinates:       b.coordinates,
		firstOut:          firstOut,
		edges:             edges,
		globalPoints:      b.globalPoints,
		barrierFlag:       b.barrierFlag,
		trafficSignalFlag: b.trafficSignalFlag,
	}
}

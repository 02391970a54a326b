package guidance

import (
	"math"
	"testing"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/stretchr/testify/require"
)

// tugu yogyakarta
var testOrigin = geo.NewCoordinate(-7.782889, 110.367083)

// at. coordinate east/north meters away from testOrigin
func at(east, north float64) geo.Coordinate {
	lat := testOrigin.Lat + north/111195.0
	lon := testOrigin.Lon + east/(111195.0*math.Cos(testOrigin.Lat*math.Pi/180))
	return geo.NewCoordinate(lat, lon)
}

type testNetwork struct {
	builder      *datastructure.NodeBasedGraphBuilder
	names        *datastructure.NameTable
	restrictions *datastructure.RestrictionMap
	graph        *datastructure.NodeBasedGraph
}

type roadOption func(*datastructure.EdgeData)

func withLanes(lanes uint8) roadOption {
	return func(d *datastructure.EdgeData) {
		d.RoadClassification.Lanes = lanes
	}
}

func withClass(class datastructure.OsmHighwayType) roadOption {
	return func(d *datastructure.EdgeData) {
		d.RoadClassification.Class = class
	}
}

func asRoundabout() roadOption {
	return func(d *datastructure.EdgeData) {
		d.Roundabout = true
	}
}

func newTestNetwork() *testNetwork {
	return &testNetwork{
		builder:      datastructure.NewNodeBasedGraphBuilder(),
		names:        datastructure.NewNameTable(datastructure.NewDefaultSuffixTable()),
		restrictions: datastructure.NewRestrictionMap(),
	}
}

func (n *testNetwork) node(east, north float64) datastructure.Index {
	return n.builder.AddNode(at(east, north))
}

func (n *testNetwork) road(from, to datastructure.Index, name string, oneway bool, geometry []geo.Coordinate,
	opts ...roadOption) {
	data := datastructure.NewEdgeData(n.names.GetID(name),
		datastructure.NewRoadClassification(datastructure.RESIDENTIAL, false, 0), false,
		datastructure.TRAVEL_MODE_DRIVING, false, 0)
	for _, opt := range opts {
		opt(&data)
	}
	n.builder.AddRoad(from, to, data, geometry, oneway)
}

func (n *testNetwork) generator(t *testing.T, cfg Config, sink DiagnosticSink) *IntersectionGenerator {
	t.Helper()
	if n.graph == nil {
		n.graph = n.builder.Build()
	}
	gen, err := NewIntersectionGenerator(n.graph, n.restrictions, n.names, cfg, sink, nil)
	require.NoError(t, err)
	return gen
}

func (n *testNetwork) edge(t *testing.T, u, v datastructure.Index) datastructure.Index {
	t.Helper()
	e, ok := n.graph.FindEdge(u, v)
	require.True(t, ok, "edge %d->%d", u, v)
	return e
}

func armIndex(t *testing.T, intersection Intersection, edge datastructure.Index) int {
	t.Helper()
	for i, road := range intersection {
		if road.EdgeID == edge {
			return i
		}
	}
	require.Failf(t, "arm not found", "edge %d", edge)
	return -1
}

type recordingSink struct {
	nodes         []datastructure.Index
	intersections []Intersection
}

func (s *recordingSink) Write(node datastructure.Index, intersection Intersection) {
	s.nodes = append(s.nodes, node)
	s.intersections = append(s.intersections, intersection)
}

/*
crossroad. center with four arms of 100 m, every arm has its own name.

	      n
	      |
	w --- c --- e
	      |
	      s
*/
type crossroad struct {
	net           *testNetwork
	c, n, e, s, w datastructure.Index
}

func newCrossroad() crossroad {
	net := newTestNetwork()
	cr := crossroad{net: net}
	cr.c = net.node(0, 0)
	cr.n = net.node(0, 100)
	cr.e = net.node(100, 0)
	cr.s = net.node(0, -100)
	cr.w = net.node(-100, 0)
	net.road(cr.c, cr.n, "Jalan Utara", false, nil)
	net.road(cr.c, cr.e, "Jalan Mangkubumi", false, nil)
	net.road(cr.c, cr.s, "Jalan Margo Utomo", false, nil)
	net.road(cr.c, cr.w, "Jalan Diponegoro", false, nil)
	return cr
}

/*
dividedRoad. node with a divided road to the north and a plain road to the south.

	north1   north2
	  |       /
	  v      ^
	  |     /
	  node
	   |
	 south

north1->node and node->north2 are oneways with the same name. node->north2 leaves at 10 degree for 10 m and then runs
parallel to the other carriageway. length is the length of the parallel part.
*/
type dividedRoad struct {
	net                         *testNetwork
	node, north1, north2, south datastructure.Index
}

func newDividedRoad(length float64, opts ...roadOption) dividedRoad {
	net := newTestNetwork()
	d := dividedRoad{net: net}
	bendEast := 10 * math.Sin(10*math.Pi/180)
	bendNorth := 10 * math.Cos(10*math.Pi/180)

	d.node = net.node(0, 0)
	d.north1 = net.node(0, length)
	d.north2 = net.node(bendEast, bendNorth+length)
	d.south = net.node(0, -100)

	options := append([]roadOption{withClass(datastructure.PRIMARY), withLanes(2)}, opts...)
	net.road(d.north1, d.node, "Jalan Malioboro", true, nil, options...)
	net.road(d.node, d.north2, "Jalan Malioboro", true, []geo.Coordinate{at(bendEast, bendNorth)}, options...)
	net.road(d.node, d.south, "Jalan Margo Mulyo", false, nil, withClass(datastructure.PRIMARY), withLanes(2))
	return d
}

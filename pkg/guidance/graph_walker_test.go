package guidance

import (
	"testing"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRing(t *testing.T) (*testNetwork, *IntersectionGenerator, []datastructure.Index) {
	net := newTestNetwork()
	nodes := []datastructure.Index{net.node(0, 0), net.node(0, 50), net.node(50, 50), net.node(50, 0)}
	for i := range nodes {
		net.road(nodes[i], nodes[(i+1)%len(nodes)], "Jalan Lingkar Utara", false, nil)
	}
	return net, net.generator(t, DefaultConfig(), nil), nodes
}

func TestWalkIsBoundedOnALoop(t *testing.T) {
	net, gen, nodes := newRing(t)
	selector := NewSelectRoadByNameOnlyChoiceAndStraightness(net.graph, net.names.GetID("Jalan Lingkar Utara"), true)

	steps := 0
	for range gen.GetGraphWalker().Walk(nodes[0], net.edge(t, nodes[0], nodes[1]), selector) {
		steps++
	}
	assert.Equal(t, WALKER_HOP_LIMIT, steps)
}

func TestWalkStopsEarly(t *testing.T) {
	net, gen, nodes := newRing(t)
	selector := NewSelectRoadByNameOnlyChoiceAndStraightness(net.graph, net.names.GetID("Jalan Lingkar Utara"), true)

	visited := make([]datastructure.Index, 0)
	for step := range gen.GetGraphWalker().Walk(nodes[0], net.edge(t, nodes[0], nodes[1]), selector) {
		visited = append(visited, step.FromNode)
		if len(visited) == 3 {
			break
		}
	}
	assert.Equal(t, []datastructure.Index{nodes[0], nodes[1], nodes[2]}, visited)
}

func TestSelectRoadByNameOnlyChoiceAndStraightness(t *testing.T) {
	cr := newCrossroad()
	gen := cr.net.generator(t, DefaultConfig(), nil)
	intersection := gen.GetConnectedRoads(cr.s, cr.net.edge(t, cr.s, cr.c))

	testCases := []struct {
		name     string
		roadName string
		want     datastructure.Index
		wantOK   bool
	}{
		{name: "same name turning right", roadName: "Jalan Mangkubumi", want: cr.e, wantOK: true},
		{name: "same name straight", roadName: "Jalan Utara", want: cr.n, wantOK: true},
		{name: "name continues nowhere", roadName: "Jalan Margo Utomo", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			selector := NewSelectRoadByNameOnlyChoiceAndStraightness(cr.net.graph, cr.net.names.GetID(tc.roadName), false)
			edge, ok := selector.Select(cr.s, cr.net.edge(t, cr.s, cr.c), intersection)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, cr.net.graph.GetTarget(edge))
			}
		})
	}
}

func TestSelectRoadOnlyChoice(t *testing.T) {
	net := newTestNetwork()
	a := net.node(0, 0)
	b := net.node(0, 50)
	c := net.node(0, 100)
	net.road(a, b, "Jalan Kaliurang", false, nil)
	net.road(b, c, "Jalan Monjali", false, nil)
	gen := net.generator(t, DefaultConfig(), nil)

	intersection := gen.GetConnectedRoads(a, net.edge(t, a, b))
	selector := NewSelectRoadByNameOnlyChoiceAndStraightness(net.graph, net.names.GetID("Jalan Kaliurang"), false)
	edge, ok := selector.Select(a, net.edge(t, a, b), intersection)
	require.True(t, ok)
	assert.Equal(t, c, net.graph.GetTarget(edge))

	// entry required: the u-turn alone is not a continuation
	deadEnd := Intersection{intersection[0], NewConnectedRoad(intersection[1].EdgeID, 180, 0, false)}
	strict := NewSelectRoadByNameOnlyChoiceAndStraightness(net.graph, net.names.GetID("Jalan Kaliurang"), true)
	_, ok = strict.Select(a, net.edge(t, a, b), deadEnd)
	assert.False(t, ok)
}

func TestLengthLimitedCoordinateAccumulator(t *testing.T) {
	net := newTestNetwork()
	nodes := []datastructure.Index{net.node(0, 0), net.node(0, 60), net.node(0, 120), net.node(0, 180)}
	for i := 0; i+1 < len(nodes); i++ {
		net.road(nodes[i], nodes[i+1], "Jalan Magelang", false, nil)
	}
	gen := net.generator(t, DefaultConfig(), nil)
	selector := NewSelectRoadByNameOnlyChoiceAndStraightness(net.graph, net.names.GetID("Jalan Magelang"), false)

	testCases := []struct {
		name       string
		maxLength  float64
		wantLength float64
	}{
		{name: "stops inside the second edge", maxLength: 100, wantLength: 100},
		{name: "ends at the dead end", maxLength: 500, wantLength: 180},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			accumulator := NewLengthLimitedCoordinateAccumulator(gen.GetCoordinateExtractor(), tc.maxLength)
			gen.GetGraphWalker().TraverseRoad(nodes[0], net.edge(t, nodes[0], nodes[1]), accumulator, selector)
			assert.InDelta(t, tc.wantLength, geo.PolylineLength(accumulator.Coordinates), 0.5)
			assert.Equal(t, net.graph.GetCoordinate(nodes[0]), accumulator.Coordinates[0])
		})
	}
}

func TestIntersectionFinderAccumulator(t *testing.T) {
	net := newTestNetwork()
	a := net.node(0, 0)
	b := net.node(0, 50)
	c := net.node(0, 100)
	net.road(a, b, "Jalan Kaliurang", false, nil)
	net.road(b, c, "Jalan Kaliurang", false, nil)
	net.road(c, net.node(50, 100), "Jalan Ring Road", false, nil)
	net.road(c, net.node(0, 150), "Jalan Kaliurang", false, nil)
	gen := net.generator(t, DefaultConfig(), nil)
	selector := NewSelectRoadByNameOnlyChoiceAndStraightness(net.graph, net.names.GetID("Jalan Kaliurang"), false)

	testCases := []struct {
		name        string
		hopLimit    int
		wantVia     datastructure.Index
		wantArms    int
		wantVisited int
	}{
		{name: "finds the real intersection", hopLimit: 5, wantVia: net.edge(t, b, c), wantArms: 3, wantVisited: 2},
		{name: "runs out of hops", hopLimit: 1, wantVia: net.edge(t, a, b), wantArms: 2, wantVisited: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			accumulator := NewIntersectionFinderAccumulator(tc.hopLimit)
			gen.GetGraphWalker().TraverseRoad(a, net.edge(t, a, b), accumulator, selector)
			assert.Equal(t, tc.wantVia, accumulator.ViaEdge)
			assert.Len(t, accumulator.Intersection, tc.wantArms)
			assert.Len(t, accumulator.NodesVisited, tc.wantVisited)
		})
	}
}

package usecases

import (
	"context"
	"testing"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/guidance"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/metrics"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var origin = geo.NewCoordinate(-7.7800, 110.3700)

func at(east, north float64) geo.Coordinate {
	return geo.Destination(geo.Destination(origin, 90, east), 0, north)
}

/*
testTown:

	        n       e4
	        |       |
	w <---- c ----- e ----- e2 ----- e3
	        |
	        s

c-w is a oneway towards w. e only joins two parts of the same street.
*/
type testTown struct {
	nodes   map[string]datastructure.Index
	service *IntersectionService
	metrics *metrics.Metrics
}

func newTestTown(t *testing.T) *testTown {
	t.Helper()
	b := datastructure.NewNodeBasedGraphBuilder()
	names := datastructure.NewNameTable(datastructure.NewDefaultSuffixTable())

	positions := map[string]geo.Coordinate{
		"c": at(0, 0), "n": at(0, 100), "s": at(0, -100), "w": at(-100, 0),
		"e": at(100, 0), "e2": at(200, 0), "e3": at(300, 0), "e4": at(200, 100),
	}
	nodes := make(map[string]datastructure.Index, len(positions))
	for _, name := range []string{"c", "n", "s", "w", "e", "e2", "e3", "e4"} {
		nodes[name] = b.AddNode(positions[name])
	}

	road := func(from, to, name string, oneway bool) {
		class := datastructure.NewRoadClassification(datastructure.SECONDARY, false, 1)
		data := datastructure.NewEdgeData(names.GetID(name), class, false, datastructure.TRAVEL_MODE_DRIVING, false, 0)
		b.AddRoad(nodes[from], nodes[to], data, nil, oneway)
	}
	road("c", "n", "Jalan Kaliurang", false)
	road("c", "s", "Jalan Kaliurang", false)
	road("c", "w", "Jalan Colombo", true)
	road("c", "e", "Jalan Solo", false)
	road("e", "e2", "Jalan Solo", false)
	road("e2", "e3", "Jalan Solo", false)
	road("e2", "e4", "Jalan Magelang", false)

	graph := b.Build()
	generator, err := guidance.NewIntersectionGenerator(graph, datastructure.NewRestrictionMap(), names,
		guidance.DefaultConfig(), nil, nil)
	require.NoError(t, err)

	rt := spatialindex.NewRtree()
	rt.Build(graph, zap.NewNop())

	m := metrics.NewMetrics(prometheus.NewRegistry())
	return &testTown{
		nodes:   nodes,
		service: NewIntersectionService(zap.NewNop(), graph, names, generator, rt, m, 4),
		metrics: m,
	}
}

func TestAnalyzeNode(t *testing.T) {
	town := newTestTown(t)
	graph := town.service.GetGraph()

	result := town.service.AnalyzeNode(town.nodes["c"])
	assert.Equal(t, town.nodes["c"], result.Node)

	// nobody drives into c from w
	require.Len(t, result.Incoming, 3)
	for _, incoming := range result.Incoming {
		assert.NotEqual(t, town.nodes["w"], incoming.FromNode)
		assert.Equal(t, town.nodes["c"], incoming.Node)
		assert.Equal(t, town.nodes["c"], graph.GetTarget(incoming.ViaEdge))
		assert.Len(t, incoming.Connected, 4)
		assert.Len(t, incoming.Intersection, 4)
		assert.True(t, incoming.Intersection.IsSortedByAngle())
		assert.Equal(t, 0, incoming.Merged)
		assert.Equal(t, 0, incoming.Adjusted)
	}
}

func TestAnalyzeAll(t *testing.T) {
	town := newTestTown(t)

	visited := make(map[datastructure.Index]int)
	err := town.service.AnalyzeAll(context.Background(), func(ni NodeIntersections) {
		visited[ni.Node] = len(ni.Incoming)
	})
	require.NoError(t, err)

	want := map[string]int{"c": 3, "n": 1, "s": 1, "w": 1, "e": 2, "e2": 3, "e3": 1, "e4": 1}
	assert.Len(t, visited, len(want))
	total := 0
	for name, incoming := range want {
		assert.Equal(t, incoming, visited[town.nodes[name]], name)
		total += incoming
	}

	var built dto.Metric
	require.NoError(t, town.metrics.IntersectionsBuilt.Write(&built))
	assert.Equal(t, float64(total), built.GetCounter().GetValue())
}

func TestAnalyzeAllCancelled(t *testing.T) {
	town := newTestTown(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	visits := 0
	err := town.service.AnalyzeAll(ctx, func(NodeIntersections) {
		visits++
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, visits)
}

func TestNearestIntersections(t *testing.T) {
	town := newTestTown(t)
	q := at(5, 5)

	testCases := []struct {
		name      string
		radius    float64
		limit     int
		wantNodes []string
	}{
		{name: "nearest only", radius: 0, wantNodes: []string{"c"}},
		{name: "within radius", radius: 150, limit: 2, wantNodes: []string{"c"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := town.service.NearestIntersections(q.Lat, q.Lon, tc.radius, tc.limit)
			require.NoError(t, err)
			assert.Equal(t, town.nodes[tc.wantNodes[0]], results[0].Node)
			assert.InDelta(t, 7.07, results[0].Distance, 0.1)
			if tc.limit > 0 {
				assert.Len(t, results, tc.limit)
			} else {
				assert.Len(t, results, len(tc.wantNodes))
			}
		})
	}

	far := at(0, 50000)
	_, err := town.service.NearestIntersections(far.Lat, far.Lon, 100, 5)
	var uerr *util.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, util.ErrNotFound, uerr.Code())
}

func TestNextIntersection(t *testing.T) {
	town := newTestTown(t)
	graph := town.service.GetGraph()
	q := at(0, 0)

	// e is skipped, the next real choice is at e2
	next, err := town.service.NextIntersection(q.Lat, q.Lon, 90)
	require.NoError(t, err)
	assert.Equal(t, town.nodes["e"], next.FromNode)
	assert.Equal(t, town.nodes["e2"], graph.GetTarget(next.ViaEdge))
	assert.Len(t, next.Intersection, 3)

	next, err = town.service.NextIntersection(q.Lat, q.Lon, 0)
	require.NoError(t, err)
	assert.Equal(t, town.nodes["c"], next.FromNode)
	assert.Equal(t, town.nodes["n"], graph.GetTarget(next.ViaEdge))
	// dead end at n, only the way back
	assert.Len(t, next.Intersection, 1)
}

func TestServiceWithoutSpatialIndex(t *testing.T) {
	town := newTestTown(t)
	service := NewIntersectionService(zap.NewNop(), town.service.graph, town.service.names, town.service.generator,
		nil, nil, 2)

	visits := 0
	require.NoError(t, service.AnalyzeAll(context.Background(), func(NodeIntersections) {
		visits++
	}))
	assert.Equal(t, len(town.nodes), visits)

	q := at(0, 0)
	_, err := service.NearestIntersections(q.Lat, q.Lon, 100, 5)
	var uerr *util.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, util.ErrInternalServerError, uerr.Code())

	_, err = service.NextIntersection(q.Lat, q.Lon, 90)
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, util.ErrInternalServerError, uerr.Code())
}

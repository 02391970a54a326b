package spatialindex

import (
	"testing"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var center = geo.NewCoordinate(-7.7800, 110.3700)

/*
buildTestGraph:

	north(200 m) -- center -- east(100 m)         far(3 km), isolated(30 m, no edges)
*/
func buildTestGraph() (*datastructure.NodeBasedGraph, map[string]datastructure.Index) {
	b := datastructure.NewNodeBasedGraphBuilder()
	nodes := map[string]datastructure.Index{
		"center":   b.AddNode(center),
		"north":    b.AddNode(geo.Destination(center, 0, 200)),
		"east":     b.AddNode(geo.Destination(center, 90, 100)),
		"far":      b.AddNode(geo.Destination(center, 180, 3000)),
		"farNext":  b.AddNode(geo.Destination(center, 180, 3100)),
		"isolated": b.AddNode(geo.Destination(center, 270, 30)),
	}
	class := datastructure.NewRoadClassification(datastructure.RESIDENTIAL, false, 1)
	data := datastructure.NewEdgeData(datastructure.EMPTY_NAMEID, class, false, datastructure.TRAVEL_MODE_DRIVING, false, 0)
	b.AddRoad(nodes["center"], nodes["north"], data, nil, false)
	b.AddRoad(nodes["center"], nodes["east"], data, nil, false)
	b.AddRoad(nodes["far"], nodes["farNext"], data, nil, false)
	return b.Build(), nodes
}

func TestSearchWithinRadius(t *testing.T) {
	graph, nodes := buildTestGraph()
	rt := NewRtree()
	rt.Build(graph, zap.NewNop())
	assert.Equal(t, 5, rt.Len())

	testCases := []struct {
		name   string
		radius float64
		limit  int
		want   []datastructure.Index
	}{
		{name: "only center", radius: 50, want: []datastructure.Index{nodes["center"]}},
		{name: "nearest first", radius: 250, want: []datastructure.Index{nodes["center"], nodes["east"], nodes["north"]}},
		{name: "limited", radius: 250, limit: 2, want: []datastructure.Index{nodes["center"], nodes["east"]}},
		{name: "corner of the box is outside the circle", radius: 150, want: []datastructure.Index{nodes["center"], nodes["east"]}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hits := rt.SearchWithinRadius(center.Lat, center.Lon, tc.radius, tc.limit)
			got := make([]datastructure.Index, 0, len(hits))
			for _, h := range hits {
				got = append(got, h.Node)
				assert.LessOrEqual(t, h.Distance, tc.radius)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNearest(t *testing.T) {
	graph, nodes := buildTestGraph()
	rt := NewRtree()
	rt.Build(graph, zap.NewNop())

	// the isolated node is closer but has no edges
	q := geo.Destination(center, 270, 35)
	hit, ok := rt.Nearest(q.Lat, q.Lon)
	require.True(t, ok)
	assert.Equal(t, nodes["center"], hit.Node)
	assert.InDelta(t, 35.0, hit.Distance, 0.5)

	q = geo.Destination(center, 180, 2900)
	hit, ok = rt.Nearest(q.Lat, q.Lon)
	require.True(t, ok)
	assert.Equal(t, nodes["far"], hit.Node)

	_, ok = rt.Nearest(center.Lat+1, center.Lon)
	assert.False(t, ok)
}

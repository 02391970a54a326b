package guidance

import (
	"math"
	"testing"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMergeStrategies(t *testing.T) {
	testCases := []struct {
		name      string
		names     []string
		wantNames []string
		wantErr   bool
	}{
		{name: "default", names: DefaultConfig().MergeStrategies, wantNames: []string{SAME_DIRECTION_STRATEGY}},
		{
			name:      "all, in order",
			names:     []string{CONNECT_AGAIN_STRATEGY, NARROW_TRIANGLE_STRATEGY, SAME_DIRECTION_STRATEGY},
			wantNames: []string{CONNECT_AGAIN_STRATEGY, NARROW_TRIANGLE_STRATEGY, SAME_DIRECTION_STRATEGY},
		},
		{name: "none", names: []string{}, wantNames: []string{}},
		{name: "unknown", names: []string{"lane_split"}, wantErr: true},
		{name: "whole intersection criterion in the pair list", names: []string{Y_ARM_STRATEGY}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			strategies, err := NewMergeStrategies(nil, tc.names)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			got := make([]string, 0, len(strategies))
			for _, s := range strategies {
				got = append(got, s.Name())
			}
			assert.Equal(t, tc.wantNames, got)
		})
	}
}

func TestSameDirectionStrategy(t *testing.T) {
	testCases := []struct {
		name   string
		length float64
		want   bool
	}{
		{name: "long parallel carriageways", length: 120, want: true},
		{name: "just long enough", length: 45, want: true},
		{name: "too short to judge", length: 20, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDividedRoad(tc.length)
			gen := d.net.generator(t, DefaultConfig(), nil)
			raw := gen.GetConnectedRoads(d.north1, d.net.edge(t, d.north1, d.node))
			require.Len(t, raw, 3)

			strategy := &sameDirectionStrategy{ig: gen}
			assert.Equal(t, tc.want, strategy.Evaluate(d.node, raw[0], raw[2]))
		})
	}
}

func TestSameDirectionStrategyOpposite(t *testing.T) {
	d := newDividedRoad(120)
	gen := d.net.generator(t, DefaultConfig(), nil)
	raw := gen.GetConnectedRoads(d.north1, d.net.edge(t, d.north1, d.node))

	strategy := &sameDirectionStrategy{ig: gen}
	assert.False(t, strategy.Evaluate(d.node, raw[0], raw[1]))
}

func TestMergeWithoutStrategies(t *testing.T) {
	d := newDividedRoad(120)
	cfg := DefaultConfig()
	cfg.MergeStrategies = nil
	gen := d.net.generator(t, cfg, nil)

	raw := gen.GetConnectedRoads(d.north1, d.net.edge(t, d.north1, d.node))
	assert.False(t, gen.canMergeRoad(d.node, raw[0], raw[2]))
	assert.Len(t, gen.MergeSegregatedRoads(d.node, raw), 3)
}

/*
narrowTriangle. two roads leave node and reach l and r, which are connected by a short road.

	ln        rn
	  \      /
	   l -- r
	   \   /
	   node
	    |
	    p
*/
func newNarrowTriangle(width float64) (*testNetwork, map[string]datastructure.Index) {
	net := newTestNetwork()
	nodes := map[string]datastructure.Index{
		"node": net.node(0, 0),
		"p":    net.node(0, -100),
		"l":    net.node(-6, 30),
		"r":    net.node(-6+width, 30),
		"ln":   net.node(-60, 130),
		"rn":   net.node(-6+width+54, 130),
	}
	lanes := withLanes(2)
	net.road(nodes["p"], nodes["node"], "Jalan Kaliurang", false, nil, lanes)
	net.road(nodes["node"], nodes["l"], "Jalan Palagan", true, nil, lanes)
	net.road(nodes["r"], nodes["node"], "Jalan Palagan", true, nil, lanes)
	net.road(nodes["l"], nodes["ln"], "Jalan Palagan", false, nil, lanes)
	net.road(nodes["r"], nodes["rn"], "Jalan Palagan", false, nil, lanes)
	net.road(nodes["l"], nodes["r"], "Jalan Penghubung", false, nil, lanes)
	return net, nodes
}

func TestNarrowTriangleStrategy(t *testing.T) {
	testCases := []struct {
		name  string
		width float64
		want  bool
	}{
		{name: "narrow", width: 12, want: true},
		{name: "too wide", width: 26, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			net, nodes := newNarrowTriangle(tc.width)
			gen := net.generator(t, DefaultConfig(), nil)
			raw := gen.GetConnectedRoads(nodes["p"], net.edge(t, nodes["p"], nodes["node"]))
			require.Len(t, raw, 3)

			lhs := raw[armIndex(t, raw, net.edge(t, nodes["node"], nodes["l"]))]
			rhs := raw[armIndex(t, raw, net.edge(t, nodes["node"], nodes["r"]))]
			strategy := &narrowTriangleStrategy{ig: gen}
			assert.Equal(t, tc.want, strategy.Evaluate(nodes["node"], lhs, rhs))
		})
	}
}

func TestNarrowTriangleStrategyIsOffByDefault(t *testing.T) {
	net, nodes := newNarrowTriangle(12)
	gen := net.generator(t, DefaultConfig(), nil)
	raw := gen.GetConnectedRoads(nodes["p"], net.edge(t, nodes["p"], nodes["node"]))
	lhs := raw[armIndex(t, raw, net.edge(t, nodes["node"], nodes["l"]))]
	rhs := raw[armIndex(t, raw, net.edge(t, nodes["node"], nodes["r"]))]

	// the roads behind l and r diverge, same direction rejects them
	assert.False(t, gen.canMergeRoad(nodes["node"], lhs, rhs))

	cfg := DefaultConfig()
	cfg.MergeStrategies = []string{SAME_DIRECTION_STRATEGY, NARROW_TRIANGLE_STRATEGY}
	enabled := net.generator(t, cfg, nil)
	assert.True(t, enabled.canMergeRoad(nodes["node"], lhs, rhs))
}

/*
connectAgain. two roads with the same name leave node and meet again at m.

	      z
	      |
	l --- m --- r
	 \         /
	  \       /
	     node
	      |
	      p
*/
func newConnectAgain(meet bool) (*testNetwork, map[string]datastructure.Index) {
	net := newTestNetwork()
	nodes := map[string]datastructure.Index{
		"node": net.node(0, 0),
		"p":    net.node(0, -100),
		"l":    net.node(-30, 50),
		"r":    net.node(30, 50),
		"m":    net.node(0, 100),
		"z":    net.node(0, 200),
		"dead": net.node(60, 120),
	}
	net.road(nodes["p"], nodes["node"], "Jalan Colombo", false, nil)
	net.road(nodes["node"], nodes["l"], "Jalan Lingkar", false, nil)
	net.road(nodes["node"], nodes["r"], "Jalan Lingkar", false, nil)
	net.road(nodes["l"], nodes["m"], "Jalan Lingkar", false, nil)
	net.road(nodes["m"], nodes["z"], "Jalan Lingkar", false, nil)
	if meet {
		net.road(nodes["r"], nodes["m"], "Jalan Lingkar", false, nil)
	} else {
		net.road(nodes["r"], nodes["dead"], "Jalan Lingkar", false, nil)
	}
	return net, nodes
}

func TestConnectAgainStrategy(t *testing.T) {
	testCases := []struct {
		name string
		meet bool
		want bool
	}{
		{name: "roads meet again", meet: true, want: true},
		{name: "one road ends", meet: false, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			net, nodes := newConnectAgain(tc.meet)
			gen := net.generator(t, DefaultConfig(), nil)
			raw := gen.GetConnectedRoads(nodes["p"], net.edge(t, nodes["p"], nodes["node"]))
			require.Len(t, raw, 3)

			lhs := raw[armIndex(t, raw, net.edge(t, nodes["node"], nodes["l"]))]
			rhs := raw[armIndex(t, raw, net.edge(t, nodes["node"], nodes["r"]))]
			strategy := &connectAgainStrategy{ig: gen}
			assert.Equal(t, tc.want, strategy.Evaluate(nodes["node"], lhs, rhs))
			assert.Equal(t, tc.want, strategy.Evaluate(nodes["node"], rhs, lhs))
		})
	}
}

func TestNewIntersectionMergeStrategies(t *testing.T) {
	strategies, err := NewIntersectionMergeStrategies(nil, DefaultConfig().IntersectionStrategies)
	require.NoError(t, err)
	assert.Empty(t, strategies)

	strategies, err = NewIntersectionMergeStrategies(nil, []string{Y_ARM_STRATEGY})
	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, Y_ARM_STRATEGY, strategies[0].Name())

	_, err = NewIntersectionMergeStrategies(nil, []string{SAME_DIRECTION_STRATEGY})
	assert.Error(t, err)
}

/*
newYFork. p drives north into node, the road forks into l and r. node->r and l->node are oneways.

	l       r
	 \     /
	  \   /
	   node
	    |
	    p
*/
func newYFork(leftAngle, rightAngle float64, incomingName string) (*testNetwork, map[string]datastructure.Index) {
	net := newTestNetwork()
	toRad := math.Pi / 180
	nodes := map[string]datastructure.Index{
		"node": net.node(0, 0),
		"p":    net.node(0, -100),
		"l":    net.node(-100*math.Sin(leftAngle*toRad), 100*math.Cos(leftAngle*toRad)),
		"r":    net.node(100*math.Sin(rightAngle*toRad), 100*math.Cos(rightAngle*toRad)),
	}
	net.road(nodes["p"], nodes["node"], incomingName, false, nil)
	net.road(nodes["node"], nodes["r"], "Jalan Palagan", true, nil)
	net.road(nodes["l"], nodes["node"], "Jalan Palagan", true, nil)
	return net, nodes
}

func TestYArmStrategy(t *testing.T) {
	testCases := []struct {
		name         string
		left, right  float64
		incoming     string
		strategies   []string
		wantCanMerge bool
	}{
		{name: "narrow fork", left: 20, right: 20, incoming: "Jalan Kaliurang", strategies: []string{Y_ARM_STRATEGY}, wantCanMerge: true},
		{name: "narrow fork, off by default", left: 20, right: 20, incoming: "Jalan Kaliurang", wantCanMerge: false},
		{name: "wide fork of one street", left: 40, right: 40, incoming: "Jalan Palagan", strategies: []string{Y_ARM_STRATEGY}, wantCanMerge: true},
		{name: "wide fork into another street", left: 40, right: 40, incoming: "Jalan Kaliurang", strategies: []string{Y_ARM_STRATEGY}, wantCanMerge: false},
		{name: "lopsided fork", left: 10, right: 40, incoming: "Jalan Kaliurang", strategies: []string{Y_ARM_STRATEGY}, wantCanMerge: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			net, nodes := newYFork(tc.left, tc.right, tc.incoming)
			cfg := DefaultConfig()
			if tc.strategies != nil {
				cfg.IntersectionStrategies = tc.strategies
			}
			gen := net.generator(t, cfg, nil)

			raw := gen.GetConnectedRoads(nodes["p"], net.edge(t, nodes["p"], nodes["node"]))
			require.Len(t, raw, 3)
			right := armIndex(t, raw, net.edge(t, nodes["node"], nodes["r"]))
			left := armIndex(t, raw, net.edge(t, nodes["node"], nodes["l"]))
			assert.Equal(t, 1, right)
			assert.Equal(t, 2, left)

			assert.Equal(t, tc.wantCanMerge, gen.CanMerge(nodes["node"], raw, right, left))
		})
	}
}

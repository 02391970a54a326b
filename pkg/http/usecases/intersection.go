package usecases

import (
	"context"
	"math"
	"time"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/concurrent"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/guidance"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/metrics"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
	"go.uber.org/zap"
)

const (
	ANALYZE_BATCH_SIZE = 256
	MAX_NEAREST_LIMIT  = 50
)

// AnalyzedIntersection. the intersection seen when arriving at Node from FromNode over ViaEdge.
type AnalyzedIntersection struct {
	FromNode     datastructure.Index
	ViaEdge      datastructure.Index
	Node         datastructure.Index
	Connected    guidance.Intersection
	Intersection guidance.Intersection
	Merged       int
	Adjusted     int
}

type NodeIntersections struct {
	Node       datastructure.Index
	Coordinate geo.Coordinate
	Distance   float64 // meter from the query point
	Incoming   []AnalyzedIntersection
}

type IntersectionService struct {
	log        *zap.Logger
	graph      RoadGraph
	names      NameTable
	generator  IntersectionGenerator
	index      SpatialIndex
	metrics    *metrics.Metrics
	numWorkers int
}

var errNoSpatialIndex = util.WrapErrorf(nil, util.ErrInternalServerError, "spatial index not loaded")

/*
NewIntersectionService. m may be nil when metrics are not collected. index may be nil for batch analysis, AnalyzeNode and
AnalyzeAll don't need it while NearestIntersections and NextIntersection fail without it.
*/
func NewIntersectionService(log *zap.Logger, graph RoadGraph, names NameTable, generator IntersectionGenerator,
	index SpatialIndex, m *metrics.Metrics, numWorkers int) *IntersectionService {
	return &IntersectionService{
		log:        log,
		graph:      graph,
		names:      names,
		generator:  generator,
		index:      index,
		metrics:    m,
		numWorkers: numWorkers,
	}
}

func (s *IntersectionService) GetGraph() RoadGraph {
	return s.graph
}

func (s *IntersectionService) GetName(id datastructure.NameID) string {
	return s.names.GetName(id)
}

// analyze. one incoming road, keeps the raw intersection so callers can see what was merged.
func (s *IntersectionService) analyze(fromNode, viaEdge datastructure.Index) AnalyzedIntersection {
	node := s.graph.GetTarget(viaEdge)
	connected := s.generator.GetConnectedRoads(fromNode, viaEdge)
	merged := s.generator.MergeSegregatedRoads(node, connected)
	adjusted := s.generator.AdjustForJoiningRoads(node, merged)

	numAdjusted := 0
	for i := range adjusted {
		if adjusted[i].Angle != merged[i].Angle {
			numAdjusted++
		}
	}

	return AnalyzedIntersection{
		FromNode:     fromNode,
		ViaEdge:      viaEdge,
		Node:         node,
		Connected:    connected,
		Intersection: adjusted,
		Merged:       len(connected) - len(merged),
		Adjusted:     numAdjusted,
	}
}

/*
AnalyzeNode. intersections at node for every road that can be driven into it. for each edge (node, v) the reverse edge
(v, node) is an incoming road unless it is the reversed twin of a oneway.
*/
func (s *IntersectionService) AnalyzeNode(node datastructure.Index) NodeIntersections {
	start := time.Now()
	result := NodeIntersections{
		Node:       node,
		Coordinate: s.graph.GetCoordinate(node),
		Incoming:   make([]AnalyzedIntersection, 0, s.graph.GetOutDegree(node)),
	}

	merged, adjusted := 0, 0
	begin, end := s.graph.GetAdjacentEdgeRange(node)
	for e := begin; e < end; e++ {
		fromNode := s.graph.GetTarget(e)
		viaEdge, ok := s.graph.FindEdge(fromNode, node)
		if !ok || s.graph.GetEdgeData(viaEdge).Reversed {
			continue
		}
		analyzed := s.analyze(fromNode, viaEdge)
		merged += analyzed.Merged
		adjusted += analyzed.Adjusted
		result.Incoming = append(result.Incoming, analyzed)
	}

	if s.metrics != nil {
		s.metrics.ObserveAnalysis(start, len(result.Incoming), merged, adjusted)
	}
	return result
}

type nodeRange struct {
	begin, end int
}

/*
AnalyzeAll. analyses every node with at least one road on numWorkers goroutines. visit is called from the calling
goroutine, in no particular node order. stops early when ctx is cancelled.
*/
func (s *IntersectionService) AnalyzeAll(ctx context.Context, visit func(NodeIntersections)) error {
	n := s.graph.NumberOfNodes()
	jobs := make([]nodeRange, 0, n/ANALYZE_BATCH_SIZE+1)
	for begin := 0; begin < n; begin += ANALYZE_BATCH_SIZE {
		jobs = append(jobs, nodeRange{begin: begin, end: min(begin+ANALYZE_BATCH_SIZE, n)})
	}

	s.log.Info("analyzing intersections", zap.Int("nodes", n), zap.Int("batches", len(jobs)))

	batches := 0
	concurrent.ProcessAll(jobs, s.numWorkers, func(job nodeRange) []NodeIntersections {
		if util.StopConcurrentOperation(ctx) {
			return nil
		}
		out := make([]NodeIntersections, 0, job.end-job.begin)
		for u := job.begin; u < job.end; u++ {
			if s.graph.GetOutDegree(datastructure.Index(u)) == 0 {
				continue
			}
			out = append(out, s.AnalyzeNode(datastructure.Index(u)))
		}
		return out
	}, func(batch []NodeIntersections) {
		for _, ni := range batch {
			visit(ni)
		}
		batches++
		if batches%100 == 0 {
			s.log.Sugar().Infof("analyzing intersections: %d/%d batches...", batches, len(jobs))
		}
	})

	return ctx.Err()
}

// NearestIntersections. radius <= 0 returns only the closest node.
func (s *IntersectionService) NearestIntersections(lat, lon, radius float64, limit int) ([]NodeIntersections, error) {
	if limit <= 0 || limit > MAX_NEAREST_LIMIT {
		limit = MAX_NEAREST_LIMIT
	}

	if s.index == nil {
		return nil, errNoSpatialIndex
	}

	var hits []spatialindex.NodeHit
	if radius <= 0 {
		if hit, ok := s.index.Nearest(lat, lon); ok {
			hits = append(hits, hit)
		}
	} else {
		hits = s.index.SearchWithinRadius(lat, lon, radius, limit)
	}

	if len(hits) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "no road node near (%f, %f)", lat, lon)
	}

	results := make([]NodeIntersections, 0, len(hits))
	for _, hit := range hits {
		ni := s.AnalyzeNode(hit.Node)
		ni.Distance = hit.Distance
		results = append(results, ni)
	}
	return results, nil
}

/*
NextIntersection. from the node closest to (lat, lon), leave over the road whose bearing is closest to heading and
return the next intersection with a real choice.
*/
func (s *IntersectionService) NextIntersection(lat, lon, heading float64) (guidance.NextIntersection, error) {
	if s.index == nil {
		return guidance.NextIntersection{}, errNoSpatialIndex
	}
	hit, ok := s.index.Nearest(lat, lon)
	if !ok {
		return guidance.NextIntersection{}, util.WrapErrorf(nil, util.ErrNotFound, "no road node near (%f, %f)", lat, lon)
	}

	node := hit.Node
	nodeCoord := s.graph.GetCoordinate(node)
	bestEdge := datastructure.SPECIAL_EDGEID
	bestDeviation := math.MaxFloat64
	begin, end := s.graph.GetAdjacentEdgeRange(node)
	for e := begin; e < end; e++ {
		if s.graph.GetEdgeData(e).Reversed {
			continue
		}
		// first shape point, the far node only for straight edges
		toward := s.graph.GetCoordinate(s.graph.GetTarget(e))
		if geometry := s.graph.GetEdgeGeometry(e); len(geometry) > 0 {
			toward = geometry[0]
		}
		deviation := geo.AngularDeviation(geo.Bearing(nodeCoord, toward), heading)
		if deviation < bestDeviation {
			bestDeviation, bestEdge = deviation, e
		}
	}

	if bestEdge == datastructure.SPECIAL_EDGEID {
		return guidance.NextIntersection{}, util.WrapErrorf(nil, util.ErrNotFound, "node %d has no drivable road", node)
	}
	return s.generator.GetActualNextIntersection(node, bestEdge), nil
}

package guidance

import (
	"iter"
	"math"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
)

// WalkStep. one hop of a walk: the walk arrived at the target of ViaEdge coming from FromNode.
type WalkStep struct {
	FromNode     datastructure.Index
	ViaEdge      datastructure.Index
	Intersection Intersection
}

// RoadSelector. picks the edge to continue on, false stops the walk.
type RoadSelector interface {
	Select(fromNode, viaEdge datastructure.Index, intersection Intersection) (datastructure.Index, bool)
}

// WalkVisitor. consumes walk steps, returning false ends the walk.
type WalkVisitor interface {
	Visit(step WalkStep) bool
}

/*
NodeBasedGraphWalker. follows a road through the graph. every hop builds the intersection at the next node and asks the
selector where to continue.
*/
type NodeBasedGraphWalker struct {
	graph    RoadGraph
	builder  ConnectedRoadsBuilder
	hopLimit int
}

func NewNodeBasedGraphWalker(graph RoadGraph, builder ConnectedRoadsBuilder) *NodeBasedGraphWalker {
	return &NodeBasedGraphWalker{graph: graph, builder: builder, hopLimit: WALKER_HOP_LIMIT}
}

/*
Walk. lazy sequence of hops starting with startEdge out of startNode. the sequence ends at a dead end, when the
selector finds no continuation or after the hop limit, so it is always finite.
*/
func (w *NodeBasedGraphWalker) Walk(startNode, startEdge datastructure.Index, selector RoadSelector) iter.Seq[WalkStep] {
	return func(yield func(WalkStep) bool) {
		currentNode, currentEdge := startNode, startEdge
		for hop := 0; hop < w.hopLimit; hop++ {
			intersection := w.builder.GetConnectedRoads(currentNode, currentEdge)
			if !yield(WalkStep{FromNode: currentNode, ViaEdge: currentEdge, Intersection: intersection}) {
				return
			}

			// dead end, the only way is back
			if len(intersection) <= 1 {
				return
			}

			nextEdge, ok := selector.Select(currentNode, currentEdge, intersection)
			if !ok {
				return
			}
			currentNode = w.graph.GetTarget(currentEdge)
			currentEdge = nextEdge
		}
	}
}

// TraverseRoad. feed the walk to visitor until it is satisfied.
func (w *NodeBasedGraphWalker) TraverseRoad(startNode, startEdge datastructure.Index, visitor WalkVisitor,
	selector RoadSelector) {
	for step := range w.Walk(startNode, startEdge, selector) {
		if !visitor.Visit(step) {
			return
		}
	}
}

/*
SelectRoadByNameOnlyChoiceAndStraightness. continue on the straightest road carrying desiredNameID.
a road with a different name is only taken when it is the only way forward.

score: +360 if entry is required but not allowed, +180 for a different name, + deviation from going straight.
*/
type SelectRoadByNameOnlyChoiceAndStraightness struct {
	graph         RoadGraph
	desiredNameID datastructure.NameID
	requiresEntry bool
}

func NewSelectRoadByNameOnlyChoiceAndStraightness(graph RoadGraph, desiredNameID datastructure.NameID,
	requiresEntry bool) SelectRoadByNameOnlyChoiceAndStraightness {
	return SelectRoadByNameOnlyChoiceAndStraightness{graph: graph, desiredNameID: desiredNameID,
		requiresEntry: requiresEntry}
}

func (s SelectRoadByNameOnlyChoiceAndStraightness) score(road ConnectedRoad) float64 {
	score := 0.0
	if s.requiresEntry && !road.EntryAllowed {
		score += 360
	}
	if s.graph.GetEdgeData(road.EdgeID).NameID != s.desiredNameID {
		score += 180
	}
	return score + geo.AngularDeviation(road.Angle, STRAIGHT_ANGLE)
}

func (s SelectRoadByNameOnlyChoiceAndStraightness) Select(_, _ datastructure.Index,
	intersection Intersection) (datastructure.Index, bool) {
	best := -1
	bestScore := math.MaxFloat64
	for i := 1; i < len(intersection); i++ {
		if score := s.score(intersection[i]); score < bestScore {
			best = i
			bestScore = score
		}
	}
	if best == -1 {
		return datastructure.SPECIAL_EDGEID, false
	}

	road := intersection[best]
	if s.requiresEntry && !road.EntryAllowed {
		return datastructure.SPECIAL_EDGEID, false
	}
	if s.graph.GetEdgeData(road.EdgeID).NameID != s.desiredNameID && len(intersection) > 2 {
		return datastructure.SPECIAL_EDGEID, false
	}
	return road.EdgeID, true
}

// LengthLimitedCoordinateAccumulator. collects the shape of the walked road up to maxLength meter.
type LengthLimitedCoordinateAccumulator struct {
	extractor         *CoordinateExtractor
	maxLength         float64
	accumulatedLength float64
	Coordinates       []geo.Coordinate
}

func NewLengthLimitedCoordinateAccumulator(extractor *CoordinateExtractor,
	maxLength float64) *LengthLimitedCoordinateAccumulator {
	return &LengthLimitedCoordinateAccumulator{
		extractor:   extractor,
		maxLength:   maxLength,
		Coordinates: make([]geo.Coordinate, 0),
	}
}

func (a *LengthLimitedCoordinateAccumulator) Visit(step WalkStep) bool {
	coords := a.extractor.GetForwardCoordinatesAlongRoad(step.FromNode, step.ViaEdge)
	coords = TrimCoordinatesToLength(coords, a.maxLength-a.accumulatedLength)
	a.accumulatedLength += geo.PolylineLength(coords)

	if len(a.Coordinates) > 0 && len(coords) > 0 {
		// the first coordinate is the last one of the previous edge
		coords = coords[1:]
	}
	a.Coordinates = append(a.Coordinates, coords...)
	return a.accumulatedLength < a.maxLength
}

/*
IntersectionFinderAccumulator. walks until it finds a real intersection (more than two arms) or runs out of hops.
Intersection and ViaEdge hold the last step seen.
*/
type IntersectionFinderAccumulator struct {
	hopLimit     int
	hops         int
	NodesVisited []datastructure.Index
	ViaEdge      datastructure.Index
	Intersection Intersection
}

func NewIntersectionFinderAccumulator(hopLimit int) *IntersectionFinderAccumulator {
	return &IntersectionFinderAccumulator{
		hopLimit:     hopLimit,
		ViaEdge:      datastructure.SPECIAL_EDGEID,
		NodesVisited: make([]datastructure.Index, 0, hopLimit),
	}
}

func (a *IntersectionFinderAccumulator) Visit(step WalkStep) bool {
	a.hops++
	a.NodesVisited = append(a.NodesVisited, step.FromNode)
	a.ViaEdge = step.ViaEdge
	a.Intersection = step.Intersection
	return len(step.Intersection) <= 2 && a.hops < a.hopLimit
}

package guidance

import (
	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
	"go.uber.org/zap"
)

/*
IntersectionGenerator. builds the arms at a node, merges the two carriageways of divided roads into one arm and
corrects the angles of roads that join right behind the intersection.

all collaborators are read only, a generator can be shared between goroutines.
*/
type IntersectionGenerator struct {
	graph               RoadGraph
	restrictions        RestrictionLookup
	names               NameLookup
	coordinateExtractor *CoordinateExtractor
	walker              *NodeBasedGraphWalker
	mergeStrategies     []MergeStrategy
	intersectionMerges  []IntersectionMergeStrategy
	maxJoiningDistance  float64
	sink                DiagnosticSink
	logger              *zap.Logger
}

/*
NewIntersectionGenerator. sink and logger may be nil. cfg.MergeStrategies selects the acceptance criteria of canMergeRoad
in order, an unknown name is an error.
*/
func NewIntersectionGenerator(graph RoadGraph, restrictions RestrictionLookup, names NameLookup, cfg Config,
	sink DiagnosticSink, logger *zap.Logger) (*IntersectionGenerator, error) {
	if sink == nil {
		sink = NoopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ig := &IntersectionGenerator{
		graph:               graph,
		restrictions:        restrictions,
		names:               names,
		coordinateExtractor: NewCoordinateExtractor(graph),
		maxJoiningDistance:  cfg.MaxJoiningDistance,
		sink:                sink,
		logger:              logger,
	}
	ig.walker = NewNodeBasedGraphWalker(graph, ig)

	strategies, err := NewMergeStrategies(ig, cfg.MergeStrategies)
	if err != nil {
		return nil, err
	}
	ig.mergeStrategies = strategies

	intersectionMerges, err := NewIntersectionMergeStrategies(ig, cfg.IntersectionStrategies)
	if err != nil {
		return nil, err
	}
	ig.intersectionMerges = intersectionMerges
	return ig, nil
}

func (ig *IntersectionGenerator) GetCoordinateExtractor() *CoordinateExtractor {
	return ig.coordinateExtractor
}

func (ig *IntersectionGenerator) GetGraphWalker() *NodeBasedGraphWalker {
	return ig.walker
}

// Generate. intersection at the target of viaEdge, with segregated roads merged and joining roads corrected.
func (ig *IntersectionGenerator) Generate(fromNode, viaEdge datastructure.Index) Intersection {
	intersection := ig.GetConnectedRoads(fromNode, viaEdge)
	nodeAtIntersection := ig.graph.GetTarget(viaEdge)
	return ig.AdjustForJoiningRoads(nodeAtIntersection, ig.MergeSegregatedRoads(nodeAtIntersection, intersection))
}

// resolveOnlyRestriction. only restrictions pointing to a node we cannot reach from turnNode are ignored, a broken
// restriction must not disconnect the intersection.
func (ig *IntersectionGenerator) resolveOnlyRestriction(fromNode, turnNode datastructure.Index) (datastructure.Index, bool) {
	onlyTo, ok := ig.restrictions.CheckForEmanatingIsOnlyTurn(fromNode, turnNode)
	if !ok {
		return datastructure.SPECIAL_NODEID, false
	}
	begin, end := ig.graph.GetAdjacentEdgeRange(turnNode)
	for e := begin; e < end; e++ {
		if ig.graph.GetTarget(e) == onlyTo {
			return onlyTo, true
		}
	}
	return datastructure.SPECIAL_NODEID, false
}

// isDeadEnd. nowhere to go but back: at most one road at node can be driven in both directions.
func (ig *IntersectionGenerator) isDeadEnd(node datastructure.Index) bool {
	if ig.graph.GetOutDegree(node) <= 1 {
		return true
	}
	bidirectional := 0
	begin, end := ig.graph.GetAdjacentEdgeRange(node)
	for e := begin; e < end; e++ {
		reverseEdge, ok := ig.graph.FindEdge(ig.graph.GetTarget(e), node)
		if !ok {
			continue
		}
		if !ig.graph.GetEdgeData(reverseEdge).Reversed {
			bidirectional++
		}
	}
	return bidirectional <= 1
}

/*
GetConnectedRoads. all roads at the target of viaEdge, as if the graph was undirected.

	            a
	            |
	            v
	fromNode ------> turnNode ----> c
	            ^
	            |
	            b

arriving from fromNode we get (turnNode, c) but also (turnNode, a) and (turnNode, b). roads that cannot be entered
are kept with EntryAllowed = false, the turn classifier needs them for the shape of the intersection.
*/
func (ig *IntersectionGenerator) GetConnectedRoads(fromNode, viaEdge datastructure.Index) Intersection {
	turnNode := ig.graph.GetTarget(viaEdge)
	onlyTo, hasOnly := ig.resolveOnlyRestriction(fromNode, turnNode)
	isBarrier := ig.graph.IsBarrier(turnNode)

	turnCoordinate := ig.graph.GetCoordinate(turnNode)
	intersectionLanes := ig.graph.GetLaneCountAtIntersection(turnNode)

	// the origin of all angles, it depends on the lanes at the intersection just like the target coordinates.
	firstCoordinate := ig.coordinateExtractor.GetCoordinateAlongRoad(fromNode, viaEdge, true, turnNode,
		intersectionLanes)

	hasUTurnEdge := false
	uTurnCouldBeValid := false

	intersection := make(Intersection, 0, ig.graph.GetOutDegree(turnNode)+1)
	begin, end := ig.graph.GetAdjacentEdgeRange(turnNode)
	for ontoEdge := begin; ontoEdge < end; ontoEdge++ {
		toNode := ig.graph.GetTarget(ontoEdge)
		ontoData := ig.graph.GetEdgeData(ontoEdge)

		// reversed edges point into turnNode, they are only here for the shape of incoming oneways.
		turnIsValid := !ontoData.Reversed &&
			(!isBarrier || fromNode == toNode) &&
			(!hasOnly || toNode == onlyTo) &&
			!ig.restrictions.CheckIfTurnIsRestricted(fromNode, turnNode, toNode)

		angle := 0.0
		bearing := 0.0
		if fromNode == toNode {
			bearing = geo.Bearing(turnCoordinate, firstCoordinate)
			uTurnCouldBeValid = turnIsValid
			if turnIsValid && !isBarrier {
				// u-turns only for dead end streets
				turnIsValid = ig.isDeadEnd(turnNode)
			}
			hasUTurnEdge = true
		} else {
			thirdCoordinate := ig.coordinateExtractor.GetCoordinateAlongRoad(turnNode, ontoEdge, false, toNode,
				intersectionLanes)
			angle = geo.ComputeAngle(firstCoordinate, turnCoordinate, thirdCoordinate)
			bearing = geo.Bearing(turnCoordinate, thirdCoordinate)
			if angle < ANGLE_EPSILON {
				hasUTurnEdge = true
			}
		}

		intersection = append(intersection, NewConnectedRoad(ontoEdge, angle, bearing, turnIsValid))
	}

	// viaEdge leads into nothing-ness (no edge back to fromNode). add an artificial u-turn that cannot be entered.
	if !hasUTurnEdge {
		lanes := ig.graph.GetEdgeData(viaEdge).RoadClassification.GetNumberOfLanes()
		uTurnCoordinate := ig.coordinateExtractor.GetCoordinateAlongRoad(fromNode, viaEdge, true, turnNode, lanes)
		intersection = append(intersection, NewConnectedRoad(viaEdge, 0, geo.Bearing(turnCoordinate,
			uTurnCoordinate), false))
	}

	intersection.sortByAngle()
	util.AssertPanic(intersection.Valid(), "intersection: no u-turn at angle 0 after sorting")

	if intersection.CountEntryAllowed() == 0 && uTurnCouldBeValid {
		// a node must never be a trap. allow the u-turn back to fromNode.
		selfUTurn := 0
		for selfUTurn < len(intersection) && intersection[selfUTurn].Angle < ANGLE_EPSILON &&
			ig.graph.GetTarget(intersection[selfUTurn].EdgeID) != fromNode {
			selfUTurn++
		}
		util.AssertPanic(selfUTurn < len(intersection) &&
			ig.graph.GetTarget(intersection[selfUTurn].EdgeID) == fromNode,
			"intersection: u-turn back to the incoming node not found")
		intersection[selfUTurn].EntryAllowed = true
	}

	return intersection
}

/*
CanMerge. may arms i and j of intersection be merged into one road.

two arms are never merged at a degree two node (most likely a bollard, a traffic light or a road bending), or when a
name is missing or the names describe different streets.
*/
func (ig *IntersectionGenerator) CanMerge(node datastructure.Index, intersection Intersection, i, j int) bool {
	if len(intersection) <= 2 {
		return false
	}

	lhsData := ig.graph.GetEdgeData(intersection[i].EdgeID)
	rhsData := ig.graph.GetEdgeData(intersection[j].EdgeID)
	if lhsData.NameID == datastructure.EMPTY_NAMEID || rhsData.NameID == datastructure.EMPTY_NAMEID {
		return false
	}

	if ig.names.RequiresNameAnnounced(lhsData.NameID, rhsData.NameID) {
		return false
	}

	if ig.canMergeRoad(node, intersection[i], intersection[j]) {
		return true
	}
	for _, strategy := range ig.intersectionMerges {
		if strategy.EvaluateIntersection(node, intersection, i, j) {
			return true
		}
	}
	return false
}

/*
MergeSegregatedRoads. divided roads often meet at a single node:

	        b<b<b<b(1)<b<b<b
	aaaaa-b
	        b>b>b>b(2)>b>b>b

coming from a, (2) looks like a slight turn and going from (1) to (2) looks like a sharp turn. both carriageways are
merged into one arm so that the intersection reads like aaaaa-bbbbbb.

a merge that involves the u-turn moves the perceived direction we came from, so every other angle is shifted.
*/
func (ig *IntersectionGenerator) MergeSegregatedRoads(node datastructure.Index, intersection Intersection) Intersection {
	if len(intersection) <= 1 {
		return intersection
	}

	// merges happen on a local copy, arms that were merged away get SPECIAL_EDGEID and are compacted at the end.
	before := intersection
	intersection = intersection.clone()
	merged := false

	isConnectedToRoundabout := false
	for _, road := range intersection {
		if ig.graph.GetEdgeData(road.EdgeID).Roundabout {
			isConnectedToRoundabout = true
			break
		}
	}

	mergedFirst := false
	last := len(intersection) - 1
	if ig.CanMerge(node, intersection, 0, last) {
		merged = true
		mergedFirst = true
		// the u-turn moves to the left, every angle in between grows
		correction := (geo.FullCircle - intersection[last].Angle) / 2
		for i := 1; i < last; i++ {
			intersection[i].Angle += correction
		}
		intersection[0] = mergeRoads(intersection[0], intersection[last])
		intersection[0].Angle = 0
		intersection = intersection[:last]
	} else if ig.CanMerge(node, intersection, 0, 1) {
		merged = true
		mergedFirst = true
		// the u-turn moves to the right
		correction := intersection[1].Angle / 2
		for i := 2; i < len(intersection); i++ {
			intersection[i].Angle -= correction
		}
		intersection[0] = mergeRoads(intersection[0], intersection[1])
		intersection[0].Angle = 0
		intersection = append(intersection[:1], intersection[2:]...)
	}

	if mergedFirst && isConnectedToRoundabout {
		/*
			merging a u-turn against the direction of a roundabout:

				-----------> roundabout
				   /    \
				out      in

			this would create an entry into the roundabout in the wrong direction.
		*/
		intersection[0].EntryAllowed = false
	}

	for index := 2; index < len(intersection); index++ {
		previous := (index + len(intersection) - 1) % len(intersection)
		if intersection[previous].invalidated() || intersection[index].invalidated() {
			continue
		}
		if ig.CanMerge(node, intersection, index, previous) {
			merged = true
			intersection[previous] = mergeRoads(intersection[previous], intersection[index])
			intersection[index].EdgeID = datastructure.SPECIAL_EDGEID
		}
	}

	intersection = intersection.compact()

	if merged {
		ig.sink.Write(node, before)
		ig.logger.Debug("merged segregated roads", zap.Uint32("node", uint32(node)),
			zap.Int("before", len(before)), zap.Int("after", len(intersection)))
	}

	intersection.sortByAngle()
	return intersection
}

/*
AdjustForJoiningRoads. OSM can have very steep angles for joining roads:

	       x
	       |
	       v __________c
	      /
	a ---d
	      \ __________b

with c->d and d->b oneways, the turn from x onto d is actually a turn towards a. seen from x the situation should read

	          x
	          |
	a __ d __ v__________c
	     |
	     |_______________b

so the angle of the road towards d is corrected by half the angle of the merge that happens at d.
*/
func (ig *IntersectionGenerator) AdjustForJoiningRoads(node datastructure.Index, intersection Intersection) Intersection {
	if len(intersection) <= 1 {
		return intersection
	}
	intersection = intersection.clone()

	coordinateAtIntersection := ig.graph.GetCoordinate(node)

	// offsets are limited to half the gap to the neighbouring arm, minus a safety margin
	correctedOffset := func(offset float64, road, next ConnectedRoad) float64 {
		limit := geo.AngularDeviation(road.Angle, next.Angle)
		if offset+MAXIMAL_ALLOWED_NO_TURN_DEVIATION > limit {
			return 0.5 * limit
		}
		return offset
	}

	// the u-turn is never adjusted
	for index := 1; index < len(intersection); index++ {
		road := &intersection[index]

		nextIntersection := ig.GetConnectedRoads(node, road.EdgeID)
		if len(nextIntersection) <= 1 {
			continue
		}

		nodeAtNextIntersection := ig.graph.GetTarget(road.EdgeID)
		if geo.HaversineDistance(coordinateAtIntersection,
			ig.graph.GetCoordinate(nodeAtNextIntersection)) > ig.maxJoiningDistance {
			continue
		}

		if ig.graph.GetOutDegree(nodeAtNextIntersection) <= 1 {
			continue
		}

		nextLast := len(nextIntersection) - 1
		if ig.CanMerge(nodeAtNextIntersection, nextIntersection, 0, 1) {
			// the road merges to the right at the next intersection, shift it to the left
			offset := 0.5 * geo.AngularDeviation(nextIntersection[0].Angle, nextIntersection[1].Angle)
			offset = correctedOffset(offset, *road, intersection[(index+1)%len(intersection)])
			road.Angle = geo.RestrictAngleToValidRange(road.Angle + offset)
			road.Bearing = geo.RestrictAngleToValidRange(road.Bearing + offset)
		} else if ig.CanMerge(nodeAtNextIntersection, nextIntersection, 0, nextLast) {
			// merges to the left, shift to the right
			offset := 0.5 * geo.AngularDeviation(nextIntersection[0].Angle, nextIntersection[nextLast].Angle)
			offset = correctedOffset(offset, *road, intersection[index-1])
			road.Angle = geo.RestrictAngleToValidRange(road.Angle - offset)
			road.Bearing = geo.RestrictAngleToValidRange(road.Bearing - offset)
		}
	}
	return intersection
}

// NextIntersection. result of GetActualNextIntersection, FromNode & ViaEdge lead into Intersection.
type NextIntersection struct {
	Intersection Intersection
	FromNode     datastructure.Index
	ViaEdge      datastructure.Index
}

/*
GetActualNextIntersection. skips nodes that only exist because of traffic lights, barriers or parallel edges and
returns the next intersection with a real choice. a visited set and the check for the start node keep loops finite.
*/
func (ig *IntersectionGenerator) GetActualNextIntersection(startNode, viaEdge datastructure.Index) NextIntersection {
	result := ig.GetConnectedRoads(startNode, viaEdge)

	nodeAtIntersection := startNode
	incomingEdge := viaEdge
	terminationNode := ig.graph.GetTarget(viaEdge)

	visited := make(map[datastructure.Index]struct{})
	for {
		if _, ok := visited[nodeAtIntersection]; ok {
			break
		}
		if len(result) != 2 ||
			!ig.graph.GetEdgeData(incomingEdge).IsCompatibleTo(ig.graph.GetEdgeData(result[1].EdgeID)) {
			break
		}

		visited[nodeAtIntersection] = struct{}{}
		nodeAtIntersection = ig.graph.GetTarget(incomingEdge)
		incomingEdge = result[1].EdgeID
		result = ig.GetConnectedRoads(nodeAtIntersection, incomingEdge)

		// back at the start, we went around a loop
		if ig.graph.GetTarget(incomingEdge) == terminationNode {
			break
		}
	}

	return NextIntersection{Intersection: result, FromNode: nodeAtIntersection, ViaEdge: incomingEdge}
}

package guidance

import (
	"math"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
)

const (
	SAME_DIRECTION_STRATEGY  = "same_direction"
	NARROW_TRIANGLE_STRATEGY = "narrow_triangle"
	CONNECT_AGAIN_STRATEGY   = "connect_again"
	Y_ARM_STRATEGY           = "y_arm"
)

/*
haveCompatibleRoadData. two arms can only be the carriageways of one road in opposite directions if exactly one of them
is reversed. travel mode and road class have to match, merging a short stretch of pushing into a driving road would
hide a choice.
*/
func haveCompatibleRoadData(lhs, rhs datastructure.EdgeData) bool {
	if lhs.Reversed == rhs.Reversed {
		return false
	}
	if lhs.TravelMode != rhs.TravelMode {
		return false
	}
	return lhs.RoadClassification == rhs.RoadClassification
}

// canMergeRoad. lhs and rhs represent the same road
func (ig *IntersectionGenerator) canMergeRoad(node datastructure.Index, lhs, rhs ConnectedRoad) bool {
	lhsData := ig.graph.GetEdgeData(lhs.EdgeID)
	rhsData := ig.graph.GetEdgeData(rhs.EdgeID)

	// roundabouts are special, leave them alone
	if lhsData.Roundabout || rhsData.Roundabout {
		return false
	}

	// a merge must never hide a turn
	if lhs.EntryAllowed && rhs.EntryAllowed {
		return false
	}

	if !haveCompatibleRoadData(lhsData, rhsData) {
		return false
	}

	if geo.AngularDeviation(lhs.Angle, rhs.Angle) > MAX_MERGE_ANGULAR_DEVIATION {
		return false
	}

	for _, strategy := range ig.mergeStrategies {
		if strategy.Evaluate(node, lhs, rhs) {
			return true
		}
	}
	return false
}

func NewMergeStrategies(ig *IntersectionGenerator, names []string) ([]MergeStrategy, error) {
	strategies := make([]MergeStrategy, 0, len(names))
	for _, name := range names {
		switch name {
		case SAME_DIRECTION_STRATEGY:
			strategies = append(strategies, &sameDirectionStrategy{ig: ig})
		case NARROW_TRIANGLE_STRATEGY:
			strategies = append(strategies, &narrowTriangleStrategy{ig: ig})
		case CONNECT_AGAIN_STRATEGY:
			strategies = append(strategies, &connectAgainStrategy{ig: ig})
		default:
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown merge strategy %q", name)
		}
	}
	return strategies, nil
}

func NewIntersectionMergeStrategies(ig *IntersectionGenerator, names []string) ([]IntersectionMergeStrategy, error) {
	strategies := make([]IntersectionMergeStrategy, 0, len(names))
	for _, name := range names {
		switch name {
		case Y_ARM_STRATEGY:
			strategies = append(strategies, &yArmStrategy{ig: ig})
		default:
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown intersection merge strategy %q", name)
		}
	}
	return strategies, nil
}

/*
sameDirectionStrategy. follow both roads for up to 100 m and check that the sampled shapes run parallel.
the allowed deviation grows with the number of lanes.
*/
type sameDirectionStrategy struct {
	ig *IntersectionGenerator
}

func (s *sameDirectionStrategy) Name() string {
	return SAME_DIRECTION_STRATEGY
}

func (s *sameDirectionStrategy) coordinatesAlongRoad(node datastructure.Index, edge datastructure.Index,
	maxLength float64) []geo.Coordinate {
	accumulator := NewLengthLimitedCoordinateAccumulator(s.ig.coordinateExtractor, maxLength)
	selector := NewSelectRoadByNameOnlyChoiceAndStraightness(s.ig.graph, s.ig.graph.GetEdgeData(edge).NameID, false)
	s.ig.walker.TraverseRoad(node, edge, accumulator, selector)
	return accumulator.Coordinates
}

func (s *sameDirectionStrategy) Evaluate(node datastructure.Index, lhs, rhs ConnectedRoad) bool {
	if geo.AngularDeviation(lhs.Angle, rhs.Angle) > SAME_DIRECTION_MAX_ANGULAR_DEVIATION {
		return false
	}

	extractor := s.ig.coordinateExtractor
	left := extractor.SampleCoordinates(s.coordinatesAlongRoad(node, lhs.EdgeID, SAME_DIRECTION_LOOKAHEAD),
		SAME_DIRECTION_LOOKAHEAD, SAME_DIRECTION_SAMPLING_STEP)
	right := extractor.SampleCoordinates(s.coordinatesAlongRoad(node, rhs.EdgeID, SAME_DIRECTION_LOOKAHEAD),
		SAME_DIRECTION_LOOKAHEAD, SAME_DIRECTION_SAMPLING_STEP)

	// less than 35 m of road, too short to judge
	if len(left) < SAME_DIRECTION_MIN_SAMPLES || len(right) < SAME_DIRECTION_MIN_SAMPLES {
		return false
	}

	lanes := max(uint8(2), s.ig.graph.GetEdgeData(lhs.EdgeID).RoadClassification.GetNumberOfLanes(),
		s.ig.graph.GetEdgeData(rhs.EdgeID).RoadClassification.GetNumberOfLanes())
	maxDeviation := 4 * math.Sqrt(float64(lanes))

	return geo.AreParallel(left, right, maxDeviation)
}

/*
narrowTriangleStrategy. both roads reach a real intersection after a few hops and those intersections are connected
by a short road turning right:

	  l ---- r
	   \    /
	    \  /
	     node

not active by default.
*/
type narrowTriangleStrategy struct {
	ig *IntersectionGenerator
}

func (s *narrowTriangleStrategy) Name() string {
	return NARROW_TRIANGLE_STRATEGY
}

func (s *narrowTriangleStrategy) Evaluate(node datastructure.Index, lhs, rhs ConnectedRoad) bool {
	graph := s.ig.graph
	left := NewIntersectionFinderAccumulator(NARROW_TRIANGLE_HOP_LIMIT)
	right := NewIntersectionFinderAccumulator(NARROW_TRIANGLE_HOP_LIMIT)

	// both roads carry the same name, either one works for the selector
	selector := NewSelectRoadByNameOnlyChoiceAndStraightness(graph, graph.GetEdgeData(lhs.EdgeID).NameID, false)
	s.ig.walker.TraverseRoad(node, lhs.EdgeID, left, selector)
	s.ig.walker.TraverseRoad(node, rhs.EdgeID, right, selector)

	util.AssertPanic(len(left.Intersection) > 0 && len(right.Intersection) > 0,
		"narrow triangle: walk produced no intersection")

	connector := left.Intersection.FindClosestTurn(90)
	if geo.AngularDeviation(left.Intersection[connector].Angle, 90) > NARROW_TURN_ANGLE {
		return false
	}

	// the width we can bridge at the intersection
	assumedLaneWidth := 0.5 * float64(graph.GetLaneCountAtIntersection(node)) * ASSUMED_LANE_WIDTH
	leftTarget := graph.GetTarget(left.ViaEdge)
	rightTarget := graph.GetTarget(right.ViaEdge)
	if geo.HaversineDistance(graph.GetCoordinate(leftTarget), graph.GetCoordinate(rightTarget)) >
		2*assumedLaneWidth+NARROW_TRIANGLE_EXTRA_WIDTH {
		return false
	}

	connect := NewIntersectionFinderAccumulator(NARROW_TRIANGLE_HOP_LIMIT)
	s.ig.walker.TraverseRoad(leftTarget, left.Intersection[connector].EdgeID, connect, selector)
	return graph.GetTarget(connect.ViaEdge) == rightTarget
}

/*
connectAgainStrategy. following both roads by name (at most 10 intersections), they meet again at the same node.
not active by default.
*/
type connectAgainStrategy struct {
	ig *IntersectionGenerator
}

func (s *connectAgainStrategy) Name() string {
	return CONNECT_AGAIN_STRATEGY
}

// findMeetUpCandidate. first node along road where the searched name continues on at least two arms.
func (s *connectAgainStrategy) findMeetUpCandidate(node datastructure.Index, nameID datastructure.NameID,
	road ConnectedRoad) datastructure.Index {
	graph := s.ig.graph
	hasName := func(r ConnectedRoad) bool {
		return graph.GetEdgeData(r.EdgeID).NameID == nameID
	}

	currentNode := node
	currentEdge := road.EdgeID
	for hop := 0; hop < CONNECT_AGAIN_HOP_LIMIT; hop++ {
		next := s.ig.GetConnectedRoads(currentNode, currentEdge)

		count := 0
		firstNamed := -1
		for i := 1; i < len(next); i++ {
			if hasName(next[i]) {
				count++
				if firstNamed == -1 {
					firstNamed = i
				}
			}
		}

		if count >= 2 {
			return graph.GetTarget(currentEdge)
		}
		if count == 0 {
			return datastructure.SPECIAL_NODEID
		}

		currentNode = graph.GetTarget(currentEdge)
		if len(next) == 2 {
			// skip over bridges, traffic lights
			currentEdge = next[1].EdgeID
			continue
		}
		if geo.AngularDeviation(next[firstNamed].Angle, STRAIGHT_ANGLE) > NARROW_TURN_ANGLE {
			return currentNode
		}
		currentEdge = next[firstNamed].EdgeID
	}
	return datastructure.SPECIAL_NODEID
}

func (s *connectAgainStrategy) Evaluate(node datastructure.Index, lhs, rhs ConnectedRoad) bool {
	graph := s.ig.graph
	leftCandidate := s.findMeetUpCandidate(node, graph.GetEdgeData(lhs.EdgeID).NameID, lhs)
	rightCandidate := s.findMeetUpCandidate(node, graph.GetEdgeData(rhs.EdgeID).NameID, rhs)

	return leftCandidate == rightCandidate && leftCandidate != datastructure.SPECIAL_NODEID &&
		leftCandidate != node
}

/*
yArmStrategy. fork heuristic: followed to their next real intersection the two arms of a Y keep converging, or they
leave the straight direction at the same angle. at a three way node where the third road carries the same name wider
forks are accepted when the third arm splits them evenly.

	  l     r
	   \   /
	    \ /
	    node
	     |

not active by default.
*/
type yArmStrategy struct {
	ig *IntersectionGenerator
}

func (s *yArmStrategy) Name() string {
	return Y_ARM_STRATEGY
}

func (s *yArmStrategy) actualTarget(node, edge datastructure.Index) datastructure.Index {
	next := s.ig.GetActualNextIntersection(node, edge)
	return s.ig.graph.GetTarget(next.ViaEdge)
}

func (s *yArmStrategy) isValidYArm(node datastructure.Index, intersection Intersection, coordinateAtInEdge geo.Coordinate,
	i, other int) bool {
	graph := s.ig.graph
	target := s.actualTarget(node, intersection[i].EdgeID)
	otherTarget := s.actualTarget(node, intersection[other].EdgeID)
	if target == node || otherTarget == node {
		return false
	}

	coordinateAtNode := graph.GetCoordinate(node)
	turnAngle := geo.ComputeAngle(coordinateAtInEdge, coordinateAtNode, graph.GetCoordinate(target))
	otherTurnAngle := geo.ComputeAngle(coordinateAtInEdge, coordinateAtNode, graph.GetCoordinate(otherTarget))

	deviation := geo.AngularDeviation(turnAngle, otherTurnAngle)
	becomesNarrower := deviation < NARROW_TURN_ANGLE &&
		deviation <= geo.AngularDeviation(intersection[i].Angle, intersection[other].Angle)

	hasSameDeviation := util.Abs(geo.AngularDeviation(intersection[i].Angle, STRAIGHT_ANGLE)-
		geo.AngularDeviation(intersection[other].Angle, STRAIGHT_ANGLE)) < MAXIMAL_ALLOWED_NO_TURN_DEVIATION

	return becomesNarrower || hasSameDeviation
}

func (s *yArmStrategy) EvaluateIntersection(node datastructure.Index, intersection Intersection, i, j int) bool {
	graph := s.ig.graph
	lhs, rhs := intersection[i], intersection[j]
	lhsData := graph.GetEdgeData(lhs.EdgeID)
	rhsData := graph.GetEdgeData(rhs.EdgeID)

	if lhsData.Roundabout || rhsData.Roundabout {
		return false
	}
	if lhs.EntryAllowed && rhs.EntryAllowed {
		return false
	}

	// arm 0 points back along the road we came from
	inEdge := intersection[0].EdgeID
	coordinateAtInEdge := s.ig.coordinateExtractor.GetCoordinateAlongRoad(node, inEdge, false, graph.GetTarget(inEdge),
		intersection.HighestConnectedLaneCount(graph))

	if !s.isValidYArm(node, intersection, coordinateAtInEdge, i, j) ||
		!s.isValidYArm(node, intersection, coordinateAtInEdge, j, i) {
		return false
	}

	angularDeviation := geo.AngularDeviation(lhs.Angle, rhs.Angle)
	if angularDeviation < MAX_MERGE_ANGULAR_DEVIATION {
		return true
	}

	if len(intersection) != 3 {
		return false
	}
	third := 3 - i - j

	thirdData := graph.GetEdgeData(intersection[third].EdgeID)
	if thirdData.NameID != datastructure.EMPTY_NAMEID &&
		s.ig.names.RequiresNameAnnounced(thirdData.NameID, lhsData.NameID) {
		return false
	}

	yAngleDifference := geo.AngularDeviation(
		geo.AngularDeviation(intersection[third].Angle, lhs.Angle),
		geo.AngularDeviation(intersection[third].Angle, rhs.Angle))

	return angularDeviation < Y_ARM_MAX_ANGULAR_DEVIATION && yAngleDifference < FUZZY_ANGLE_DIFFERENCE
}

package guidance

import (
	"math"
	"sort"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
)

// TurnInstruction. filled in by the turn classifier, intersection building only carries it along.
type TurnInstruction struct {
	Type     uint8
	Modifier uint8
}

const (
	TURN_TYPE_INVALID uint8 = 0
	MODIFIER_UTURN    uint8 = 0
)

type LaneDataID uint16

const INVALID_LANE_DATAID LaneDataID = math.MaxUint16

/*
ConnectedRoad. one arm of an intersection, as seen when arriving through a specific incoming edge.

angle is measured from the incoming direction: 0 is going back the way you came, 180 is straight on.
bearing is the compass direction of the arm.
*/
type ConnectedRoad struct {
	EdgeID       datastructure.Index
	Angle        float64
	Bearing      float64
	EntryAllowed bool
	Instruction  TurnInstruction
	LaneDataID   LaneDataID
}

func NewConnectedRoad(edgeID datastructure.Index, angle, bearing float64, entryAllowed bool) ConnectedRoad {
	return ConnectedRoad{
		EdgeID:       edgeID,
		Angle:        angle,
		Bearing:      bearing,
		EntryAllowed: entryAllowed,
		Instruction:  TurnInstruction{Type: TURN_TYPE_INVALID, Modifier: MODIFIER_UTURN},
		LaneDataID:   INVALID_LANE_DATAID,
	}
}

func (c ConnectedRoad) CompareByAngle(other ConnectedRoad) bool {
	return c.Angle < other.Angle
}

func (c ConnectedRoad) invalidated() bool {
	return c.EdgeID == datastructure.SPECIAL_EDGEID
}

func clampAngle(angle float64) float64 {
	return math.Max(0, math.Min(geo.FullCircle, angle))
}

/*
mergeRoads. lhs and rhs become one arm. the attributes of the arm that can be entered are kept (lhs if both
or none can), angle and bearing are the circular mean of both.
*/
func mergeRoads(lhs, rhs ConnectedRoad) ConnectedRoad {
	result := lhs
	if !lhs.EntryAllowed && rhs.EntryAllowed {
		result = rhs
	}
	result.Angle = clampAngle(geo.AngleBetween(lhs.Angle, rhs.Angle))
	result.Bearing = clampAngle(geo.AngleBetween(lhs.Bearing, rhs.Bearing))
	return result
}

// Intersection. arms at one node sorted ascending by angle. the first arm is the u-turn (angle 0).
type Intersection []ConnectedRoad

func (in Intersection) Valid() bool {
	return len(in) > 0 && in[0].Angle < ANGLE_EPSILON
}

func (in Intersection) sortByAngle() {
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].CompareByAngle(in[j])
	})
}

func (in Intersection) IsSortedByAngle() bool {
	return sort.SliceIsSorted(in, func(i, j int) bool {
		return in[i].CompareByAngle(in[j])
	})
}

// FindClosestTurn. index of the arm whose angle deviates least from angle
func (in Intersection) FindClosestTurn(angle float64) int {
	best := -1
	bestDeviation := math.MaxFloat64
	for i, road := range in {
		deviation := geo.AngularDeviation(road.Angle, angle)
		if deviation < bestDeviation {
			best = i
			bestDeviation = deviation
		}
	}
	return best
}

func (in Intersection) HighestConnectedLaneCount(graph RoadGraph) uint8 {
	lanes := uint8(0)
	for _, road := range in {
		lanes = max(lanes, graph.GetEdgeData(road.EdgeID).RoadClassification.GetNumberOfLanes())
	}
	return lanes
}

func (in Intersection) CountEntryAllowed() int {
	count := 0
	for _, road := range in {
		if road.EntryAllowed {
			count++
		}
	}
	return count
}

func (in Intersection) clone() Intersection {
	out := make(Intersection, len(in))
	copy(out, in)
	return out
}

// compact. drop invalidated arms in place.
func (in Intersection) compact() Intersection {
	n := 0
	for _, road := range in {
		if road.invalidated() {
			continue
		}
		in[n] = road
		n++
	}
	return in[:n]
}

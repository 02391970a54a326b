package datastructure

/*
EdgeData. immutable attributes of a directed edge of the node based graph.

a bidirectional road is stored as two edges with reversed == false. a oneway road is stored as the
forward edge (reversed == false) plus a backward edge (reversed == true) which can never be entered.
the backward edge is kept so that the shape of an intersection includes incoming oneways.
*/
type EdgeData struct {
	NameID             NameID
	RoadClassification RoadClassification
	Reversed           bool
	TravelMode         TravelMode
	Roundabout         bool
	Distance           float64 // meter
}

func NewEdgeData(nameID NameID, roadClass RoadClassification, reversed bool, mode TravelMode,
	roundabout bool, distance float64) EdgeData {
	return EdgeData{
		NameID:             nameID,
		RoadClassification: roadClass,
		Reversed:           reversed,
		TravelMode:         mode,
		Roundabout:         roundabout,
		Distance:           distance,
	}
}

// IsCompatibleTo. both edges describe the same road in the same direction.
func (e EdgeData) IsCompatibleTo(other EdgeData) bool {
	return e.Reversed == other.Reversed &&
		e.NameID == other.NameID &&
		e.TravelMode == other.TravelMode &&
		e.RoadClassification == other.RoadClassification
}

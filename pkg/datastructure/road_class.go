package datastructure

import "strings"

type OsmHighwayType uint8

// enum buat osm highway buat routing: https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
const (
	MOTORWAY      OsmHighwayType = 0
	TRUNK         OsmHighwayType = 1
	PRIMARY       OsmHighwayType = 2
	SECONDARY     OsmHighwayType = 3
	TERTIARY      OsmHighwayType = 4
	RESIDENTIAL   OsmHighwayType = 5
	SERVICE       OsmHighwayType = 6
	UNCLASSIFIED  OsmHighwayType = 7
	LIVING_STREET OsmHighwayType = 8
	ROAD          OsmHighwayType = 9
	TRACK         OsmHighwayType = 10
	MOTORROAD     OsmHighwayType = 11
	UNKNOWN       OsmHighwayType = 12
)

// GetHighwayType. highway tag -> class. link roads (primary_link, ...) share the class of the road they link.
func GetHighwayType(roadType string) OsmHighwayType {
	switch strings.TrimSuffix(roadType, "_link") {
	case "motorway":
		return MOTORWAY
	case "trunk":
		return TRUNK
	case "primary":
		return PRIMARY
	case "secondary":
		return SECONDARY
	case "tertiary":
		return TERTIARY
	case "unclassified":
		return UNCLASSIFIED
	case "residential":
		return RESIDENTIAL
	case "service":
		return SERVICE
	case "living_street":
		return LIVING_STREET
	case "road":
		return ROAD
	case "track":
		return TRACK
	case "motorroad":
		return MOTORROAD
	default:
		return UNKNOWN
	}
}

func IsLinkRoad(roadType string) bool {
	return strings.HasSuffix(roadType, "_link")
}

type RoadClassification struct {
	Class OsmHighwayType
	Link  bool
	Lanes uint8 // 0 = unknown
}

func NewRoadClassification(class OsmHighwayType, link bool, lanes uint8) RoadClassification {
	return RoadClassification{Class: class, Link: link, Lanes: lanes}
}

func (rc RoadClassification) GetNumberOfLanes() uint8 {
	return rc.Lanes
}

type TravelMode uint8

const (
	TRAVEL_MODE_INACCESSIBLE TravelMode = iota
	TRAVEL_MODE_DRIVING
	TRAVEL_MODE_FERRY
)

package controllers

import (
	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/guidance"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/http/usecases"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
	"github.com/twpayne/go-polyline"
)

type nearestIntersectionsRequest struct {
	Lat    float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon    float64 `json:"lon" validate:"required,min=-180,max=180"`
	Radius float64 `json:"radius" validate:"min=0,max=1000"`
	Limit  int     `json:"limit" validate:"min=0,max=50"`
}

type nextIntersectionRequest struct {
	Lat     float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon     float64 `json:"lon" validate:"required,min=-180,max=180"`
	Heading float64 `json:"heading" validate:"min=0,lt=360"`
}

type armResponse struct {
	EdgeID       datastructure.Index `json:"edge_id"`
	ToNode       datastructure.Index `json:"to_node"`
	Name         string              `json:"name"`
	Angle        float64             `json:"angle"`
	Bearing      float64             `json:"bearing"`
	EntryAllowed bool                `json:"entry_allowed"`
	Geometry     string              `json:"geometry"` // encoded polyline, precision 5
}

type incomingResponse struct {
	FromNode datastructure.Index `json:"from_node"`
	ViaEdge  datastructure.Index `json:"via_edge"`
	Merged   int                 `json:"merged"`
	Adjusted int                 `json:"adjusted"`
	Arms     []armResponse       `json:"arms"`
}

type nodeIntersectionsResponse struct {
	Node     datastructure.Index `json:"node"`
	Lat      float64             `json:"lat"`
	Lon      float64             `json:"lon"`
	Distance float64             `json:"distance"`
	Incoming []incomingResponse  `json:"incoming"`
}

type nextIntersectionResponse struct {
	FromNode datastructure.Index `json:"from_node"`
	ViaEdge  datastructure.Index `json:"via_edge"`
	Node     datastructure.Index `json:"node"`
	Lat      float64             `json:"lat"`
	Lon      float64             `json:"lon"`
	Arms     []armResponse       `json:"arms"`
}

/*
encodeArm. node, shape points and head of the arm e leaving node. the artificial u-turn of a dead end oneway reuses the
incoming edge, its geometry is drawn back towards fromNode.
*/
func encodeArm(graph usecases.RoadGraph, fromNode, node, e datastructure.Index) (datastructure.Index, string) {
	toNode := graph.GetTarget(e)
	geometry := graph.GetEdgeGeometry(e)
	if toNode == node {
		toNode = fromNode
		geometry = util.ReverseG(geometry)
	}

	coords := make([][]float64, 0, len(geometry)+2)
	from := graph.GetCoordinate(node)
	coords = append(coords, []float64{from.Lat, from.Lon})
	for _, c := range geometry {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	to := graph.GetCoordinate(toNode)
	coords = append(coords, []float64{to.Lat, to.Lon})
	return toNode, string(polyline.EncodeCoords(coords))
}

func NewArmsResponse(service IntersectionService, fromNode, node datastructure.Index,
	intersection guidance.Intersection) []armResponse {
	graph := service.GetGraph()
	arms := make([]armResponse, 0, len(intersection))
	for _, road := range intersection {
		toNode, geometry := encodeArm(graph, fromNode, node, road.EdgeID)
		arms = append(arms, armResponse{
			EdgeID:       road.EdgeID,
			ToNode:       toNode,
			Name:         service.GetName(graph.GetEdgeData(road.EdgeID).NameID),
			Angle:        road.Angle,
			Bearing:      road.Bearing,
			EntryAllowed: road.EntryAllowed,
			Geometry:     geometry,
		})
	}
	return arms
}

func NewNearestIntersectionsResponse(service IntersectionService,
	results []usecases.NodeIntersections) []nodeIntersectionsResponse {
	resp := make([]nodeIntersectionsResponse, 0, len(results))
	for _, ni := range results {
		incoming := make([]incomingResponse, 0, len(ni.Incoming))
		for _, in := range ni.Incoming {
			incoming = append(incoming, incomingResponse{
				FromNode: in.FromNode,
				ViaEdge:  in.ViaEdge,
				Merged:   in.Merged,
				Adjusted: in.Adjusted,
				Arms:     NewArmsResponse(service, in.FromNode, ni.Node, in.Intersection),
			})
		}
		resp = append(resp, nodeIntersectionsResponse{
			Node:     ni.Node,
			Lat:      ni.Coordinate.Lat,
			Lon:      ni.Coordinate.Lon,
			Distance: ni.Distance,
			Incoming: incoming,
		})
	}
	return resp
}

func NewNextIntersectionResponse(service IntersectionService, next guidance.NextIntersection) nextIntersectionResponse {
	graph := service.GetGraph()
	node := graph.GetTarget(next.ViaEdge)
	coord := graph.GetCoordinate(node)
	return nextIntersectionResponse{
		FromNode: next.FromNode,
		ViaEdge:  next.ViaEdge,
		Node:     node,
		Lat:      coord.Lat,
		Lon:      coord.Lon,
		Arms:     NewArmsResponse(service, next.FromNode, node, next.Intersection),
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

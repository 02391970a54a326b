package controllers

import (
	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/guidance"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/http/usecases"
)

type IntersectionService interface {
	NearestIntersections(lat, lon, radius float64, limit int) ([]usecases.NodeIntersections, error)
	NextIntersection(lat, lon, heading float64) (guidance.NextIntersection, error)
	GetGraph() usecases.RoadGraph
	GetName(id datastructure.NameID) string
}

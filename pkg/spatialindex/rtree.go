package spatialindex

import (
	"math"
	"sort"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

const (
	NEAREST_INITIAL_RADIUS = 50.0   // meter
	NEAREST_MAX_RADIUS     = 5000.0 // meter
)

type Rtree struct {
	tr *rtree.RTreeG[datastructure.Index]
}

// NodeHit. graph node found by a spatial query, with its distance to the query point in meter.
type NodeHit struct {
	Node     datastructure.Index
	Distance float64
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build. index every node that is the tail of at least one edge. isolated nodes can not be intersections.
func (rt *Rtree) Build(graph *datastructure.NodeBasedGraph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	n := graph.NumberOfNodes()
	for u := 0; u < n; u++ {
		if n >= 10 && u%(n/10) == 0 {
			log.Info("Building R-tree spatial index...", zap.Float64("progress", 100*float64(u)/float64(n)))
		}
		if graph.GetOutDegree(datastructure.Index(u)) == 0 {
			continue
		}
		c := graph.GetCoordinate(datastructure.Index(u))
		rt.tr.Insert([2]float64{c.Lon, c.Lat}, [2]float64{c.Lon, c.Lat}, datastructure.Index(u))
	}

	log.Info("R-tree spatial index built.", zap.Int("nodes", rt.tr.Len()))
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius. nodes within radius (in meter) from (qLat, qLon), nearest first. at most limit hits, limit <= 0
// means no limit.
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64, limit int) []NodeHit {
	q := geo.NewCoordinate(qLat, qLon)
	// bounding box corners are radius*sqrt(2) away from the center
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius*math.Sqrt2/1000)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius*math.Sqrt2/1000)

	results := make([]NodeHit, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data datastructure.Index) bool {
			dist := geo.HaversineDistance(q, geo.NewCoordinate(min[1], min[0]))
			if dist <= radius {
				results = append(results, NodeHit{Node: data, Distance: dist})
			}
			return true
		})

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance == results[j].Distance {
			return results[i].Node < results[j].Node
		}
		return results[i].Distance < results[j].Distance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Nearest. closest indexed node, searching in growing circles up to NEAREST_MAX_RADIUS.
func (rt *Rtree) Nearest(qLat, qLon float64) (NodeHit, bool) {
	for radius := NEAREST_INITIAL_RADIUS; radius <= NEAREST_MAX_RADIUS; radius *= 2 {
		hits := rt.SearchWithinRadius(qLat, qLon, radius, 1)
		if len(hits) > 0 {
			return hits[0], true
		}
	}
	return NodeHit{Node: datastructure.SPECIAL_NODEID}, false
}

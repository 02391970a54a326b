package guidance

import (
	"fmt"
	"os"
	"sync"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type NoopSink struct{}

func (NoopSink) Write(datastructure.Index, Intersection) {}

/*
GeoJSONSink. collects every written intersection as line strings from the node to the coordinate each arm is measured
at. writes from many goroutines are fine, the order of features is unspecified.
*/
type GeoJSONSink struct {
	mu        sync.Mutex
	graph     RoadGraph
	extractor *CoordinateExtractor
	fc        *geojson.FeatureCollection
}

func NewGeoJSONSink(graph RoadGraph) *GeoJSONSink {
	return &GeoJSONSink{
		graph:     graph,
		extractor: NewCoordinateExtractor(graph),
		fc:        geojson.NewFeatureCollection(),
	}
}

func (s *GeoJSONSink) Write(node datastructure.Index, intersection Intersection) {
	nodeCoord := s.graph.GetCoordinate(node)
	features := make([]*geojson.Feature, 0, len(intersection))
	for _, road := range intersection {
		armCoord := s.extractor.GetCoordinateAlongRoad(node, road.EdgeID, false, s.graph.GetTarget(road.EdgeID), 0)
		f := geojson.NewFeature(orb.LineString{
			orb.Point{nodeCoord.Lon, nodeCoord.Lat},
			orb.Point{armCoord.Lon, armCoord.Lat},
		})
		f.Properties["node"] = node
		f.Properties["edge"] = road.EdgeID
		f.Properties["angle"] = road.Angle
		f.Properties["bearing"] = road.Bearing
		f.Properties["entry_allowed"] = road.EntryAllowed
		features = append(features, f)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range features {
		s.fc.Append(f)
	}
}

func (s *GeoJSONSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fc.Features)
}

func (s *GeoJSONSink) Flush(filename string) error {
	s.mu.Lock()
	data, err := s.fc.MarshalJSON()
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}
	return os.WriteFile(filename, data, 0644)
}

package guidance

import (
	"github.com/spf13/viper"
)

type Config struct {
	// acceptance criteria of canMergeRoad, tried in order
	MergeStrategies []string
	// criteria that look at the whole intersection, tried by CanMerge after canMergeRoad
	IntersectionStrategies []string
	MaxJoiningDistance     float64
	// file for the geojson dump of merged intersections, empty disables it
	DebugGeoJSON string
}

func DefaultConfig() Config {
	return Config{
		MergeStrategies:        []string{SAME_DIRECTION_STRATEGY},
		IntersectionStrategies: []string{},
		MaxJoiningDistance:     DEFAULT_MAX_JOINING_DISTANCE,
	}
}

// LoadConfig. guidance.* keys from viper, call util.ReadConfig first.
func LoadConfig() Config {
	def := DefaultConfig()
	viper.SetDefault("guidance.merge_strategies", def.MergeStrategies)
	viper.SetDefault("guidance.intersection_strategies", def.IntersectionStrategies)
	viper.SetDefault("guidance.max_joining_distance", def.MaxJoiningDistance)
	viper.SetDefault("guidance.debug_geojson", "")

	return Config{
		MergeStrategies:        viper.GetStringSlice("guidance.merge_strategies"),
		IntersectionStrategies: viper.GetStringSlice("guidance.intersection_strategies"),
		MaxJoiningDistance:     viper.GetFloat64("guidance.max_joining_distance"),
		DebugGeoJSON:           viper.GetString("guidance.debug_geojson"),
	}
}

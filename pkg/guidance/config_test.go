package guidance

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Reset()
	cfg := LoadConfig()
	assert.Equal(t, DefaultConfig(), cfg)

	viper.Set("guidance.merge_strategies", []string{SAME_DIRECTION_STRATEGY, CONNECT_AGAIN_STRATEGY})
	viper.Set("guidance.intersection_strategies", []string{Y_ARM_STRATEGY})
	viper.Set("guidance.max_joining_distance", 20.0)
	viper.Set("guidance.debug_geojson", "merged.geojson")
	cfg = LoadConfig()
	assert.Equal(t, []string{SAME_DIRECTION_STRATEGY, CONNECT_AGAIN_STRATEGY}, cfg.MergeStrategies)
	assert.Equal(t, []string{Y_ARM_STRATEGY}, cfg.IntersectionStrategies)
	assert.Equal(t, 20.0, cfg.MaxJoiningDistance)
	assert.Equal(t, "merged.geojson", cfg.DebugGeoJSON)
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/guidance"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/http/usecases"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/logger"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/metrics"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	graphFile  = flag.String("graph", "./data/road_network.graph", "road network file written by the preprocessor")
	numWorkers = flag.Int("workers", 0, "number of workers, 0 uses every cpu")
)

// analyzer. offline run of the intersection analysis over every node of the road network.
func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}

	network, err := datastructure.ReadRoadNetwork(*graphFile)
	if err != nil {
		panic(err)
	}
	graph := network.Graph

	cfg := guidance.LoadConfig()
	var sink *guidance.GeoJSONSink
	var diagnostic guidance.DiagnosticSink
	if cfg.DebugGeoJSON != "" {
		sink = guidance.NewGeoJSONSink(graph)
		diagnostic = sink
	}

	generator, err := guidance.NewIntersectionGenerator(graph, network.Restrictions, network.Names, cfg,
		diagnostic, logger)
	if err != nil {
		panic(err)
	}

	// batch analysis never queries by location, no spatial index
	m := metrics.NewMetrics(prometheus.NewRegistry())
	service := usecases.NewIntersectionService(logger, graph, network.Names, generator, nil, m, *numWorkers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var nodes, intersections, merged, adjusted int
	start := time.Now()
	err = service.AnalyzeAll(ctx, func(ni usecases.NodeIntersections) {
		nodes++
		for _, in := range ni.Incoming {
			intersections++
			merged += in.Merged
			adjusted += in.Adjusted
		}
	})
	if err != nil {
		logger.Error("analysis interrupted", zap.Error(err))
	}

	logger.Info("Intersection analysis completed.",
		zap.Int("nodes", nodes),
		zap.Int("intersections", intersections),
		zap.Int("merged", merged),
		zap.Int("adjusted", adjusted),
		zap.Duration("duration", time.Since(start)))

	if sink != nil {
		if err := sink.Flush(cfg.DebugGeoJSON); err != nil {
			panic(err)
		}
		logger.Info("GeoJSON debug dump written.", zap.String("file", cfg.DebugGeoJSON), zap.Int("features", sink.Len()))
	}
}

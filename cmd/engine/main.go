package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/guidance"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/http"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/http/usecases"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/logger"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/metrics"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

var (
	graphFile    = flag.String("graph", "./data/road_network.graph", "road network file written by the preprocessor")
	useRateLimit = flag.Bool("rate_limit", false, "enable the global request rate limiter")
)

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

	generator, err := guidance.NewIntersectionGenerator(graph, network.Restrictions, network.Names,
		guidance.LoadConfig(), nil, logger)
	if err != nil {
		panic(err)
	}

	rtree := spatialindex.NewRtree()
	rtree.Build(graph, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	intersectionService := usecases.NewIntersectionService(logger, graph, network.Names, generator, rtree, m, 0)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	api := http.NewServer(logger)
	if _, err := api.Use(ctx, logger, *useRateLimit, intersectionService, m, registry); err != nil {
		panic(err)
	}

	signal := http.GracefulShutdown()

	logger.Info("Navigatorx Intersection Server Stopped", zap.String("signal", signal.String()))
	cleanup()
	if err := api.Wait(); err != nil && err != context.Canceled {
		logger.Error("api server", zap.Error(err))
	}
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}

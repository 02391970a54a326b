package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/logger"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/osmparser"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
	"go.uber.org/zap"
)

var (
	mapFile   = flag.String("f", "./data/yogyakarta.osm.pbf", "openstreetmap pbf file")
	graphFile = flag.String("o", "./data/road_network.graph", "output road network file")
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

	osmParser := osmparser.NewOsmParser(nil, logger)
	network, err := osmParser.Parse(context.Background(), *mapFile)
	if err != nil {
		panic(err)
	}

	if err := network.WriteRoadNetwork(*graphFile); err != nil {
		panic(err)
	}

	logger.Info("Preprocessing completed successfully.",
		zap.Int("nodes", network.Graph.NumberOfNodes()),
		zap.Int("edges", network.Graph.NumberOfEdges()),
		zap.Int("restrictions", network.Restrictions.NumberOfRestrictions()),
		zap.String("output", *graphFile))
}

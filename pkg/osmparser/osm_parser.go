package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lintang-b-s/navigatorx-intersection/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type node struct {
	id    int64
	coord geo.Coordinate
}

type restriction struct {
	fromWay         int64
	via             int64
	toWay           int64
	turnRestriction TurnRestriction
}

// osmWay. graph nodes created along the way, in the order they were visited.
type osmWay struct {
	nodes []datastructure.Index
}

// ScannerFactory. returns a fresh scanner positioned at the start of the osm data. called once per pass.
type ScannerFactory func(ctx context.Context) (osm.Scanner, error)

type OsmParser struct {
	wayNodeMap         map[int64]NodeType
	acceptedNodeMap    map[int64]geo.Coordinate
	barrierNodes       map[int64]struct{}
	trafficSignalNodes map[int64]struct{}
	nodeIDMap          map[int64]datastructure.Index
	nodeToOsmId        map[datastructure.Index]int64
	restrictions       []restriction
	ways               map[int64]osmWay
	edgeSet            map[datastructure.Index]map[datastructure.Index]struct{}

	builder *datastructure.NodeBasedGraphBuilder
	names   *datastructure.NameTable
	logger  *zap.Logger
}

func NewOsmParser(suffixes *datastructure.SuffixTable, logger *zap.Logger) *OsmParser {
	if suffixes == nil {
		suffixes = datastructure.NewDefaultSuffixTable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OsmParser{
		wayNodeMap:         make(map[int64]NodeType),
		acceptedNodeMap:    make(map[int64]geo.Coordinate),
		barrierNodes:       make(map[int64]struct{}),
		trafficSignalNodes: make(map[int64]struct{}),
		nodeIDMap:          make(map[int64]datastructure.Index),
		nodeToOsmId:        make(map[datastructure.Index]int64),
		restrictions:       make([]restriction, 0),
		ways:               make(map[int64]osmWay),
		edgeSet:            make(map[datastructure.Index]map[datastructure.Index]struct{}),
		builder:            datastructure.NewNodeBasedGraphBuilder(),
		names:              datastructure.NewNameTable(suffixes),
		logger:             logger,
	}
}

// NodeIndex. graph node created for an osm node id.
func (p *OsmParser) NodeIndex(osmID int64) (datastructure.Index, bool) {
	idx, ok := p.nodeIDMap[osmID]
	return idx, ok
}

func (p *OsmParser) OsmNodeID(u datastructure.Index) (int64, bool) {
	id, ok := p.nodeToOsmId[u]
	return id, ok
}

// Parse. reads an osm pbf file in two passes and builds the road network.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*datastructure.RoadNetwork, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.ParseWith(ctx, func(ctx context.Context) (osm.Scanner, error) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		// must not be parallel
		return osmpbf.New(ctx, f, 0), nil
	})
}

/*
ParseWith. first pass marks which way nodes are shared by several ways (junctions) and collects turn restriction
relations. second pass reads node coordinates and tags, then splits every accepted way at junctions, barriers and
traffic signals into graph edges.
*/
func (p *OsmParser) ParseWith(ctx context.Context, newScanner ScannerFactory) (*datastructure.RoadNetwork, error) {
	scanner, err := newScanner(ctx)
	if err != nil {
		return nil, err
	}
	countWays, err := p.scanJunctions(scanner)
	scanner.Close()
	if err != nil {
		return nil, fmt.Errorf("scanning junctions: %w", err)
	}

	scanner, err = newScanner(ctx)
	if err != nil {
		return nil, err
	}
	err = p.scanRoads(scanner, countWays)
	scanner.Close()
	if err != nil {
		return nil, fmt.Errorf("scanning roads: %w", err)
	}

	restrictions := p.resolveRestrictions()
	graph := p.builder.Build()

	p.logger.Sugar().Infof("number of vertices: %v", graph.NumberOfNodes())
	p.logger.Sugar().Infof("number of edges: %v", graph.NumberOfEdges())
	p.logger.Sugar().Infof("number of turn restrictions: %v", restrictions.NumberOfRestrictions())

	return datastructure.NewRoadNetwork(graph, restrictions, p.names), nil
}

func (p *OsmParser) scanJunctions(scanner osm.Scanner) (int, error) {
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()

		switch o.ObjectID().Type() {
		case osm.TypeWay:
			way := o.(*osm.Way)
			if len(way.Nodes) < 2 || !acceptOsmWay(way) {
				continue
			}
			if (countWays+1)%50000 == 0 {
				p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
			}
			countWays++

			for i, wayNode := range way.Nodes {
				id := int64(wayNode.ID)
				if _, ok := p.wayNodeMap[id]; !ok {
					if i == 0 || i == len(way.Nodes)-1 {
						p.wayNodeMap[id] = END_NODE
					} else {
						p.wayNodeMap[id] = BETWEEN_NODE
					}
				} else {
					p.wayNodeMap[id] = JUNCTION_NODE
				}
			}
		case osm.TypeRelation:
			p.processRestrictionRelation(o.(*osm.Relation))
		}
	}
	return countWays, scanner.Err()
}

// processRestrictionRelation. only restrictions with a via node are kept, via ways are not supported.
func (p *OsmParser) processRestrictionRelation(relation *osm.Relation) {
	if relation.Tags.Find("type") != "restriction" {
		return
	}
	tagVal := relation.Tags.Find("restriction")
	if tagVal == "" {
		tagVal = relation.Tags.Find("restriction:motorcar")
	}
	turnRestriction := parseTurnRestriction(tagVal)
	if turnRestriction == INVALID {
		return
	}

	// https://www.openstreetmap.org/api/0.6/relation/5710500
	rest := restriction{turnRestriction: turnRestriction}
	hasVia := false
	for _, member := range relation.Members {
		switch {
		case member.Role == "from" && member.Type == osm.TypeWay:
			rest.fromWay = member.Ref
		case member.Role == "to" && member.Type == osm.TypeWay:
			rest.toWay = member.Ref
		case member.Role == "via" && member.Type == osm.TypeNode:
			rest.via = member.Ref
			hasVia = true
		case member.Role == "via":
			return
		}
	}
	if !hasVia || rest.fromWay == 0 || rest.toWay == 0 {
		return
	}
	p.restrictions = append(p.restrictions, rest)
}

func (p *OsmParser) scanRoads(scanner osm.Scanner, totalWays int) error {
	countWays := 0
	countNodes := 0
	for scanner.Scan() {
		o := scanner.Object()

		switch o.ObjectID().Type() {
		case osm.TypeNode:
			if (countNodes+1)%500000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			p.processNode(o.(*osm.Node))
		case osm.TypeWay:
			way := o.(*osm.Way)
			if len(way.Nodes) < 2 || !acceptOsmWay(way) {
				continue
			}
			if (countWays+1)%100000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap ways: %d/%d...", countWays+1, totalWays)
			}
			countWays++
			p.processWay(way)
		}
	}
	return scanner.Err()
}

func (p *OsmParser) processNode(n *osm.Node) {
	id := int64(n.ID)
	if _, ok := p.wayNodeMap[id]; !ok {
		return
	}
	p.acceptedNodeMap[id] = geo.NewCoordinate(n.Lat, n.Lon)

	accessType := n.Tags.Find("access")
	barrierType := n.Tags.Find("barrier")
	if _, ok := acceptedBarrierType[barrierType]; ok && accessType == "no" {
		p.barrierNodes[id] = struct{}{}
	}

	if strings.Contains(n.Tags.Find("highway"), "traffic_signals") {
		p.trafficSignalNodes[id] = struct{}{}
	}
}

func (p *OsmParser) processWay(way *osm.Way) {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	roundabout := junction == "roundabout" || junction == "circular"

	mode := datastructure.TRAVEL_MODE_DRIVING
	if way.Tags.Find("route") == "ferry" {
		mode = datastructure.TRAVEL_MODE_FERRY
	}

	oneway, forward := getOneWay(way, roundabout)
	lanes := parseLanes(way.Tags, oneway)

	classification := datastructure.NewRoadClassification(datastructure.GetHighwayType(highway),
		datastructure.IsLinkRoad(highway), lanes)
	data := datastructure.NewEdgeData(p.names.GetID(sanitizeName(way.Tags.Find("name"))), classification,
		false, mode, roundabout, 0)

	// clipped extracts reference nodes outside the file
	wayNodes := make([]node, 0, len(way.Nodes))
	for _, wayNode := range way.Nodes {
		coord, ok := p.acceptedNodeMap[int64(wayNode.ID)]
		if !ok {
			continue
		}
		wayNodes = append(wayNodes, node{id: int64(wayNode.ID), coord: coord})
	}
	if len(wayNodes) < 2 {
		return
	}
	if !forward {
		wayNodes = util.ReverseG(wayNodes)
	}

	graphNodes := make([]datastructure.Index, 0, 2)
	waySegment := []node{wayNodes[0]}
	for i := 1; i < len(wayNodes); i++ {
		nodeData := wayNodes[i]
		waySegment = append(waySegment, nodeData)
		if i == len(wayNodes)-1 || p.isSplitNode(nodeData.id) {
			p.processSegment(waySegment, data, oneway, &graphNodes)
			waySegment = []node{nodeData}
		}
	}

	p.ways[int64(way.ID)] = osmWay{nodes: graphNodes}
}

func (p *OsmParser) processSegment(segment []node, data datastructure.EdgeData, oneway bool,
	graphNodes *[]datastructure.Index) {
	if len(segment) == 2 && segment[0].id == segment[1].id {
		// skip
		return
	} else if len(segment) > 2 && segment[0].id == segment[len(segment)-1].id {
		// loop
		p.addEdge(segment[0:len(segment)-1], data, oneway, graphNodes)
		p.addEdge(segment[len(segment)-2:], data, oneway, graphNodes)
	} else {
		p.addEdge(segment, data, oneway, graphNodes)
	}
}

func (p *OsmParser) addEdge(segment []node, data datastructure.EdgeData, oneway bool,
	graphNodes *[]datastructure.Index) {
	from := segment[0]
	to := segment[len(segment)-1]
	if from.id == to.id {
		return
	}

	u := p.getOrCreateNode(from)
	v := p.getOrCreateNode(to)
	if len(*graphNodes) == 0 || (*graphNodes)[len(*graphNodes)-1] != u {
		*graphNodes = append(*graphNodes, u)
	}
	*graphNodes = append(*graphNodes, v)

	// one road per node pair, the second of two parallel ways is dropped
	if _, ok := p.edgeSet[u][v]; ok {
		return
	}
	if _, ok := p.edgeSet[v][u]; ok {
		return
	}
	if _, ok := p.edgeSet[u]; !ok {
		p.edgeSet[u] = make(map[datastructure.Index]struct{})
	}
	p.edgeSet[u][v] = struct{}{}

	geometry := make([]geo.Coordinate, 0, len(segment)-2)
	for i := 1; i < len(segment)-1; i++ {
		geometry = append(geometry, segment[i].coord)
	}

	p.builder.AddRoad(u, v, data, geometry, oneway)
}

func (p *OsmParser) getOrCreateNode(n node) datastructure.Index {
	if idx, ok := p.nodeIDMap[n.id]; ok {
		return idx
	}
	idx := p.builder.AddNode(n.coord)
	p.nodeIDMap[n.id] = idx
	p.nodeToOsmId[idx] = n.id

	if _, ok := p.barrierNodes[n.id]; ok {
		p.builder.SetBarrier(idx)
	}
	if _, ok := p.trafficSignalNodes[n.id]; ok {
		p.builder.SetTrafficSignal(idx)
	}
	return idx
}

func (p *OsmParser) isSplitNode(nodeID int64) bool {
	if p.wayNodeMap[nodeID] == JUNCTION_NODE {
		return true
	}
	if _, ok := p.barrierNodes[nodeID]; ok {
		return true
	}
	_, ok := p.trafficSignalNodes[nodeID]
	return ok
}

/*
resolveRestrictions. a restriction names ways, the graph needs nodes. the from (to) node is the graph neighbour of the
via node along the from (to) way. restrictions whose ways or via node were dropped are ignored.
*/
func (p *OsmParser) resolveRestrictions() *datastructure.RestrictionMap {
	restrictions := datastructure.NewRestrictionMap()
	for _, rest := range p.restrictions {
		via, ok := p.nodeIDMap[rest.via]
		if !ok {
			continue
		}
		from, ok := p.neighbourOnWay(rest.fromWay, via)
		if !ok {
			continue
		}
		to, ok := p.neighbourOnWay(rest.toWay, via)
		if !ok {
			continue
		}

		if rest.turnRestriction.isOnly() {
			restrictions.AddOnly(from, via, to)
		} else if rest.turnRestriction.isNo() {
			restrictions.AddNo(from, via, to)
		}
	}
	return restrictions
}

// neighbourOnWay. ways are usually split at the via node, so it sits at one of the ends.
func (p *OsmParser) neighbourOnWay(wayID int64, via datastructure.Index) (datastructure.Index, bool) {
	way, ok := p.ways[wayID]
	if !ok {
		return datastructure.SPECIAL_NODEID, false
	}
	for i, u := range way.nodes {
		if u != via {
			continue
		}
		if i > 0 {
			return way.nodes[i-1], true
		}
		if i+1 < len(way.nodes) {
			return way.nodes[i+1], true
		}
	}
	return datastructure.SPECIAL_NODEID, false
}

func isRestricted(value string) bool {
	if value == "no" || value == "restricted" {
		return true
	}
	return false
}

func getReversedOneWay(way *osm.Way) (bool, bool, bool, bool) {
	vehicleForward := way.Tags.Find("vehicle:forward")
	motorVehicleForward := way.Tags.Find("motor_vehicle:forward")
	vehicleBackward := way.Tags.Find("vehicle:backward")
	motorVehicleBackward := way.Tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

// getOneWay. forward is false when the way may only be driven against its node order.
func getOneWay(way *osm.Way, roundabout bool) (oneway bool, forward bool) {
	okvf, okmvf, okvb, okmvb := getReversedOneWay(way)
	restricted := okvf || okmvf || okvb || okmvb

	switch val := way.Tags.Find("oneway"); val {
	case "yes", "1", "true", "-1":
		oneway = true
	case "no":
		oneway = restricted
	default:
		oneway = restricted || roundabout || way.Tags.Find("highway") == "motorway"
	}

	// okvf / okmvf = restricted/not allowed forward.
	forward = !(way.Tags.Find("oneway") == "-1" || okvf || okmvf)
	return oneway, forward
}

// parseLanes. lanes per direction, a bidirectional road splits its lanes count between both directions.
func parseLanes(tags osm.Tags, oneway bool) uint8 {
	if !oneway {
		if forward, err := strconv.Atoi(tags.Find("lanes:forward")); err == nil && forward > 0 {
			return uint8(min(forward, 255))
		}
	}
	lanes, err := strconv.Atoi(tags.Find("lanes"))
	if err != nil || lanes <= 0 {
		return 1
	}
	if !oneway && lanes > 1 {
		lanes = (lanes + 1) / 2
	}
	return uint8(min(lanes, 255))
}

// sanitizeName. names are stored one per line.
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		if _, ok := acceptedHighway[highway]; ok {
			return true
		}
	} else if junction != "" {
		return true
	} else if way.Tags.Find("route") == "ferry" {
		return true
	}
	return false
}

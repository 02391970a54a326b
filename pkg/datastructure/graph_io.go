package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/geo"
	"github.com/lintang-b-s/navigatorx-intersection/pkg/util"
)

var ErrInvalidGraphFile = errors.New("invalid graph file")

// RoadNetwork. everything the intersection analysis reads, written to disk by the preprocessor.
type RoadNetwork struct {
	Graph        *NodeBasedGraph
	Restrictions *RestrictionMap
	Names        *NameTable
}

func NewRoadNetwork(graph *NodeBasedGraph, restrictions *RestrictionMap, names *NameTable) *RoadNetwork {
	return &RoadNetwork{Graph: graph, Restrictions: restrictions, Names: names}
}

const (
	nodeFlagBarrier       = 1
	nodeFlagTrafficSignal = 2
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

/*
WriteRoadNetwork. bzip2 compressed text file:

	numNodes numEdges numPoints numNames numSuffixes numOnly numNo
	lat lon flags                                       (numNodes lines)
	from to nameID class link lanes reversed mode roundabout dist geometryStart geometryEnd   (numEdges lines)
	lat lon                                             (numPoints lines)
	name                                                (numNames - 1 lines, id 0 is the empty name)
	suffix                                              (numSuffixes lines)
	from via to                                         (numOnly + numNo lines)
*/
func (rn *RoadNetwork) WriteRoadNetwork(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)
	defer w.Flush()

	g := rn.Graph
	suffixes := rn.Names.GetSuffixTable().Suffixes()

	only := make([][3]Index, 0)
	rn.Restrictions.ForEachOnly(func(from, via, to Index) {
		only = append(only, [3]Index{from, via, to})
	})
	no := make([][3]Index, 0)
	rn.Restrictions.ForEachNo(func(from, via, to Index) {
		no = append(no, [3]Index{from, via, to})
	})

	fmt.Fprintf(w, "%d %d %d %d %d %d %d\n", g.NumberOfNodes(), g.NumberOfEdges(), len(g.globalPoints),
		rn.Names.Len(), len(suffixes), len(only), len(no))

	for u := 0; u < g.NumberOfNodes(); u++ {
		flags := 0
		if g.IsBarrier(Index(u)) {
			flags |= nodeFlagBarrier
		}
		if g.IsTrafficSignal(Index(u)) {
			flags |= nodeFlagTrafficSignal
		}
		c := g.coordinates[u]
		fmt.Fprintf(w, "%s %s %d\n", formatFloat(c.Lat), formatFloat(c.Lon), flags)
	}

	for u := 0; u < g.NumberOfNodes(); u++ {
		begin, end := g.GetAdjacentEdgeRange(Index(u))
		for e := begin; e < end; e++ {
			ed := g.edges[e]
			d := ed.data
			fmt.Fprintf(w, "%d %d %d %d %d %d %d %d %d %s %d %d\n", u, ed.target, d.NameID,
				d.RoadClassification.Class, boolToInt(d.RoadClassification.Link), d.RoadClassification.Lanes,
				boolToInt(d.Reversed), d.TravelMode, boolToInt(d.Roundabout), formatFloat(d.Distance),
				ed.geometryStart, ed.geometryEnd)
		}
	}

	for _, p := range g.globalPoints {
		fmt.Fprintf(w, "%s %s\n", formatFloat(p.Lat), formatFloat(p.Lon))
	}

	for id := 1; id < rn.Names.Len(); id++ {
		fmt.Fprintf(w, "%s\n", rn.Names.GetName(NameID(id)))
	}

	for _, s := range suffixes {
		fmt.Fprintf(w, "%s\n", s)
	}

	for _, r := range only {
		fmt.Fprintf(w, "%d %d %d\n", r[0], r[1], r[2])
	}
	for _, r := range no {
		fmt.Fprintf(w, "%d %d %d\n", r[0], r[1], r[2])
	}

	return nil
}

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return Index(u), nil
}

func parseIndices(tokens []string) ([]Index, error) {
	out := make([]Index, len(tokens))
	for i, tok := range tokens {
		v, err := ParseIndex(tok)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseCoordinate(tokens []string) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	lon, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return geo.NewCoordinate(lat, lon), nil
}

func parseEdge(tokens []string) (Index, pendingEdge, error) {
	if len(tokens) != 12 {
		return 0, pendingEdge{}, util.WrapErrorf(ErrInvalidGraphFile, util.ErrBadParamInput,
			"edge line has %d fields", len(tokens))
	}
	dist, err := strconv.ParseFloat(tokens[9], 64)
	if err != nil {
		return 0, pendingEdge{}, err
	}
	ints := append(append([]string{}, tokens[:9]...), tokens[10:]...)
	v, err := parseIndices(ints)
	if err != nil {
		return 0, pendingEdge{}, err
	}

	data := NewEdgeData(NameID(v[2]), NewRoadClassification(OsmHighwayType(v[3]), v[4] == 1, uint8(v[5])),
		v[6] == 1, TravelMode(v[7]), v[8] == 1, dist)
	return v[0], pendingEdge{from: v[0], to: v[1], data: data, geometryStart: v[9], geometryEnd: v[10]}, nil
}

func ReadRoadNetwork(filename string) (*RoadNetwork, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}
	header, err := parseIndices(util.Fields(line))
	if err != nil {
		return nil, err
	}
	if len(header) != 7 {
		return nil, util.WrapErrorf(ErrInvalidGraphFile, util.ErrBadParamInput, "header has %d fields", len(header))
	}
	numNodes, numEdges, numPoints := int(header[0]), int(header[1]), int(header[2])
	numNames, numSuffixes, numOnly, numNo := int(header[3]), int(header[4]), int(header[5]), int(header[6])

	g := &NodeBasedGraph{
		coordinates:  make([]geo.Coordinate, numNodes),
		firstOut:     make([]Index, numNodes+1),
		edges:        make([]edge, numEdges),
		globalPoints: make([]geo.Coordinate, numPoints),
	}

	for u := 0; u < numNodes; u++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		tokens := util.Fields(line)
		if len(tokens) != 3 {
			return nil, util.WrapErrorf(ErrInvalidGraphFile, util.ErrBadParamInput, "node line %d: %q", u, line)
		}
		g.coordinates[u], err = parseCoordinate(tokens)
		if err != nil {
			return nil, err
		}
		flags, err := strconv.Atoi(tokens[2])
		if err != nil {
			return nil, err
		}
		if flags&nodeFlagBarrier != 0 {
			g.barrierFlag = setFlag(g.barrierFlag, Index(u))
		}
		if flags&nodeFlagTrafficSignal != 0 {
			g.trafficSignalFlag = setFlag(g.trafficSignalFlag, Index(u))
		}
	}

	prevFrom := Index(0)
	for i := 0; i < numEdges; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		from, pe, err := parseEdge(util.Fields(line))
		if err != nil {
			return nil, err
		}
		if int(from) >= numNodes || int(pe.to) >= numNodes || from < prevFrom {
			return nil, util.WrapErrorf(ErrInvalidGraphFile, util.ErrBadParamInput, "edge line %d: %q", i, line)
		}
		prevFrom = from
		g.firstOut[from+1]++
		g.edges[i] = edge{target: pe.to, data: pe.data, geometryStart: pe.geometryStart, geometryEnd: pe.geometryEnd}
	}
	for u := 0; u < numNodes; u++ {
		g.firstOut[u+1] += g.firstOut[u]
	}

	for i := 0; i < numPoints; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		tokens := util.Fields(line)
		if len(tokens) != 2 {
			return nil, util.WrapErrorf(ErrInvalidGraphFile, util.ErrBadParamInput, "point line %d: %q", i, line)
		}
		g.globalPoints[i], err = parseCoordinate(tokens)
		if err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, numNames)
	for i := 1; i < numNames; i++ {
		name, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	suffixes := make([]string, 0, numSuffixes)
	for i := 0; i < numSuffixes; i++ {
		suffix, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		suffixes = append(suffixes, suffix)
	}

	nameTable := NewNameTable(NewSuffixTable(suffixes))
	for _, name := range names {
		nameTable.GetID(name)
	}

	restrictions := NewRestrictionMap()
	for i := 0; i < numOnly+numNo; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		r, err := parseIndices(util.Fields(line))
		if err != nil {
			return nil, err
		}
		if len(r) != 3 {
			return nil, util.WrapErrorf(ErrInvalidGraphFile, util.ErrBadParamInput, "restriction line %d: %q", i, line)
		}
		if i < numOnly {
			restrictions.AddOnly(r[0], r[1], r[2])
		} else {
			restrictions.AddNo(r[0], r[1], r[2])
		}
	}

	return NewRoadNetwork(g, restrictions, nameTable), nil
}

package osmparser

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/extractor"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	LOG_INTERVAL = 50000
)

// OSMScanner is what both the PBF and the XML decoder provide.
type OSMScanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

type ScannerFactory func(ctx context.Context, r io.Reader) OSMScanner

func PBFScanner(ctx context.Context, r io.Reader) OSMScanner {
	return osmpbf.New(ctx, r, 0)
}

func XMLScanner(ctx context.Context, r io.Reader) OSMScanner {
	return osmxml.New(ctx, r)
}

// ScannerFor picks the decoder by file extension: .osm and .xml are read as XML, anything else as PBF.
func ScannerFor(path string) ScannerFactory {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osm", ".xml":
		return XMLScanner
	default:
		return PBFScanner
	}
}

type ParseStats struct {
	Ways                 int
	AcceptedWays         int
	Nodes                int
	AcceptedNodes        int
	Restrictions         int
	AcceptedRestrictions int
}

/*
OsmParser scans an OpenStreetMap extract twice. The first pass runs the car profile over
the ways and collects the restriction relations, which tells which nodes are referenced.
The second pass only keeps those nodes.
*/
type OsmParser struct {
	ec         *extractor.ExtractionContainers
	profile    *CarProfile
	logger     *zap.Logger
	wayNodeMap map[int64]struct{}
	stats      ParseStats
}

func NewOSMParser(ec *extractor.ExtractionContainers, logger *zap.Logger) *OsmParser {
	return &OsmParser{
		ec:         ec,
		profile:    NewCarProfile(ec.Names),
		logger:     logger,
		wayNodeMap: make(map[int64]struct{}),
	}
}

func (p *OsmParser) Parse(ctx context.Context, mapFile string) (ParseStats, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return p.stats, errors.Wrapf(err, "open %s", mapFile)
	}
	defer f.Close()

	return p.ParseReader(ctx, f, ScannerFor(mapFile))
}

func (p *OsmParser) ParseReader(ctx context.Context, r io.ReadSeeker, newScanner ScannerFactory) (ParseStats, error) {
	// must not be parallel
	if err := p.scan(ctx, newScanner(ctx, r), p.scanWaysAndRelations); err != nil {
		return p.stats, err
	}
	p.logger.Info("scanned ways and relations",
		zap.Int("accepted_ways", p.stats.AcceptedWays),
		zap.Int("restrictions", p.stats.AcceptedRestrictions),
		zap.Int("referenced_nodes", len(p.wayNodeMap)))

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return p.stats, errors.Wrap(err, "rewind map file")
	}
	if err := p.scan(ctx, newScanner(ctx, r), p.scanNodes); err != nil {
		return p.stats, err
	}
	p.logger.Info("scanned nodes",
		zap.Int("nodes", p.stats.Nodes),
		zap.Int("accepted_nodes", p.stats.AcceptedNodes),
		zap.Int("barriers", len(p.ec.BarrierNodes)),
		zap.Int("traffic_lights", len(p.ec.TrafficLights)))
	return p.stats, nil
}

func (p *OsmParser) scan(ctx context.Context, scanner OSMScanner, handle func(o osm.Object)) error {
	defer scanner.Close()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		handle(scanner.Object())
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scan map file")
	}
	return nil
}

func (p *OsmParser) scanWaysAndRelations(o osm.Object) {
	switch o.ObjectID().Type() {
	case osm.TypeWay:
		p.handleWay(o.(*osm.Way))
	case osm.TypeRelation:
		p.handleRelation(o.(*osm.Relation))
	}
}

func (p *OsmParser) scanNodes(o osm.Object) {
	if o.ObjectID().Type() == osm.TypeNode {
		p.handleNode(o.(*osm.Node))
	}
}

func (p *OsmParser) handleWay(way *osm.Way) {
	p.stats.Ways++
	attrs, ok := p.profile.ProcessWay(way)
	if !ok {
		return
	}
	if (p.stats.AcceptedWays+1)%LOG_INTERVAL == 0 {
		p.logger.Info("reading openstreetmap ways", zap.Int("count", p.stats.AcceptedWays+1))
	}
	p.stats.AcceptedWays++

	nodes := make([]da.OSMNodeID, len(way.Nodes))
	for i, node := range way.Nodes {
		nodes[i] = da.OSMNodeID(node.ID)
		p.wayNodeMap[int64(node.ID)] = struct{}{}
	}
	p.ec.AddWay(extractor.NewInternalWay(da.OSMWayID(way.ID), nodes, attrs))
}

func (p *OsmParser) handleRelation(relation *osm.Relation) {
	if relation.Tags.Find("type") != "restriction" {
		return
	}
	p.stats.Restrictions++
	r, ok, err := parseRestrictionRelation(relation)
	if err != nil {
		if util.Code(err) != util.ErrFilterableData {
			p.logger.Error("parsing restriction", zap.Error(err))
		} else {
			p.logger.Debug("skipping restriction", zap.Error(err))
		}
		return
	}
	if !ok {
		return
	}
	p.stats.AcceptedRestrictions++
	if r.Type == da.NODE_RESTRICTION {
		p.wayNodeMap[int64(r.ViaNode)] = struct{}{}
	}
	p.ec.AddRestriction(r)
}

func (p *OsmParser) handleNode(node *osm.Node) {
	if (p.stats.Nodes+1)%LOG_INTERVAL == 0 {
		p.logger.Info("processing openstreetmap nodes", zap.Int("count", p.stats.Nodes+1))
	}
	p.stats.Nodes++

	if _, ok := p.wayNodeMap[int64(node.ID)]; !ok {
		return
	}
	p.stats.AcceptedNodes++
	p.ec.AddNode(da.NewExternalNode(da.OSMNodeID(node.ID), node.Lat, node.Lon,
		isBarrier(node.Tags), isTrafficLight(node.Tags)))
}

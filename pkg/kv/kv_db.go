package kv

import (
	"context"
	"math"

	"github.com/dgraph-io/badger/v4"
	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/pkg/errors"
	"github.com/twpayne/go-polyline"
	"github.com/uber/h3-go/v4"
	"go.uber.org/zap"
)

const (
	H3_RESOLUTION = 9
	BATCH_SIZE    = 1000
)

var (
	ErrEdgesNotFound = errors.New("edges not found")
)

// KVEdge is a compressed edge as stored under the H3 cell of its source node.
type KVEdge struct {
	Source   uint32
	Target   uint32
	Weight   int32
	Polyline string
}

// Coordinates decodes the edge geometry, source and target included.
func (e KVEdge) Coordinates() ([]da.Coordinate, error) {
	coords, _, err := polyline.DecodeCoords([]byte(e.Polyline))
	if err != nil {
		return nil, errors.Wrap(err, "decoding edge polyline")
	}
	result := make([]da.Coordinate, 0, len(coords))
	for _, c := range coords {
		result = append(result, da.NewCoordinate(c[0], c[1]))
	}
	return result, nil
}

// IndexedEdge is the input of BuildH3IndexedEdges.
type IndexedEdge struct {
	Source   da.Index
	Target   da.Index
	Weight   da.EdgeWeight
	Geometry []da.Coordinate
}

func NewKVEdge(e IndexedEdge) KVEdge {
	coords := make([][]float64, 0, len(e.Geometry))
	for _, c := range e.Geometry {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return KVEdge{
		Source:   uint32(e.Source),
		Target:   uint32(e.Target),
		Weight:   int32(e.Weight),
		Polyline: string(polyline.EncodeCoords(coords)),
	}
}

type KVDB struct {
	db     *badger.DB
	logger *zap.Logger
}

func NewKVDB(db *badger.DB, logger *zap.Logger) *KVDB {
	return &KVDB{db: db, logger: logger}
}

// OpenKVDB opens (or creates) the badger directory. An empty dir keeps everything in memory.
func OpenKVDB(dir string, logger *zap.Logger) (*KVDB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger at %q", dir)
	}
	return NewKVDB(db, logger), nil
}

func cellOf(lat, lon float64) h3.Cell {
	return h3.LatLngToCell(h3.NewLatLng(lat, lon), H3_RESOLUTION)
}

// BuildH3IndexedEdges groups the edges by the H3 cell of their first geometry point and stores
// every cell's edges under the cell id.
func (k *KVDB) BuildH3IndexedEdges(ctx context.Context, edges []IndexedEdge) error {
	k.logger.Sugar().Infof("creating & saving h3 indexed edges to key-value db...")

	cells := make(map[string][]KVEdge)
	order := make([]string, 0)
	for i := range edges {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "building h3 edge index")
		default:
		}

		if len(edges[i].Geometry) == 0 {
			continue
		}
		start := edges[i].Geometry[0]
		key := cellOf(start.Lat, start.Lon).String()
		if _, ok := cells[key]; !ok {
			order = append(order, key)
		}
		cells[key] = append(cells[key], NewKVEdge(edges[i]))
	}

	batches := make([]batchData, 0, BATCH_SIZE)
	for _, key := range order {
		batches = append(batches, batchData{key: key, value: cells[key]})
		if len(batches) == BATCH_SIZE {
			if err := k.saveBatchEdges(ctx, batches); err != nil {
				return err
			}
			batches = make([]batchData, 0, BATCH_SIZE)
		}
	}

	if len(batches) > 0 {
		if err := k.saveBatchEdges(ctx, batches); err != nil {
			return err
		}
	}

	k.logger.Sugar().Infof("saved %d edges in %d h3 cells", len(edges), len(order))
	return nil
}

type batchData struct {
	key   string
	value []KVEdge
}

func (k *KVDB) saveBatchEdges(ctx context.Context, batchData []batchData) error {
	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for _, data := range batchData {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "saving h3 cells")
		default:
		}

		val, err := encodeEdges(data.value)
		if err != nil {
			return err
		}
		if err := batch.Set([]byte(data.key), val); err != nil {
			return errors.Wrapf(err, "setting cell %s", data.key)
		}
	}

	if err := batch.Flush(); err != nil {
		return errors.Wrap(err, "flushing h3 cells")
	}
	return nil
}

func (k *KVDB) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

func (k *KVDB) getCell(cell h3.Cell) ([]KVEdge, error) {
	val, err := k.get([]byte(cell.String()))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []KVEdge{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading cell %s", cell.String())
	}
	return loadEdges(val)
}

// GetEdgesInCell returns the edges whose source lies in the H3 cell containing (lat, lon).
func (k *KVDB) GetEdgesInCell(lat, lon float64) ([]KVEdge, error) {
	return k.getCell(cellOf(lat, lon))
}

// GetNearestEdges widens the search ring by ring around (lat, lon) until some edges are found,
// starting with the cells covering searchRadiusKm.
func (k *KVDB) GetNearestEdges(lat, lon, searchRadiusKm float64, maxRings int) ([]KVEdge, error) {
	cells := kRingIndexesArea(lat, lon, searchRadiusKm)

	edges := make([]KVEdge, 0)
	for _, cell := range cells {
		cellEdges, err := k.getCell(cell)
		if err != nil {
			return nil, err
		}
		edges = append(edges, cellEdges...)
	}
	if len(edges) > 0 {
		return edges, nil
	}

	origin := cells[0]
	seen := make(map[h3.Cell]struct{}, len(cells))
	for _, c := range cells {
		seen[c] = struct{}{}
	}
	for ring := 1; ring <= maxRings && len(edges) == 0; ring++ {
		for _, cell := range h3.GridDisk(origin, ring) {
			if _, ok := seen[cell]; ok {
				continue
			}
			seen[cell] = struct{}{}
			cellEdges, err := k.getCell(cell)
			if err != nil {
				return nil, err
			}
			edges = append(edges, cellEdges...)
		}
	}

	if len(edges) == 0 {
		return nil, ErrEdgesNotFound
	}
	return edges, nil
}

// kRingIndexesArea returns the origin cell first, followed by the disk covering searchRadiusKm.
func kRingIndexesArea(lat, lon, searchRadiusKm float64) []h3.Cell {
	origin := cellOf(lat, lon)
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea
	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}

	disk := h3.GridDisk(origin, radius)
	cells := make([]h3.Cell, 0, len(disk))
	cells = append(cells, origin)
	for _, c := range disk {
		if c != origin {
			cells = append(cells, c)
		}
	}
	return cells
}

func (k *KVDB) Close() error {
	return k.db.Close()
}

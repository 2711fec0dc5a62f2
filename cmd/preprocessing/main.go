package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/lintang-b-s/navigatorx-extractor/pkg/extractor"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/logger"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/osmparser"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	mapFile      = flag.String("f", "solo_jogja.osm.pbf", "openstreetmap file (.osm.pbf, .osm or .xml) to extract the road network from")
	outputBase   = flag.String("o", "", "path prefix of the output files, defaults to the map file without its extension")
	workers      = flag.Int("workers", 0, "goroutines used to prepare edges and restrictions, 0 = number of cpus")
	compress     = flag.Bool("compress", true, "zstd compress the output files")
	metricsFile  = flag.String("metrics", "", "write the run's prometheus metrics to this .prom file")
	spatialIndex = flag.Bool("spatialindex", false, "build the h3 edge index next to the output files")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile   = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *cpuprofile != "" {
		// https://go.dev/blog/pprof
		// ./bin/navigatorx-preprocessing -cpuprofile=navigatorxcpu.prof -memprofile=navigatorxmem.mprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("creating cpu profile", zap.Error(err))
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, log); err != nil {
		log.Error("preprocessing failed", zap.Error(err))
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.Logger) error {
	base := *outputBase
	if base == "" {
		base = defaultOutputBase(*mapFile)
	}
	config := extractor.NewConfig(base)
	config.Workers = *workers
	config.Compress = *compress
	config.MetricsFile = *metricsFile
	if *spatialIndex {
		config.SpatialIndexDir = base + storage.SPATIAL_INDEX_DIR_SUFFIX
	}
	if err := config.Validate(); err != nil {
		return err
	}

	metrics := extractor.NewMetrics(prometheus.NewRegistry())
	ec := extractor.NewExtractionContainers(log, metrics, config.Workers)

	log.Info("reading osm file", zap.String("file", *mapFile))
	if _, err := osmparser.NewOSMParser(ec, log).Parse(ctx, *mapFile); err != nil {
		return err
	}
	recordMemProfile(memprofile, "parsing_osm_data")

	result, err := extractor.NewExtractor(config, log, metrics).Run(ctx, ec, extractor.DurationProfile{})
	if err != nil {
		return err
	}
	recordMemProfile(memprofile, "finish_extraction")

	log.Info("road network ready",
		zap.String("output", base),
		zap.Int("nodes", result.Stats.NodesAfter),
		zap.Int("edges", result.Graph.NumberOfDrivableEdges()),
		zap.Int("duplicated_nodes", result.WayRestrictionMap.NumberOfDuplicatedNodes()))
	return nil
}

func defaultOutputBase(mapFile string) string {
	for _, ext := range []string{".osm.pbf", ".pbf", ".osm", ".xml"} {
		if strings.HasSuffix(mapFile, ext) {
			return strings.TrimSuffix(mapFile, ext)
		}
	}
	return mapFile
}

func recordMemProfile(memprofile *string, name string) {
	if *memprofile != "" {
		path := strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
		f, err := os.Create(path)
		if err != nil {
			return
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}

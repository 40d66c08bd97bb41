package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"osm2rdf.sophox.org/internal/filepipeline"
	"osm2rdf.sophox.org/internal/obslog"
	"osm2rdf.sophox.org/internal/osmhandler"
	"osm2rdf.sophox.org/internal/osmsource"
)

var parseCmd = &cobra.Command{
	Use:   "parse <input.pbf> <output_dir>",
	Short: "bulk-convert a .osm.pbf extract into gzip-compressed Turtle files",
	Args:  cobra.ExactArgs(2),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().Int("max-statements", 20000, "flush a new output file after roughly this many thousand statements")
	parseCmd.Flags().Int("workers", 4, "number of concurrent file-writer workers")
	viper.BindPFlag("parse.max_statements", parseCmd.Flags().Lookup("max-statements"))
	viper.BindPFlag("parse.workers", parseCmd.Flags().Lookup("workers"))
}

func runParse(cmd *cobra.Command, args []string) (err error) {
	inputPath, outputDir := args[0], args[1]
	logger := obslog.CommandLogger(rootLogger(), "parse")
	defer func() {
		if r := obslog.LogPanic(logger); r != nil {
			err = fmt.Errorf("parse %s: panic: %v", inputPath, r)
		}
	}()

	maxStatementsThousands := viper.GetInt("parse.max_statements")
	if maxStatementsThousands <= 0 {
		maxStatementsThousands = 20000
	}
	workers := viper.GetInt("parse.workers")
	if workers <= 0 {
		workers = 4
	}

	skipWayGeo := viper.GetBool("skip_way_geo")
	nodesFile := viper.GetString("nodes_file")
	strategy, err := osmsource.ParseCacheStrategy(viper.GetString("cache_strategy"))
	if err != nil {
		return err
	}

	var handler *osmhandler.Handler
	var producer *filepipeline.Producer
	start := time.Now()

	err = obslog.LogOperation(logger, "parse", func() error {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output dir %s: %w", outputDir, err)
		}

		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", inputPath, err)
		}
		defer f.Close()

		nThreads := runtime.GOMAXPROCS(0)
		reader := osmsource.NewPBFReader(context.Background(), f, nThreads, strategy, nodesFile)
		defer reader.Close()

		pool := filepipeline.NewPool(outputDir, workers, rootLogger())
		pool.Start()

		producer = filepipeline.NewProducer(pool, maxStatementsThousands*1000, func() string {
			return handler.FormatStats()
		})
		handler = osmhandler.New(producer, osmhandler.Options{AddWayLocation: !skipWayGeo})

		err = reader.Each(func(obj osmsource.Object) error {
			switch obj.Kind {
			case osmsource.KindNode:
				return handler.VisitNode(obj)
			case osmsource.KindWay:
				return handler.VisitWay(obj)
			case osmsource.KindRelation:
				return handler.VisitRelation(obj)
			}
			return nil
		})
		if err != nil {
			producer.Finish()
			return fmt.Errorf("parse %s: %w", inputPath, err)
		}
		if err := reader.Err(); err != nil {
			producer.Finish()
			return fmt.Errorf("scan %s: %w", inputPath, err)
		}

		if err := producer.Finish(); err != nil {
			return fmt.Errorf("flush output files: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if stats := handler.FormatStats(); stats != "" {
		fields := obslog.IngestFields(stats, producer.FilesWritten(), time.Since(start))
		logger.WithFields(fields).Info("parse complete")
	}
	return nil
}

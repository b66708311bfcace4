// SPDX-License-Identifier: MIT

// Command changedet runs a change detection over a synthetic Sentinel-2
// collection and prints the change polygons as GeoJSON.
//
//	changedet -method iw -habitat forest -date 2019-06-01 -min-acres 1
//	changedet -method irmad -debug
//	changedet -lda tables.yaml -table forest
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/alterdet/composite"
	"github.com/katalvlaran/alterdet/lda"
	"github.com/katalvlaran/alterdet/pipeline"
	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/vectorize"
)

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	method := flag.String("method", "iw", "Detector: iw or irmad")
	habitat := flag.String("habitat", lda.Forest, "Built-in LDA table ("+strings.Join(lda.Habitats(), ", ")+")")
	ldaFile := flag.String("lda", "", "YAML file of LDA tables; overrides -habitat")
	table := flag.String("table", "", "Table to use from -lda")
	date := flag.String("date", "2019-06-01", "Date of interest (YYYY-MM-DD)")
	minAcres := flag.Float64("min-acres", 0, "Drop polygons smaller than this")
	size := flag.Int("size", 64, "Scene width and height in pixels")
	shift := flag.Float64("shift", 600, "Reflectance change inside the clearing")
	seed := flag.Int64("seed", 1, "Noise seed")
	flag.Parse()

	logger := initLogger(*debugMode)
	if err := run(logger, config{
		method:   *method,
		habitat:  *habitat,
		ldaFile:  *ldaFile,
		table:    *table,
		date:     *date,
		minAcres: *minAcres,
		size:     *size,
		shift:    *shift,
		seed:     *seed,
	}); err != nil {
		logger.WithError(err).Error("changedet failed")
		os.Exit(1)
	}
}

type config struct {
	method, habitat, ldaFile, table, date string
	minAcres, shift                       float64
	size                                  int
	seed                                  int64
}

func run(logger *logrus.Logger, cfg config) error {
	doi, err := time.Parse(time.DateOnly, cfg.date)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if cfg.size < 8 {
		return fmt.Errorf("size %d: need at least 8 pixels", cfg.size)
	}

	req := pipeline.Request{ID: "demo", AOI: raster.FullRegion(), Date: doi, Habitat: cfg.habitat, MinAcres: cfg.minAcres}
	if cfg.ldaFile != "" {
		set, err := lda.LoadFile(cfg.ldaFile)
		if err != nil {
			return err
		}
		c, ok := set[cfg.table]
		if !ok {
			return fmt.Errorf("table %q not in %s", cfg.table, cfg.ldaFile)
		}
		req.Coefficients = c
	}

	var m pipeline.Method
	switch cfg.method {
	case "iw":
		m = pipeline.MethodIW
	case "irmad":
		m = pipeline.MethodIRMAD
	default:
		return fmt.Errorf("%w: %q", pipeline.ErrUnknownMethod, cfg.method)
	}

	q := cfg.size / 4
	clearing := image.Rect(q, q, 2*q, 2*q)
	coll, err := synthetic(cfg.size, cfg.size, doi, clearing, cfg.shift, cfg.seed)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"scenes":   coll.Len(),
		"size":     cfg.size,
		"clearing": clearing.String(),
	}).Info("synthetic collection ready")

	comp := composite.NewCompositor(coll, pipeline.DefaultOptions().Bands.Spectral(),
		composite.WithMaskers(composite.QA60Mask(bandQA)),
		composite.WithLogger(logger))
	runner, err := pipeline.NewRunner(comp, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := runner.Batch(ctx, []pipeline.Request{req}, m)[0]
	if out.Err != nil {
		return out.Err
	}
	var fs []vectorize.Feature
	if out.IW != nil {
		fs = out.IW.Features
	} else {
		fs = out.IRMAD.Features
	}

	b, err := vectorize.FeatureCollection(fs).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))

	return err
}

// initLogger configures the level and formatter: colored text in debug
// mode, JSON otherwise.
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

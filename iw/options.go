// SPDX-License-Identifier: MIT

package iw

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const (
	// DefaultIterations is the number of reweighting passes after the first
	// z-score pass.
	DefaultIterations = 10

	// DefaultFloor bounds the reweighting factor away from zero.
	DefaultFloor = 0.001

	// DefaultInitialStride samples the first z-score pass on a coarser grid.
	DefaultInitialStride = 10
)

var (
	// ErrInvalidIterations indicates a negative pass count.
	ErrInvalidIterations = errors.New("iw: iterations must be >= 0")

	// ErrMissingRole indicates a spectral role absent from a raster.
	ErrMissingRole = errors.New("iw: raster lacks a required band")

	// ErrNilInput indicates a nil raster or metric set.
	ErrNilInput = errors.New("iw: nil input")
)

const (
	panicFloorInvalid   = "iw: WithFloor: floor must be in (0,1]"
	panicLoggerNil      = "iw: WithLogger: logger must not be nil"
	panicModeBinsSmall  = "iw: WithModeBins: n must be >= 2"
	panicWorkersInvalid = "iw: WithWorkers: n must be >= 1"
)

// Options configures z-scoring and reweighting.
type Options struct {
	InitialRegion raster.Region      // region of the first CalcZP pass
	Region        raster.Region      // region of the metric statistics and later passes
	Floor         float64            // minimum reweighting factor
	ModeBins      int                // histogram buckets of the mode estimate
	Workers       int                // concurrent reduction tiles
	Logger        logrus.FieldLogger // per-pass diagnostics
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns full-grid statistics, a coarse first pass, a 0.001
// floor and a discarding logger.
func DefaultOptions() Options {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return Options{
		InitialRegion: raster.FullRegion().WithStride(DefaultInitialStride),
		Region:        raster.FullRegion(),
		Floor:         DefaultFloor,
		ModeBins:      stats.DefaultModeBins,
		Workers:       runtime.GOMAXPROCS(0),
		Logger:        l,
	}
}

// WithRegion sets the region of every pass; the first pass keeps its own
// stride unless WithInitialRegion is given too.
func WithRegion(region raster.Region) Option {
	return func(o *Options) {
		stride := o.InitialRegion.Stride
		o.Region = region
		o.InitialRegion = region.WithStride(stride)
	}
}

// WithInitialRegion sets the region of the first pass.
func WithInitialRegion(region raster.Region) Option {
	return func(o *Options) { o.InitialRegion = region }
}

// WithFloor sets the minimum reweighting factor.
func WithFloor(floor float64) Option {
	if floor <= 0 || floor > 1 {
		panic(panicFloorInvalid)
	}
	return func(o *Options) { o.Floor = floor }
}

// WithModeBins sets the histogram resolution of the mode estimate.
func WithModeBins(n int) Option {
	if n < 2 {
		panic(panicModeBinsSmall)
	}
	return func(o *Options) { o.ModeBins = n }
}

// WithWorkers bounds the number of concurrent reduction tiles.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}
	return func(o *Options) { o.Workers = n }
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	if logger == nil {
		panic(panicLoggerNil)
	}
	return func(o *Options) { o.Logger = logger }
}

func gatherOptions(user ...Option) Options {
	o := DefaultOptions()
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}

func (o Options) statsOptions() []stats.Option {
	return []stats.Option{stats.WithWorkers(o.Workers), stats.WithModeBins(o.ModeBins)}
}

// iwErrorf wraps err with an operation tag. Only call it with err != nil.
func iwErrorf(op string, err error) error {
	return fmt.Errorf("iw.%s: %w", op, err)
}

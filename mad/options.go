// SPDX-License-Identifier: MIT

package mad

import (
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const (
	// DefaultTolerance is the largest change of any canonical correlation
	// between two passes that still counts as converged.
	DefaultTolerance = 0.001

	// DefaultNoChangeThreshold is the p-value above which Normalize treats a
	// pixel as unchanged.
	DefaultNoChangeThreshold = 0.9

	// sigmaFloor keeps σ² = 2(1-ρ) away from zero for perfectly correlated pairs.
	sigmaFloor = 1e-12
)

const (
	panicToleranceInvalid = "mad: WithTolerance: tol must be > 0"
	panicWorkersInvalid   = "mad: WithWorkers: n must be >= 1"
	panicLoggerNil        = "mad: WithLogger: logger must not be nil"
)

// Options configures a MAD pass and the IR-MAD driver.
type Options struct {
	Region    raster.Region      // statistics AOI and sampling stride
	Tolerance float64            // convergence bound on max |Δρ|
	Logger    logrus.FieldLogger // per-iteration diagnostics
	Workers   int                // concurrent tiles for region statistics
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns full-grid statistics, a 0.001 tolerance and a
// logger that discards everything.
func DefaultOptions() Options {
	return Options{
		Region:    raster.FullRegion(),
		Tolerance: DefaultTolerance,
		Logger:    discardLogger(),
		Workers:   runtime.GOMAXPROCS(0),
	}
}

// WithRegion restricts statistics to region.
func WithRegion(region raster.Region) Option {
	return func(o *Options) { o.Region = region }
}

// WithTolerance sets the convergence bound.
func WithTolerance(tol float64) Option {
	if tol <= 0 {
		panic(panicToleranceInvalid)
	}
	return func(o *Options) { o.Tolerance = tol }
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	if logger == nil {
		panic(panicLoggerNil)
	}
	return func(o *Options) { o.Logger = logger }
}

// WithWorkers bounds the number of concurrent reduction tiles.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}
	return func(o *Options) { o.Workers = n }
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
	return []stats.Option{stats.WithWorkers(o.Workers)}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

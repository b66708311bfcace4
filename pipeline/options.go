// SPDX-License-Identifier: MIT

package pipeline

import (
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/alterdet/changemask"
	"github.com/katalvlaran/alterdet/iw"
	"github.com/katalvlaran/alterdet/mad"
	"github.com/katalvlaran/alterdet/vectorize"
)

const (
	// DefaultMaxIterations is the IR-MAD iteration budget.
	DefaultMaxIterations = 50

	// DefaultChangeAlpha is the IR-MAD p-value at or below which a pixel is
	// marked as change.
	DefaultChangeAlpha = 0.01

	// DefaultPixelSize is the Sentinel-2 ground sampling distance in metres.
	DefaultPixelSize = 10
)

const (
	panicIterationsInvalid = "pipeline: WithIterations: n must be >= 0"
	panicMaxIterInvalid    = "pipeline: WithMaxIterations: n must be >= 1"
	panicAlphaInvalid      = "pipeline: WithChangeAlpha: alpha must be in (0,1)"
	panicStrideInvalid     = "pipeline: WithInitialStride: stride must be >= 1"
	panicWorkersInvalid    = "pipeline: WithWorkers: n must be >= 1"
	panicLoggerNil         = "pipeline: WithLogger: logger must not be nil"
)

// Options configures a Runner.
type Options struct {
	Bands             iw.Bands
	Iterations        int     // IW reweighting passes
	InitialStride     int     // IW first-pass sampling stride
	MaxIterations     int     // IR-MAD budget
	ChangeAlpha       float64 // IR-MAD change p-value
	NoChangeThreshold float64 // IR-MAD normalization p-value
	Connectivity      changemask.Connectivity
	Transform         vectorize.GeoTransform
	Workers           int
	Logger            logrus.FieldLogger
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns Sentinel-2 bands on a 10 m grid, ten IW passes,
// fifty IR-MAD iterations and a discarding logger.
func DefaultOptions() Options {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return Options{
		Bands:             iw.Sentinel2(),
		Iterations:        iw.DefaultIterations,
		InitialStride:     iw.DefaultInitialStride,
		MaxIterations:     DefaultMaxIterations,
		ChangeAlpha:       DefaultChangeAlpha,
		NoChangeThreshold: mad.DefaultNoChangeThreshold,
		Connectivity:      changemask.Conn8,
		Transform:         vectorize.NorthUp(0, 0, DefaultPixelSize),
		Workers:           runtime.GOMAXPROCS(0),
		Logger:            l,
	}
}

// WithBands sets the spectral band roles.
func WithBands(b iw.Bands) Option {
	return func(o *Options) { o.Bands = b }
}

// WithIterations sets the number of IW reweighting passes.
func WithIterations(n int) Option {
	if n < 0 {
		panic(panicIterationsInvalid)
	}
	return func(o *Options) { o.Iterations = n }
}

// WithInitialStride sets the sampling stride of the first IW pass.
func WithInitialStride(stride int) Option {
	if stride < 1 {
		panic(panicStrideInvalid)
	}
	return func(o *Options) { o.InitialStride = stride }
}

// WithMaxIterations sets the IR-MAD iteration budget.
func WithMaxIterations(n int) Option {
	if n < 1 {
		panic(panicMaxIterInvalid)
	}
	return func(o *Options) { o.MaxIterations = n }
}

// WithChangeAlpha sets the IR-MAD change p-value.
func WithChangeAlpha(alpha float64) Option {
	if !(alpha > 0 && alpha < 1) {
		panic(panicAlphaInvalid)
	}
	return func(o *Options) { o.ChangeAlpha = alpha }
}

// WithConnectivity sets the pixel adjacency of a change polygon.
func WithConnectivity(c changemask.Connectivity) Option {
	return func(o *Options) { o.Connectivity = c }
}

// WithTransform sets the pixel-to-map transform of the grid.
func WithTransform(t vectorize.GeoTransform) Option {
	return func(o *Options) { o.Transform = t }
}

// WithWorkers bounds concurrent requests in Batch and concurrent tiles in
// region statistics.
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

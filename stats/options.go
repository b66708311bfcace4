// SPDX-License-Identifier: MIT

package stats

import "runtime"

// Defaults (single source of truth for zero-value behavior).
const (
	// DefaultTileRows is the number of sampled rows reduced by one tile.
	DefaultTileRows = 64

	// DefaultModeBins is the number of histogram buckets used by the Mode reducer.
	DefaultModeBins = 256
)

const (
	panicWorkersInvalid  = "stats: WithWorkers: n must be >= 1"
	panicTileRowsInvalid = "stats: WithTileRows: n must be >= 1"
	panicModeBinsInvalid = "stats: WithModeBins: n must be >= 2"
)

// Options controls how reductions are tiled and how the mode is estimated.
type Options struct {
	Workers  int // concurrent tiles; defaults to GOMAXPROCS
	TileRows int // sampled rows per tile
	ModeBins int // histogram buckets of the Mode reducer
}

// Option mutates Options. Constructors panic on nonsensical values.
type Option func(*Options)

// DefaultOptions returns the package defaults.
func DefaultOptions() Options {
	return Options{
		Workers:  runtime.GOMAXPROCS(0),
		TileRows: DefaultTileRows,
		ModeBins: DefaultModeBins,
	}
}

// WithWorkers bounds the number of tiles reduced concurrently.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}
	return func(o *Options) { o.Workers = n }
}

// WithTileRows sets the number of sampled rows per tile.
func WithTileRows(n int) Option {
	if n < 1 {
		panic(panicTileRowsInvalid)
	}
	return func(o *Options) { o.TileRows = n }
}

// WithModeBins sets the histogram resolution of the Mode reducer.
func WithModeBins(n int) Option {
	if n < 2 {
		panic(panicModeBinsInvalid)
	}
	return func(o *Options) { o.ModeBins = n }
}

// WithOptions replaces every field at once; handy to forward a resolved
// Options value from a caller package.
func WithOptions(src Options) Option {
	return func(o *Options) { *o = src }
}

// gatherOptions applies user options over the defaults and repairs zero
// values left by WithOptions.
func gatherOptions(user ...Option) Options {
	o := DefaultOptions()
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.TileRows < 1 {
		o.TileRows = DefaultTileRows
	}
	if o.ModeBins < 2 {
		o.ModeBins = DefaultModeBins
	}

	return o
}

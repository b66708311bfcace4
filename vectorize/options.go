// SPDX-License-Identifier: MIT

package vectorize

import (
	"errors"
	"math"

	"github.com/katalvlaran/alterdet/changemask"
)

var (
	// ErrNilMask indicates a nil input mask.
	ErrNilMask = errors.New("vectorize: nil mask")

	// ErrDegenerateTransform indicates a GeoTransform mapping pixels to zero area.
	ErrDegenerateTransform = errors.New("vectorize: geotransform has zero pixel area")
)

const panicMinAreaInvalid = "vectorize: WithMinArea: area must be finite and >= 0"

// Options configures Polygons.
type Options struct {
	Connectivity changemask.Connectivity // pixel adjacency forming one polygon
	Transform    GeoTransform            // pixel corner → map coordinate
	MinArea      float64                 // polygons below this map area are dropped
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns 8-connectivity, the identity transform and no
// area filter.
func DefaultOptions() Options {
	return Options{Connectivity: changemask.Conn8, Transform: Identity()}
}

// WithConnectivity sets the pixel adjacency of a polygon.
func WithConnectivity(c changemask.Connectivity) Option {
	return func(o *Options) { o.Connectivity = c }
}

// WithTransform sets the pixel-to-map transform.
func WithTransform(t GeoTransform) Option {
	return func(o *Options) { o.Transform = t }
}

// WithMinArea drops polygons whose area is below area map units².
func WithMinArea(area float64) Option {
	if area < 0 || math.IsNaN(area) || math.IsInf(area, 0) {
		panic(panicMinAreaInvalid)
	}
	return func(o *Options) { o.MinArea = area }
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

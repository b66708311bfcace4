// SPDX-License-Identifier: MIT

package composite

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/alterdet/raster"
)

const (
	panicLoggerNil      = "composite: WithLogger: logger must not be nil"
	panicWorkersInvalid = "composite: WithWorkers: n must be >= 1"
)

// Median returns the per-pixel median of bands over images, counting only
// the valid observations of every pixel. A pixel with no valid observation
// is invalid in the result. Bands are composited concurrently.
//
// Errors: ErrNoScenes, raster.ErrGridMismatch, raster.ErrUnknownBand,
// ctx.Err() when ctx is cancelled.
func Median(ctx context.Context, images []*raster.Raster, bands raster.BandSet, workers int) (*raster.Raster, error) {
	if len(images) == 0 {
		return nil, ErrNoScenes
	}
	first := images[0]
	for _, img := range images[1:] {
		if !first.SameGrid(img) {
			return nil, fmt.Errorf("composite: Median: %w", raster.ErrGridMismatch)
		}
	}
	src := make([][][]float64, len(bands)) // [band][image] plane
	for k, name := range bands {
		src[k] = make([][]float64, len(images))
		for j, img := range images {
			p, err := img.Band(name)
			if err != nil {
				return nil, fmt.Errorf("composite: Median: %q: %w", name, err)
			}
			src[k][j] = p
		}
	}

	n := first.Len()
	planes := make([][]float64, len(bands))
	g, ctx := errgroup.WithContext(ctx)
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for k := range bands {
		g.Go(func() error {
			out := make([]float64, n)
			obs := make(stats.Float64Data, 0, len(images))
			for i := range out {
				if i%first.Width() == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				obs = obs[:0]
				for j, img := range images {
					if img.Valid(i) {
						obs = append(obs, src[k][j][i])
					}
				}
				if len(obs) == 0 {
					out[i] = math.NaN()
					continue
				}
				m, err := stats.Median(obs)
				if err != nil {
					return err
				}
				out[i] = m
			}
			planes[k] = out

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return raster.FromPlanes(first.Width(), first.Height(), bands, planes, nil)
}

// Options configures a Compositor.
type Options struct {
	Maskers []Masker
	Workers int
	Logger  logrus.FieldLogger
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns no masking, one worker per CPU and a discarding
// logger.
func DefaultOptions() Options {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return Options{Workers: runtime.GOMAXPROCS(0), Logger: l}
}

// WithMaskers appends scene maskers, applied in order.
func WithMaskers(m ...Masker) Option {
	return func(o *Options) { o.Maskers = append(o.Maskers, m...) }
}

// WithWorkers bounds the number of bands composited concurrently.
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

// Compositor builds masked median composites from a Collection.
type Compositor struct {
	collection *Collection
	bands      raster.BandSet
	opts       Options
}

// NewCompositor composites bands of c.
func NewCompositor(c *Collection, bands raster.BandSet, opts ...Option) *Compositor {
	o := DefaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return &Compositor{collection: c, bands: bands.Clone(), opts: o}
}

// Composite masks every scene of window and returns their median over
// aoi. Pixels outside aoi are invalid.
//
// Errors: ErrInvalidRange, ErrNoScenes, raster.ErrEmptyRegion, masker and
// Median errors.
func (c *Compositor) Composite(ctx context.Context, window DateRange, aoi raster.Region) (*raster.Raster, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	scenes := c.collection.Filter(window)
	if len(scenes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoScenes, window)
	}
	first := scenes[0].Image
	rect, _, err := aoi.Resolve(first.Width(), first.Height())
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}

	images := make([]*raster.Raster, len(scenes))
	for i, s := range scenes {
		if images[i], err = applyMasks(s.Image, c.opts.Maskers); err != nil {
			return nil, fmt.Errorf("composite: scene %q: %w", s.ID, err)
		}
	}
	out, err := Median(ctx, images, c.bands, c.opts.Workers)
	if err != nil {
		return nil, err
	}
	out = out.Clip(rect)

	c.opts.Logger.WithFields(logrus.Fields{
		"window": window.String(),
		"scenes": len(scenes),
		"clear":  out.ValidCount(),
	}).Debug("composite: median built")

	return out, nil
}

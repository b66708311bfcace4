// SPDX-License-Identifier: MIT

package stats

import (
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/alterdet/raster"
)

// rowSpan is a horizontal strip [y0, y1) of a resolved region. Sampled rows
// inside it are y0, y0+stride, ... < y1.
type rowSpan struct{ y0, y1 int }

// sampling is a resolved region plus the grid it lives on.
type sampling struct {
	rect   image.Rectangle
	stride int
	width  int
}

func resolve(r *raster.Raster, region raster.Region) (sampling, error) {
	rect, stride, err := region.Resolve(r.Width(), r.Height())
	if err != nil {
		return sampling{}, err
	}

	return sampling{rect: rect, stride: stride, width: r.Width()}, nil
}

// spans cuts the sampled rows into tiles of tileRows sampled rows each.
// Span boundaries stay aligned to the stride.
func (s sampling) spans(tileRows int) []rowSpan {
	step := s.stride * tileRows
	out := make([]rowSpan, 0, (s.rect.Dy()+step-1)/step)
	for y := s.rect.Min.Y; y < s.rect.Max.Y; y += step {
		end := y + step
		if end > s.rect.Max.Y {
			end = s.rect.Max.Y
		}
		out = append(out, rowSpan{y0: y, y1: end})
	}

	return out
}

// each visits the row-major offset of every sampled pixel inside sp.
func (s sampling) each(sp rowSpan, fn func(i int)) {
	for y := sp.y0; y < sp.y1; y += s.stride {
		row := y * s.width
		for x := s.rect.Min.X; x < s.rect.Max.X; x += s.stride {
			fn(row + x)
		}
	}
}

// reduceTiles runs fn over every tile concurrently (bounded by o.Workers)
// and folds the partial results into a fresh accumulator in tile order.
// The fixed merge order keeps floating-point results reproducible.
func reduceTiles[T any](s sampling, o Options, fresh func() T, fn func(sp rowSpan, acc T), merge func(dst, src T)) T {
	spans := s.spans(o.TileRows)
	parts := make([]T, len(spans))

	var g errgroup.Group
	g.SetLimit(o.Workers)
	for i, sp := range spans {
		g.Go(func() error {
			part := fresh()
			fn(sp, part)
			parts[i] = part
			return nil
		})
	}
	_ = g.Wait() // tile workers never fail

	acc := fresh()
	for _, p := range parts {
		merge(acc, p)
	}

	return acc
}

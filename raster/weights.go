// SPDX-License-Identifier: MIT

package raster

import "math"

// WeightField is a single-band grid of per-pixel weights in [0,1] used to
// up- or down-weight a pixel's contribution to region statistics.
type WeightField struct {
	width, height int
	values        []float64
}

// UniformWeights returns a width×height field of ones.
func UniformWeights(width, height int) *WeightField {
	v := make([]float64, width*height)
	for i := range v {
		v[i] = 1
	}

	return &WeightField{width: width, height: height, values: v}
}

// NewWeightField copies values into a weight field after checking that every
// weight is finite and inside [0,1].
// Errors: ErrInvalidDimensions, ErrPlaneLength, ErrWeightRange.
func NewWeightField(width, height int, values []float64) (*WeightField, error) {
	if width <= 0 || height <= 0 {
		return nil, rasterErrorf(opWeights, ErrInvalidDimensions)
	}
	if len(values) != width*height {
		return nil, rasterErrorf(opWeights, ErrPlaneLength)
	}
	v := make([]float64, len(values))
	for i, w := range values {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return nil, rasterErrorf(opWeights, ErrWeightRange)
		}
		v[i] = w
	}

	return &WeightField{width: width, height: height, values: v}, nil
}

// Width returns the number of columns.
func (w *WeightField) Width() int { return w.width }

// Height returns the number of rows.
func (w *WeightField) Height() int { return w.height }

// At returns the weight of pixel i (row-major offset).
func (w *WeightField) At(i int) float64 { return w.values[i] }

// Values returns a copy of the weights.
func (w *WeightField) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)

	return out
}

// Matches reports whether w shares the grid of r.
func (w *WeightField) Matches(r *Raster) bool {
	return w != nil && r != nil && w.width == r.width && w.height == r.height
}

// SPDX-License-Identifier: MIT

package raster

import (
	"image"
	"math"
)

// Operation tags for error wrapping.
const (
	opNew     = "New"
	opPlanes  = "FromPlanes"
	opAt      = "At"
	opSet     = "Set"
	opBand    = "Band"
	opSelect  = "Select"
	opConcat  = "Concat"
	opRename  = "Rename"
	opWith    = "WithBand"
	opValid   = "SetValid"
	opWeights = "NewWeightField"
)

// Raster is a rectangular multi-band grid with a per-pixel validity flag.
//   - planes[b][y*width+x] holds band b of pixel (x,y).
//   - valid[y*width+x] is false for masked pixels (clouds, no data, NaN).
type Raster struct {
	width, height int
	bands         BandSet
	planes        [][]float64
	valid         []bool
}

// New allocates a width×height raster of zeros with every pixel valid.
// Errors: ErrInvalidDimensions, ErrNoBands, ErrDuplicateBand.
// Complexity: O(W×H×bands).
func New(width, height int, bands BandSet) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, rasterErrorf(opNew, ErrInvalidDimensions)
	}
	if err := bands.validate(); err != nil {
		return nil, rasterErrorf(opNew, err)
	}
	n := width * height
	planes := make([][]float64, len(bands))
	for b := range planes {
		planes[b] = make([]float64, n)
	}
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = true
	}

	return &Raster{width: width, height: height, bands: bands.Clone(), planes: planes, valid: valid}, nil
}

// FromPlanes builds a raster from one row-major plane per band.
// Inputs are copied. A nil valid slice means "every pixel valid"; pixels
// holding NaN or ±Inf in any band are always marked invalid.
//
// Errors: ErrInvalidDimensions, ErrNoBands, ErrDuplicateBand, ErrPlaneLength.
// Complexity: O(W×H×bands).
func FromPlanes(width, height int, bands BandSet, planes [][]float64, valid []bool) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, rasterErrorf(opPlanes, ErrInvalidDimensions)
	}
	if err := bands.validate(); err != nil {
		return nil, rasterErrorf(opPlanes, err)
	}
	n := width * height
	if len(planes) != len(bands) {
		return nil, rasterErrorf(opPlanes, ErrPlaneLength)
	}
	if valid != nil && len(valid) != n {
		return nil, rasterErrorf(opPlanes, ErrPlaneLength)
	}

	r := &Raster{
		width:  width,
		height: height,
		bands:  bands.Clone(),
		planes: make([][]float64, len(bands)),
		valid:  make([]bool, n),
	}
	for i := 0; i < n; i++ {
		r.valid[i] = valid == nil || valid[i]
	}
	for b, p := range planes {
		if len(p) != n {
			return nil, rasterErrorf(opPlanes, ErrPlaneLength)
		}
		r.planes[b] = make([]float64, n)
		copy(r.planes[b], p)
		for i, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				r.valid[i] = false
			}
		}
	}

	return r, nil
}

// Constant returns a single-band raster where every pixel equals value.
func Constant(width, height int, band string, value float64) (*Raster, error) {
	r, err := New(width, height, BandSet{band})
	if err != nil {
		return nil, err
	}
	for i := range r.planes[0] {
		r.planes[0][i] = value
	}

	return r, nil
}

// Width returns the number of columns.
func (r *Raster) Width() int { return r.width }

// Height returns the number of rows.
func (r *Raster) Height() int { return r.height }

// Len returns the number of pixels (W×H).
func (r *Raster) Len() int { return r.width * r.height }

// NumBands returns the number of bands.
func (r *Raster) NumBands() int { return len(r.bands) }

// Bands returns a copy of the ordered band names.
func (r *Raster) Bands() BandSet { return r.bands.Clone() }

// Bounds returns the full pixel rectangle of the grid.
func (r *Raster) Bounds() image.Rectangle { return image.Rect(0, 0, r.width, r.height) }

// SameGrid reports whether o shares the pixel grid of r.
func (r *Raster) SameGrid(o *Raster) bool {
	return o != nil && r.width == o.width && r.height == o.height
}

// Plane returns the row-major storage of band b without copying.
// The slice is shared with the raster and must be treated as read-only.
// It returns nil when b is out of range.
func (r *Raster) Plane(b int) []float64 {
	if b < 0 || b >= len(r.planes) {
		return nil
	}

	return r.planes[b]
}

// Band returns the read-only plane of the named band.
func (r *Raster) Band(name string) ([]float64, error) {
	b := r.bands.Index(name)
	if b < 0 {
		return nil, rasterErrorf(opBand, ErrUnknownBand)
	}

	return r.planes[b], nil
}

// index maps (x,y) to the row-major offset.
func (r *Raster) index(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return 0, ErrOutOfRange
	}

	return y*r.width + x, nil
}

// At returns band b of pixel (x,y).
func (r *Raster) At(x, y, b int) (float64, error) {
	i, err := r.index(x, y)
	if err != nil || b < 0 || b >= len(r.planes) {
		return 0, rasterErrorf(opAt, ErrOutOfRange)
	}

	return r.planes[b][i], nil
}

// Set assigns band b of pixel (x,y). Validity is left untouched.
// Intended for building rasters; transforms never mutate their inputs.
func (r *Raster) Set(x, y, b int, v float64) error {
	i, err := r.index(x, y)
	if err != nil || b < 0 || b >= len(r.planes) {
		return rasterErrorf(opSet, ErrOutOfRange)
	}
	r.planes[b][i] = v

	return nil
}

// Valid reports whether pixel i (row-major offset) is valid.
func (r *Raster) Valid(i int) bool { return i >= 0 && i < len(r.valid) && r.valid[i] }

// ValidAt reports whether pixel (x,y) is valid.
func (r *Raster) ValidAt(x, y int) bool {
	i, err := r.index(x, y)

	return err == nil && r.valid[i]
}

// SetValid flags pixel (x,y) as valid or masked.
func (r *Raster) SetValid(x, y int, ok bool) error {
	i, err := r.index(x, y)
	if err != nil {
		return rasterErrorf(opValid, err)
	}
	r.valid[i] = ok

	return nil
}

// ValidCount returns the number of valid pixels.
func (r *Raster) ValidCount() int {
	n := 0
	for _, ok := range r.valid {
		if ok {
			n++
		}
	}

	return n
}

// Mask returns a copy of the validity mask.
func (r *Raster) Mask() []bool {
	out := make([]bool, len(r.valid))
	copy(out, r.valid)

	return out
}

// Pixel gathers the band vector of pixel i into dst (resized as needed).
func (r *Raster) Pixel(i int, dst []float64) []float64 {
	if cap(dst) < len(r.planes) {
		dst = make([]float64, len(r.planes))
	}
	dst = dst[:len(r.planes)]
	for b, p := range r.planes {
		dst[b] = p[i]
	}

	return dst
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	out, _ := FromPlanes(r.width, r.height, r.bands, r.planes, r.valid)

	return out
}

// Select returns a new raster holding the named bands in the given order.
// Errors: ErrNoBands, ErrUnknownBand, ErrDuplicateBand.
func (r *Raster) Select(names ...string) (*Raster, error) {
	planes := make([][]float64, len(names))
	for i, n := range names {
		b := r.bands.Index(n)
		if b < 0 {
			return nil, rasterErrorf(opSelect, ErrUnknownBand)
		}
		planes[i] = r.planes[b]
	}
	out, err := FromPlanes(r.width, r.height, BandSet(names), planes, r.valid)
	if err != nil {
		return nil, rasterErrorf(opSelect, err)
	}

	return out, nil
}

// Rename returns a copy with the bands renamed; the new set must have the
// same length as the current one.
func (r *Raster) Rename(bands BandSet) (*Raster, error) {
	if len(bands) != len(r.bands) {
		return nil, rasterErrorf(opRename, ErrPlaneLength)
	}
	out, err := FromPlanes(r.width, r.height, bands, r.planes, r.valid)
	if err != nil {
		return nil, rasterErrorf(opRename, err)
	}

	return out, nil
}

// WithBand returns a copy with one more band appended.
func (r *Raster) WithBand(name string, plane []float64) (*Raster, error) {
	bands := append(r.bands.Clone(), name)
	planes := make([][]float64, 0, len(bands))
	planes = append(planes, r.planes...)
	planes = append(planes, plane)
	out, err := FromPlanes(r.width, r.height, bands, planes, r.valid)
	if err != nil {
		return nil, rasterErrorf(opWith, err)
	}

	return out, nil
}

// Concat stacks the bands of a then b into one raster. A pixel is valid only
// when it is valid in both inputs. Band names must not collide.
// Errors: ErrGridMismatch, ErrDuplicateBand.
func Concat(a, b *Raster) (*Raster, error) {
	if a == nil || !a.SameGrid(b) {
		return nil, rasterErrorf(opConcat, ErrGridMismatch)
	}
	bands := make(BandSet, 0, len(a.bands)+len(b.bands))
	bands = append(bands, a.bands...)
	bands = append(bands, b.bands...)
	planes := make([][]float64, 0, len(bands))
	planes = append(planes, a.planes...)
	planes = append(planes, b.planes...)
	valid := make([]bool, len(a.valid))
	for i := range valid {
		valid[i] = a.valid[i] && b.valid[i]
	}
	out, err := FromPlanes(a.width, a.height, bands, planes, valid)
	if err != nil {
		return nil, rasterErrorf(opConcat, err)
	}

	return out, nil
}

// Clip returns a copy where every pixel outside rect is masked.
func (r *Raster) Clip(rect image.Rectangle) *Raster {
	out := r.Clone()
	rect = rect.Intersect(r.Bounds())
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			if !(image.Point{X: x, Y: y}).In(rect) {
				out.valid[y*r.width+x] = false
			}
		}
	}

	return out
}

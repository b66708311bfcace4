// SPDX-License-Identifier: MIT

package raster

import "image"

// Region is the area of interest of a region statistic.
//   - Bounds: pixel rectangle; the zero rectangle means "whole grid".
//   - Stride: sampling step in pixels along both axes (the grid analogue of
//     a reduction scale); values ≤ 1 sample every pixel.
type Region struct {
	Bounds image.Rectangle
	Stride int
}

// FullRegion samples every pixel of the grid.
func FullRegion() Region { return Region{Stride: 1} }

// RegionOf samples every pixel inside rect.
func RegionOf(rect image.Rectangle) Region { return Region{Bounds: rect, Stride: 1} }

// WithStride returns a copy of rg sampling every stride-th pixel.
func (rg Region) WithStride(stride int) Region {
	rg.Stride = stride
	return rg
}

// Resolve clamps the region to a width×height grid and returns the effective
// rectangle and stride. ErrEmptyRegion is returned when nothing overlaps.
func (rg Region) Resolve(width, height int) (image.Rectangle, int, error) {
	full := image.Rect(0, 0, width, height)
	rect := full
	if !rg.Bounds.Empty() {
		rect = rg.Bounds.Intersect(full)
	}
	if rect.Empty() {
		return image.Rectangle{}, 0, ErrEmptyRegion
	}
	stride := rg.Stride
	if stride < 1 {
		stride = 1
	}

	return rect, stride, nil
}

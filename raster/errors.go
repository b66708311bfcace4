// SPDX-License-Identifier: MIT

package raster

import (
	"errors"
	"fmt"
)

// Sentinel errors for raster construction and access.
// Every message is prefixed with "raster: ..." for grep-ability; callers
// match them with errors.Is.
var (
	// ErrInvalidDimensions indicates a non-positive width or height.
	ErrInvalidDimensions = errors.New("raster: dimensions must be > 0")

	// ErrNoBands indicates a raster was requested with an empty BandSet.
	ErrNoBands = errors.New("raster: at least one band is required")

	// ErrDuplicateBand indicates a band name appears more than once in a BandSet.
	ErrDuplicateBand = errors.New("raster: duplicate band name")

	// ErrUnknownBand indicates a referenced band name is not part of the raster.
	ErrUnknownBand = errors.New("raster: unknown band")

	// ErrOutOfRange indicates a pixel coordinate or band index outside the grid.
	ErrOutOfRange = errors.New("raster: index out of range")

	// ErrPlaneLength indicates a data plane or mask whose length is not W×H.
	ErrPlaneLength = errors.New("raster: plane length does not match grid")

	// ErrGridMismatch indicates two rasters (or a raster and a weight field)
	// that do not share the same pixel grid.
	ErrGridMismatch = errors.New("raster: grid mismatch")

	// ErrWeightRange indicates a weight outside [0,1] or a non-finite weight.
	ErrWeightRange = errors.New("raster: weight outside [0,1]")

	// ErrEmptyRegion indicates a region that does not overlap the grid.
	ErrEmptyRegion = errors.New("raster: region does not overlap grid")
)

// rasterErrorf wraps err with an operation tag, preserving it for errors.Is.
func rasterErrorf(op string, err error) error {
	return fmt.Errorf("raster.%s: %w", op, err)
}

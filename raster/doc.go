// SPDX-License-Identifier: MIT

// Package raster defines the pixel-grid data model shared by every change
// detection stage.
//
// What:
//
//   - Raster: a W×H grid of pixels, each carrying a fixed-length vector of
//     float64 band values and a validity flag. Storage is one row-major plane
//     per band (offset = y*W + x).
//   - BandSet: the ordered list of band names of a Raster. Order is the matrix
//     index order used by every statistic and is preserved by all transforms.
//   - WeightField: a single-band grid of per-pixel weights in [0,1].
//   - Region: the area of interest (pixel rectangle) and sampling stride over
//     which region statistics are computed.
//
// Policy:
//
//   - Invalid pixels are excluded from every region statistic.
//   - Two rasters being combined must share the same grid (width × height).
//   - Rasters are snapshots: constructors copy their inputs and every
//     transform (Select, Concat, Clip, WithBand…) returns a new Raster.
//
// Complexity:
//
//   - At/Set/Valid: O(1). Select/Concat/Clip/Clone: O(W×H×bands).
package raster

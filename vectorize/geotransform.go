// SPDX-License-Identifier: MIT

package vectorize

import (
	"math"

	"github.com/paulmach/orb"
)

// SquareMetersPerAcre is the acre conversion used by the area filter.
const SquareMetersPerAcre = 4047

// AcresToSquareMeters converts a minimum mapping unit in acres to m².
func AcresToSquareMeters(acres float64) float64 { return acres * SquareMetersPerAcre }

// GeoTransform is an affine pixel-to-map transform in GDAL order:
//
//	X = t[0] + col·t[1] + row·t[2]
//	Y = t[3] + col·t[4] + row·t[5]
//
// (col, row) address pixel corners; pixel (c, r) spans [c, c+1]×[r, r+1].
type GeoTransform [6]float64

// Identity maps pixel corners onto themselves (one map unit per pixel).
func Identity() GeoTransform { return GeoTransform{0, 1, 0, 0, 0, 1} }

// NorthUp returns the transform of a grid whose top-left corner is at
// (originX, originY) with square pixels of size map units.
func NorthUp(originX, originY, size float64) GeoTransform {
	return GeoTransform{originX, size, 0, originY, 0, -size}
}

// Apply maps a pixel corner to map coordinates.
func (t GeoTransform) Apply(col, row float64) orb.Point {
	return orb.Point{
		t[0] + col*t[1] + row*t[2],
		t[3] + col*t[4] + row*t[5],
	}
}

// PixelArea returns the map area of one pixel.
func (t GeoTransform) PixelArea() float64 {
	return math.Abs(t[1]*t[5] - t[2]*t[4])
}

// SPDX-License-Identifier: MIT

package iw

import (
	"fmt"

	"github.com/katalvlaran/alterdet/raster"
)

// Index band names produced by NormalizedDifferences.
const (
	BandNDVI = "ndvi"
	BandNDSI = "ndsi"
	BandNBR  = "nbr"
	BandNDWI = "ndwi"
)

// Bands maps spectral roles to band names.
type Bands struct {
	Blue, Green, Red, NIR, SWIR1, SWIR2 string
}

// Sentinel2 returns the Sentinel-2 MSI band names of every role.
func Sentinel2() Bands {
	return Bands{Blue: "B2", Green: "B3", Red: "B4", NIR: "B8", SWIR1: "B11", SWIR2: "B12"}
}

// Spectral lists the role bands in wavelength order; the change vector is
// computed over exactly these bands.
func (b Bands) Spectral() raster.BandSet {
	return raster.BandSet{b.Blue, b.Green, b.Red, b.NIR, b.SWIR1, b.SWIR2}
}

// check reports the first role band missing from r.
func (b Bands) check(r *raster.Raster) error {
	have := r.Bands()
	for _, name := range b.Spectral() {
		if !have.Contains(name) {
			return fmt.Errorf("%w: %q", ErrMissingRole, name)
		}
	}

	return nil
}

// NormalizedDifferences computes the four indices of img:
//
//	ndvi = (NIR-R)/(NIR+R)
//	ndsi = ((G-SWIR1)/(G+SWIR1))/NIR
//	nbr  = (NIR-SWIR2)/(NIR+SWIR2)
//	ndwi = (G-NIR)/(G+NIR)
//
// A pixel whose index is undefined (zero denominator) becomes invalid.
func NormalizedDifferences(img *raster.Raster, bands Bands) (*raster.Raster, error) {
	if img == nil {
		return nil, ErrNilInput
	}
	if err := bands.check(img); err != nil {
		return nil, err
	}
	g, _ := img.Band(bands.Green)
	r, _ := img.Band(bands.Red)
	nir, _ := img.Band(bands.NIR)
	s1, _ := img.Band(bands.SWIR1)
	s2, _ := img.Band(bands.SWIR2)

	n := img.Len()
	ndvi, ndsi, nbr, ndwi := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		ndvi[i] = nd(nir[i], r[i])
		ndsi[i] = nd(g[i], s1[i]) / nir[i]
		nbr[i] = nd(nir[i], s2[i])
		ndwi[i] = nd(g[i], nir[i])
	}

	return raster.FromPlanes(img.Width(), img.Height(),
		raster.BandSet{BandNDVI, BandNDSI, BandNBR, BandNDWI},
		[][]float64{ndvi, ndsi, nbr, ndwi}, img.Mask())
}

// nd is the normalized difference (a-b)/(a+b).
func nd(a, b float64) float64 { return (a - b) / (a + b) }

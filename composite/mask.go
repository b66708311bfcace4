// SPDX-License-Identifier: MIT

package composite

import (
	"fmt"

	"github.com/katalvlaran/alterdet/raster"
)

// Masker returns the clear-pixel flags of one scene (true = keep).
type Masker func(img *raster.Raster) ([]bool, error)

// Sentinel-2 QA60 bits.
const (
	qa60Cloud  = 1 << 10
	qa60Cirrus = 1 << 11
)

// QA60Mask keeps pixels whose quality band has neither the opaque cloud
// bit (10) nor the cirrus bit (11) set.
func QA60Mask(band string) Masker {
	return func(img *raster.Raster) ([]bool, error) {
		qa, err := img.Band(band)
		if err != nil {
			return nil, fmt.Errorf("composite: QA60Mask: %w", err)
		}
		keep := make([]bool, len(qa))
		for i, v := range qa {
			bits := int64(v)
			keep[i] = bits&qa60Cloud == 0 && bits&qa60Cirrus == 0
		}

		return keep, nil
	}
}

// ShadowMask keeps pixels whose band value is above min. Dark SWIR
// reflectance marks cloud shadow and terrain shade.
func ShadowMask(band string, min float64) Masker {
	return func(img *raster.Raster) ([]bool, error) {
		p, err := img.Band(band)
		if err != nil {
			return nil, fmt.Errorf("composite: ShadowMask: %w", err)
		}
		keep := make([]bool, len(p))
		for i, v := range p {
			keep[i] = v > min
		}

		return keep, nil
	}
}

// applyMasks returns a copy of img with every masker's rejections invalid.
func applyMasks(img *raster.Raster, maskers []Masker) (*raster.Raster, error) {
	if len(maskers) == 0 {
		return img, nil
	}
	valid := img.Mask()
	for _, m := range maskers {
		keep, err := m(img)
		if err != nil {
			return nil, err
		}
		if len(keep) != len(valid) {
			return nil, fmt.Errorf("composite: mask: %w", raster.ErrPlaneLength)
		}
		for i, k := range keep {
			valid[i] = valid[i] && k
		}
	}
	planes := make([][]float64, img.NumBands())
	for b := range planes {
		planes[b] = img.Plane(b)
	}

	return raster.FromPlanes(img.Width(), img.Height(), img.Bands(), planes, valid)
}

// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/katalvlaran/alterdet/composite"
	"github.com/katalvlaran/alterdet/iw"
	"github.com/katalvlaran/alterdet/raster"
)

const bandQA = "QA60"

// surface reflectance (×10⁴) of a vegetated pixel, in Spectral() order.
var vegetation = []float64{500, 800, 600, 3000, 2000, 1200}

// synthetic lays out a demo collection around doi: three scenes in the
// before window and two in the after window, each with sensor noise and a
// few cloudy pixels. After doi every band of clearing brightens by shift.
func synthetic(w, h int, doi time.Time, clearing image.Rectangle, shift float64, seed int64) (*composite.Collection, error) {
	rng := rand.New(rand.NewSource(seed))
	bands := append(iw.Sentinel2().Spectral(), bandQA)

	dates := []time.Time{
		doi.AddDate(0, -10, 0),
		doi.AddDate(0, -6, 0),
		doi.AddDate(0, -2, 0),
		doi.AddDate(0, 0, 15),
		doi.AddDate(0, 1, 15),
	}
	scenes := make([]composite.Scene, 0, len(dates))
	for s, at := range dates {
		planes := make([][]float64, len(bands))
		for b := range planes {
			planes[b] = make([]float64, w*h)
		}
		for i := 0; i < w*h; i++ {
			changed := !at.Before(doi) && (image.Point{X: i % w, Y: i / w}).In(clearing)
			for b, level := range vegetation {
				v := level + 15*rng.NormFloat64()
				if changed {
					v += shift
				}
				planes[b][i] = v
			}
			if rng.Float64() < 0.02 {
				planes[len(bands)-1][i] = 1 << 10
				for b := range vegetation {
					planes[b][i] = 9000
				}
			}
		}
		img, err := raster.FromPlanes(w, h, bands, planes, nil)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, composite.Scene{ID: fmt.Sprintf("S2_%02d", s), Acquired: at, Image: img})
	}

	return composite.NewCollection(scenes...)
}

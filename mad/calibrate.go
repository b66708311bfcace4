// SPDX-License-Identifier: MIT

package mad

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/katalvlaran/alterdet/stats"
)

const opRecalibrate = "Recalibrate"

// madToSigma converts a median absolute deviation to a normal σ.
const madToSigma = 1.4826

// Calibration re-expresses a pass's chi-square against robust per-variate
// centres and scales measured over the region.
type Calibration struct {
	Centers []float64 // median of each MAD variate
	Scales  []float64 // 1.4826·MAD of each variate; 0 means no spread
	Chi2    []float64 // Σ ((MADᵢ - centerᵢ)/scaleᵢ)², NaN on invalid pixels
	P       []float64 // 1 - χ²cdf(Chi2, k), NaN on invalid pixels
}

// Recalibrate standardizes every MAD variate of p by its region median and
// scaled median absolute deviation and recomputes chi-square and p.
// Unlike Pass.P, the result stays calibrated after reweighting has
// narrowed σᵢ² = 2(1-ρᵢ) to the weighted no-change population. A variate
// without spread contributes nothing.
//
// Errors: ErrNilInput, raster.ErrEmptyRegion, *stats.DegenerateInputError
// when the region holds no valid pixel.
// Complexity: O(k·N log N) for N sampled pixels.
func Recalibrate(p *Pass, opts ...Option) (*Calibration, error) {
	if p == nil || p.Variates == nil {
		return nil, madErrorf(opRecalibrate, ErrNilInput)
	}
	o := gatherOptions(opts...)
	v := p.Variates
	w := v.Width()
	rect, stride, err := o.Region.Resolve(w, v.Height())
	if err != nil {
		return nil, madErrorf(opRecalibrate, err)
	}

	k := p.K()
	c := &Calibration{Centers: make([]float64, k), Scales: make([]float64, k)}
	sample := make([]float64, 0, (rect.Dx()/stride+1)*(rect.Dy()/stride+1))
	for j := 0; j < k; j++ {
		plane := v.Plane(j)
		sample = sample[:0]
		for y := rect.Min.Y; y < rect.Max.Y; y += stride {
			for x := rect.Min.X; x < rect.Max.X; x += stride {
				if i := y*w + x; v.Valid(i) {
					sample = append(sample, plane[i])
				}
			}
		}
		if len(sample) == 0 {
			return nil, madErrorf(opRecalibrate, &stats.DegenerateInputError{Op: opRecalibrate})
		}
		med, err := mstats.Median(sample)
		if err != nil {
			return nil, madErrorf(opRecalibrate, err)
		}
		dev, err := mstats.MedianAbsoluteDeviationPopulation(sample)
		if err != nil {
			return nil, madErrorf(opRecalibrate, err)
		}
		c.Centers[j], c.Scales[j] = med, madToSigma*dev
	}

	n := v.Len()
	c.Chi2, c.P = make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		if !v.Valid(i) {
			c.Chi2[i], c.P[i] = math.NaN(), math.NaN()
			continue
		}
		var s float64
		for j := 0; j < k; j++ {
			if sc := c.Scales[j]; sc > 0 {
				z := (v.Plane(j)[i] - c.Centers[j]) / sc
				s += z * z
			}
		}
		c.Chi2[i] = s
		c.P[i] = stats.ChiSquareSurvival(s, float64(k))
	}

	return c, nil
}

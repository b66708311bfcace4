// SPDX-License-Identifier: MIT

package cca

import (
	"fmt"
	"math"
	"strconv"

	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const opVariates = "cca.Variates"

// Output band names of Variates besides the MAD variates.
const (
	BandChi2 = "chi2"
	BandP    = "p"
)

// MADBandName returns the name of the i-th (0-based) MAD variate band.
func MADBandName(i int) string { return "MAD" + strconv.Itoa(i+1) }

// Variates runs one correlation-based MAD pass:
//
//	zₓ   = (x - μ) / σ                     standardized bands of each date
//	U, V = Aᵀ·z₁, Bᵀ·z₂                    canonical variates
//	MADᵢ = Uᵢ - Vᵢ
//	chi2 = Σ ((MADᵢ - mean(MADᵢ)) / sd(MADᵢ))²   mean, sd over region
//	p    = 1 - ChiSquareCDF(chi2, k)
//
// The returned raster holds k MAD bands (in the order of the canonical
// result, highest correlation first), then chi2, then p. A MAD band with
// zero spread over region contributes nothing to chi2.
func Variates(before, after *raster.Raster, wf *raster.WeightField, region raster.Region, opts ...stats.Option) (*raster.Raster, *CanonicalResult, error) {
	corr, err := CorrelationMatrix(before, after, wf, region, opts...)
	if err != nil {
		return nil, nil, err
	}
	can, err := CanonicalCorrelation(corr)
	if err != nil {
		return nil, nil, err
	}

	n1 := before.NumBands()
	k := can.K()
	centered := corr.Covariance.Centered
	sd := make([]float64, centered.NumBands())
	for i := range sd {
		sd[i] = math.Sqrt(corr.Covariance.Cov.At(i, i))
	}

	size := centered.Len()
	planes := make([][]float64, k+2)
	for j := range planes {
		planes[j] = make([]float64, size)
	}
	for i := 0; i < size; i++ {
		if !centered.Valid(i) {
			continue
		}
		for j := 0; j < k; j++ {
			var u, v float64
			for b := 0; b < n1; b++ {
				u += can.A.At(b, j) * centered.Plane(b)[i] / sd[b]
			}
			for b := 0; b < after.NumBands(); b++ {
				v += can.B.At(b, j) * centered.Plane(n1+b)[i] / sd[n1+b]
			}
			planes[j][i] = u - v
		}
	}

	names := make(raster.BandSet, 0, k+2)
	for j := 0; j < k; j++ {
		names = append(names, MADBandName(j))
	}
	madOnly, err := raster.FromPlanes(centered.Width(), centered.Height(), names, planes[:k], centered.Mask())
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opVariates, err)
	}
	centre, err := stats.RegionReduce(madOnly, stats.Mean, region, nil, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opVariates, err)
	}
	spread, err := stats.RegionReduce(madOnly, stats.StdDev, region, nil, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opVariates, err)
	}

	chi, p := planes[k], planes[k+1]
	for i := 0; i < size; i++ {
		if !centered.Valid(i) {
			continue
		}
		var s float64
		for j := 0; j < k; j++ {
			if sdj := spread.Values[j]; sdj > 0 {
				z := (planes[j][i] - centre.Values[j]) / sdj
				s += z * z
			}
		}
		chi[i] = s
		p[i] = stats.ChiSquareSurvival(s, float64(k))
	}

	names = append(names, BandChi2, BandP)
	out, err := raster.FromPlanes(centered.Width(), centered.Height(), names, planes, centered.Mask())
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opVariates, err)
	}

	return out, can, nil
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}

	return x
}

func sqrtPos(x float64) float64 {
	if x <= 0 {
		return 1
	}

	return math.Sqrt(x)
}

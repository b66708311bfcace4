// SPDX-License-Identifier: MIT

package stats

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/alterdet/raster"
)

const opGammaFit = "GammaFitPValues"

// ChiSquareCDF returns P(X ≤ x) for X ~ χ²(df): the regularized lower
// incomplete gamma function P(df/2, x/2). x ≤ 0 yields 0; df ≤ 0 yields NaN.
func ChiSquareCDF(x, df float64) float64 {
	switch {
	case df <= 0 || math.IsNaN(x):
		return math.NaN()
	case x <= 0:
		return 0
	case math.IsInf(x, 1):
		return 1
	}

	return mathext.GammaIncReg(df/2, x/2)
}

// ChiSquareSurvival returns 1 - ChiSquareCDF(x, df), the no-change
// probability of a chi-square distributed statistic.
func ChiSquareSurvival(x, df float64) float64 {
	return 1 - ChiSquareCDF(x, df)
}

// NormalCDF returns Φ(z) for the standard normal distribution.
func NormalCDF(z float64) float64 {
	return distuv.UnitNormal.CDF(z)
}

// TwoSidedNormalP returns 2·(1-Φ(|z|)).
func TwoSidedNormalP(z float64) float64 {
	return 2 * (1 - NormalCDF(math.Abs(z)))
}

// GammaFitPValues fits a gamma distribution to band of r through its mode
// and sample standard deviation over region, and returns a single-band
// raster "p" holding the fitted CDF at every valid pixel:
//
//	rate  = (√(4·sd² + mode²) + mode) / (2·sd²)
//	shape = mode·rate + 1
//	p     = P(shape, x·rate)
//
// Errors: raster.ErrUnknownBand, *DegenerateInputError (empty region or
// zero spread).
func GammaFitPValues(r *raster.Raster, band string, region raster.Region, opts ...Option) (*raster.Raster, error) {
	single, err := r.Select(band)
	if err != nil {
		return nil, statsErrorf(opGammaFit, err)
	}
	mode, err := RegionReduce(single, Mode, region, nil, opts...)
	if err != nil {
		return nil, err
	}
	sd, err := RegionReduce(single, SampleStdDev, region, nil, opts...)
	if err != nil {
		return nil, err
	}
	m, s := mode.Values[0], sd.Values[0]
	if s == 0 {
		return nil, &DegenerateInputError{Op: opGammaFit, Count: single.ValidCount()}
	}

	rate := (math.Sqrt(4*s*s+m*m) + m) / (2 * s * s)
	shape := m*rate + 1

	src := single.Plane(0)
	p := make([]float64, len(src))
	for i, x := range src {
		if !single.Valid(i) {
			p[i] = math.NaN()
			continue
		}
		if x <= 0 {
			continue
		}
		p[i] = mathext.GammaIncReg(shape, x*rate)
	}

	out, err := raster.FromPlanes(r.Width(), r.Height(), raster.BandSet{"p"}, [][]float64{p}, single.Mask())
	if err != nil {
		return nil, statsErrorf(opGammaFit, err)
	}

	return out, nil
}

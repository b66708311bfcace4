// SPDX-License-Identifier: MIT

package mad

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const opNormalize = "Normalize"

// Fit is the orthogonal regression of one reference band on its target band.
type Fit struct {
	Band      string  // target band name
	Slope     float64 // b
	Intercept float64 // a
	R         float64 // Pearson correlation over no-change pixels
}

// Normalization is the output of Normalize.
type Normalization struct {
	Normalized *raster.Raster // a + b·target for every band
	Fits       []Fit
	NoChange   int // pixels used for the fits
}

// Normalize radiometrically aligns target with reference using only
// no-change pixels: valid pixels of region whose MAD p-value (plane p, as
// returned by Pass.P) exceeds threshold.
//
// Each band is fitted by orthogonal regression of the reference value y on
// the target value x: the slope is e₂/e₁ of the principal eigenvector of
// their 2×2 covariance and the intercept is ȳ - b·x̄.
//
// Errors: ErrNilInput, ErrBandCountMismatch, ErrThresholdRange,
// raster.ErrGridMismatch, *stats.DegenerateInputError.
func Normalize(reference, target *raster.Raster, p []float64, threshold float64, opts ...Option) (*Normalization, error) {
	if reference == nil || target == nil {
		return nil, madErrorf(opNormalize, ErrNilInput)
	}
	if !reference.SameGrid(target) || len(p) != reference.Len() {
		return nil, madErrorf(opNormalize, raster.ErrGridMismatch)
	}
	if reference.NumBands() != target.NumBands() {
		return nil, madErrorf(opNormalize, ErrBandCountMismatch)
	}
	if threshold < 0 || threshold >= 1 || math.IsNaN(threshold) {
		return nil, madErrorf(opNormalize, ErrThresholdRange)
	}
	o := gatherOptions(opts...)

	sel := make([]float64, len(p))
	for i, v := range p {
		if v > threshold {
			sel[i] = 1
		}
	}
	weights, err := raster.NewWeightField(reference.Width(), reference.Height(), sel)
	if err != nil {
		return nil, madErrorf(opNormalize, err)
	}

	tBands := target.Bands()
	out := &Normalization{Fits: make([]Fit, len(tBands))}
	planes := make([][]float64, len(tBands))
	for b := range tBands {
		pair, err := raster.FromPlanes(target.Width(), target.Height(), raster.BandSet{"x", "y"},
			[][]float64{target.Plane(b), reference.Plane(b)}, andMask(target, reference))
		if err != nil {
			return nil, madErrorf(opNormalize, err)
		}
		cov, err := stats.WeightedMeanCovariance(pair, weights, o.Region, o.statsOptions()...)
		if err != nil {
			return nil, madErrorf(opNormalize, err)
		}
		if cov.SumWeights < 2 {
			return nil, &stats.DegenerateInputError{Op: "mad." + opNormalize, Count: cov.Count, SumWeights: cov.SumWeights}
		}
		fit, err := orthogonalFit(cov)
		if err != nil {
			return nil, madErrorf(opNormalize, err)
		}
		fit.Band = tBands[b]
		out.Fits[b] = fit
		out.NoChange = int(math.Round(cov.SumWeights))

		src := target.Plane(b)
		dst := make([]float64, len(src))
		for i, x := range src {
			dst[i] = fit.Intercept + fit.Slope*x
		}
		planes[b] = dst
	}

	normalized, err := raster.FromPlanes(target.Width(), target.Height(), tBands, planes, target.Mask())
	if err != nil {
		return nil, madErrorf(opNormalize, err)
	}
	out.Normalized = normalized

	return out, nil
}

func orthogonalFit(cov *stats.CovarianceResult) (Fit, error) {
	var es mat.EigenSym
	if !es.Factorize(cov.Cov, true) {
		return Fit{}, stats.ErrEigenFailed
	}
	var v mat.Dense
	es.VectorsTo(&v)
	// Largest eigenvalue is last.
	e1, e2 := v.At(0, 1), v.At(1, 1)
	if e1 == 0 {
		return Fit{}, &stats.NotPositiveDefiniteError{Op: opNormalize, Dim: 2}
	}
	slope := e2 / e1
	sxx, syy, sxy := cov.Cov.At(0, 0), cov.Cov.At(1, 1), cov.Cov.At(0, 1)
	r := 0.0
	if sxx > 0 && syy > 0 {
		r = sxy / math.Sqrt(sxx*syy)
	}

	return Fit{
		Slope:     slope,
		Intercept: cov.Means[1] - slope*cov.Means[0],
		R:         r,
	}, nil
}

func andMask(a, b *raster.Raster) []bool {
	m := a.Mask()
	for i := range m {
		m[i] = m[i] && b.Valid(i)
	}

	return m
}

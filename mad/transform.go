// SPDX-License-Identifier: MIT

package mad

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/alterdet/cca"
	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const opTransform = "Transform"

// Pass is the outcome of one MAD transform.
type Pass struct {
	// Variates holds MAD1..MADk, then chi2, then p.
	Variates *raster.Raster

	Rhos       []float64  // canonical correlations, increasing
	A, B       *mat.Dense // loadings on the centred before/after bands
	Count      int        // valid pixels in the region
	SumWeights float64    // Σw in the region
}

// K returns the number of MAD variates.
func (p *Pass) K() int { return len(p.Rhos) }

// Chi2 returns the chi-square plane (shared, read-only).
func (p *Pass) Chi2() []float64 { return p.Variates.Plane(p.K()) }

// P returns the no-change probability plane (shared, read-only).
func (p *Pass) P() []float64 { return p.Variates.Plane(p.K() + 1) }

// Transform runs one MAD pass of before against after with pixel weights
// wf (nil means uniform). Statistics use Options.Region; variates are
// produced for every valid pixel of the grid.
//
// Errors: ErrNilInput, ErrBandCountMismatch, raster.ErrGridMismatch,
// *stats.DegenerateInputError, *stats.NotPositiveDefiniteError.
func Transform(before, after *raster.Raster, wf *raster.WeightField, opts ...Option) (*Pass, error) {
	return transform(before, after, wf, gatherOptions(opts...))
}

func transform(before, after *raster.Raster, wf *raster.WeightField, o Options) (*Pass, error) {
	if before == nil || after == nil {
		return nil, madErrorf(opTransform, ErrNilInput)
	}
	k := before.NumBands()
	if after.NumBands() != k {
		return nil, madErrorf(opTransform, ErrBandCountMismatch)
	}
	stacked, err := cca.Stack(before, after)
	if err != nil {
		return nil, madErrorf(opTransform, err)
	}
	cov, err := stats.WeightedMeanCovariance(stacked, wf, o.Region, o.statsOptions()...)
	if err != nil {
		return nil, madErrorf(opTransform, err)
	}

	s11, s22 := cov.SymBlock(0, k), cov.SymBlock(k, k)
	s12, s21 := cov.Block(0, k, k, k), cov.Block(k, 0, k, k)

	c1, err := quadratic(s12, s22, s21)
	if err != nil {
		return nil, madErrorf(opTransform, err)
	}
	c2, err := quadratic(s21, s11, s12)
	if err != nil {
		return nil, madErrorf(opTransform, err)
	}
	e1, err := stats.GeneralizedEigen(c1, s11)
	if err != nil {
		return nil, madErrorf(opTransform, err)
	}
	e2, err := stats.GeneralizedEigen(c2, s22)
	if err != nil {
		return nil, madErrorf(opTransform, err)
	}

	rhos := make([]float64, k)
	sigma2 := make([]float64, k)
	for j, lambda := range e1.Values {
		rhos[j] = math.Sqrt(math.Min(math.Max(lambda, 0), 1))
		sigma2[j] = math.Max(2*(1-rhos[j]), sigmaFloor)
	}
	a, b := e1.Vectors, e2.Vectors
	cca.NormalizeSigns(a, b, s11, s12)

	variates, err := project(cov.Centered, a, b, sigma2)
	if err != nil {
		return nil, madErrorf(opTransform, err)
	}

	return &Pass{
		Variates:   variates,
		Rhos:       rhos,
		A:          a,
		B:          b,
		Count:      cov.Count,
		SumWeights: cov.SumWeights,
	}, nil
}

// quadratic returns the symmetric part of left·mid⁻¹·right.
func quadratic(left mat.Matrix, mid mat.Symmetric, right mat.Matrix) (*mat.SymDense, error) {
	sol, err := stats.CholeskySolve(mid, right)
	if err != nil {
		return nil, err
	}
	var m mat.Dense
	m.Mul(left, sol)
	n, _ := m.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}

	return out, nil
}

// project computes MAD variates, chi-square and p-values from the centred
// stacked raster (k before bands followed by k after bands).
func project(centered *raster.Raster, a, b *mat.Dense, sigma2 []float64) (*raster.Raster, error) {
	k := len(sigma2)
	size := centered.Len()
	planes := make([][]float64, k+2)
	for j := range planes {
		planes[j] = make([]float64, size)
	}
	names := make(raster.BandSet, 0, k+2)
	for j := 0; j < k; j++ {
		names = append(names, cca.MADBandName(j))
	}
	names = append(names, cca.BandChi2, cca.BandP)

	chi, p := planes[k], planes[k+1]
	for i := 0; i < size; i++ {
		if !centered.Valid(i) {
			continue
		}
		var s float64
		for j := 0; j < k; j++ {
			var u, v float64
			for band := 0; band < k; band++ {
				u += a.At(band, j) * centered.Plane(band)[i]
				v += b.At(band, j) * centered.Plane(k + band)[i]
			}
			d := u - v
			planes[j][i] = d
			s += d * d / sigma2[j]
		}
		chi[i] = s
		p[i] = stats.ChiSquareSurvival(s, float64(k))
	}

	return raster.FromPlanes(centered.Width(), centered.Height(), names, planes, centered.Mask())
}

// SPDX-License-Identifier: MIT

package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/alterdet/raster"
)

const opCovariance = "WeightedMeanCovariance"

// CovarianceResult is the output of WeightedMeanCovariance.
type CovarianceResult struct {
	Bands      raster.BandSet
	Means      []float64      // weighted band means μ
	Cov        *mat.SymDense  // weighted covariance, bands×bands
	Centered   *raster.Raster // every pixel of every band minus μ; same mask as the input
	Count      int            // valid pixels N in the region
	SumWeights float64        // Σw over the region
}

// WeightedMeanCovariance computes the weighted mean vector and covariance
// matrix of r over region. wf may be nil (uniform weights).
//
//	μ   = Σ wᵢ·xᵢ / Σ wᵢ
//	cov = Σ wᵢ·(xᵢ-μ)(xᵢ-μ)ᵀ / (N-1) · N / Σ wᵢ
//
// With uniform weights cov is the ordinary sample covariance.
//
// Implementation:
//   - Pass 1: Σw and Σw·x per band (row tiles in parallel).
//   - Centering is applied to every pixel, not only sampled ones, so the
//     result can be projected by callers (MAD variates, PCA scores).
//   - Pass 2: upper triangle of Σ w·cᵢcⱼ from the centred planes.
//
// Errors: raster.ErrEmptyRegion, ErrDimensionMismatch, *DegenerateInputError
// when N < 2 or Σw = 0.
//
// Complexity: O(N·B²) time, O(W·H·B) extra memory for the centred raster.
func WeightedMeanCovariance(r *raster.Raster, wf *raster.WeightField, region raster.Region, opts ...Option) (*CovarianceResult, error) {
	if err := checkWeights(opCovariance, r, wf); err != nil {
		return nil, err
	}
	o := gatherOptions(opts...)
	s, err := resolve(r, region)
	if err != nil {
		return nil, statsErrorf(opCovariance, err)
	}

	m := firstMoments(r, s, o, wf)
	if m.count < 2 || m.sumW <= 0 {
		return nil, &DegenerateInputError{Op: opCovariance, Count: m.count, SumWeights: m.sumW}
	}
	nb := r.NumBands()
	means := make([]float64, nb)
	floats.ScaleTo(means, 1/m.sumW, m.sumWX)

	planes := make([][]float64, nb)
	for b := range planes {
		src := r.Plane(b)
		dst := make([]float64, len(src))
		copy(dst, src)
		floats.AddConst(-means[b], dst)
		planes[b] = dst
	}
	centered, err := raster.FromPlanes(r.Width(), r.Height(), r.Bands(), planes, r.Mask())
	if err != nil {
		return nil, statsErrorf(opCovariance, err)
	}

	weight := weightOf(wf)
	cross := reduceTiles(s, o,
		func() *[]float64 { v := make([]float64, nb*nb); return &v },
		func(sp rowSpan, acc *[]float64) {
			sums := *acc
			s.each(sp, func(i int) {
				if !r.Valid(i) {
					return
				}
				w := weight(i)
				for a := 0; a < nb; a++ {
					wa := w * planes[a][i]
					for b := a; b < nb; b++ {
						sums[a*nb+b] += wa * planes[b][i]
					}
				}
			})
		},
		func(dst, src *[]float64) { floats.Add(*dst, *src) },
	)

	n := float64(m.count)
	scale := n / ((n - 1) * m.sumW)
	cov := mat.NewSymDense(nb, nil)
	for a := 0; a < nb; a++ {
		for b := a; b < nb; b++ {
			cov.SetSym(a, b, (*cross)[a*nb+b]*scale)
		}
	}

	return &CovarianceResult{
		Bands:      r.Bands(),
		Means:      means,
		Cov:        cov,
		Centered:   centered,
		Count:      m.count,
		SumWeights: m.sumW,
	}, nil
}

// Block extracts the rows×cols sub-block of the covariance starting at
// (r0, c0). Used to split a stacked [before|after] covariance into its
// auto and cross parts.
func (c *CovarianceResult) Block(r0, c0, rows, cols int) *mat.Dense {
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, c.Cov.At(r0+i, c0+j))
		}
	}

	return out
}

// SymBlock extracts the n×n diagonal block starting at (k, k).
func (c *CovarianceResult) SymBlock(k, n int) *mat.SymDense {
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, c.Cov.At(k+i, k+j))
		}
	}

	return out
}

// SPDX-License-Identifier: MIT

package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/alterdet/raster"
)

const opPCA = "PrincipalComponents"

// PCAResult holds principal component scores of a raster.
type PCAResult struct {
	Components  *raster.Raster // bands "pc"+name, scaled to unit variance
	Eigenvalues []float64      // descending
	Loadings    *mat.Dense     // column j is the loading vector of component j
}

// PrincipalComponents projects the mean-centred bands of r onto the
// eigenvectors of their covariance over region, largest variance first,
// and divides every score by the square root of its eigenvalue.
// A component with a non-positive eigenvalue is a *NotPositiveDefiniteError.
func PrincipalComponents(r *raster.Raster, region raster.Region, opts ...Option) (*PCAResult, error) {
	cov, err := WeightedMeanCovariance(r, nil, region, opts...)
	if err != nil {
		return nil, err
	}
	nb := r.NumBands()

	var es mat.EigenSym
	if !es.Factorize(cov.Cov, true) {
		return nil, statsErrorf(opPCA, ErrEigenFailed)
	}
	asc := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	values := make([]float64, nb)
	loadings := mat.NewDense(nb, nb, nil)
	for j := 0; j < nb; j++ {
		src := nb - 1 - j
		values[j] = asc[src]
		if values[j] <= 0 {
			return nil, &NotPositiveDefiniteError{Op: opPCA, Dim: nb}
		}
		for b := 0; b < nb; b++ {
			loadings.Set(b, j, vecs.At(b, src))
		}
	}

	planes := make([][]float64, nb)
	names := make(raster.BandSet, nb)
	bands := r.Bands()
	for j := range planes {
		names[j] = "pc" + bands[j]
		planes[j] = make([]float64, r.Len())
	}
	centered := cov.Centered
	for i := 0; i < r.Len(); i++ {
		if !centered.Valid(i) {
			continue
		}
		for j := 0; j < nb; j++ {
			var s float64
			for b := 0; b < nb; b++ {
				s += centered.Plane(b)[i] * loadings.At(b, j)
			}
			planes[j][i] = s / math.Sqrt(values[j])
		}
	}

	comps, err := raster.FromPlanes(r.Width(), r.Height(), names, planes, r.Mask())
	if err != nil {
		return nil, statsErrorf(opPCA, err)
	}

	return &PCAResult{Components: comps, Eigenvalues: values, Loadings: loadings}, nil
}

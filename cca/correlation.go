// SPDX-License-Identifier: MIT

package cca

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

// Band suffixes used while both dates share one stacked raster.
const (
	BeforeSuffix = "_1"
	AfterSuffix  = "_2"
)

// ErrZeroVariance indicates a band whose variance over the region is zero,
// which leaves its correlations undefined.
var ErrZeroVariance = errors.New("cca: band has zero variance")

const opCorrelation = "cca.CorrelationMatrix"

// Correlation holds the Pearson correlation blocks of two band sets.
// Rows and columns follow the explicit band order of Before and After.
type Correlation struct {
	Before, After raster.BandSet
	Cross         *mat.Dense    // R₁₂, n1×n2
	BeforeAuto    *mat.SymDense // R₁₁
	AfterAuto     *mat.SymDense // R₂₂

	// Covariance of the stacked [before|after] raster the blocks came from.
	Covariance *stats.CovarianceResult
}

// CorrelationMatrix computes the (optionally weighted) Pearson correlations
// between every band of before and every band of after over region.
// wf may be nil.
// Errors: raster.ErrGridMismatch, ErrZeroVariance and the stats errors of
// WeightedMeanCovariance.
func CorrelationMatrix(before, after *raster.Raster, wf *raster.WeightField, region raster.Region, opts ...stats.Option) (*Correlation, error) {
	stacked, err := Stack(before, after)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCorrelation, err)
	}
	cov, err := stats.WeightedMeanCovariance(stacked, wf, region, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCorrelation, err)
	}

	n1, n2 := before.NumBands(), after.NumBands()
	sd := make([]float64, n1+n2)
	for i := range sd {
		v := cov.Cov.At(i, i)
		if v <= 0 {
			return nil, fmt.Errorf("%s: band %q: %w", opCorrelation, stacked.Bands()[i], ErrZeroVariance)
		}
		sd[i] = math.Sqrt(v)
	}
	corr := func(i, j int) float64 { return cov.Cov.At(i, j) / (sd[i] * sd[j]) }

	r11 := mat.NewSymDense(n1, nil)
	for i := 0; i < n1; i++ {
		for j := i; j < n1; j++ {
			r11.SetSym(i, j, corr(i, j))
		}
	}
	r22 := mat.NewSymDense(n2, nil)
	for i := 0; i < n2; i++ {
		for j := i; j < n2; j++ {
			r22.SetSym(i, j, corr(n1+i, n1+j))
		}
	}
	r12 := mat.NewDense(n1, n2, nil)
	for i := 0; i < n1; i++ {
		for j := 0; j < n2; j++ {
			r12.Set(i, j, corr(i, n1+j))
		}
	}

	return &Correlation{
		Before:     before.Bands(),
		After:      after.Bands(),
		Cross:      r12,
		BeforeAuto: r11,
		AfterAuto:  r22,
		Covariance: cov,
	}, nil
}

// Stack concatenates before and after into one raster, suffixing band names
// with BeforeSuffix and AfterSuffix.
func Stack(before, after *raster.Raster) (*raster.Raster, error) {
	if before == nil || after == nil {
		return nil, raster.ErrGridMismatch
	}
	b1, err := before.Rename(before.Bands().WithSuffix(BeforeSuffix))
	if err != nil {
		return nil, err
	}
	b2, err := after.Rename(after.Bands().WithSuffix(AfterSuffix))
	if err != nil {
		return nil, err
	}

	return raster.Concat(b1, b2)
}

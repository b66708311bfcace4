// SPDX-License-Identifier: MIT

package iw

import (
	"github.com/katalvlaran/alterdet/changemask"
	"github.com/katalvlaran/alterdet/lda"
	"github.com/katalvlaran/alterdet/raster"
)

const (
	opScore  = "Score"
	opDetect = "Detect"

	// BandScore names the discriminant score band.
	BandScore = "score"
)

// Score evaluates the discriminant Σ weight·z + intercept at every valid
// pixel and returns it as a single-band raster.
//
// Errors: ErrNilInput, lda validation errors.
func Score(zs *ZScores, coef *lda.Coefficients) (*raster.Raster, error) {
	if zs == nil || zs.Z == nil || coef == nil {
		return nil, iwErrorf(opScore, ErrNilInput)
	}
	if err := coef.Validate(); err != nil {
		return nil, iwErrorf(opScore, err)
	}
	planes := make(map[lda.Metric][]float64, len(lda.Metrics()))
	for _, m := range lda.Metrics() {
		planes[m] = zs.ZPlane(m)
	}

	out := make([]float64, zs.Z.Len())
	for i := range out {
		if !zs.Z.Valid(i) {
			continue
		}
		out[i] = coef.Score(func(m lda.Metric) float64 { return planes[m][i] })
	}

	return raster.FromPlanes(zs.Z.Width(), zs.Z.Height(), raster.BandSet{BandScore}, [][]float64{out}, zs.Z.Mask())
}

// Classify marks every valid pixel whose score is ≥ threshold.
func Classify(score *raster.Raster, threshold float64) (*changemask.Mask, error) {
	if score == nil {
		return nil, ErrNilInput
	}

	return changemask.Threshold(score.Width(), score.Height(), score.Plane(0), score.Mask(), threshold)
}

// Detection is the outcome of one IW run.
type Detection struct {
	Metrics *MetricSet
	ZScores *ZScores
	Score   *raster.Raster
	Raw     *changemask.Mask // score ≥ threshold
	Mask    *changemask.Mask // Raw after a one-pixel opening
}

// Detect chains ChangeVector, Iterate, Score, Classify and the opening.
func Detect(before, after *raster.Raster, bands Bands, coef *lda.Coefficients, iterations int, opts ...Option) (*Detection, error) {
	if coef == nil {
		return nil, iwErrorf(opDetect, ErrNilInput)
	}
	ms, err := ChangeVector(before, after, bands, opts...)
	if err != nil {
		return nil, err
	}
	zs, err := Iterate(ms, iterations, opts...)
	if err != nil {
		return nil, err
	}
	score, err := Score(zs, coef)
	if err != nil {
		return nil, err
	}
	raw, err := Classify(score, coef.Threshold())
	if err != nil {
		return nil, iwErrorf(opDetect, err)
	}

	return &Detection{Metrics: ms, ZScores: zs, Score: score, Raw: raw, Mask: raw.Open()}, nil
}

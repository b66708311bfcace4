// SPDX-License-Identifier: MIT

package iw

import (
	"math"

	"github.com/katalvlaran/alterdet/lda"
	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const opCalcZP = "CalcZP"

// ZScores holds the standardized metrics and their no-change probabilities.
type ZScores struct {
	Z *raster.Raster // bands ZBand(m), canonical metric order
	P *raster.Raster // bands PBand(m), canonical metric order
}

// ZBand names the z-score band of m, e.g. "ndvi_z".
func ZBand(m lda.Metric) string { return string(m) + "_z" }

// PBand names the p-value band of m, e.g. "ndvi_p".
func PBand(m lda.Metric) string { return string(m) + "_p" }

// ZPlane returns the z-scores of m.
func (zs *ZScores) ZPlane(m lda.Metric) []float64 {
	p, _ := zs.Z.Band(ZBand(m))
	return p
}

// PPlane returns the p-values of m.
func (zs *ZScores) PPlane(m lda.Metric) []float64 {
	p, _ := zs.P.Band(PBand(m))
	return p
}

// CalcZP standardizes every metric of ms over region.
//
//   - cv: z is the metric itself, p = 1 - χ²cdf(cv, ms.DF).
//   - others: z = (v - mode)/sd with the region mode and population
//     standard deviation, p = 2(1-Φ(|z|)). Zero spread gives z = 0, p = 1.
//
// Errors: *stats.DegenerateInputError when region holds no valid pixel.
func CalcZP(ms *MetricSet, region raster.Region, opts ...Option) (*ZScores, error) {
	if ms == nil || ms.Raster == nil {
		return nil, iwErrorf(opCalcZP, ErrNilInput)
	}

	return calcZP(ms, region, gatherOptions(opts...))
}

func calcZP(ms *MetricSet, region raster.Region, o Options) (*ZScores, error) {
	r := ms.Raster
	modes, err := stats.RegionReduce(r, stats.Mode, region, nil, o.statsOptions()...)
	if err != nil {
		return nil, iwErrorf(opCalcZP, err)
	}
	sds, err := stats.RegionReduce(r, stats.StdDev, region, nil, o.statsOptions()...)
	if err != nil {
		return nil, iwErrorf(opCalcZP, err)
	}

	metrics := lda.Metrics()
	zBands := make(raster.BandSet, len(metrics))
	pBands := make(raster.BandSet, len(metrics))
	zPlanes := make([][]float64, len(metrics))
	pPlanes := make([][]float64, len(metrics))
	n := r.Len()
	for k, m := range metrics {
		zBands[k], pBands[k] = ZBand(m), PBand(m)
		v := ms.Plane(m)
		z, p := make([]float64, n), make([]float64, n)
		mode, _ := modes.Get(string(m))
		sd, _ := sds.Get(string(m))
		for i := range v {
			switch {
			case !r.Valid(i):
				z[i], p[i] = math.NaN(), math.NaN()
			case m == lda.CV:
				z[i] = v[i]
				p[i] = stats.ChiSquareSurvival(v[i], ms.DF)
			case !(sd > 0):
				z[i], p[i] = 0, 1
			default:
				z[i] = (v[i] - mode) / sd
				p[i] = stats.TwoSidedNormalP(z[i])
			}
		}
		zPlanes[k], pPlanes[k] = z, p
	}

	mask := r.Mask()
	zr, err := raster.FromPlanes(r.Width(), r.Height(), zBands, zPlanes, mask)
	if err != nil {
		return nil, iwErrorf(opCalcZP, err)
	}
	pr, err := raster.FromPlanes(r.Width(), r.Height(), pBands, pPlanes, mask)
	if err != nil {
		return nil, iwErrorf(opCalcZP, err)
	}

	return &ZScores{Z: zr, P: pr}, nil
}

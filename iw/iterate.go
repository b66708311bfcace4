// SPDX-License-Identifier: MIT

package iw

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/alterdet/lda"
	"github.com/katalvlaran/alterdet/raster"
)

const opIterate = "Iterate"

// Iterate z-scores ms once over Options.InitialRegion and then runs
// iterations reweighting passes over Options.Region. Each pass scales
// every original metric by max(p, Floor) of that same metric in the
// previous pass before z-scoring again. iterations = 0 returns the first pass.
//
// Errors: ErrNilInput, ErrInvalidIterations, and CalcZP errors.
// Complexity: O((iterations+1)·W×H·metrics).
func Iterate(ms *MetricSet, iterations int, opts ...Option) (*ZScores, error) {
	if ms == nil || ms.Raster == nil {
		return nil, iwErrorf(opIterate, ErrNilInput)
	}
	if iterations < 0 {
		return nil, iwErrorf(opIterate, ErrInvalidIterations)
	}
	o := gatherOptions(opts...)

	zs, err := calcZP(ms, o.InitialRegion, o)
	if err != nil {
		return nil, err
	}
	for it := 1; it <= iterations; it++ {
		weighted, err := reweight(ms, zs, o.Floor)
		if err != nil {
			return nil, iwErrorf(opIterate, err)
		}
		if zs, err = calcZP(weighted, o.Region, o); err != nil {
			return nil, err
		}
		o.Logger.WithFields(logrus.Fields{
			"iteration": it,
			"floored":   floored(zs, o.Floor),
		}).Debug("iw: reweighted change metrics")
	}

	return zs, nil
}

// reweight scales every metric of ms by max(p, floor) of zs.
func reweight(ms *MetricSet, zs *ZScores, floor float64) (*MetricSet, error) {
	metrics := lda.Metrics()
	planes := make([][]float64, len(metrics))
	for k, m := range metrics {
		raw, p := ms.Plane(m), zs.PPlane(m)
		out := make([]float64, len(raw))
		for i, v := range raw {
			if ms.Raster.Valid(i) {
				out[i] = math.Max(p[i], floor) * v
			}
		}
		planes[k] = out
	}
	r, err := raster.FromPlanes(ms.Raster.Width(), ms.Raster.Height(), metricBands(), planes, ms.Raster.Mask())
	if err != nil {
		return nil, err
	}

	return &MetricSet{Raster: r, DF: ms.DF}, nil
}

// floored counts the valid pixels whose cv p-value is below floor.
func floored(zs *ZScores, floor float64) int {
	var c int
	for i, p := range zs.PPlane(lda.CV) {
		if zs.P.Valid(i) && p < floor {
			c++
		}
	}

	return c
}

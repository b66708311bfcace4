// SPDX-License-Identifier: MIT

package iw

import (
	"math"

	"github.com/katalvlaran/alterdet/lda"
	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const opChangeVector = "ChangeVector"

// MetricSet holds the change metrics of two dates, one band per lda.Metric
// in canonical order.
type MetricSet struct {
	Raster *raster.Raster
	DF     float64 // degrees of freedom of cv: one per spectral band
}

// Plane returns the values of metric m.
func (ms *MetricSet) Plane(m lda.Metric) []float64 {
	p, _ := ms.Raster.Band(string(m))
	return p
}

func metricBands() raster.BandSet {
	ms := lda.Metrics()
	out := make(raster.BandSet, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}

	return out
}

// ChangeVector computes cv, rcvmax and the four index differences between
// before and after over the spectral bands of bands. The mean and
// population standard deviation of every band difference are taken over
// Options.Region. A band whose difference has zero spread adds nothing to
// cv or rcvmax.
//
// Errors: ErrNilInput, ErrMissingRole, raster.ErrGridMismatch,
// *stats.DegenerateInputError when the region holds no valid pixel.
// Complexity: O(W×H×bands).
func ChangeVector(before, after *raster.Raster, bands Bands, opts ...Option) (*MetricSet, error) {
	if before == nil || after == nil {
		return nil, iwErrorf(opChangeVector, ErrNilInput)
	}
	if !before.SameGrid(after) {
		return nil, iwErrorf(opChangeVector, raster.ErrGridMismatch)
	}
	for _, r := range []*raster.Raster{before, after} {
		if err := bands.check(r); err != nil {
			return nil, iwErrorf(opChangeVector, err)
		}
	}
	o := gatherOptions(opts...)

	spectral := bands.Spectral()
	b, err := before.Select(spectral...)
	if err != nil {
		return nil, iwErrorf(opChangeVector, err)
	}
	a, err := after.Select(spectral...)
	if err != nil {
		return nil, iwErrorf(opChangeVector, err)
	}

	w, h, n := b.Width(), b.Height(), b.Len()
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = b.Valid(i) && a.Valid(i)
	}
	diff := make([][]float64, len(spectral))
	for k := range spectral {
		bp, ap := b.Plane(k), a.Plane(k)
		diff[k] = make([]float64, n)
		for i := range diff[k] {
			diff[k][i] = bp[i] - ap[i]
		}
	}
	d, err := raster.FromPlanes(w, h, spectral, diff, valid)
	if err != nil {
		return nil, iwErrorf(opChangeVector, err)
	}
	mean, err := stats.RegionReduce(d, stats.Mean, o.Region, nil, o.statsOptions()...)
	if err != nil {
		return nil, iwErrorf(opChangeVector, err)
	}
	sd, err := stats.RegionReduce(d, stats.StdDev, o.Region, nil, o.statsOptions()...)
	if err != nil {
		return nil, iwErrorf(opChangeVector, err)
	}

	cv, rcv := make([]float64, n), make([]float64, n)
	for k := range spectral {
		mu, s := mean.Values[k], sd.Values[k]
		if !(s > 0) {
			continue
		}
		bp, ap := b.Plane(k), a.Plane(k)
		for i, v := range diff[k] {
			t := (v - mu) / s
			cv[i] += t * t
			rcv[i] += relative(v, mu, s, math.Max(bp[i], ap[i]))
		}
	}

	ndB, err := NormalizedDifferences(b, bands)
	if err != nil {
		return nil, iwErrorf(opChangeVector, err)
	}
	ndA, err := NormalizedDifferences(a, bands)
	if err != nil {
		return nil, iwErrorf(opChangeVector, err)
	}
	planes := [][]float64{cv, rcv}
	for _, m := range lda.Metrics()[2:] {
		pb, _ := ndB.Band(string(m))
		pa, _ := ndA.Band(string(m))
		dm := make([]float64, n)
		for i := range dm {
			dm[i] = pb[i] - pa[i]
		}
		planes = append(planes, dm)
	}

	out, err := raster.FromPlanes(w, h, metricBands(), planes, valid)
	if err != nil {
		return nil, iwErrorf(opChangeVector, err)
	}

	return &MetricSet{Raster: out, DF: float64(len(spectral))}, nil
}

// relative standardizes a band difference after scaling the difference,
// its mean and its spread by peak². A dark pixel (peak = 0) falls back to
// the plain standardized difference.
func relative(d, mean, sd, peak float64) float64 {
	m := peak * peak
	if m == 0 {
		return (d - mean) / sd
	}

	return (d/m - mean/m) / (sd / m)
}

// SPDX-License-Identifier: MIT

package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/alterdet/raster"
)

// Reducer selects the per-band statistic computed by RegionReduce.
// Covariance is served by WeightedMeanCovariance since it is not per-band.
type Reducer int

const (
	Mean         Reducer = iota // weighted mean
	StdDev                      // weighted population standard deviation
	SampleStdDev                // weighted sample standard deviation, N/(N-1) corrected
	Mode                        // centre of mass of the fullest histogram bucket
	Sum                         // weighted sum
	Count                       // number of valid sampled pixels
	Min                         // smallest valid sample
	Max                         // largest valid sample
)

const (
	opRegionReduce = "RegionReduce"
	opMode         = "Mode"
)

func (k Reducer) String() string {
	switch k {
	case Mean:
		return "mean"
	case StdDev:
		return "stdDev"
	case SampleStdDev:
		return "sampleStdDev"
	case Mode:
		return "mode"
	case Sum:
		return "sum"
	case Count:
		return "count"
	case Min:
		return "min"
	case Max:
		return "max"
	default:
		return fmt.Sprintf("Reducer(%d)", int(k))
	}
}

// Values holds one statistic per band, in band order.
type Values struct {
	Bands  raster.BandSet
	Values []float64
}

// Get returns the statistic of band name.
func (v Values) Get(name string) (float64, bool) {
	i := v.Bands.Index(name)
	if i < 0 {
		return 0, false
	}

	return v.Values[i], true
}

// moments accumulates the first pass of a region statistic.
type moments struct {
	count    int
	sumW     float64
	sumWX    []float64
	min, max []float64
}

func newMoments(nb int) *moments {
	m := &moments{
		sumWX: make([]float64, nb),
		min:   make([]float64, nb),
		max:   make([]float64, nb),
	}
	for b := range m.min {
		m.min[b] = math.Inf(1)
		m.max[b] = math.Inf(-1)
	}

	return m
}

func (m *moments) merge(o *moments) {
	m.count += o.count
	m.sumW += o.sumW
	for b := range m.sumWX {
		m.sumWX[b] += o.sumWX[b]
		m.min[b] = math.Min(m.min[b], o.min[b])
		m.max[b] = math.Max(m.max[b], o.max[b])
	}
}

// weightOf returns the per-pixel weight accessor; nil means uniform.
func weightOf(wf *raster.WeightField) func(i int) float64 {
	if wf == nil {
		return func(int) float64 { return 1 }
	}

	return wf.At
}

func checkWeights(op string, r *raster.Raster, wf *raster.WeightField) error {
	if r == nil {
		return &DegenerateInputError{Op: op}
	}
	if wf != nil && !wf.Matches(r) {
		return statsErrorf(op, ErrDimensionMismatch)
	}

	return nil
}

// firstMoments computes count, Σw, Σw·x, min and max per band.
func firstMoments(r *raster.Raster, s sampling, o Options, wf *raster.WeightField) *moments {
	nb := r.NumBands()
	weight := weightOf(wf)

	return reduceTiles(s, o,
		func() *moments { return newMoments(nb) },
		func(sp rowSpan, acc *moments) {
			s.each(sp, func(i int) {
				if !r.Valid(i) {
					return
				}
				w := weight(i)
				acc.count++
				acc.sumW += w
				for b := 0; b < nb; b++ {
					x := r.Plane(b)[i]
					acc.sumWX[b] += w * x
					if x < acc.min[b] {
						acc.min[b] = x
					}
					if x > acc.max[b] {
						acc.max[b] = x
					}
				}
			})
		},
		(*moments).merge,
	)
}

// squaredDeviations returns Σ w·(x-μ)² per band.
func squaredDeviations(r *raster.Raster, s sampling, o Options, wf *raster.WeightField, means []float64) []float64 {
	nb := r.NumBands()
	weight := weightOf(wf)
	acc := reduceTiles(s, o,
		func() *[]float64 { v := make([]float64, nb); return &v },
		func(sp rowSpan, acc *[]float64) {
			sums := *acc
			s.each(sp, func(i int) {
				if !r.Valid(i) {
					return
				}
				w := weight(i)
				for b := 0; b < nb; b++ {
					d := r.Plane(b)[i] - means[b]
					sums[b] += w * d * d
				}
			})
		},
		func(dst, src *[]float64) { floats.Add(*dst, *src) },
	)

	return *acc
}

// RegionReduce computes one statistic per band over the valid pixels of
// region, weighting each pixel by wf (nil means uniform weights).
//
// Stages:
//  1. Resolve the region against the grid.
//  2. First pass: count, Σw, Σw·x, min, max (row tiles in parallel).
//  3. Second pass for the spread reducers: Σw·(x-μ)².
//  4. Mode collects the samples and picks the fullest histogram bucket.
//
// Errors: raster.ErrEmptyRegion, ErrDimensionMismatch, ErrUnknownReducer,
// *DegenerateInputError for statistics over zero weight or too few pixels.
func RegionReduce(r *raster.Raster, kind Reducer, region raster.Region, wf *raster.WeightField, opts ...Option) (Values, error) {
	if err := checkWeights(opRegionReduce, r, wf); err != nil {
		return Values{}, err
	}
	o := gatherOptions(opts...)
	s, err := resolve(r, region)
	if err != nil {
		return Values{}, statsErrorf(opRegionReduce, err)
	}

	out := Values{Bands: r.Bands(), Values: make([]float64, r.NumBands())}
	if kind == Mode {
		modes, err := regionModes(r, s, o, wf)
		if err != nil {
			return Values{}, err
		}
		out.Values = modes

		return out, nil
	}

	m := firstMoments(r, s, o, wf)
	degenerate := &DegenerateInputError{Op: opRegionReduce + "." + kind.String(), Count: m.count, SumWeights: m.sumW}

	switch kind {
	case Count:
		for b := range out.Values {
			out.Values[b] = float64(m.count)
		}
	case Sum:
		copy(out.Values, m.sumWX)
	case Min, Max:
		if m.count == 0 {
			return Values{}, degenerate
		}
		if kind == Min {
			copy(out.Values, m.min)
		} else {
			copy(out.Values, m.max)
		}
	case Mean, StdDev, SampleStdDev:
		if m.sumW <= 0 || (kind == SampleStdDev && m.count < 2) {
			return Values{}, degenerate
		}
		means := make([]float64, len(m.sumWX))
		floats.ScaleTo(means, 1/m.sumW, m.sumWX)
		if kind == Mean {
			out.Values = means
			break
		}
		ss := squaredDeviations(r, s, o, wf, means)
		for b, v := range ss {
			variance := v / m.sumW
			if kind == SampleStdDev {
				n := float64(m.count)
				variance *= n / (n - 1)
			}
			out.Values[b] = math.Sqrt(variance)
		}
	default:
		return Values{}, statsErrorf(opRegionReduce, ErrUnknownReducer)
	}

	return out, nil
}

// samples holds the positive-weight values of every band in tile order.
type samples struct {
	values  [][]float64
	weights []float64
}

func regionModes(r *raster.Raster, s sampling, o Options, wf *raster.WeightField) ([]float64, error) {
	nb := r.NumBands()
	weight := weightOf(wf)
	acc := reduceTiles(s, o,
		func() *samples { return &samples{values: make([][]float64, nb)} },
		func(sp rowSpan, acc *samples) {
			s.each(sp, func(i int) {
				if !r.Valid(i) {
					return
				}
				w := weight(i)
				if w <= 0 {
					return
				}
				acc.weights = append(acc.weights, w)
				for b := 0; b < nb; b++ {
					acc.values[b] = append(acc.values[b], r.Plane(b)[i])
				}
			})
		},
		func(dst, src *samples) {
			dst.weights = append(dst.weights, src.weights...)
			for b := range dst.values {
				dst.values[b] = append(dst.values[b], src.values[b]...)
			}
		},
	)
	if len(acc.weights) == 0 {
		return nil, &DegenerateInputError{Op: opRegionReduce + "." + opMode}
	}

	out := make([]float64, nb)
	for b := range out {
		out[b] = HistogramMode(acc.values[b], acc.weights, o.ModeBins)
	}

	return out, nil
}

// HistogramMode estimates the mode of xs as the weighted mean of the samples
// falling into the fullest of bins equal-width buckets spanning [min, max].
// weights may be nil (uniform). xs and weights are not modified.
// Returns NaN for empty input.
func HistogramMode(xs, weights []float64, bins int) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	if bins < 2 {
		bins = DefaultModeBins
	}

	// Sort a copy, permuting weights alongside.
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	x := make([]float64, len(xs))
	var w []float64
	if weights != nil {
		w = make([]float64, len(xs))
	}
	for k, i := range idx {
		x[k] = xs[i]
		if w != nil {
			w[k] = weights[i]
		}
	}

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		return lo
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1)) // Histogram needs x < last divider
	counts := stat.Histogram(nil, dividers, x, w)
	k := floats.MaxIdx(counts)

	var sw, swx float64
	for j := sort.SearchFloat64s(x, dividers[k]); j < len(x) && x[j] < dividers[k+1]; j++ {
		wj := 1.0
		if w != nil {
			wj = w[j]
		}
		sw += wj
		swx += wj * x[j]
	}
	if sw == 0 {
		return 0.5 * (dividers[k] + dividers[k+1])
	}

	return swx / sw
}

// SPDX-License-Identifier: MIT

package iw_test

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/alterdet/iw"
	"github.com/katalvlaran/alterdet/lda"
	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

var baseLevels = []float64{500, 800, 600, 3000, 2000, 1200} // B2 B3 B4 B8 B11 B12

// scene builds a 6-band before/after pair. after = before + noise, plus
// shift inside block. noise = 0 gives exact copies outside block.
func scene(t *testing.T, w, h int, noise, shift float64, block image.Rectangle) (*raster.Raster, *raster.Raster) {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	bands := iw.Sentinel2().Spectral()
	bp := make([][]float64, len(bands))
	ap := make([][]float64, len(bands))
	for k, level := range baseLevels {
		bp[k] = make([]float64, w*h)
		ap[k] = make([]float64, w*h)
		for i := range bp[k] {
			x, y := i%w, i/w
			bp[k][i] = level + noise*rng.NormFloat64()
			ap[k][i] = bp[k][i] + noise*rng.NormFloat64()
			if (image.Point{X: x, Y: y}).In(block) {
				ap[k][i] += shift
			}
		}
	}
	before, err := raster.FromPlanes(w, h, bands, bp, nil)
	require.NoError(t, err)
	after, err := raster.FromPlanes(w, h, bands, ap, nil)
	require.NoError(t, err)

	return before, after
}

// indexTable scores brightening through ndvi, nbr and ndwi only.
func indexTable(t *testing.T) *lda.Coefficients {
	t.Helper()
	c, err := lda.New("indices", map[lda.Metric]float64{
		lda.CV: 0, lda.RCVMax: 0, lda.NDVI: 1, lda.NBR: 1, lda.NDWI: -1, lda.NDSI: 0,
	}, 0, 6)
	require.NoError(t, err)

	return c
}

func fullPasses() iw.Option { return iw.WithInitialRegion(raster.FullRegion()) }

func TestNormalizedDifferences(t *testing.T) {
	bands := iw.Sentinel2()
	planes := make([][]float64, len(baseLevels))
	for k, v := range baseLevels {
		planes[k] = []float64{v, 0}
	}
	img, err := raster.FromPlanes(2, 1, bands.Spectral(), planes, nil)
	require.NoError(t, err)

	nd, err := iw.NormalizedDifferences(img, bands)
	require.NoError(t, err)
	assert.Equal(t, raster.BandSet{iw.BandNDVI, iw.BandNDSI, iw.BandNBR, iw.BandNDWI}, nd.Bands())

	want := map[string]float64{
		iw.BandNDVI: 2400.0 / 3600,
		iw.BandNDSI: (-1200.0 / 2800) / 3000,
		iw.BandNBR:  1800.0 / 4200,
		iw.BandNDWI: -2200.0 / 3800,
	}
	for name, v := range want {
		p, err := nd.Band(name)
		require.NoError(t, err)
		assert.InDelta(t, v, p[0], 1e-12, name)
	}
	assert.False(t, nd.Valid(1), "all-zero pixel has no index")

	_, err = iw.NormalizedDifferences(img, iw.Bands{Blue: "B2", Green: "B3", Red: "B4", NIR: "B8A", SWIR1: "B11", SWIR2: "B12"})
	require.ErrorIs(t, err, iw.ErrMissingRole)
}

func TestChangeVector_Errors(t *testing.T) {
	before, _ := scene(t, 4, 4, 0, 0, image.Rectangle{})
	other, _ := scene(t, 5, 4, 0, 0, image.Rectangle{})

	_, err := iw.ChangeVector(before, nil, iw.Sentinel2())
	require.ErrorIs(t, err, iw.ErrNilInput)
	_, err = iw.ChangeVector(before, other, iw.Sentinel2())
	require.ErrorIs(t, err, raster.ErrGridMismatch)

	masked := before.Clip(image.Rect(0, 0, 0, 0))
	_, err = iw.ChangeVector(masked, before, iw.Sentinel2())
	require.ErrorIs(t, err, stats.ErrDegenerateInput)
}

func TestChangeVector_Identical(t *testing.T) {
	before, after := scene(t, 8, 8, 0, 0, image.Rectangle{})
	ms, err := iw.ChangeVector(before, after, iw.Sentinel2())
	require.NoError(t, err)
	assert.Equal(t, 6.0, ms.DF)

	for _, m := range lda.Metrics() {
		for _, v := range ms.Plane(m) {
			require.Zero(t, v, string(m))
		}
	}

	zs, err := iw.CalcZP(ms, raster.FullRegion())
	require.NoError(t, err)
	for _, m := range lda.Metrics() {
		for i := range zs.ZPlane(m) {
			require.Zero(t, zs.ZPlane(m)[i], string(m))
			require.Equal(t, 1.0, zs.PPlane(m)[i], string(m))
		}
	}
}

// TestChangeVector_BlockShift checks the closed forms on a noiseless scene:
// 100 of 2500 pixels change by -500 in every band, so mean(d) = -20 and
// sd(d)² = 9600.
func TestChangeVector_BlockShift(t *testing.T) {
	block := image.Rect(20, 20, 30, 30)
	before, after := scene(t, 50, 50, 0, 500, block)
	ms, err := iw.ChangeVector(before, after, iw.Sentinel2())
	require.NoError(t, err)

	in := 25*50 + 25
	out := 0
	sd := math.Sqrt(9600)

	cv := ms.Plane(lda.CV)
	assert.InDelta(t, 144, cv[in], 1e-9)
	assert.InDelta(t, 0.25, cv[out], 1e-9)

	rcv := ms.Plane(lda.RCVMax)
	assert.InDelta(t, -6*480/sd, rcv[in], 1e-9)
	assert.InDelta(t, 6*20/sd, rcv[out], 1e-9)

	ndvi := ms.Plane(lda.NDVI)
	assert.InDelta(t, 2400.0/3600-2400.0/4600, ndvi[in], 1e-12)
	assert.Zero(t, ndvi[out])

	ndsi := ms.Plane(lda.NDSI)
	assert.InDelta(t, (-1200.0/2800)/3000-(-1200.0/3800)/3500, ndsi[in], 1e-15)
}

func metricSet(t *testing.T, w, h int, fill func(m lda.Metric, i int) float64) *iw.MetricSet {
	t.Helper()
	ms := lda.Metrics()
	bands := make(raster.BandSet, len(ms))
	planes := make([][]float64, len(ms))
	for k, m := range ms {
		bands[k] = string(m)
		planes[k] = make([]float64, w*h)
		for i := range planes[k] {
			planes[k][i] = fill(m, i)
		}
	}
	r, err := raster.FromPlanes(w, h, bands, planes, nil)
	require.NoError(t, err)

	return &iw.MetricSet{Raster: r, DF: 6}
}

// TestCalcZP_ModeAndSpread uses 90 zeros and 10 tens: mode 0, population
// sd 3.
func TestCalcZP_ModeAndSpread(t *testing.T) {
	ms := metricSet(t, 10, 10, func(m lda.Metric, i int) float64 {
		switch {
		case m == lda.NDVI && i < 10:
			return 10
		case m == lda.CV:
			return float64(i % 20)
		}
		return 0
	})

	zs, err := iw.CalcZP(ms, raster.FullRegion())
	require.NoError(t, err)

	z, p := zs.ZPlane(lda.NDVI), zs.PPlane(lda.NDVI)
	assert.InDelta(t, 10.0/3, z[0], 1e-9)
	assert.InDelta(t, stats.TwoSidedNormalP(10.0/3), p[0], 1e-12)
	assert.InDelta(t, 0, z[50], 1e-12)
	assert.InDelta(t, 1, p[50], 1e-12)

	cvz, cvp := zs.ZPlane(lda.CV), zs.PPlane(lda.CV)
	assert.Equal(t, 13.0, cvz[13], "cv keeps its raw value")
	assert.InDelta(t, stats.ChiSquareSurvival(13, 6), cvp[13], 1e-12)

	for _, v := range zs.ZPlane(lda.NBR) {
		require.Zero(t, v, "zero spread")
	}
	assert.Equal(t, raster.BandSet{"cv_z", "rcvmax_z", "ndvi_z", "nbr_z", "ndwi_z", "ndsi_z"}, zs.Z.Bands())
	assert.Equal(t, "ndvi_p", iw.PBand(lda.NDVI))
}

func TestCalcZP_Degenerate(t *testing.T) {
	ms := metricSet(t, 4, 4, func(lda.Metric, int) float64 { return 1 })
	_, err := iw.CalcZP(ms, raster.RegionOf(image.Rect(10, 10, 12, 12)))
	require.ErrorIs(t, err, raster.ErrEmptyRegion)

	_, err = iw.CalcZP(nil, raster.FullRegion())
	require.ErrorIs(t, err, iw.ErrNilInput)
}

func TestIterate(t *testing.T) {
	block := image.Rect(20, 20, 30, 30)
	before, after := scene(t, 50, 50, 10, 500, block)
	ms, err := iw.ChangeVector(before, after, iw.Sentinel2())
	require.NoError(t, err)

	first, err := iw.CalcZP(ms, raster.FullRegion())
	require.NoError(t, err)
	zero, err := iw.Iterate(ms, 0, fullPasses())
	require.NoError(t, err)
	assert.Equal(t, first.ZPlane(lda.NDVI), zero.ZPlane(lda.NDVI))

	_, err = iw.Iterate(ms, -1)
	require.ErrorIs(t, err, iw.ErrInvalidIterations)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	_, err = iw.Iterate(ms, 3, fullPasses(), iw.WithLogger(logger))
	require.NoError(t, err)
	require.Len(t, hook.AllEntries(), 3)
	for k, e := range hook.AllEntries() {
		assert.Equal(t, logrus.DebugLevel, e.Level)
		assert.Equal(t, k+1, e.Data["iteration"])
	}
}

func TestIterate_FloorKeepsChangeWeighted(t *testing.T) {
	block := image.Rect(20, 20, 30, 30)
	before, after := scene(t, 50, 50, 10, 500, block)
	ms, err := iw.ChangeVector(before, after, iw.Sentinel2())
	require.NoError(t, err)
	raw := append([]float64(nil), ms.Plane(lda.NDVI)...)

	zs, err := iw.Iterate(ms, 1, fullPasses())
	require.NoError(t, err)
	in := 25*50 + 25
	assert.Less(t, math.Abs(zs.ZPlane(lda.NDVI)[in]), 1.0,
		"floored change pixels shrink toward the background")
	assert.Equal(t, raw, ms.Plane(lda.NDVI))
}

func TestScoreAndClassify(t *testing.T) {
	ms := metricSet(t, 3, 1, func(m lda.Metric, i int) float64 { return float64(i) })
	zs, err := iw.CalcZP(ms, raster.FullRegion())
	require.NoError(t, err)

	coef, err := lda.New("cv-only", map[lda.Metric]float64{
		lda.CV: 2, lda.RCVMax: 0, lda.NDVI: 0, lda.NBR: 0, lda.NDWI: 0, lda.NDSI: 0,
	}, 1, 4)
	require.NoError(t, err)

	score, err := iw.Score(zs, coef)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5}, score.Plane(0))

	mask, err := iw.Classify(score, coef.Threshold())
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true}, mask.Bits())

	_, err = iw.Score(nil, coef)
	require.ErrorIs(t, err, iw.ErrNilInput)
}

func TestDetect_StepChangeBlock(t *testing.T) {
	block := image.Rect(20, 20, 30, 30)
	before, after := scene(t, 50, 50, 10, 500, block)

	det, err := iw.Detect(before, after, iw.Sentinel2(), indexTable(t), iw.DefaultIterations, fullPasses())
	require.NoError(t, err)
	require.Equal(t, 100, det.Mask.Count(), "\n%s", det.Mask)
	for y := block.Min.Y; y < block.Max.Y; y++ {
		for x := block.Min.X; x < block.Max.X; x++ {
			require.True(t, det.Mask.At(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestDetect_HabitatTables(t *testing.T) {
	block := image.Rect(20, 20, 30, 30)
	before, after := scene(t, 50, 50, 10, 500, block)

	for _, name := range []string{lda.Desert, lda.Wetland} {
		t.Run(name, func(t *testing.T) {
			coef, err := lda.Habitat(name)
			require.NoError(t, err)

			det, err := iw.Detect(before, after, iw.Sentinel2(), coef, iw.DefaultIterations, fullPasses())
			require.NoError(t, err)
			require.Equal(t, 100, det.Mask.Count(), "\n%s", det.Mask)
			for y := block.Min.Y; y < block.Max.Y; y++ {
				for x := block.Min.X; x < block.Max.X; x++ {
					require.True(t, det.Mask.At(x, y), "(%d,%d)", x, y)
				}
			}
		})
	}
}

// A uniform block collapses into one histogram bin once reweighting has
// pulled its metrics together, becoming the mode on odd passes. Its
// z-scores then vanish and only even passes separate it.
func TestIterate_PassParity(t *testing.T) {
	block := image.Rect(20, 20, 30, 30)
	before, after := scene(t, 50, 50, 10, 500, block)
	coef, err := lda.Habitat(lda.Desert)
	require.NoError(t, err)

	odd, err := iw.Detect(before, after, iw.Sentinel2(), coef, iw.DefaultIterations-1, fullPasses())
	require.NoError(t, err)
	var inside, outside int
	for i, v := range odd.Score.Plane(0) {
		if v < coef.Threshold() {
			continue
		}
		if (image.Point{X: i % 50, Y: i / 50}).In(block) {
			inside++
		} else {
			outside++
		}
	}
	assert.Zero(t, inside)
	assert.Greater(t, outside, 100)

	even, err := iw.Detect(before, after, iw.Sentinel2(), coef, iw.DefaultIterations, fullPasses())
	require.NoError(t, err)
	for i, set := range even.Mask.Bits() {
		require.Equal(t, (image.Point{X: i % 50, Y: i / 50}).In(block), set, "pixel %d", i)
	}
}

func TestDetect_NoChange(t *testing.T) {
	before, _ := scene(t, 50, 50, 10, 0, image.Rectangle{})

	det, err := iw.Detect(before, before.Clone(), iw.Sentinel2(), indexTable(t), iw.DefaultIterations, fullPasses())
	require.NoError(t, err)
	assert.Zero(t, det.Raw.Count())
	for _, v := range det.Score.Plane(0) {
		require.Less(t, v, indexTable(t).Threshold())
	}
}

func TestOptionPanics(t *testing.T) {
	assert.Panics(t, func() { iw.WithFloor(0) })
	assert.Panics(t, func() { iw.WithModeBins(1) })
	assert.Panics(t, func() { iw.WithWorkers(0) })
	assert.Panics(t, func() { iw.WithLogger(nil) })
}

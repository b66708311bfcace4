// SPDX-License-Identifier: MIT

package mad_test

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/alterdet/mad"
	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const (
	sceneW, sceneH = 40, 40
	blockSize      = 10
)

func inBlock(i int) bool {
	x, y := i%sceneW, i/sceneW
	return x >= 5 && x < 5+blockSize && y >= 5 && y < 5+blockSize
}

// randomScene draws nb independent bands uniformly from [0,1000].
func randomScene(t *testing.T, nb int, seed int64) *raster.Raster {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	planes := make([][]float64, nb)
	names := make(raster.BandSet, nb)
	for b := range planes {
		names[b] = string(rune('a' + b))
		planes[b] = make([]float64, sceneW*sceneH)
		for i := range planes[b] {
			planes[b][i] = rng.Float64() * 1000
		}
	}
	r, err := raster.FromPlanes(sceneW, sceneH, names, planes, nil)
	require.NoError(t, err)

	return r
}

// shiftedScene adds N(0,5) noise to every band and +500 to band 0 inside
// the block.
func shiftedScene(t *testing.T, before *raster.Raster, seed int64) *raster.Raster {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	planes := make([][]float64, before.NumBands())
	for b := range planes {
		src := before.Plane(b)
		planes[b] = make([]float64, len(src))
		for i, v := range src {
			planes[b][i] = v + rng.NormFloat64()*5
			if b == 0 && inBlock(i) {
				planes[b][i] += 500
			}
		}
	}
	r, err := raster.FromPlanes(before.Width(), before.Height(), before.Bands(), planes, nil)
	require.NoError(t, err)

	return r
}

func TestRun_IdenticalImagesConverge(t *testing.T) {
	before := randomScene(t, 3, 1)
	after := before.Clone()

	res, err := mad.Run(before, after, 10)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.LessOrEqual(t, res.Iterations, 2)

	st := res.State
	require.NotNil(t, st.Pass)
	assert.True(t, st.Done)
	assert.Equal(t, 1, st.Iteration)
	for _, rho := range st.LastRhos() {
		assert.InDelta(t, 1.0, rho, 1e-6)
	}
	for i, p := range st.Pass.P() {
		require.GreaterOrEqualf(t, p, 0.999, "pixel %d", i)
	}
	assert.Equal(t, sceneW*sceneH, st.Count)
}

func TestTransform_SingleBandShiftLowersOneRho(t *testing.T) {
	before := randomScene(t, 3, 2)
	after := shiftedScene(t, before, 3)

	pass, err := mad.Transform(before, after, nil)
	require.NoError(t, err)
	require.Equal(t, 3, pass.K())

	assert.Less(t, pass.Rhos[0], 0.97, "changed variate comes first")
	assert.Greater(t, pass.Rhos[1], 0.999)
	assert.Greater(t, pass.Rhos[2], 0.999)
	for j := 1; j < 3; j++ {
		assert.LessOrEqual(t, pass.Rhos[j-1], pass.Rhos[j])
	}
	assert.Equal(t, raster.BandSet{"MAD1", "MAD2", "MAD3", "chi2", "p"}, pass.Variates.Bands())
}

func TestRun_ShiftFlagsBlock(t *testing.T) {
	before := randomScene(t, 3, 4)
	after := shiftedScene(t, before, 5)

	res, err := mad.Run(before, after, 50, mad.WithWorkers(2))
	require.NoError(t, err)
	assert.True(t, res.Converged)
	require.NotNil(t, res.State.Pass)

	var outside float64
	for i, p := range res.State.Pass.P() {
		if inBlock(i) {
			require.Lessf(t, p, 1e-3, "changed pixel %d", i)
		} else {
			outside += p
		}
	}
	assert.Greater(t, outside/float64(sceneW*sceneH-blockSize*blockSize), 0.3)

	// Changed pixels are down-weighted in the committed pass.
	require.Greater(t, res.State.Iteration, 1)
	w := res.State.Weights
	for i := 0; i < w.Width()*w.Height(); i++ {
		if inBlock(i) {
			require.Less(t, w.At(i), 0.05)
		}
	}
}

func TestRun_BudgetExhaustedIsNotAnError(t *testing.T) {
	before := randomScene(t, 3, 6)
	after := shiftedScene(t, before, 7)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	res, err := mad.Run(before, after, 1, mad.WithLogger(logger))
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 1, res.State.Iteration)
	assert.Len(t, res.State.Rhos, 2, "placeholder plus one pass")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, logrus.DebugLevel, hook.Entries[0].Level)
	assert.Contains(t, hook.Entries[0].Data, "max_delta_rho")
}

func TestDriver_StepIsImmutable(t *testing.T) {
	before := randomScene(t, 2, 8)
	after := shiftedScene(t, before, 9)

	d, err := mad.NewDriver(before, after)
	require.NoError(t, err)
	s0 := d.Init()
	assert.Equal(t, []float64{1, 2}, s0.LastRhos())

	s1, err := d.Step(s0)
	require.NoError(t, err)
	assert.Nil(t, s0.Pass, "initial state untouched")
	assert.Len(t, s0.Rhos, 1)
	assert.Equal(t, 1, s1.Iteration)

	done := *s1
	done.Done = true
	again, err := d.Step(&done)
	require.NoError(t, err)
	assert.Same(t, &done, again)
}

func TestDriver_Errors(t *testing.T) {
	three := randomScene(t, 3, 10)
	two := randomScene(t, 2, 11)

	_, err := mad.NewDriver(three, two)
	require.ErrorIs(t, err, mad.ErrBandCountMismatch)

	_, err = mad.Run(three, three, 0)
	require.ErrorIs(t, err, mad.ErrInvalidIterations)

	_, err = mad.NewDriver(nil, three)
	require.ErrorIs(t, err, mad.ErrNilInput)

	small, err := raster.New(2, 2, raster.BandSet{"a", "b", "c"})
	require.NoError(t, err)
	_, err = mad.NewDriver(three, small)
	require.ErrorIs(t, err, raster.ErrGridMismatch)
}

func TestTransform_DegenerateInputs(t *testing.T) {
	planes := [][]float64{{1, 2, 3, 4}, {4, 3, 2, 2}}
	masked, err := raster.FromPlanes(2, 2, raster.BandSet{"a", "b"}, planes, []bool{false, false, false, false})
	require.NoError(t, err)
	_, err = mad.Transform(masked, masked, nil)
	require.ErrorIs(t, err, stats.ErrDegenerateInput)

	flat := make([]float64, sceneW*sceneH)
	for i := range flat {
		flat[i] = 42
	}
	scene := randomScene(t, 1, 12)
	withFlat, err := raster.FromPlanes(sceneW, sceneH, raster.BandSet{"flat", "x"},
		[][]float64{flat, scene.Plane(0)}, nil)
	require.NoError(t, err)
	_, err = mad.Transform(withFlat, withFlat, nil)
	require.ErrorIs(t, err, stats.ErrNotPositiveDefinite)
}

func TestNormalize_RecoversLinearGain(t *testing.T) {
	before := randomScene(t, 2, 13)
	planes := make([][]float64, 2)
	for b := range planes {
		planes[b] = make([]float64, before.Len())
		for i, v := range before.Plane(b) {
			planes[b][i] = 2*v + 100
		}
	}
	after, err := raster.FromPlanes(sceneW, sceneH, before.Bands(), planes, nil)
	require.NoError(t, err)

	p := make([]float64, before.Len())
	for i := range p {
		p[i] = 1
	}
	norm, err := mad.Normalize(before, after, p, mad.DefaultNoChangeThreshold)
	require.NoError(t, err)
	require.Len(t, norm.Fits, 2)
	assert.Equal(t, sceneW*sceneH, norm.NoChange)
	for _, fit := range norm.Fits {
		assert.InDelta(t, 0.5, fit.Slope, 1e-9)
		assert.InDelta(t, -50, fit.Intercept, 1e-6)
		assert.InDelta(t, 1.0, fit.R, 1e-9)
	}
	assert.InDeltaSlice(t, before.Plane(1), norm.Normalized.Plane(1), 1e-6)

	_, err = mad.Normalize(before, after, p, 1)
	require.ErrorIs(t, err, mad.ErrThresholdRange)

	_, err = mad.Normalize(before, after, make([]float64, before.Len()), 0.9)
	require.ErrorIs(t, err, stats.ErrDegenerateInput)
}

// noisyScene adds N(0,5) noise to every band of before.
func noisyScene(t *testing.T, before *raster.Raster, seed int64) *raster.Raster {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	planes := make([][]float64, before.NumBands())
	for b := range planes {
		src := before.Plane(b)
		planes[b] = make([]float64, len(src))
		for i, v := range src {
			planes[b][i] = v + rng.NormFloat64()*5
		}
	}
	r, err := raster.FromPlanes(before.Width(), before.Height(), before.Bands(), planes, nil)
	require.NoError(t, err)

	return r
}

func TestRecalibrate_NoiseStaysNearAlpha(t *testing.T) {
	const alpha = 0.01
	before := randomScene(t, 6, 31)
	after := noisyScene(t, before, 32)

	res, err := mad.Run(before, after, 50, mad.WithWorkers(2))
	require.NoError(t, err)
	cal, err := mad.Recalibrate(res.State.Pass)
	require.NoError(t, err)
	require.Len(t, cal.Centers, 6)
	require.Len(t, cal.P, sceneW*sceneH)

	for j, sc := range cal.Scales {
		assert.Greater(t, sc, 0.0, "variate %d", j)
	}
	var flagged int
	for i, p := range cal.P {
		require.Falsef(t, p < 0 || p > 1, "pixel %d p=%g", i, p)
		if p <= alpha {
			flagged++
		}
	}
	assert.LessOrEqual(t, flagged, sceneW*sceneH*2/100)
}

func TestRecalibrate_ShiftedBlock(t *testing.T) {
	before := randomScene(t, 3, 4)
	after := shiftedScene(t, before, 5)

	res, err := mad.Run(before, after, 50)
	require.NoError(t, err)
	cal, err := mad.Recalibrate(res.State.Pass)
	require.NoError(t, err)

	var outside int
	for i, p := range cal.P {
		if inBlock(i) {
			require.Lessf(t, p, 1e-3, "changed pixel %d", i)
		} else if p <= 0.01 {
			outside++
		}
	}
	assert.LessOrEqual(t, outside, 2*(sceneW*sceneH-blockSize*blockSize)/100)

	_, err = mad.Recalibrate(nil)
	require.ErrorIs(t, err, mad.ErrNilInput)
}

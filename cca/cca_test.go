// SPDX-License-Identifier: MIT

package cca_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	gstat "gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/alterdet/cca"
	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const tol = 1e-8

// scenePair returns a 3-band before raster and a 2-band after raster whose
// bands mix the before bands with independent noise.
func scenePair(t *testing.T, w, h int, seed int64) (*raster.Raster, *raster.Raster) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	n := w * h
	b := [][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
	a := [][]float64{make([]float64, n), make([]float64, n)}
	for i := 0; i < n; i++ {
		x, y, z := rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()
		b[0][i], b[1][i], b[2][i] = 100+10*x, 50+5*y, 20+2*z
		a[0][i] = 3*x + 0.5*y + rng.NormFloat64()
		a[1][i] = -2*y + z + 2*rng.NormFloat64()
	}
	before, err := raster.FromPlanes(w, h, raster.BandSet{"b1", "b2", "b3"}, b, nil)
	require.NoError(t, err)
	after, err := raster.FromPlanes(w, h, raster.BandSet{"a1", "a2"}, a, nil)
	require.NoError(t, err)

	return before, after
}

func canonical(t *testing.T, before, after *raster.Raster) *cca.CanonicalResult {
	t.Helper()
	corr, err := cca.CorrelationMatrix(before, after, nil, raster.FullRegion())
	require.NoError(t, err)
	res, err := cca.CanonicalCorrelation(corr)
	require.NoError(t, err)

	return res
}

func negate(t *testing.T, r *raster.Raster) *raster.Raster {
	t.Helper()
	planes := make([][]float64, r.NumBands())
	for b := range planes {
		src := r.Plane(b)
		planes[b] = make([]float64, len(src))
		for i, v := range src {
			planes[b][i] = -v
		}
	}
	out, err := raster.FromPlanes(r.Width(), r.Height(), r.Bands(), planes, r.Mask())
	require.NoError(t, err)

	return out
}

func TestCorrelationMatrix_MatchesPearson(t *testing.T) {
	before, after := scenePair(t, 12, 10, 1)
	corr, err := cca.CorrelationMatrix(before, after, nil, raster.FullRegion())
	require.NoError(t, err)

	r, c := corr.Cross.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 2, c)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1.0, corr.BeforeAuto.At(i, i), tol)
		for j := 0; j < 2; j++ {
			want := gstat.Correlation(before.Plane(i), after.Plane(j), nil)
			assert.InDelta(t, want, corr.Cross.At(i, j), tol)
		}
	}
	assert.Equal(t, raster.BandSet{"b1", "b2", "b3"}, corr.Before)
	assert.Equal(t, raster.BandSet{"a1", "a2"}, corr.After)
}

func TestCorrelationMatrix_ZeroVariance(t *testing.T) {
	before, _ := scenePair(t, 4, 4, 2)
	flat, err := raster.Constant(4, 4, "flat", 7)
	require.NoError(t, err)

	_, err = cca.CorrelationMatrix(before, flat, nil, raster.FullRegion())
	require.ErrorIs(t, err, cca.ErrZeroVariance)
}

func TestCanonicalCorrelation_RhosSortedAndBounded(t *testing.T) {
	before, after := scenePair(t, 20, 20, 3)
	res := canonical(t, before, after)

	require.Equal(t, 2, res.K(), "k = min(n1, n2)")
	r, c := res.A.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	for i, rho := range res.Rhos {
		assert.GreaterOrEqual(t, rho, 0.0)
		assert.LessOrEqual(t, rho, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, rho, res.Rhos[i-1])
		}
	}
}

func TestCanonicalCorrelation_SingleBandIsAbsoluteCorrelation(t *testing.T) {
	before, after := scenePair(t, 15, 15, 4)
	b, err := before.Select("b1")
	require.NoError(t, err)
	a, err := after.Select("a1")
	require.NoError(t, err)

	res := canonical(t, b, a)
	want := math.Abs(gstat.Correlation(b.Plane(0), a.Plane(0), nil))
	assert.InDelta(t, want, res.Rhos[0], tol)
	assert.Greater(t, res.A.At(0, 0), 0.0)
}

func TestCanonicalCorrelation_SignNormalization(t *testing.T) {
	before, after := scenePair(t, 20, 20, 5)
	ref := canonical(t, before, after)

	t.Run("negated after flips only B", func(t *testing.T) {
		got := canonical(t, before, negate(t, after))
		assert.InDeltaSlice(t, ref.Rhos, got.Rhos, tol)
		assert.True(t, mat.EqualApprox(ref.A, got.A, tol))
		var neg mat.Dense
		neg.Scale(-1, ref.B)
		assert.True(t, mat.EqualApprox(&neg, got.B, tol))
	})

	t.Run("reversed band order permutes rows", func(t *testing.T) {
		rev, err := before.Select("b3", "b2", "b1")
		require.NoError(t, err)
		got := canonical(t, rev, after)
		assert.InDeltaSlice(t, ref.Rhos, got.Rhos, tol)
		for i := 0; i < 3; i++ {
			for j := 0; j < 2; j++ {
				assert.InDelta(t, ref.A.At(2-i, j), got.A.At(i, j), tol)
			}
		}
		assert.True(t, mat.EqualApprox(ref.B, got.B, tol))
	})

	t.Run("swapped dates differ only by sign", func(t *testing.T) {
		got := canonical(t, negate(t, after), negate(t, before))
		assert.InDeltaSlice(t, ref.Rhos, got.Rhos, tol)
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				assert.InDelta(t, math.Abs(ref.B.At(i, j)), math.Abs(got.A.At(i, j)), tol)
			}
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 2; j++ {
				assert.InDelta(t, math.Abs(ref.A.At(i, j)), math.Abs(got.B.At(i, j)), tol)
			}
		}
	})
}

func TestVariates_BandsAndChangeSignal(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	const w, h = 30, 30
	n := w * h
	b := [][]float64{make([]float64, n), make([]float64, n)}
	a := [][]float64{make([]float64, n), make([]float64, n)}
	for i := 0; i < n; i++ {
		b[0][i] = rng.Float64() * 1000
		b[1][i] = rng.Float64() * 1000
		a[0][i] = b[0][i] + rng.NormFloat64()*5
		a[1][i] = b[1][i] + rng.NormFloat64()*5
		if x, y := i%w, i/w; x < 8 && y < 8 {
			a[0][i] += 400
		}
	}
	before, err := raster.FromPlanes(w, h, raster.BandSet{"x", "y"}, b, nil)
	require.NoError(t, err)
	after, err := raster.FromPlanes(w, h, raster.BandSet{"x", "y"}, a, nil)
	require.NoError(t, err)

	out, res, err := cca.Variates(before, after, nil, raster.FullRegion())
	require.NoError(t, err)
	assert.Equal(t, raster.BandSet{"MAD1", "MAD2", "chi2", "p"}, out.Bands())
	assert.Equal(t, 2, res.K())

	chi, err := out.Band(cca.BandChi2)
	require.NoError(t, err)
	p, err := out.Band(cca.BandP)
	require.NoError(t, err)
	var in, outSum float64
	for i := 0; i < n; i++ {
		require.GreaterOrEqual(t, p[i], 0.0)
		require.LessOrEqual(t, p[i], 1.0)
		if x, y := i%w, i/w; x < 8 && y < 8 {
			in += chi[i]
		} else {
			outSum += chi[i]
		}
	}
	assert.Greater(t, in/64, 5*outSum/float64(n-64))

	mean, err := stats.RegionReduce(out, stats.Mean, raster.FullRegion(), nil)
	require.NoError(t, err)
	m1, _ := mean.Get("MAD1")
	assert.InDelta(t, 0, m1, 1e-6, "variates are centred")
}

// With uneven weights the variates are centred only in the weighted sense;
// chi2 still standardizes them over the region, so its region mean is k.
func TestVariates_WeightedChiSquareIsStandardized(t *testing.T) {
	const w, h = 30, 30
	before, after := scenePair(t, w, h, 21)
	rng := rand.New(rand.NewSource(22))
	ws := make([]float64, w*h)
	for i := range ws {
		ws[i] = rng.Float64()
		if i%w < 10 {
			ws[i] *= 0.05
		}
	}
	wf, err := raster.NewWeightField(w, h, ws)
	require.NoError(t, err)

	out, res, err := cca.Variates(before, after, wf, raster.FullRegion())
	require.NoError(t, err)
	k := res.K()

	mads, err := out.Select(cca.MADBandName(0), cca.MADBandName(1))
	require.NoError(t, err)
	mean, err := stats.RegionReduce(mads, stats.Mean, raster.FullRegion(), nil)
	require.NoError(t, err)
	sd, err := stats.RegionReduce(mads, stats.StdDev, raster.FullRegion(), nil)
	require.NoError(t, err)

	chi, err := out.Band(cca.BandChi2)
	require.NoError(t, err)
	var sum float64
	for i, c := range chi {
		var want float64
		for j := 0; j < k; j++ {
			z := (mads.Plane(j)[i] - mean.Values[j]) / sd.Values[j]
			want += z * z
		}
		require.InDelta(t, want, c, 1e-9*math.Max(1, want), "pixel %d", i)
		sum += c
	}
	assert.InDelta(t, float64(k), sum/float64(len(chi)), 1e-9)
}

// SPDX-License-Identifier: MIT

package lda_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/alterdet/lda"
)

func TestHabitatTables(t *testing.T) {
	assert.Equal(t, []string{"desert", "forest", "grassland", "scrub", "wetland"}, lda.Habitats())

	for _, name := range lda.Habitats() {
		c, err := lda.Habitat(name)
		require.NoError(t, err, name)
		require.NoError(t, c.Validate())
		assert.Zero(t, c.Intercept())
	}

	forest, err := lda.Habitat("Forest")
	require.NoError(t, err)
	assert.Equal(t, 5.0, forest.Threshold())
	assert.Equal(t, -0.241673763, forest.Weight(lda.RCVMax))
	assert.Equal(t, 0.242237481, forest.Weight(lda.NDSI))

	grass, err := lda.Habitat(lda.Grassland)
	require.NoError(t, err)
	assert.Equal(t, 0.003335746, grass.Weight(lda.CV), "cvz alias")
	assert.Equal(t, -0.473307836, grass.Weight(lda.RCVMax))

	desert, err := lda.Habitat(lda.Desert)
	require.NoError(t, err)
	assert.Equal(t, 1.6, desert.Threshold())

	_, err = lda.Habitat("tundra")
	require.ErrorIs(t, err, lda.ErrUnknownHabitat)
}

func TestFromMap_Validation(t *testing.T) {
	full := map[string]float64{
		"int": 1, "lda": 2,
		"cv": 1, "rcvmax": 1, "ndvi": 1, "nbr": 1, "ndwi": 1, "ndsi": 1,
	}
	c, err := lda.FromMap("t", full)
	require.NoError(t, err)
	assert.Equal(t, 7.0, c.Score(func(lda.Metric) float64 { return 1 }))

	missing := map[string]float64{"int": 0, "lda": 5, "cv": 1}
	_, err = lda.FromMap("t", missing)
	require.ErrorIs(t, err, lda.ErrMissingKey)

	noThreshold := map[string]float64{"int": 0, "cv": 1, "rcvmax": 1, "ndvi": 1, "nbr": 1, "ndwi": 1, "ndsi": 1}
	_, err = lda.FromMap("t", noThreshold)
	require.ErrorIs(t, err, lda.ErrMissingKey)
	assert.Contains(t, err.Error(), `"lda"`)

	extra := map[string]float64{"int": 0, "lda": 5, "evi": 1}
	_, err = lda.FromMap("t", extra)
	require.ErrorIs(t, err, lda.ErrUnknownKey)

	full["ndvi"] = math.NaN()
	_, err = lda.FromMap("t", full)
	require.ErrorIs(t, err, lda.ErrNonFinite)
}

func TestParseMetric(t *testing.T) {
	cases := map[string]lda.Metric{
		"cv_z": lda.CV, "cvz": lda.CV, "rcv_z": lda.RCVMax, "rcvmax_z": lda.RCVMax,
		"NDVI": lda.NDVI, "nbr": lda.NBR,
	}
	for key, want := range cases {
		got, ok := lda.ParseMetric(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	_, ok := lda.ParseMetric("int")
	assert.False(t, ok)
}

func TestLoad_RoundTripsBuiltIns(t *testing.T) {
	doc := `
custom:
  int: 0.5
  lda: 3
  cv_z: 0.1
  rcv_z: -0.2
  ndvi_z: 0.3
  ndsi_z: 0.4
  ndwi_z: -0.5
  nbr_z: 0.6
`
	set, err := lda.Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Contains(t, set, "custom")
	c := set["custom"]
	assert.Equal(t, 0.5, c.Intercept())
	assert.Equal(t, -0.2, c.Weight(lda.RCVMax))

	out, err := set.Marshal()
	require.NoError(t, err)
	again, err := lda.Load(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, c.Map(), again["custom"].Map())

	_, err = lda.Load(strings.NewReader("bad:\n  int: 0\n"))
	require.ErrorIs(t, err, lda.ErrMissingKey)

	_, err = lda.Load(strings.NewReader("::not yaml"))
	require.Error(t, err)
}

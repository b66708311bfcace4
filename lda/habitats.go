// SPDX-License-Identifier: MIT

package lda

import (
	"fmt"
	"sort"
	"strings"
)

// Built-in habitat names.
const (
	Forest    = "forest"
	Scrub     = "scrub"
	Desert    = "desert"
	Wetland   = "wetland"
	Grassland = "grassland"
)

// habitatTables are the fitted discriminant tables per land-cover class.
var habitatTables = map[string]map[string]float64{
	Forest: {
		"int": 0, "lda": 5,
		"cv_z": 0.020213447, "rcv_z": -0.241673763, "ndvi_z": 0.171443325,
		"ndsi_z": 0.242237481, "ndwi_z": -0.021797543, "nbr_z": -0.004327796,
	},
	Scrub: {
		"int": 0, "lda": 5,
		"cv_z": -0.004616377, "rcv_z": -0.756532635, "ndvi_z": -0.034184409,
		"ndsi_z": -0.005930105, "ndwi_z": -0.208912147, "nbr_z": -0.065727911,
	},
	Desert: {
		"int": 0, "lda": 1.6,
		"cv_z": 0.03535703, "rcv_z": 0.37298094, "ndvi_z": 0.81159062,
		"ndsi_z": 0.31934502, "ndwi_z": -0.04074573, "nbr_z": 0.03053187,
	},
	Wetland: {
		"int": 0, "lda": 2.5,
		"cv_z": 0.01539318, "rcv_z": -0.53627410, "ndvi_z": -0.05276547,
		"ndsi_z": 0.04784782, "ndwi_z": -0.21047313, "nbr_z": 0.28553036,
	},
	Grassland: {
		"int": 0, "lda": 5,
		"cvz": 0.003335746, "nbr_z": 0.200660811, "ndsi_z": -0.048249043,
		"ndvi_z": 0.199691164, "ndwi_z": 0.012553511, "rcvmax_z": -0.473307836,
	},
}

// Habitat returns the built-in table of a land-cover class (case-insensitive).
func Habitat(name string) (*Coefficients, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	kv, ok := habitatTables[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHabitat, name)
	}

	return FromMap(key, kv)
}

// Habitats lists the built-in classes in lexical order.
func Habitats() []string {
	out := make([]string, 0, len(habitatTables))
	for k := range habitatTables {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

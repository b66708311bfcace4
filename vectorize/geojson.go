// SPDX-License-Identifier: MIT

package vectorize

import "github.com/paulmach/orb/geojson"

// FeatureCollection wraps features as GeoJSON with "pixels" and "area"
// properties. Feature IDs count from 1 in slice order.
func FeatureCollection(features []Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, f := range features {
		gf := geojson.NewFeature(f.Polygon)
		gf.ID = i + 1
		gf.Properties["pixels"] = f.Pixels
		gf.Properties["area"] = f.Area
		fc.Append(gf)
	}

	return fc
}

// SPDX-License-Identifier: MIT

// Package alterdet detects land-cover change between two multi-band
// satellite composites and turns it into polygons.
//
// Two detectors are provided:
//
//	IR-MAD  iteratively reweighted multivariate alteration detection.
//	        Canonical correlation of the two dates gives chi-square change
//	        probabilities; pixels are reweighted until the correlations
//	        settle.
//	IW      iteratively weighted change vectors. Six per-pixel change
//	        metrics are standardized, reweighted by the change vector's
//	        no-change probability and scored by a habitat-specific linear
//	        discriminant.
//
// Everything is organized under these subpackages:
//
//	raster/    : band-named planar images, validity masks, regions
//	stats/     : tiled region reductions, weighted covariance, chi-square
//	             and normal distributions, generalized eigenproblems
//	cca/       : weighted canonical correlation of two images
//	mad/       : MAD variates, the IR-MAD driver, radiometric normalization
//	lda/       : discriminant coefficient tables (built-in and YAML)
//	iw/        : change metrics, z-scores, reweighting, classification
//	changemask/: binary change masks, morphology, connected components
//	vectorize/ : mask components to orb polygons and GeoJSON
//	composite/ : scene collections, cloud masks, per-pixel medians
//	pipeline/  : request runner and batch execution over both detectors
//
// cmd/changedet runs either detector over a synthetic Sentinel-2
// collection and prints GeoJSON.
//
// Quick start:
//
//	runner, _ := pipeline.NewRunner(compositor)
//	rep, err := runner.DetectIW(ctx, pipeline.Request{
//		ID:      "parcel-17",
//		AOI:     raster.FullRegion(),
//		Date:    time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
//		Habitat: lda.Forest,
//	})
//	fc := vectorize.FeatureCollection(rep.Features)
package alterdet

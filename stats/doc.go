// SPDX-License-Identifier: MIT

// Package stats provides the statistical primitives of the change detection
// engine: region reductions over a raster, weighted mean/covariance, the
// generalized symmetric eigenproblem, and the distribution functions used to
// turn statistics into probabilities.
//
// What:
//
//   - RegionReduce: mean, population/sample standard deviation, mode, sum,
//     count, min and max per band over the valid pixels of a Region,
//     optionally weighted.
//   - WeightedMeanCovariance: weighted band means, the mean-centred raster and
//     the weighted covariance Σ wᵢ(xᵢ-μ)(xᵢ-μ)ᵀ/(N-1) · N/Σwᵢ.
//   - GeneralizedEigen: C·x = λ·B·x through the Cholesky factor of B.
//   - ChiSquareCDF / NormalCDF / GammaFitPValues: probabilities. The
//     chi-square CDF is the regularized lower incomplete gamma P(k/2, x/2),
//     the single formula used by both the change-vector and MAD statistics.
//   - PrincipalComponents: SD-normalized principal component scores.
//
// Concurrency:
//
//   - Every reduction is split into row tiles reduced concurrently and then
//     merged in tile order, so a given tiling always yields the same bits.
//     Options.Workers bounds the number of concurrent tiles.
//
// Errors:
//
//   - *DegenerateInputError (errors.Is ErrDegenerateInput): empty or fully
//     masked region, zero total weight.
//   - *NotPositiveDefiniteError (errors.Is ErrNotPositiveDefinite): Cholesky
//     factorization failed (collinear bands, too few samples).
package stats

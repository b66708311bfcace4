// SPDX-License-Identifier: MIT

// Package mad implements Multivariate Alteration Detection and its
// iteratively reweighted variant (IR-MAD) between two co-registered
// rasters with the same number of bands.
//
// A single pass (Transform):
//
//  1. Weighted covariance of the stacked [before|after] bands.
//  2. Blocks S11, S22, S12, S21.
//  3. Generalized eigenproblems (S12·S22⁻¹·S21, S11) → A and
//     (S21·S11⁻¹·S12, S22) → B; eigenvalues are ρ².
//  4. Increasing correlation order: the last pair is the least correlated
//     and the most sensitive to change.
//  5. Sign normalization shared with package cca.
//  6. U = Aᵀ·(x₁-μ₁), V = Bᵀ·(x₂-μ₂), MAD = U - V.
//  7. σᵢ² = 2(1-ρᵢ); chi2 = Σ MADᵢ²/σᵢ² with k degrees of freedom;
//     p = 1 - ChiSquareCDF(chi2, k).
//
// The driver (Driver / Run) threads an immutable State through passes.
// Every pass weights pixels by 1 - ChiSquareCDF(chi2, k) of the previous
// committed pass. A pass whose correlations moved less than Tolerance from
// the committed ones marks convergence; it is discarded and the previous
// snapshot is returned with Done set. Running out of iterations is
// reported through Result.Converged, never as an error.
//
// Normalize performs radiometric normalization of the after image on the
// no-change pixels selected by a MAD p-value threshold.
package mad

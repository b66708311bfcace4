// SPDX-License-Identifier: MIT

// Package cca computes band correlations between two co-registered rasters
// and their canonical correlation analysis.
//
// The canonical solution comes from the SVD of the whitened correlation
// matrix K = L₁⁻¹·R₁₂·L₂⁻ᵀ, with R₁₁ = L₁L₁ᵀ and R₂₂ = L₂L₂ᵀ. Loadings act
// on standardized bands. Correlations are returned in non-increasing order.
//
// Signs are fixed so that repeated runs compare the same variates:
//
//	(a) every column of A has a positive sum of correlations with the
//	    standardized before bands (column sums of R₁₁·A);
//	(b) every matched pair (Uᵢ, Vᵢ) is positively correlated
//	    (diag(Aᵀ·R₁₂·B) ≥ 0), flipping columns of B.
//
// Variates builds on the canonical solution to produce MAD variates
// U − V, their chi-square statistic and no-change p-values in a single pass.
package cca

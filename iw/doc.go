// SPDX-License-Identifier: MIT

// Package iw implements iteratively weighted change-vector analysis.
//
// Pipeline:
//
//  1. ChangeVector: per-pixel metrics between two dates
//     cv      Σ ((dᵦ - mean(d))/sd(d))²                d = before - after
//     rcvmax  Σ (dᵦ/m - mean(d)/m)/(sd(d)/m)           m = max(before, after)²
//     ndvi, nbr, ndwi, ndsi: before index - after index
//  2. CalcZP: z = (v - mode)/sd and p = 2(1-Φ(|z|)) for the index metrics
//     and rcvmax; cv keeps its raw value as z and p = 1 - χ²cdf(cv, bands).
//  3. Iterate: every pass multiplies the raw metrics by max(p, Floor) of the
//     previous pass and recomputes CalcZP. The number of passes is fixed;
//     there is no convergence test.
//  4. Score / Classify: Σ coefficient·z + intercept ≥ threshold.
//
// The ndsi index divides the green/SWIR1 normalized difference by the NIR
// value; the coefficient tables were fitted against that form.
package iw

// SPDX-License-Identifier: MIT

package cca

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/alterdet/stats"
)

// ErrSVDFailed indicates the singular value decomposition did not converge.
var ErrSVDFailed = errors.New("cca: SVD failed")

const opCanonical = "cca.CanonicalCorrelation"

// CanonicalResult holds canonical loadings and correlations.
// Column j of A and B and Rhos[j] describe the same variate pair.
type CanonicalResult struct {
	A    *mat.Dense // n1×k
	B    *mat.Dense // n2×k
	Rhos []float64  // k = min(n1, n2), non-increasing, each in [0,1]
}

// K returns the number of canonical pairs.
func (c *CanonicalResult) K() int { return len(c.Rhos) }

// CanonicalCorrelation solves the canonical correlation problem for c.
//
// Stages:
//  1. Whitening factors L₁⁻¹, L₂⁻¹ of the auto-correlation blocks.
//  2. K = L₁⁻¹·R₁₂·L₂⁻ᵀ and its thin SVD K = U·Σ·Vᵀ.
//  3. A = L₁⁻ᵀ·U, B = L₂⁻ᵀ·V, ρ = Σ clamped to [0,1].
//  4. Sign normalization (see package doc).
//
// Errors: *stats.NotPositiveDefiniteError, ErrSVDFailed.
func CanonicalCorrelation(c *Correlation) (*CanonicalResult, error) {
	l1i, err := stats.InverseCholeskyFactor(c.BeforeAuto)
	if err != nil {
		return nil, fmt.Errorf("%s: before: %w", opCanonical, err)
	}
	l2i, err := stats.InverseCholeskyFactor(c.AfterAuto)
	if err != nil {
		return nil, fmt.Errorf("%s: after: %w", opCanonical, err)
	}

	var tmp, k mat.Dense
	tmp.Mul(l1i, c.Cross)
	k.Mul(&tmp, l2i.T())

	var svd mat.SVD
	if !svd.Factorize(&k, mat.SVDThin) {
		return nil, fmt.Errorf("%s: %w", opCanonical, ErrSVDFailed)
	}
	var u, v, a, b mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	a.Mul(l1i.T(), &u)
	b.Mul(l2i.T(), &v)

	rhos := svd.Values(nil)
	for i, r := range rhos {
		rhos[i] = clamp01(r)
	}

	NormalizeSigns(&a, &b, c.BeforeAuto, c.Cross)

	return &CanonicalResult{A: &a, B: &b, Rhos: rhos}, nil
}

// NormalizeSigns flips columns of a and b in place so that the column sums
// of auto·a are non-negative and diag(aᵀ·cross·b) is non-negative.
// auto may be a correlation or a covariance block; the column sums are
// taken over standardized variables either way.
func NormalizeSigns(a, b *mat.Dense, auto mat.Symmetric, cross mat.Matrix) {
	n := auto.SymmetricDim()
	_, k := a.Dims()

	var ra mat.Dense
	ra.Mul(auto, a)
	for j := 0; j < k; j++ {
		var s float64
		for i := 0; i < n; i++ {
			s += ra.At(i, j) / sqrtPos(auto.At(i, i))
		}
		if s < 0 {
			negateCol(a, j)
		}
	}

	var acb, at mat.Dense
	at.Mul(a.T(), cross)
	acb.Mul(&at, b)
	for j := 0; j < k; j++ {
		if acb.At(j, j) < 0 {
			negateCol(b, j)
		}
	}
}

func negateCol(m *mat.Dense, j int) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		m.Set(i, j, -m.At(i, j))
	}
}

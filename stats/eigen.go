// SPDX-License-Identifier: MIT

package stats

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

const (
	opGeneralizedEigen = "GeneralizedEigen"
	opCholeskySolve    = "CholeskySolve"
)

// EigenResult holds the solution of a generalized symmetric eigenproblem.
type EigenResult struct {
	Values  []float64  // ascending
	Vectors *mat.Dense // column j pairs with Values[j]; XᵀBX = I
}

// GeneralizedEigen solves C·x = λ·B·x for symmetric C and symmetric
// positive definite B.
//
// Stages:
//  1. B = L·Lᵀ (Cholesky); failure is a *NotPositiveDefiniteError.
//  2. W = L⁻¹·C·L⁻ᵀ, symmetrized to absorb rounding.
//  3. W = V·Λ·Vᵀ (symmetric eigensolver, ascending eigenvalues).
//  4. X = L⁻ᵀ·V, so that XᵀBX = I.
//
// Complexity: O(n³).
func GeneralizedEigen(c, b mat.Symmetric) (*EigenResult, error) {
	n := b.SymmetricDim()
	if c.SymmetricDim() != n {
		return nil, statsErrorf(opGeneralizedEigen, ErrDimensionMismatch)
	}

	li, err := inverseCholeskyFactor(opGeneralizedEigen, b)
	if err != nil {
		return nil, err
	}

	var tmp, w mat.Dense
	tmp.Mul(li, c)
	w.Mul(&tmp, li.T())
	ws := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			ws.SetSym(i, j, 0.5*(w.At(i, j)+w.At(j, i)))
		}
	}

	var es mat.EigenSym
	if !es.Factorize(ws, true) {
		return nil, statsErrorf(opGeneralizedEigen, ErrEigenFailed)
	}
	var v, x mat.Dense
	es.VectorsTo(&v)
	x.Mul(li.T(), &v)

	return &EigenResult{Values: es.Values(nil), Vectors: &x}, nil
}

// inverseCholeskyFactor returns L⁻¹ where B = L·Lᵀ.
func inverseCholeskyFactor(op string, b mat.Symmetric) (*mat.TriDense, error) {
	n := b.SymmetricDim()
	var chol mat.Cholesky
	if !chol.Factorize(b) {
		return nil, &NotPositiveDefiniteError{Op: op, Dim: n}
	}
	var l, li mat.TriDense
	chol.LTo(&l)
	if err := li.InverseTri(&l); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, &NotPositiveDefiniteError{Op: op, Dim: n}
		}
		// Ill-conditioned but usable.
	}

	return &li, nil
}

// CholeskySolve returns X with A·X = M for symmetric positive definite A.
func CholeskySolve(a mat.Symmetric, m mat.Matrix) (*mat.Dense, error) {
	n := a.SymmetricDim()
	if r, _ := m.Dims(); r != n {
		return nil, statsErrorf(opCholeskySolve, ErrDimensionMismatch)
	}
	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return nil, &NotPositiveDefiniteError{Op: opCholeskySolve, Dim: n}
	}
	var x mat.Dense
	if err := chol.SolveTo(&x, m); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, statsErrorf(opCholeskySolve, err)
		}
	}

	return &x, nil
}

// InverseCholeskyFactor exposes L⁻¹ for callers that whiten blocks
// themselves (canonical correlation via SVD).
func InverseCholeskyFactor(b mat.Symmetric) (*mat.TriDense, error) {
	return inverseCholeskyFactor("InverseCholeskyFactor", b)
}

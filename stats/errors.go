// SPDX-License-Identifier: MIT

package stats

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below report errors.Is against these.
var (
	// ErrDegenerateInput signals a statistic over an empty or fully masked
	// region, or with zero total weight ("insufficient valid pixels").
	ErrDegenerateInput = errors.New("stats: insufficient valid pixels")

	// ErrNotPositiveDefinite signals a failed Cholesky factorization.
	ErrNotPositiveDefinite = errors.New("stats: matrix is not positive definite")

	// ErrEigenFailed signals that the symmetric eigensolver did not converge.
	ErrEigenFailed = errors.New("stats: eigen decomposition failed")

	// ErrDimensionMismatch signals incompatible matrix shapes.
	ErrDimensionMismatch = errors.New("stats: dimension mismatch")

	// ErrUnknownReducer signals a Reducer value outside the declared set.
	ErrUnknownReducer = errors.New("stats: unknown reducer")
)

// DegenerateInputError reports a region statistic that would divide by a
// zero weight or count. It is not retried; callers surface it as
// "insufficient valid pixels".
type DegenerateInputError struct {
	Op         string  // operation that detected the condition
	Count      int     // valid pixels seen in the region
	SumWeights float64 // total weight seen in the region
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("stats: %s: insufficient valid pixels (count=%d, sum of weights=%g)",
		e.Op, e.Count, e.SumWeights)
}

// Is makes errors.Is(err, ErrDegenerateInput) hold.
func (e *DegenerateInputError) Is(target error) bool { return target == ErrDegenerateInput }

// NotPositiveDefiniteError reports a covariance block whose Cholesky
// factorization failed. Callers may retry with a larger AOI or fewer bands.
type NotPositiveDefiniteError struct {
	Op  string // operation that attempted the factorization
	Dim int    // order of the matrix
}

func (e *NotPositiveDefiniteError) Error() string {
	return fmt.Sprintf("stats: %s: %d×%d matrix is not positive definite", e.Op, e.Dim, e.Dim)
}

// Is makes errors.Is(err, ErrNotPositiveDefinite) hold.
func (e *NotPositiveDefiniteError) Is(target error) bool { return target == ErrNotPositiveDefinite }

// statsErrorf wraps err with an operation tag. Only call it with err != nil.
func statsErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

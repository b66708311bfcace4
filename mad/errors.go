// SPDX-License-Identifier: MIT

package mad

import (
	"errors"
	"fmt"
)

var (
	// ErrBandCountMismatch indicates before and after carry different band counts.
	ErrBandCountMismatch = errors.New("mad: before and after must have the same number of bands")

	// ErrInvalidIterations indicates a non-positive iteration budget.
	ErrInvalidIterations = errors.New("mad: iteration budget must be >= 1")

	// ErrThresholdRange indicates a no-change threshold outside [0,1).
	ErrThresholdRange = errors.New("mad: no-change threshold must be in [0,1)")

	// ErrNilInput indicates a nil raster or state.
	ErrNilInput = errors.New("mad: nil input")
)

func madErrorf(op string, err error) error {
	return fmt.Errorf("mad.%s: %w", op, err)
}

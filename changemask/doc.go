// SPDX-License-Identifier: MIT

// Package changemask holds binary change masks on a pixel grid and the
// morphology and component analysis applied to them before vectorization.
//
// What:
//
//   - Mask: immutable W×H grid of set/unset pixels plus a validity flag.
//   - Erode / Dilate / Open: 3×3 square minimum / maximum filters.
//     Out-of-grid and invalid neighbours are ignored.
//   - ConnectedComponents: contiguous regions of set pixels under Conn4 or
//     Conn8 connectivity.
//
// Why:
//
//   - Erode-then-dilate (Open) removes isolated pixels and one-pixel-wide
//     spurs while restoring the footprint of contiguous change regions.
//
// Complexity:
//
//   - Erode, Dilate: O(W×H×9), Memory: O(W×H).
//   - ConnectedComponents: O(W×H×d), Memory: O(W×H)    (d = 4 or 8).
//
// Errors:
//
//   - ErrEmptyGrid: no rows or no columns.
//   - ErrNonRectangular: rows have differing lengths.
//   - ErrLength: a flat slice whose length is not W×H.
package changemask

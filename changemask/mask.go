// SPDX-License-Identifier: MIT

package changemask

import (
	"errors"
	"math"
	"strings"
)

// Sentinel errors for mask construction.
var (
	// ErrEmptyGrid indicates a grid with no rows or no columns.
	ErrEmptyGrid = errors.New("changemask: grid must have at least one row and one column")
	// ErrNonRectangular indicates rows of differing lengths.
	ErrNonRectangular = errors.New("changemask: all rows must have the same length")
	// ErrLength indicates a flat slice whose length does not match the grid.
	ErrLength = errors.New("changemask: slice length does not match grid")
)

// Connectivity selects neighbour connectivity: orthogonal (Conn4) or
// including diagonals (Conn8).
type Connectivity int

const (
	// Conn4 uses 4-directional connectivity: N, E, S, W.
	Conn4 Connectivity = iota
	// Conn8 uses 8-directional connectivity: N, NE, E, SE, S, SW, W, NW.
	Conn8
)

var (
	offsets4 = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	offsets8 = [][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
)

// Offsets returns the neighbour offsets of c.
func (c Connectivity) Offsets() [][2]int {
	if c == Conn8 {
		return offsets8
	}

	return offsets4
}

// Mask is a binary grid. It is immutable once built; every operation
// returns a new Mask.
type Mask struct {
	width, height int
	set           []bool
	valid         []bool
}

// New builds a mask from row-major set flags and an optional validity mask
// (nil means every pixel is valid). Invalid pixels are never set.
// Both slices are copied.
func New(width, height int, set, valid []bool) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyGrid
	}
	n := width * height
	if len(set) != n || (valid != nil && len(valid) != n) {
		return nil, ErrLength
	}
	m := &Mask{width: width, height: height, set: make([]bool, n), valid: make([]bool, n)}
	for i := range m.set {
		m.valid[i] = valid == nil || valid[i]
		m.set[i] = set[i] && m.valid[i]
	}

	return m, nil
}

// From2D builds a fully valid mask from rows of 0/1 values; any non-zero
// value is set.
func From2D(rows [][]int) (*Mask, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	h, w := len(rows), len(rows[0])
	set := make([]bool, 0, w*h)
	for _, row := range rows {
		if len(row) != w {
			return nil, ErrNonRectangular
		}
		for _, v := range row {
			set = append(set, v != 0)
		}
	}

	return New(w, h, set, nil)
}

// Threshold sets every valid pixel whose value is ≥ threshold.
// NaN values are treated as invalid.
func Threshold(width, height int, values []float64, valid []bool, threshold float64) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyGrid
	}
	if len(values) != width*height {
		return nil, ErrLength
	}
	set := make([]bool, len(values))
	ok := make([]bool, len(values))
	for i, v := range values {
		ok[i] = (valid == nil || valid[i]) && !math.IsNaN(v)
		set[i] = v >= threshold
	}

	return New(width, height, set, ok)
}

// Width returns the number of columns.
func (m *Mask) Width() int { return m.width }

// Height returns the number of rows.
func (m *Mask) Height() int { return m.height }

// InBounds reports whether (x,y) lies within the grid.
func (m *Mask) InBounds(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// index maps (x,y) to a row-major index: y*Width + x.
func (m *Mask) index(x, y int) int { return y*m.width + x }

// Coordinate converts a row-major index back to (x,y).
func (m *Mask) Coordinate(idx int) (x, y int) {
	return idx % m.width, idx / m.width
}

// At reports whether (x,y) is set. Out-of-grid pixels are unset.
func (m *Mask) At(x, y int) bool {
	return m.InBounds(x, y) && m.set[m.index(x, y)]
}

// Valid reports whether (x,y) is a valid pixel.
func (m *Mask) Valid(x, y int) bool {
	return m.InBounds(x, y) && m.valid[m.index(x, y)]
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, s := range m.set {
		if s {
			n++
		}
	}

	return n
}

// Bits returns a copy of the row-major set flags.
func (m *Mask) Bits() []bool {
	out := make([]bool, len(m.set))
	copy(out, m.set)

	return out
}

// String renders the mask as rows of '#' (set), '.' (unset) and ' '
// (invalid). Handy in test failures.
func (m *Mask) String() string {
	var sb strings.Builder
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			i := m.index(x, y)
			switch {
			case !m.valid[i]:
				sb.WriteByte(' ')
			case m.set[i]:
				sb.WriteByte('#')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

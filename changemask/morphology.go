// SPDX-License-Identifier: MIT

package changemask

// Erode returns the 3×3 minimum filter of m: a pixel stays set only when
// every valid in-grid pixel of its 3×3 window is set.
// Complexity: O(W×H×9).
func (m *Mask) Erode() *Mask {
	return m.filter(func(x, y int) bool {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if m.Valid(x+dx, y+dy) && !m.At(x+dx, y+dy) {
					return false
				}
			}
		}
		return true
	})
}

// Dilate returns the 3×3 maximum filter of m: a valid pixel becomes set
// when any pixel of its 3×3 window is set.
// Complexity: O(W×H×9).
func (m *Mask) Dilate() *Mask {
	return m.filter(func(x, y int) bool {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if m.At(x+dx, y+dy) {
					return true
				}
			}
		}
		return false
	})
}

// Open erodes then dilates m.
func (m *Mask) Open() *Mask {
	return m.Erode().Dilate()
}

// filter evaluates keep at every valid pixel; invalid pixels stay unset.
func (m *Mask) filter(keep func(x, y int) bool) *Mask {
	out := &Mask{
		width:  m.width,
		height: m.height,
		set:    make([]bool, len(m.set)),
		valid:  m.valid, // shared; masks are immutable
	}
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			i := m.index(x, y)
			if m.valid[i] {
				out.set[i] = keep(x, y)
			}
		}
	}

	return out
}
